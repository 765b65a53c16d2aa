package runtime

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

type decorator struct {
	node
	child Node
}

func (d *decorator) Children() []Node { return []Node{d.child} }

// root passes its child's state through.
type root struct{ decorator }

func (r *root) onUpdate() error {
	if err := updateIfActive(r.child); err != nil {
		return err
	}
	r.setState(r.child.State())
	return nil
}

// flip inverts a resolved child state.
type flip struct{ decorator }

func (f *flip) onUpdate() error {
	if err := updateIfActive(f.child); err != nil {
		return err
	}
	switch f.child.State() {
	case domain.Running:
		f.setState(domain.Running)
	case domain.Succeeded:
		f.setState(domain.Failed)
	case domain.Failed:
		f.setState(domain.Succeeded)
	default:
		f.setState(domain.Ready)
	}
	return nil
}

// force resolves to outcome whenever its child resolves. It backs both the
// succeed and the fail decorators.
type force struct {
	decorator
	outcome domain.State
}

func (f *force) onUpdate() error {
	if err := updateIfActive(f.child); err != nil {
		return err
	}
	switch f.child.State() {
	case domain.Running:
		f.setState(domain.Running)
	case domain.Succeeded, domain.Failed:
		f.setState(f.outcome)
	default:
		f.setState(domain.Ready)
	}
	return nil
}

// loop backs repeat and retry: it re-runs its child until the child resolves
// with stop, which ends the loop with that state, or until target runs of
// the child resolved with again.
type loop struct {
	decorator
	count *definition.Range
	again domain.State
	stop  domain.State

	target  int
	current int
}

func (l *loop) Name() string {
	switch {
	case l.count == nil:
		return l.node.Name()
	case l.count.IsFixed():
		return fmt.Sprintf("%s %dx", l.node.Name(), l.count.Min)
	default:
		return fmt.Sprintf("%s %dx-%dx", l.node.Name(), l.count.Min, l.count.Max)
	}
}

func (l *loop) onUpdate() error {
	if l.state == domain.Ready {
		l.child.Reset()
		l.current = 0
		l.target = -1
		if l.count != nil {
			l.target = l.count.Pick(l.env.opts.Random)
		}
	}

	if l.exhausted() {
		l.setState(l.again)
		return nil
	}

	l.setState(domain.Running)
	if l.child.State() == l.again {
		l.child.Reset()
	}
	if err := l.child.Update(); err != nil {
		return err
	}

	switch l.child.State() {
	case l.stop:
		l.setState(l.stop)
	case l.again:
		l.current++
		if l.exhausted() {
			l.setState(l.again)
		}
	}
	return nil
}

func (l *loop) exhausted() bool {
	return l.target >= 0 && l.current >= l.target
}
