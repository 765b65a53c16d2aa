package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

type composite struct {
	node
	children []Node
}

func (c *composite) Children() []Node { return c.children }

// abortRunning aborts every child still RUNNING.
func (c *composite) abortRunning() error {
	for _, child := range c.children {
		if child.State() == domain.Running {
			if err := child.Abort(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *composite) count(state domain.State) int {
	n := 0
	for _, child := range c.children {
		if child.State() == state {
			n++
		}
	}
	return n
}

// sequence succeeds when every child succeeds in order and fails on the
// first failure.
type sequence struct{ composite }

func (s *sequence) onUpdate() error {
	for i, child := range s.children {
		if err := updateIfActive(child); err != nil {
			return err
		}

		switch child.State() {
		case domain.Succeeded:
			if i == len(s.children)-1 {
				s.setState(domain.Succeeded)
				return nil
			}
		case domain.Failed:
			s.setState(domain.Failed)
			return nil
		case domain.Running:
			s.setState(domain.Running)
			return nil
		default:
			return fmt.Errorf("child node was not in an expected state")
		}
	}
	return nil
}

// selector succeeds on the first child success and fails when every child
// fails in order.
type selector struct{ composite }

func (s *selector) onUpdate() error {
	for i, child := range s.children {
		if err := updateIfActive(child); err != nil {
			return err
		}

		switch child.State() {
		case domain.Failed:
			if i == len(s.children)-1 {
				s.setState(domain.Failed)
				return nil
			}
		case domain.Succeeded:
			s.setState(domain.Succeeded)
			return nil
		case domain.Running:
			s.setState(domain.Running)
			return nil
		default:
			return fmt.Errorf("child node was not in an expected state")
		}
	}
	return nil
}

// parallel ticks every child; one failure fails it, all successes succeed it.
type parallel struct{ composite }

func (p *parallel) onUpdate() error {
	for _, child := range p.children {
		if err := updateIfActive(child); err != nil {
			return err
		}
	}

	if p.count(domain.Failed) > 0 {
		p.setState(domain.Failed)
		return p.abortRunning()
	}
	if p.count(domain.Succeeded) == len(p.children) {
		p.setState(domain.Succeeded)
		return nil
	}
	p.setState(domain.Running)
	return nil
}

// race ticks every child; one success succeeds it, all failures fail it.
type race struct{ composite }

func (r *race) onUpdate() error {
	for _, child := range r.children {
		if err := updateIfActive(child); err != nil {
			return err
		}
	}

	if r.count(domain.Succeeded) > 0 {
		r.setState(domain.Succeeded)
		return r.abortRunning()
	}
	if r.count(domain.Failed) == len(r.children) {
		r.setState(domain.Failed)
		return nil
	}
	r.setState(domain.Running)
	return nil
}

// all ticks every child until each one resolved, then succeeds if any did.
type all struct{ composite }

func (a *all) onUpdate() error {
	for _, child := range a.children {
		if err := updateIfActive(child); err != nil {
			return err
		}
	}

	succeeded, failed := a.count(domain.Succeeded), a.count(domain.Failed)
	if succeeded+failed < len(a.children) {
		a.setState(domain.Running)
		return nil
	}
	if succeeded > 0 {
		a.setState(domain.Succeeded)
	} else {
		a.setState(domain.Failed)
	}
	return nil
}

// lotto draws one child when leaving READY and mirrors it until reset.
type lotto struct {
	composite
	weights  []int
	selected Node
}

func (l *lotto) Name() string {
	if l.weights == nil {
		return "LOTTO"
	}
	weights := make([]string, len(l.weights))
	for i, w := range l.weights {
		weights[i] = strconv.Itoa(w)
	}
	return "LOTTO [" + strings.Join(weights, ",") + "]"
}

func (l *lotto) onReset() { l.selected = nil }

func (l *lotto) onUpdate() error {
	if l.state == domain.Ready {
		l.selected = l.draw()
		l.env.opts.Logger.Debug("lotto child selected", "node_id", l.id, "child_id", l.selected.ID())
	}
	if l.selected == nil {
		return fmt.Errorf("failed to update lotto node as it has no active child")
	}

	if err := updateIfActive(l.selected); err != nil {
		return err
	}
	l.setState(l.selected.State())
	return nil
}

// draw picks a child with probability proportional to its weight. Missing
// weights count as 1.
func (l *lotto) draw() Node {
	weight := func(i int) int {
		if l.weights == nil {
			return 1
		}
		return l.weights[i]
	}

	total := 0
	for i := range l.children {
		total += weight(i)
	}

	ticket := l.env.opts.Random() * float64(total)
	cumulative := 0
	var last Node
	for i, child := range l.children {
		if weight(i) <= 0 {
			continue
		}
		cumulative += weight(i)
		last = child
		if ticket < float64(cumulative) {
			return child
		}
	}
	return last
}
