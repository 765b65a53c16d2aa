package runtime

import (
	"errors"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/uuid"
)

// Node is a runtime behaviour tree node.
type Node interface {
	ID() string
	Type() domain.NodeType
	Name() string
	State() domain.State
	Children() []Node

	// Update ticks the node once. It is a no-op on resolved nodes.
	Update() error
	// Reset returns the node and its subtree to READY.
	Reset()
	// Abort resets a RUNNING node and its subtree and fires exit callbacks
	// with Aborted set. Nodes in any other state are left untouched.
	Abort() error
	Details() domain.NodeDetails

	base() *node
	onUpdate() error
}

// resetter is implemented by nodes holding per-run state besides their own.
type resetter interface {
	onReset()
}

// argumented is implemented by leaves whose call arguments show up in Details.
type argumented interface {
	detailArgs() []any
}

// node holds what every node kind shares. Concrete kinds embed it and point
// self back at themselves so the generic algorithm reaches their onUpdate.
type node struct {
	self      Node
	id        string
	nodeType  domain.NodeType
	state     domain.State
	attrs     attributes
	guardPath guardPath
	env       *env
}

func newNode(nodeType domain.NodeType, attrs attributes, e *env) node {
	return node{
		id:       uuid.NewString(),
		nodeType: nodeType,
		state:    domain.Ready,
		attrs:    attrs,
		env:      e,
	}
}

func (n *node) base() *node { return n }

func (n *node) ID() string { return n.id }

func (n *node) Type() domain.NodeType { return n.nodeType }

func (n *node) Name() string { return strings.ToUpper(string(n.nodeType)) }

func (n *node) State() domain.State { return n.state }

func (n *node) Children() []Node { return nil }

func (n *node) setState(state domain.State) {
	previous := n.state
	if previous == state {
		return
	}
	n.state = state

	n.env.opts.Logger.Debug("node state changed",
		"node_id", n.id,
		"type", n.nodeType,
		"from", previous,
		"to", state,
	)
	if observer := n.env.opts.OnStateChange; observer != nil {
		observer(domain.StateChange{
			NodeID:   n.id,
			NodeType: n.nodeType,
			Name:     n.self.Name(),
			Previous: previous,
			State:    state,
		})
	}
}

func (n *node) Update() error {
	if n.state.Resolved() {
		return nil
	}

	err := n.update()

	var failure *guardFailure
	if errors.As(err, &failure) && failure.owner == n.self {
		if err := n.Abort(); err != nil {
			return err
		}
		if failure.succeedOnAbort {
			n.setState(domain.Succeeded)
		} else {
			n.setState(domain.Failed)
		}
		return nil
	}
	return err
}

func (n *node) update() error {
	if err := n.guardPath.evaluate(n.env); err != nil {
		return err
	}

	if n.state == domain.Ready {
		if err := n.attrs.entry.invoke(n.env); err != nil {
			return err
		}
	}
	if err := n.attrs.step.invoke(n.env); err != nil {
		return err
	}

	if err := n.self.onUpdate(); err != nil {
		return err
	}

	if n.state.Resolved() {
		return n.attrs.exit.invoke(n.env, domain.ExitResult{Succeeded: n.state == domain.Succeeded})
	}
	return nil
}

func (n *node) Reset() {
	n.setState(domain.Ready)
	if r, ok := n.self.(resetter); ok {
		r.onReset()
	}
	for _, child := range n.self.Children() {
		child.Reset()
	}
}

func (n *node) Abort() error {
	if n.state != domain.Running {
		return nil
	}
	for _, child := range n.self.Children() {
		if err := child.Abort(); err != nil {
			return err
		}
	}
	n.Reset()
	return n.attrs.exit.invoke(n.env, domain.ExitResult{Aborted: true})
}

func (n *node) Details() domain.NodeDetails {
	details := domain.NodeDetails{
		ID:    n.id,
		Type:  n.nodeType,
		Name:  n.self.Name(),
		State: n.state,
		While: n.attrs.while.details(),
		Until: n.attrs.until.details(),
		Entry: n.attrs.entry.details(),
		Step:  n.attrs.step.details(),
		Exit:  n.attrs.exit.details(),
	}
	if a, ok := n.self.(argumented); ok {
		details.Args = a.detailArgs()
	}
	for _, child := range n.self.Children() {
		details.Children = append(details.Children, child.Details())
	}
	return details
}

// updateIfActive ticks child unless it already resolved.
func updateIfActive(child Node) error {
	if s := child.State(); s == domain.Ready || s == domain.Running {
		return child.Update()
	}
	return nil
}
