package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// NodeBuilder builds a single definition node.
// Argument errors are kept and reported by Builder.Build.
type NodeBuilder struct {
	node     *definition.Node
	err      error
	children []*NodeBuilder
}

// Prop references an agent property, written $name in MDSL.
func Prop(name string) definition.Argument {
	return definition.Property(name)
}

func newNode(nodeType domain.NodeType) *NodeBuilder {
	return &NodeBuilder{node: &definition.Node{Type: nodeType}}
}

func withChildren(nodeType domain.NodeType, children []*NodeBuilder) *NodeBuilder {
	nb := newNode(nodeType)
	nb.children = children
	for _, child := range children {
		nb.node.Children = append(nb.node.Children, child.node)
	}
	return nb
}

func withChild(nodeType domain.NodeType, child *NodeBuilder) *NodeBuilder {
	nb := newNode(nodeType)
	nb.children = []*NodeBuilder{child}
	nb.node.Child = child.node
	return nb
}

// Action calls an agent function every tick until it resolves.
func Action(call string, args ...any) *NodeBuilder {
	nb := newNode(domain.NodeTypeAction)
	nb.node.Call = call
	nb.node.Args = nb.arguments(args)
	return nb
}

// Condition succeeds when the agent function returns true.
func Condition(call string, args ...any) *NodeBuilder {
	nb := newNode(domain.NodeTypeCondition)
	nb.node.Call = call
	nb.node.Args = nb.arguments(args)
	return nb
}

// Wait succeeds after ms milliseconds.
func Wait(ms int) *NodeBuilder {
	nb := newNode(domain.NodeTypeWait)
	nb.node.Duration = definition.Fixed(ms)
	return nb
}

// WaitBetween succeeds after a duration picked between min and max milliseconds.
func WaitBetween(min, max int) *NodeBuilder {
	nb := newNode(domain.NodeTypeWait)
	nb.node.Duration = definition.Between(min, max)
	return nb
}

// WaitForever never resolves on its own.
func WaitForever() *NodeBuilder {
	return newNode(domain.NodeTypeWait)
}

// Branch inlines the root named ref.
func Branch(ref string) *NodeBuilder {
	nb := newNode(domain.NodeTypeBranch)
	nb.node.Ref = ref
	return nb
}

func Sequence(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeSequence, children)
}

func Selector(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeSelector, children)
}

func Parallel(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeParallel, children)
}

func Race(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeRace, children)
}

func All(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeAll, children)
}

// Lotto runs one child picked at random, every child equally likely.
func Lotto(children ...*NodeBuilder) *NodeBuilder {
	return withChildren(domain.NodeTypeLotto, children)
}

// WeightedLotto runs one child picked at random with the given weights.
func WeightedLotto(weights []int, children ...*NodeBuilder) *NodeBuilder {
	nb := withChildren(domain.NodeTypeLotto, children)
	nb.node.Weights = weights
	return nb
}

// Repeat runs child n times while it succeeds.
func Repeat(n int, child *NodeBuilder) *NodeBuilder {
	nb := withChild(domain.NodeTypeRepeat, child)
	nb.node.Iterations = definition.Fixed(n)
	return nb
}

// RepeatBetween repeats child a number of times picked between min and max.
func RepeatBetween(min, max int, child *NodeBuilder) *NodeBuilder {
	nb := withChild(domain.NodeTypeRepeat, child)
	nb.node.Iterations = definition.Between(min, max)
	return nb
}

// RepeatForever repeats child until it fails.
func RepeatForever(child *NodeBuilder) *NodeBuilder {
	return withChild(domain.NodeTypeRepeat, child)
}

// Retry runs child up to n times while it fails.
func Retry(n int, child *NodeBuilder) *NodeBuilder {
	nb := withChild(domain.NodeTypeRetry, child)
	nb.node.Attempts = definition.Fixed(n)
	return nb
}

// RetryForever retries child until it succeeds.
func RetryForever(child *NodeBuilder) *NodeBuilder {
	return withChild(domain.NodeTypeRetry, child)
}

func Flip(child *NodeBuilder) *NodeBuilder {
	return withChild(domain.NodeTypeFlip, child)
}

func Succeed(child *NodeBuilder) *NodeBuilder {
	return withChild(domain.NodeTypeSucceed, child)
}

func Fail(child *NodeBuilder) *NodeBuilder {
	return withChild(domain.NodeTypeFail, child)
}

// While aborts the node as soon as the condition function returns false.
func (nb *NodeBuilder) While(call string, args ...any) *NodeBuilder {
	return nb.attribute(definition.AttributeWhile, call, args)
}

// Until aborts the node as soon as the condition function returns true.
func (nb *NodeBuilder) Until(call string, args ...any) *NodeBuilder {
	return nb.attribute(definition.AttributeUntil, call, args)
}

// Entry calls the function when the node first updates.
func (nb *NodeBuilder) Entry(call string, args ...any) *NodeBuilder {
	return nb.attribute(definition.AttributeEntry, call, args)
}

// Step calls the function on every update.
func (nb *NodeBuilder) Step(call string, args ...any) *NodeBuilder {
	return nb.attribute(definition.AttributeStep, call, args)
}

// Exit calls the function when the node resolves or is aborted.
func (nb *NodeBuilder) Exit(call string, args ...any) *NodeBuilder {
	return nb.attribute(definition.AttributeExit, call, args)
}

// SucceedOnAbort makes the node succeed instead of fail when one of its
// guards aborts it. Call it after While or Until.
func (nb *NodeBuilder) SucceedOnAbort() *NodeBuilder {
	for _, guard := range []*definition.Attribute{nb.node.While, nb.node.Until} {
		if guard != nil {
			guard.SucceedOnAbort = true
		}
	}
	return nb
}

// Node returns the definition node. It is shared with the builder.
func (nb *NodeBuilder) Node() *definition.Node {
	return nb.node
}

func (nb *NodeBuilder) attribute(name, call string, args []any) *NodeBuilder {
	nb.node.SetAttribute(name, &definition.Attribute{Call: call, Args: nb.arguments(args)})
	return nb
}

func (nb *NodeBuilder) arguments(raw []any) []definition.Argument {
	if len(raw) == 0 {
		return nil
	}
	args := make([]definition.Argument, 0, len(raw))
	for i, value := range raw {
		if arg, ok := value.(definition.Argument); ok {
			args = append(args, arg)
			continue
		}
		arg, err := definition.ParseArgument(value)
		if err != nil {
			if nb.err == nil {
				nb.err = fmt.Errorf("argument %d of %s node: %w", i, nb.node.Type, err)
			}
			continue
		}
		args = append(args, arg)
	}
	return args
}

// firstErr returns the first argument error in the subtree of nb.
func (nb *NodeBuilder) firstErr() error {
	if nb.err != nil {
		return nb.err
	}
	for _, child := range nb.children {
		if err := child.firstErr(); err != nil {
			return err
		}
	}
	return nil
}
