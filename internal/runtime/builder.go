package runtime

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// Build turns validated root definitions into a runtime tree for agent.
// Branch nodes are replaced by a fresh copy of the referenced root's child,
// so a subtree used twice yields two independent node sets.
func Build(roots Roots, agent any, opts Options) (Node, error) {
	if roots.Main == nil {
		return nil, fmt.Errorf("expected a main root node definition")
	}

	b := &builder{
		roots: roots,
		env:   &env{agent: agent, opts: opts.withDefaults()},
	}
	tree, err := b.build(roots.Main, nil)
	if err != nil {
		return nil, err
	}

	assignGuardPaths(tree, nil)
	return tree, nil
}

type builder struct {
	roots Roots
	env   *env
}

// build creates the node for def. path holds the branch refs expanded on the
// way down and catches circular references.
func (b *builder) build(def *definition.Node, path []string) (Node, error) {
	if def == nil {
		return nil, fmt.Errorf("missing node definition")
	}

	if def.Type == domain.NodeTypeBranch {
		if slices.Contains(path, def.Ref) {
			return nil, fmt.Errorf("circular dependency found in branch node references: %s", strings.Join(append(path, def.Ref), " => "))
		}
		target, ok := b.roots.Named[def.Ref]
		if !ok {
			return nil, fmt.Errorf("branch node refers to root node '%s' which has not been defined", def.Ref)
		}
		return b.build(target.Child, append(slices.Clip(path), def.Ref))
	}

	n := newNode(def.Type, newAttributes(def), b.env)

	switch def.Type {
	case domain.NodeTypeAction:
		return bind(&action{node: n, call: def.Call, args: def.Args}), nil
	case domain.NodeTypeCondition:
		return bind(&condition{node: n, call: def.Call, args: def.Args}), nil
	case domain.NodeTypeWait:
		return bind(&wait{node: n, duration: def.Duration}), nil
	}

	if def.Type.IsComposite() {
		children := make([]Node, 0, len(def.Children))
		for _, childDef := range def.Children {
			child, err := b.build(childDef, path)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		c := composite{node: n, children: children}

		switch def.Type {
		case domain.NodeTypeSequence:
			return bind(&sequence{c}), nil
		case domain.NodeTypeSelector:
			return bind(&selector{c}), nil
		case domain.NodeTypeParallel:
			return bind(&parallel{c}), nil
		case domain.NodeTypeRace:
			return bind(&race{c}), nil
		case domain.NodeTypeAll:
			return bind(&all{c}), nil
		case domain.NodeTypeLotto:
			return bind(&lotto{composite: c, weights: def.Weights}), nil
		}
	}

	if def.Type.IsDecorator() {
		child, err := b.build(def.Child, path)
		if err != nil {
			return nil, err
		}
		d := decorator{node: n, child: child}

		switch def.Type {
		case domain.NodeTypeRoot:
			return bind(&root{d}), nil
		case domain.NodeTypeFlip:
			return bind(&flip{d}), nil
		case domain.NodeTypeSucceed:
			return bind(&force{decorator: d, outcome: domain.Succeeded}), nil
		case domain.NodeTypeFail:
			return bind(&force{decorator: d, outcome: domain.Failed}), nil
		case domain.NodeTypeRepeat:
			return bind(&loop{decorator: d, count: def.Iterations, again: domain.Succeeded, stop: domain.Failed}), nil
		case domain.NodeTypeRetry:
			return bind(&loop{decorator: d, count: def.Attempts, again: domain.Failed, stop: domain.Succeeded}), nil
		}
	}

	return nil, fmt.Errorf("unexpected node type of '%s'", def.Type)
}

func bind(n Node) Node {
	n.base().self = n
	return n
}

// assignGuardPaths gives every node the guards of its guarded ancestors and
// its own, outermost first. Ancestors share the prefix of the path.
func assignGuardPaths(n Node, inherited guardPath) {
	path := inherited
	if guards := n.base().attrs.guards(); len(guards) > 0 {
		path = append(slices.Clip(inherited), guardEntry{owner: n, guards: guards})
	}
	n.base().guardPath = path

	for _, child := range n.Children() {
		assignGuardPaths(child, path)
	}
}
