package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the definition construction: one main root and any number
// of named subtrees.
type Builder struct {
	main     *NodeBuilder
	subtrees []*NodeBuilder
}

// New creates a builder whose main root wraps child.
func New(child *NodeBuilder) *Builder {
	return &Builder{main: withChild(domain.NodeTypeRoot, child)}
}

// Root returns the main root so guards and callbacks can be attached to it.
func (b *Builder) Root() *NodeBuilder {
	return b.main
}

// Subtree adds a named root wrapping child, the target of Branch(name).
func (b *Builder) Subtree(name string, child *NodeBuilder) *Builder {
	root := withChild(domain.NodeTypeRoot, child)
	root.node.ID = name
	b.subtrees = append(b.subtrees, root)
	return b
}

// Build validates and returns the definition roots, main root first.
func (b *Builder) Build() ([]*definition.Node, error) {
	roots := []*definition.Node{b.main.node}
	builders := append([]*NodeBuilder{b.main}, b.subtrees...)
	for _, root := range b.subtrees {
		roots = append(roots, root.node)
	}

	for _, root := range builders {
		if err := root.firstErr(); err != nil {
			return nil, fmt.Errorf("failed to build definition: %w", err)
		}
	}
	if err := validator.ValidateRoots(roots); err != nil {
		return nil, fmt.Errorf("failed to build definition: %w", err)
	}
	return roots, nil
}
