package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/ports"
)

// Func is a globally registered function. Trees fall back to it when the agent
// does not define a function with the called name. The agent is passed first.
type Func func(agent any, args ...any) (any, error)

// Registry holds functions and named subtrees shared by every tree compiled
// with it. Safe for concurrent use; registrations only affect trees compiled
// afterwards.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Func
	subtrees  map[string]*definition.Node
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		functions: make(map[string]Func),
		subtrees:  make(map[string]*definition.Node),
	}
}

// RegisterFunction adds fn under name, replacing any previous function.
func (r *Registry) RegisterFunction(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("error registering function: name must be a non-empty string")
	}
	if fn == nil {
		return fmt.Errorf("error registering function '%s': function must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
	return nil
}

// RegisterSubtree adds a subtree under name. def must describe a single
// unnamed root in any form compiler.Load accepts; branch nodes referring to
// name will inline it.
func (r *Registry) RegisterSubtree(name string, def any) error {
	if name == "" {
		return fmt.Errorf("error registering definition: name must be a non-empty string")
	}

	roots, err := compiler.Load(def)
	if err != nil {
		return fmt.Errorf("error registering definition: %w", err)
	}
	if len(roots) != 1 || roots[0] == nil || roots[0].ID != "" {
		return fmt.Errorf("error registering definition: expected a single unnamed root node")
	}
	if err := validator.ValidateRoots(roots); err != nil {
		return fmt.Errorf("error registering definition, invalid subtree: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subtrees[name] = roots[0]
	return nil
}

// LoadSubtrees registers every definition in source. Each stored definition
// may be unnamed, registered under its source name, or hold named roots, each
// registered under its own id.
func (r *Registry) LoadSubtrees(ctx context.Context, source ports.DefinitionSource) error {
	names, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list definitions: %w", err)
	}

	for _, name := range names {
		data, err := source.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load definition %s: %w", name, err)
		}
		if err := r.registerSource(name, data); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerSource(name string, data []byte) error {
	roots, err := compiler.Load(data)
	if err != nil {
		return fmt.Errorf("error registering definition %s: %w", name, err)
	}

	for _, root := range roots {
		id := root.ID
		if id == "" {
			id = name
		}
		// Registered subtrees are always stored unnamed.
		unnamed := *root
		unnamed.ID = ""
		if err := r.RegisterSubtree(id, &unnamed); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Unregister removes the function and the subtree registered under name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.functions, name)
	delete(r.subtrees, name)
}

// UnregisterAll clears the registry.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions = make(map[string]Func)
	r.subtrees = make(map[string]*definition.Node)
}

// Function returns the function registered under name.
func (r *Registry) Function(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Subtree returns the root registered under name.
func (r *Registry) Subtree(name string) (*definition.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	root, ok := r.subtrees[name]
	return root, ok
}

// Subtrees returns a copy of every registered subtree keyed by name.
func (r *Registry) Subtrees() map[string]*definition.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*definition.Node, len(r.subtrees))
	for name, root := range r.subtrees {
		out[name] = root
	}
	return out
}

// SubtreeNames returns the registered subtree names, sorted.
func (r *Registry) SubtreeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.subtrees))
	for name := range r.subtrees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
