package ports

import "context"

// DefinitionSource retrieves raw subtree definitions (MDSL, JSON or YAML text).
// The storage layer (Memory, Redis, Loam) stays decoupled from the registry.
type DefinitionSource interface {
	// List returns the names of every stored definition, sorted.
	List(ctx context.Context) ([]string, error)

	// Load returns the raw definition stored under name.
	// Returns domain.ErrDefinitionNotFound if it does not exist.
	Load(ctx context.Context, name string) ([]byte, error)
}

// Watchable is implemented by sources that can report backend changes.
type Watchable interface {
	// Watch emits the name of each definition that changed until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
