package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Source implements ports.DefinitionSource using an in-memory map.
// Safe for concurrent use.
type Source struct {
	mu          sync.RWMutex
	definitions map[string][]byte
}

// NewSource creates a Source seeded with raw definitions keyed by name.
func NewSource(data map[string]string) *Source {
	definitions := make(map[string][]byte, len(data))
	for name, text := range data {
		definitions[name] = []byte(text)
	}
	return &Source{definitions: definitions}
}

// Save stores or replaces a definition.
func (s *Source) Save(_ context.Context, name string, definition []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[name] = append([]byte(nil), definition...)
	return nil
}

// Delete removes a definition. Deleting a missing name is not an error.
func (s *Source) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.definitions, name)
	return nil
}

// List returns every stored name, sorted.
func (s *Source) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.definitions))
	for name := range s.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the definition stored under name.
func (s *Source) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, name)
	}
	return append([]byte(nil), data...), nil
}
