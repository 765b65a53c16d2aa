package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam document folder to ports.DefinitionSource. Each
// Markdown document is one definition.
type Source struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a Source over an existing repository.
func New(repo *loam.TypedRepository[Metadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers consistent across JSON and YAML frontmatter.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Metadata](repo)), nil
}

// List returns every definition name, sorted.
func (s *Source) List(ctx context.Context) ([]string, error) {
	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the body of the document named name.
func (s *Source) Load(ctx context.Context, name string) ([]byte, error) {
	index, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	docID, ok := index[name]
	if !ok {
		return nil, fmt.Errorf("definition %s: %w", name, domain.ErrDefinitionNotFound)
	}

	doc, err := s.Repo.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", docID, err)
	}
	return []byte(doc.Content), nil
}

// index maps definition names to Loam document ids.
func (s *Source) index(ctx context.Context) (map[string]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[string]string, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		name := trimExtension(rawID)

		if existing, ok := index[name]; ok {
			return nil, fmt.Errorf("collision detected: definition '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		index[name] = doc.ID
	}
	return index, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

// Watch implements ports.Watchable. It emits the id of every changed document.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
