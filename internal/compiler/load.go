package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// Load converts any supported definition value into root definitions:
// MDSL or JSON text (string or []byte), a *definition.Node, a []*definition.Node,
// or generic decoded data (map[string]any, []any).
func Load(def any) ([]*definition.Node, error) {
	switch v := def.(type) {
	case string:
		return loadText(v)
	case []byte:
		return loadText(string(v))
	case *definition.Node:
		if v == nil {
			break
		}
		return []*definition.Node{v}, nil
	case []*definition.Node:
		return v, nil
	case map[string]any, []any:
		return definition.Decode(v)
	}
	return nil, fmt.Errorf("%w: %T", domain.ErrUnsupportedDefinition, def)
}

// LoadFile reads a definition from disk. YAML is selected by extension, JSON
// and MDSL by content.
func LoadFile(path string) ([]*definition.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return definition.ParseYAML(data)
	}
	return loadText(string(data))
}

func loadText(text string) ([]*definition.Node, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return definition.ParseJSON([]byte(trimmed))
	}
	return NewParser().Parse(text)
}
