package definition

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON definition: a single root object or an array of roots.
func ParseJSON(data []byte) ([]*Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid("invalid JSON definition: %v", err)
	}
	return Decode(raw)
}

// ParseYAML decodes a YAML definition shaped like its JSON counterpart.
func ParseYAML(data []byte) ([]*Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, invalid("invalid YAML definition: %v", err)
	}
	return Decode(raw)
}

// Decode converts generic decoded data (maps, slices and scalars, as produced by
// encoding/json or yaml.v3) into typed root nodes. It checks the shape of every
// field and reports the depth of the offending node. Semantic rules such as
// child counts and ranges are left to the validator.
func Decode(raw any) ([]*Node, error) {
	var items []any
	switch v := raw.(type) {
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	default:
		return nil, invalid("expected definition to be a root node object or an array of root node objects")
	}
	if len(items) == 0 {
		return nil, invalid("expected definition to contain at least one root node")
	}

	roots := make([]*Node, 0, len(items))
	for _, item := range items {
		node, err := decodeNode(item, 0)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func decodeNode(raw any, depth int) (*Node, error) {
	fields, ok := raw.(map[string]any)
	nodeType, _ := fields["type"].(string)
	if !ok || nodeType == "" {
		return nil, invalid("node definition is not an object or 'type' property is not a non-empty string at depth '%d'", depth)
	}

	normalized := make(map[string]any, len(fields))
	for key, value := range fields {
		switch key {
		case "type", "id", "ref", "call":
			s, ok := value.(string)
			if !ok {
				return nil, invalid("expected string for '%s' property for %s node at depth '%d'", key, nodeType, depth)
			}
			normalized[key] = s

		case "child":
			child, err := decodeNode(value, depth+1)
			if err != nil {
				return nil, err
			}
			normalized[key] = child

		case "children":
			items, ok := value.([]any)
			if !ok {
				return nil, invalid("expected an array of at least a single child node for 'children' property for %s node at depth '%d'", nodeType, depth)
			}
			children := make([]*Node, 0, len(items))
			for _, item := range items {
				child, err := decodeNode(item, depth+1)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			normalized[key] = children

		case "args":
			args, err := decodeArgs(value)
			if err != nil {
				return nil, invalid("invalid 'args' property for %s node at depth '%d': %v", nodeType, depth, err)
			}
			normalized[key] = args

		case "duration", "iterations", "attempts":
			r, err := ParseRange(value)
			if err != nil {
				return nil, invalid("invalid '%s' property for %s node at depth '%d': %v", key, nodeType, depth, err)
			}
			normalized[key] = &r

		case "weights":
			items, ok := value.([]any)
			if !ok {
				return nil, invalid("expected an array of integers for 'weights' property for %s node at depth '%d'", nodeType, depth)
			}
			weights := make([]int, 0, len(items))
			for _, item := range items {
				w, ok := toInt(item)
				if !ok {
					return nil, invalid("expected an array of integers for 'weights' property for %s node at depth '%d'", nodeType, depth)
				}
				weights = append(weights, w)
			}
			normalized[key] = weights

		case AttributeWhile, AttributeUntil, AttributeEntry, AttributeStep, AttributeExit:
			attr, err := decodeAttribute(key, value, nodeType, depth)
			if err != nil {
				return nil, err
			}
			normalized[key] = attr
		}
	}

	var node Node
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: nodeTypeHook,
		Result:     &node,
		TagName:    "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return nil, invalid("invalid %s node definition at depth '%d': %v", nodeType, depth, err)
	}
	return &node, nil
}

func decodeAttribute(name string, raw any, nodeType string, depth int) (*Attribute, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("expected attribute '%s' to be an object for '%s' node at depth '%d'", name, nodeType, depth)
	}
	call, ok := fields["call"].(string)
	if !ok || call == "" {
		return nil, invalid("expected 'call' property for attribute '%s' to be a non-empty string for '%s' node at depth '%d'", name, nodeType, depth)
	}
	attr := &Attribute{Call: call}
	if value, ok := fields["args"]; ok {
		args, err := decodeArgs(value)
		if err != nil {
			return nil, invalid("expected 'args' property for attribute '%s' to be an array of valid arguments for '%s' node at depth '%d': %v", name, nodeType, depth, err)
		}
		attr.Args = args
	}
	if value, ok := fields["succeedOnAbort"]; ok {
		b, ok := value.(bool)
		if !ok {
			return nil, invalid("expected 'succeedOnAbort' property for attribute '%s' to be a boolean for '%s' node at depth '%d'", name, nodeType, depth)
		}
		attr.SucceedOnAbort = b
	}
	return attr, nil
}

func decodeArgs(raw any) ([]Argument, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array")
	}
	args := make([]Argument, 0, len(items))
	for i, item := range items {
		arg, err := ParseArgument(item)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

// nodeTypeHook lets definitions spell node types in any case ("Sequence", "SEQUENCE").
func nodeTypeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(domain.NodeType("")) {
		return data, nil
	}
	return domain.NodeType(strings.ToLower(data.(string))), nil
}

func invalid(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}
