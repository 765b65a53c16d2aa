package definition

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ArgumentKind tags the value held by an Argument.
type ArgumentKind string

const (
	ArgumentNull       ArgumentKind = "null"
	ArgumentBoolean    ArgumentKind = "boolean"
	ArgumentNumber     ArgumentKind = "number"
	ArgumentString     ArgumentKind = "string"
	ArgumentIdentifier ArgumentKind = "identifier"
	// ArgumentProperty is resolved against the agent at call time.
	ArgumentProperty ArgumentKind = "property_reference"
)

// PropertyKey is the single key of the JSON object form of a property reference: {"$": "name"}.
const PropertyKey = "$"

// Argument is a typed literal passed to an agent function.
// Value is nil, a bool, a float64, or a string (strings, identifiers and property names).
type Argument struct {
	Kind    ArgumentKind
	Value   any
	Integer bool
}

// Null returns a null argument.
func Null() Argument { return Argument{Kind: ArgumentNull} }

// Bool returns a boolean argument.
func Bool(v bool) Argument { return Argument{Kind: ArgumentBoolean, Value: v} }

// Number returns a numeric argument.
func Number(v float64) Argument {
	return Argument{Kind: ArgumentNumber, Value: v, Integer: v == float64(int64(v))}
}

// String returns a string literal argument.
func String(v string) Argument { return Argument{Kind: ArgumentString, Value: v} }

// Identifier returns a bare identifier argument.
func Identifier(v string) Argument { return Argument{Kind: ArgumentIdentifier, Value: v} }

// Property returns a property reference argument.
func Property(name string) Argument { return Argument{Kind: ArgumentProperty, Value: name} }

// Text returns the string payload of string, identifier and property arguments.
func (a Argument) Text() string {
	s, _ := a.Value.(string)
	return s
}

// Float returns the numeric payload of number arguments.
func (a Argument) Float() float64 {
	f, _ := a.Value.(float64)
	return f
}

// Literal returns the argument as a plain Go value. Property references are
// rendered as "$name" and integers as int.
func (a Argument) Literal() any {
	switch a.Kind {
	case ArgumentNumber:
		if a.Integer {
			return int(a.Float())
		}
		return a.Float()
	case ArgumentProperty:
		return PropertyKey + a.Text()
	case ArgumentNull:
		return nil
	default:
		return a.Value
	}
}

func (a Argument) String() string {
	switch a.Kind {
	case ArgumentNull:
		return "null"
	case ArgumentString:
		return strconv.Quote(a.Text())
	case ArgumentNumber:
		return strconv.FormatFloat(a.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(a.Literal())
	}
}

// MarshalJSON writes the argument in the JSON definition form.
func (a Argument) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ArgumentProperty:
		return json.Marshal(map[string]string{PropertyKey: a.Text()})
	case ArgumentNull, "":
		return []byte("null"), nil
	default:
		return json.Marshal(a.Literal())
	}
}

// MarshalYAML writes the argument in the YAML definition form.
func (a Argument) MarshalYAML() (any, error) {
	if a.Kind == ArgumentProperty {
		return map[string]string{PropertyKey: a.Text()}, nil
	}
	return a.Literal(), nil
}

// ParseArgument converts a decoded JSON or YAML value into an Argument.
func ParseArgument(raw any) (Argument, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case map[string]any:
		name, ok := v[PropertyKey].(string)
		if len(v) != 1 || !ok || name == "" {
			return Argument{}, fmt.Errorf("expected property reference object of the form {\"$\": \"name\"}")
		}
		return Property(name), nil
	}
	if f, ok := toFloat(raw); ok {
		return Number(f), nil
	}
	return Argument{}, fmt.Errorf("unsupported argument value of type %T", raw)
}
