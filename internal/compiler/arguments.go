package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

var (
	numberPattern     = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
	leadingIntPattern = regexp.MustCompile(`^[-+]?\d+`)
)

// parseArguments consumes an optional "[...]" or "(...)" argument list.
// It returns nil when the next token does not open a list.
func (s *parseState) parseArguments() ([]definition.Argument, error) {
	if len(s.tokens) == 0 || (s.tokens[0] != "[" && s.tokens[0] != "(") {
		return nil, nil
	}

	closer := "]"
	if s.shift() == "(" {
		closer = ")"
	}

	var raw []string
	for len(s.tokens) > 0 && s.tokens[0] != closer {
		raw = append(raw, s.shift())
	}
	if err := s.expect(closer); err != nil {
		return nil, err
	}

	if len(raw) > 0 && raw[len(raw)-1] == "," {
		return nil, syntaxError("invalid argument list, expected an argument but got '%s'", closer)
	}

	args := make([]definition.Argument, 0, (len(raw)+1)/2)
	for i, token := range raw {
		if i%2 == 1 {
			if token != "," {
				return nil, syntaxError("invalid argument list, expected ',' or '%s' but got '%s'", closer, token)
			}
			continue
		}
		if token == "," {
			return nil, syntaxError("invalid argument list, expected an argument but got ','")
		}
		args = append(args, s.parseArgument(token))
	}
	return args, nil
}

func (s *parseState) parseArgument(token string) definition.Argument {
	switch {
	case token == "null":
		return definition.Null()
	case token == "true":
		return definition.Bool(true)
	case token == "false":
		return definition.Bool(false)
	case numberPattern.MatchString(token):
		value, _ := strconv.ParseFloat(token, 64)
		return definition.Argument{Kind: definition.ArgumentNumber, Value: value, Integer: isInteger(token, value)}
	case isPlaceholder(token):
		if literal, ok := s.placeholders[token]; ok {
			return definition.String(literal)
		}
	case strings.HasPrefix(token, "$") && len(token) > 1:
		return definition.Property(token[1:])
	}
	return definition.Identifier(token)
}

// isInteger reports whether the leading integer part of token equals its full
// numeric value, so "3" and "3.0" are integers while "3.5" and "1e3" are not.
func isInteger(token string, value float64) bool {
	prefix := leadingIntPattern.FindString(token)
	if prefix == "" {
		return false
	}
	n, err := strconv.ParseFloat(prefix, 64)
	return err == nil && n == value
}

// rangeFromArguments turns zero, one or two integer arguments into a range.
// Zero arguments yield a nil range.
func rangeFromArguments(args []definition.Argument, nodeType domain.NodeType, quantity string) (*definition.Range, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) > 2 {
		return nil, syntaxError("invalid number of %s node %s arguments defined", nodeType, quantity)
	}

	values := make([]int, 0, len(args))
	for _, arg := range args {
		if arg.Kind != definition.ArgumentNumber || !arg.Integer {
			return nil, syntaxError("%s node %s arguments must be integer values", nodeType, quantity)
		}
		if arg.Float() < 0 {
			return nil, syntaxError("a %s node must have a non-negative %s if defined", nodeType, quantity)
		}
		values = append(values, int(arg.Float()))
	}

	if len(values) == 1 {
		return definition.Fixed(values[0]), nil
	}
	if values[0] > values[1] {
		return nil, syntaxError("a %s node must not have a minimum %s that exceeds the maximum %s", nodeType, quantity, quantity)
	}
	return definition.Between(values[0], values[1]), nil
}
