package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// Parser converts MDSL text into definition nodes.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse tokenizes text and converts it into root definitions, in source order.
// Errors are *domain.SyntaxError.
func (p *Parser) Parse(text string) ([]*definition.Node, error) {
	tokens, placeholders := Tokenize(text)
	s := &parseState{tokens: tokens, placeholders: placeholders}
	return s.parse()
}

// scope holds the open composite and decorator nodes of one root, innermost last.
type scope []*definition.Node

type parseState struct {
	tokens       []string
	placeholders Placeholders
	scopes       []scope
	roots        []*definition.Node
}

func (s *parseState) parse() ([]*definition.Node, error) {
	if len(s.tokens) < 3 {
		return nil, syntaxError("invalid token count")
	}
	if count(s.tokens, "{") != count(s.tokens, "}") {
		return nil, syntaxError("scope character mismatch")
	}

	for len(s.tokens) > 0 {
		token := s.shift()

		var node *definition.Node
		var err error

		switch strings.ToUpper(token) {
		case "ROOT":
			node, err = s.parseRoot()
		case "SEQUENCE":
			node, err = s.parseComposite(domain.NodeTypeSequence)
		case "SELECTOR":
			node, err = s.parseComposite(domain.NodeTypeSelector)
		case "PARALLEL":
			node, err = s.parseComposite(domain.NodeTypeParallel)
		case "RACE":
			node, err = s.parseComposite(domain.NodeTypeRace)
		case "ALL":
			node, err = s.parseComposite(domain.NodeTypeAll)
		case "LOTTO":
			node, err = s.parseLotto()
		case "REPEAT":
			node, err = s.parseCounted(domain.NodeTypeRepeat, "iteration count")
		case "RETRY":
			node, err = s.parseCounted(domain.NodeTypeRetry, "attempt count")
		case "FLIP":
			node, err = s.parseDecorator(domain.NodeTypeFlip)
		case "SUCCEED":
			node, err = s.parseDecorator(domain.NodeTypeSucceed)
		case "FAIL":
			node, err = s.parseDecorator(domain.NodeTypeFail)
		case "WAIT":
			node, err = s.parseWait()
		case "ACTION":
			node, err = s.parseCall(domain.NodeTypeAction)
		case "CONDITION":
			node, err = s.parseCall(domain.NodeTypeCondition)
		case "BRANCH":
			node, err = s.parseBranch()
		case "}":
			err = s.popNode()
		default:
			return nil, syntaxError("unexpected token: %s", token)
		}

		if err != nil {
			return nil, err
		}
		if node != nil {
			if err := s.pushNode(node); err != nil {
				return nil, err
			}
		}
	}

	if len(s.scopes) > 0 {
		return nil, syntaxError("unexpected end of definition")
	}
	return s.roots, nil
}

func (s *parseState) pushNode(node *definition.Node) error {
	if node.Type == domain.NodeTypeRoot {
		if len(s.scopes) > 0 {
			return syntaxError("a root node cannot be the child of another node")
		}
		s.roots = append(s.roots, node)
		s.scopes = append(s.scopes, scope{node})
		return nil
	}

	if len(s.scopes) == 0 {
		return syntaxError("expected root node at base of definition")
	}

	top := len(s.scopes) - 1
	parent := s.scopes[top][len(s.scopes[top])-1]

	if parent.Type.IsComposite() {
		parent.Children = append(parent.Children, node)
	} else {
		if parent.Child != nil {
			return syntaxError("a decorator node must only have a single child node")
		}
		parent.Child = node
	}

	if !node.Type.IsLeaf() {
		s.scopes[top] = append(s.scopes[top], node)
	}
	return nil
}

func (s *parseState) popNode() error {
	if len(s.scopes) == 0 {
		return syntaxError("unexpected token: }")
	}

	top := len(s.scopes) - 1
	open := s.scopes[top]
	node := open[len(open)-1]
	if len(open) == 1 {
		s.scopes = s.scopes[:top]
	} else {
		s.scopes[top] = open[:len(open)-1]
	}

	switch {
	case node.Type.IsDecorator() && node.Child == nil:
		return syntaxError("a %s node must have a single child node defined", node.Type)
	case node.Type.IsComposite() && len(node.Children) == 0:
		return syntaxError("a %s node must have at least a single child node defined", node.Type)
	case node.Type == domain.NodeTypeLotto && node.Weights != nil && len(node.Weights) != len(node.Children):
		return syntaxError("expected a number of weight arguments matching the number of child nodes for lotto node")
	}
	return nil
}

func (s *parseState) parseRoot() (*definition.Node, error) {
	node := &definition.Node{Type: domain.NodeTypeRoot}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if len(args) != 1 || args[0].Kind != definition.ArgumentIdentifier {
			return nil, syntaxError("expected single root name argument")
		}
		node.ID = args[0].Text()
	}

	return s.openScope(node)
}

func (s *parseState) parseComposite(nodeType domain.NodeType) (*definition.Node, error) {
	return s.openScope(&definition.Node{Type: nodeType})
}

func (s *parseState) parseDecorator(nodeType domain.NodeType) (*definition.Node, error) {
	return s.openScope(&definition.Node{Type: nodeType})
}

func (s *parseState) parseLotto() (*definition.Node, error) {
	node := &definition.Node{Type: domain.NodeTypeLotto}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		node.Weights = make([]int, 0, len(args))
		for _, arg := range args {
			if arg.Kind != definition.ArgumentNumber || !arg.Integer || arg.Float() < 0 {
				return nil, syntaxError("lotto node weight arguments must be positive integer values")
			}
			node.Weights = append(node.Weights, int(arg.Float()))
		}
	}

	return s.openScope(node)
}

func (s *parseState) parseCounted(nodeType domain.NodeType, quantity string) (*definition.Node, error) {
	node := &definition.Node{Type: nodeType}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	r, err := rangeFromArguments(args, nodeType, quantity)
	if err != nil {
		return nil, err
	}
	if nodeType == domain.NodeTypeRepeat {
		node.Iterations = r
	} else {
		node.Attempts = r
	}

	return s.openScope(node)
}

func (s *parseState) parseWait() (*definition.Node, error) {
	node := &definition.Node{Type: domain.NodeTypeWait}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	if node.Duration, err = rangeFromArguments(args, domain.NodeTypeWait, "duration"); err != nil {
		return nil, err
	}

	if err := s.parseAttributes(node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *parseState) parseCall(nodeType domain.NodeType) (*definition.Node, error) {
	node := &definition.Node{Type: nodeType}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 || args[0].Kind != definition.ArgumentIdentifier {
		return nil, syntaxError("expected %s name identifier argument", nodeType)
	}
	for _, arg := range args[1:] {
		if arg.Kind == definition.ArgumentIdentifier {
			return nil, syntaxError("invalid %s node argument value '%s', must be string, number, boolean, agent property reference or null", nodeType, arg.Text())
		}
	}
	node.Call = args[0].Text()
	if len(args) > 1 {
		node.Args = args[1:]
	}

	if err := s.parseAttributes(node); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *parseState) parseBranch() (*definition.Node, error) {
	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	if len(args) != 1 || args[0].Kind != definition.ArgumentIdentifier {
		return nil, syntaxError("expected single branch name argument")
	}
	return &definition.Node{Type: domain.NodeTypeBranch, Ref: args[0].Text()}, nil
}

// openScope parses the attributes of a composite or decorator node and the
// opening brace of its body.
func (s *parseState) openScope(node *definition.Node) (*definition.Node, error) {
	if err := s.parseAttributes(node); err != nil {
		return nil, err
	}
	if err := s.expect("{"); err != nil {
		return nil, err
	}
	return node, nil
}

func (s *parseState) parseAttributes(node *definition.Node) error {
	for len(s.tokens) > 0 {
		name := strings.ToLower(s.tokens[0])
		if !isAttributeName(name) {
			return nil
		}
		if node.Attribute(name) != nil {
			return syntaxError("duplicate attribute '%s' found for node", name)
		}
		s.shift()

		args, err := s.parseArguments()
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0].Kind != definition.ArgumentIdentifier {
			return syntaxError("expected agent function or registered function name identifier argument for attribute")
		}
		for _, arg := range args[1:] {
			if arg.Kind == definition.ArgumentIdentifier {
				return syntaxError("attribute argument must be a string, number, boolean, agent property reference or null")
			}
		}

		attr := &definition.Attribute{Call: args[0].Text()}
		if len(args) > 1 {
			attr.Args = args[1:]
		}

		if definition.IsGuard(name) && len(s.tokens) > 0 && strings.EqualFold(s.tokens[0], "THEN") {
			s.shift()
			if len(s.tokens) == 0 {
				return syntaxError("expected 'succeed' or 'fail' after attribute 'then' keyword")
			}
			switch strings.ToUpper(s.shift()) {
			case "SUCCEED":
				attr.SucceedOnAbort = true
			case "FAIL":
				attr.SucceedOnAbort = false
			default:
				return syntaxError("expected 'succeed' or 'fail' after attribute 'then' keyword")
			}
		}

		node.SetAttribute(name, attr)
	}
	return nil
}

func (s *parseState) shift() string {
	token := s.tokens[0]
	s.tokens = s.tokens[1:]
	return token
}

func (s *parseState) expect(want string) error {
	if len(s.tokens) == 0 {
		return syntaxError("unexpected end of definition")
	}
	if got := s.shift(); !strings.EqualFold(got, want) {
		return syntaxError("unexpected token found. Expected '%s' but got '%s'", want, got)
	}
	return nil
}

func isAttributeName(name string) bool {
	for _, attr := range definition.AttributeNames {
		if attr == name {
			return true
		}
	}
	return false
}

func count(tokens []string, want string) int {
	n := 0
	for _, token := range tokens {
		if token == want {
			n++
		}
	}
	return n
}

func syntaxError(format string, args ...any) error {
	return &domain.SyntaxError{Message: fmt.Sprintf(format, args...)}
}
