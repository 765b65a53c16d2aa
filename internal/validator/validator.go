package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

// ValidateRoots checks every root definition and the definition as a whole:
// exactly one unnamed main root, unique root ids and acyclic branch references.
// Branch refs that do not resolve within roots are tolerated because subtrees
// may be registered later; use ValidateBranchLinks in strict mode at build time.
func ValidateRoots(roots []*definition.Node) error {
	if len(roots) == 0 {
		return invalid("expected definition to contain at least one root node")
	}

	mainRoots := 0
	ids := make(map[string]bool, len(roots))
	for _, root := range roots {
		if root == nil || root.Type != domain.NodeTypeRoot {
			return invalid("expected root node at base of definition")
		}
		if err := ValidateNode(root, 0); err != nil {
			return err
		}

		if root.ID == "" {
			mainRoots++
			continue
		}
		if ids[root.ID] {
			return invalid("multiple root nodes found with duplicate name '%s'", root.ID)
		}
		ids[root.ID] = true
	}

	if mainRoots != 1 {
		return invalid("expected single unnamed root node at base of definition to act as main root")
	}

	return ValidateBranchLinks(roots, false)
}

// ValidateNode checks a node definition and its subtree. depth is the depth of
// node within its root and is reported in error messages.
func ValidateNode(node *definition.Node, depth int) error {
	if node == nil || node.Type == "" {
		return invalid("node definition is not an object or 'type' property is not a non-empty string at depth '%d'", depth)
	}
	if !node.Type.IsKnown() {
		return invalid("unexpected node type of '%s' at depth '%d'", node.Type, depth)
	}
	if err := validateAttributes(node, depth); err != nil {
		return err
	}

	switch {
	case node.Type == domain.NodeTypeBranch:
		return validateBranch(node, depth)
	case node.Type.IsDecorator():
		return validateDecorator(node, depth)
	case node.Type.IsComposite():
		return validateComposite(node, depth)
	case node.Type == domain.NodeTypeWait:
		return validateRange(node.Duration, "duration", node.Type, depth)
	default:
		return validateCall(node, depth)
	}
}

func validateAttributes(node *definition.Node, depth int) error {
	for _, name := range definition.AttributeNames {
		attr := node.Attribute(name)
		if attr == nil {
			continue
		}
		if node.Type == domain.NodeTypeBranch {
			return invalid("attributes should not be defined for branch nodes but attribute '%s' was defined for branch node at depth '%d'", name, depth)
		}
		if attr.Call == "" {
			return invalid("expected 'call' property for attribute '%s' to be a non-empty string for '%s' node at depth '%d'", name, node.Type, depth)
		}
		if attr.SucceedOnAbort && !definition.IsGuard(name) {
			return invalid("'succeedOnAbort' is only valid for guard attributes but was set for attribute '%s' for '%s' node at depth '%d'", name, node.Type, depth)
		}
		for _, arg := range attr.Args {
			if arg.Kind == definition.ArgumentIdentifier {
				return invalid("invalid argument value '%s' for attribute '%s' for '%s' node at depth '%d'", arg.Text(), name, node.Type, depth)
			}
		}
	}
	return nil
}

func validateBranch(node *definition.Node, depth int) error {
	if node.Ref == "" {
		return invalid("expected non-empty string for 'ref' property for branch node at depth '%d'", depth)
	}
	return nil
}

func validateDecorator(node *definition.Node, depth int) error {
	if node.Type == domain.NodeTypeRoot && depth > 0 {
		return invalid("a root node cannot be the child of another node at depth '%d'", depth)
	}
	if node.Child == nil {
		return invalid("expected property 'child' to be defined for %s node at depth '%d'", node.Type, depth)
	}

	switch node.Type {
	case domain.NodeTypeRepeat:
		if err := validateRange(node.Iterations, "iterations", node.Type, depth); err != nil {
			return err
		}
	case domain.NodeTypeRetry:
		if err := validateRange(node.Attempts, "attempts", node.Type, depth); err != nil {
			return err
		}
	}

	return ValidateNode(node.Child, depth+1)
}

func validateComposite(node *definition.Node, depth int) error {
	if len(node.Children) == 0 {
		return invalid("expected an array of at least a single child node for 'children' property for %s node at depth '%d'", node.Type, depth)
	}

	if node.Type == domain.NodeTypeLotto && node.Weights != nil {
		if len(node.Weights) != len(node.Children) {
			return invalid("expected an array of non-negative integers matching the number of children for 'weights' property if defined for lotto node at depth '%d'", depth)
		}
		total := 0
		for _, weight := range node.Weights {
			if weight < 0 {
				return invalid("expected an array of non-negative integers matching the number of children for 'weights' property if defined for lotto node at depth '%d'", depth)
			}
			total += weight
		}
		if total == 0 {
			return invalid("expected at least one positive value for 'weights' property for lotto node at depth '%d'", depth)
		}
	}

	for _, child := range node.Children {
		if err := ValidateNode(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func validateCall(node *definition.Node, depth int) error {
	if node.Call == "" {
		return invalid("expected non-empty string for 'call' property of %s node at depth '%d'", node.Type, depth)
	}
	for _, arg := range node.Args {
		if arg.Kind == definition.ArgumentIdentifier {
			return invalid("invalid %s node argument value '%s' at depth '%d', must be string, number, boolean, agent property reference or null", node.Type, arg.Text(), depth)
		}
	}
	return nil
}

func validateRange(r *definition.Range, property string, nodeType domain.NodeType, depth int) error {
	if r == nil {
		return nil
	}
	if r.Min < 0 || r.Max < 0 {
		return invalid("expected non-negative values for '%s' property defined for %s node at depth '%d'", property, nodeType, depth)
	}
	if r.Min > r.Max {
		return invalid("expected minimum value to not exceed maximum value for '%s' property defined for %s node at depth '%d'", property, nodeType, depth)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}

func joinPath(path []string) string {
	named := make([]string, 0, len(path))
	for _, id := range path {
		if id != "" {
			named = append(named, id)
		}
	}
	return strings.Join(named, " => ")
}
