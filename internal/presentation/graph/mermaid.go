package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a tree snapshot.
// Node shapes follow the node category:
// - Root: ((Circle))
// - Composite: {{Hexagon}}
// - Decorator: [/Parallelogram/]
// - Condition: {Rhombus}
// - Wait: ([Stadium])
// - Action: [Rectangle]
// When withState is set, nodes that left READY are styled by their state.
func GenerateMermaid(root domain.NodeDetails, withState bool) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var classes []string
	next := 0
	var visit func(node domain.NodeDetails) string
	visit = func(node domain.NodeDetails) string {
		id := fmt.Sprintf("n%d", next)
		next++

		opener, closer := shape(node.Type)
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label(node), closer))

		if withState && node.State != domain.Ready {
			classes = append(classes, fmt.Sprintf("    class %s %s;\n", id, strings.ToLower(node.State.String())))
		}

		for _, child := range node.Children {
			childID := visit(child)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, childID))
		}
		return id
	}
	visit(root)

	if withState {
		sb.WriteString("\n    %% State Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef succeeded fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		for _, class := range classes {
			sb.WriteString(class)
		}
	}

	return sb.String()
}

func shape(t domain.NodeType) (string, string) {
	switch {
	case t == domain.NodeTypeRoot:
		return "((", "))"
	case t.IsComposite():
		return "{{", "}}"
	case t.IsDecorator():
		return "[/", "/]"
	case t == domain.NodeTypeCondition:
		return "{", "}"
	case t == domain.NodeTypeWait:
		return "([", "])"
	default:
		return "[", "]"
	}
}

func label(node domain.NodeDetails) string {
	parts := []string{node.Name}
	if len(node.Args) > 0 {
		args := make([]string, len(node.Args))
		for i, arg := range node.Args {
			args[i] = fmt.Sprint(arg)
		}
		parts[0] += " " + strings.Join(args, ", ")
	}

	attrs := []*domain.AttributeDetails{node.While, node.Until, node.Entry, node.Step, node.Exit}
	for _, attr := range attrs {
		if attr != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", attr.Type, attr.Call))
		}
	}

	// Double quotes would end the Mermaid label.
	return strings.ReplaceAll(strings.Join(parts, "<br/>"), "\"", "'")
}
