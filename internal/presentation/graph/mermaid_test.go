package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleTree() domain.NodeDetails {
	return domain.NodeDetails{
		Type: domain.NodeTypeRoot, Name: "ROOT", State: domain.Running,
		Children: []domain.NodeDetails{{
			Type: domain.NodeTypeSequence, Name: "SEQUENCE", State: domain.Running,
			While: &domain.AttributeDetails{Type: "while", Call: "IsAlive"},
			Children: []domain.NodeDetails{
				{Type: domain.NodeTypeCondition, Name: "HasTarget", State: domain.Succeeded},
				{Type: domain.NodeTypeAction, Name: "Say", State: domain.Running, Args: []any{`"hi"`, 2}},
				{Type: domain.NodeTypeFlip, Name: "FLIP", State: domain.Ready, Children: []domain.NodeDetails{
					{Type: domain.NodeTypeWait, Name: "WAIT 100ms", State: domain.Ready},
				}},
			},
		}},
	}
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(sampleTree(), false)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	for _, want := range []string{
		`n0(("ROOT"))`,
		`n1{{"SEQUENCE<br/>while: IsAlive"}}`,
		`n2{"HasTarget"}`,
		`n3["Say 'hi', 2"]`,
		`n4[/"FLIP"/]`,
		`n5(["WAIT 100ms"])`,
		"n0 --> n1",
		"n1 --> n2",
		"n4 --> n5",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_States(t *testing.T) {
	out := graph.GenerateMermaid(sampleTree(), true)

	assert.Contains(t, out, "classDef running")
	assert.Contains(t, out, "class n0 running;")
	assert.Contains(t, out, "class n2 succeeded;")
	assert.Contains(t, out, "class n3 running;")
	assert.NotContains(t, out, "class n4 ")
}
