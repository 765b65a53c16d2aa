package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AllNodeTypes(t *testing.T) {
	mdsl := `
root {
    selector while [IsAlive] then succeed {
        sequence entry [Log, "enter"] exit [Log, "exit"] {
            condition [HasTarget, $target]
            action [Attack, 10, 2.5, "sword", true, null]
            wait [100, 200]
        }
        parallel { action [A] action [B] }
        race { action [C] }
        all { action [D] }
        lotto [3, 1] { action [E] action [F] }
        repeat [2, 4] { flip { action [G] } }
        retry [3] until [IsTired] { succeed { action [H] } }
        fail step [Tick] { wait }
        branch [Patrol]
    }
}

root [Patrol] {
    action [Walk]
}`

	roots, err := compiler.NewParser().Parse(mdsl)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	main := roots[0]
	assert.Equal(t, domain.NodeTypeRoot, main.Type)
	assert.Empty(t, main.ID)

	selector := main.Child
	require.NotNil(t, selector)
	assert.Equal(t, domain.NodeTypeSelector, selector.Type)
	assert.Equal(t, &definition.Attribute{Call: "IsAlive", SucceedOnAbort: true}, selector.While)
	require.Len(t, selector.Children, 9)

	sequence := selector.Children[0]
	assert.Equal(t, &definition.Attribute{Call: "Log", Args: []definition.Argument{definition.String("enter")}}, sequence.Entry)
	assert.Equal(t, &definition.Attribute{Call: "Log", Args: []definition.Argument{definition.String("exit")}}, sequence.Exit)
	require.Len(t, sequence.Children, 3)

	condition := sequence.Children[0]
	assert.Equal(t, domain.NodeTypeCondition, condition.Type)
	assert.Equal(t, "HasTarget", condition.Call)
	assert.Equal(t, []definition.Argument{definition.Property("target")}, condition.Args)

	action := sequence.Children[1]
	assert.Equal(t, "Attack", action.Call)
	assert.Equal(t, []definition.Argument{
		definition.Number(10),
		definition.Number(2.5),
		definition.String("sword"),
		definition.Bool(true),
		definition.Null(),
	}, action.Args)

	assert.Equal(t, definition.Between(100, 200), sequence.Children[2].Duration)

	assert.Len(t, selector.Children[1].Children, 2)
	assert.Equal(t, domain.NodeTypeRace, selector.Children[2].Type)
	assert.Equal(t, domain.NodeTypeAll, selector.Children[3].Type)
	assert.Equal(t, []int{3, 1}, selector.Children[4].Weights)

	repeat := selector.Children[5]
	assert.Equal(t, definition.Between(2, 4), repeat.Iterations)
	assert.Equal(t, domain.NodeTypeFlip, repeat.Child.Type)

	retry := selector.Children[6]
	assert.Equal(t, definition.Fixed(3), retry.Attempts)
	assert.Equal(t, &definition.Attribute{Call: "IsTired"}, retry.Until)
	assert.Equal(t, domain.NodeTypeSucceed, retry.Child.Type)

	fail := selector.Children[7]
	assert.Equal(t, &definition.Attribute{Call: "Tick"}, fail.Step)
	assert.Nil(t, fail.Child.Duration, "a wait without arguments waits forever")

	assert.Equal(t, &definition.Node{Type: domain.NodeTypeBranch, Ref: "Patrol"}, selector.Children[8])

	assert.Equal(t, "Patrol", roots[1].ID)
}

func TestParse_KeywordsAreCaseInsensitive(t *testing.T) {
	roots, err := compiler.NewParser().Parse(`ROOT { SEQUENCE { Action [a] CONDITION (b) } }`)
	require.NoError(t, err)
	seq := roots[0].Child
	assert.Equal(t, domain.NodeTypeSequence, seq.Type)
	assert.Equal(t, "a", seq.Children[0].Call)
	assert.Equal(t, "b", seq.Children[1].Call)
}

func TestParse_MatchesJSON(t *testing.T) {
	mdsl := `root {
		sequence while [IsEnabled, $level] then fail {
			action [Move, 1, "north"]
			wait [500]
			repeat [3] { condition [Check] }
		}
	}`
	json := `{
		"type": "root",
		"child": {
			"type": "sequence",
			"while": {"call": "IsEnabled", "args": [{"$": "level"}]},
			"children": [
				{"type": "action", "call": "Move", "args": [1, "north"]},
				{"type": "wait", "duration": 500},
				{"type": "repeat", "iterations": 3, "child": {"type": "condition", "call": "Check"}}
			]
		}
	}`

	fromMDSL, err := compiler.Load(mdsl)
	require.NoError(t, err)
	fromJSON, err := compiler.Load(json)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromMDSL)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		mdsl string
		want string
	}{
		{"too few tokens", `root {`, "invalid token count"},
		{"unbalanced braces", `root { action [a] } }`, "scope character mismatch"},
		{"unknown keyword", `root { jump [a] }`, "unexpected token: jump"},
		{"node outside root", `sequence { action [a] }`, "expected root node at base of definition"},
		{"nested root", `root { root { action [a] } }`, "a root node cannot be the child of another node"},
		{"decorator with two children", `root { action [a] action [b] }`, "a decorator node must only have a single child node"},
		{"empty composite", `root { sequence { } }`, "a sequence node must have at least a single child node defined"},
		{"empty decorator", `root { flip { } }`, "a flip node must have a single child node defined"},
		{"missing brace", `root { sequence action [a] }`, "unexpected token found. Expected '{' but got 'action'"},
		{"missing action name", `root { action [] }`, "expected action name identifier argument"},
		{"string as action name", `root { action ["a"] }`, "expected action name identifier argument"},
		{"identifier argument", `root { action [a, b] }`, "invalid action node argument value 'b'"},
		{"bad separator", `root { action [a 1] }`, "invalid argument list, expected ',' or ']' but got '1'"},
		{"trailing comma", `root { action [Ok,] }`, "invalid argument list, expected an argument but got ']'"},
		{"trailing comma in parentheses", `root { condition (Ok, 1,) }`, "invalid argument list, expected an argument but got ')'"},
		{"duplicate attribute", `root { action [a] while [b] while [c] }`, "duplicate attribute 'while' found for node"},
		{"attribute without function", `root { action [a] entry [1] }`, "expected agent function or registered function name identifier argument for attribute"},
		{"attribute identifier argument", `root { action [a] entry [b, c] }`, "attribute argument must be a string, number, boolean, agent property reference or null"},
		{"bad then", `root { action [a] while [b] then maybe }`, "expected 'succeed' or 'fail' after attribute 'then' keyword"},
		{"root with two names", `root [a, b] { action [a] }`, "expected single root name argument"},
		{"branch without name", `root { branch }`, "expected single branch name argument"},
		{"fractional weight", `root { lotto [1.5] { action [a] } }`, "lotto node weight arguments must be positive integer values"},
		{"weight count mismatch", `root { lotto [1, 2] { action [a] } }`, "expected a number of weight arguments matching the number of child nodes for lotto node"},
		{"fractional repeat", `root { repeat [1.5] { action [a] } }`, "repeat node iteration count arguments must be integer values"},
		{"negative retry", `root { retry [-1] { action [a] } }`, "a retry node must have a non-negative attempt count if defined"},
		{"inverted wait", `root { wait [10, 5] }`, "a wait node must not have a minimum duration that exceeds the maximum duration"},
		{"too many wait args", `root { wait [1, 2, 3] }`, "invalid number of wait node duration arguments defined"},
		{"unterminated arguments", `root { action [a, 1 }`, "unexpected end of definition"},
		{"stray closing brace", `} root { action [a]`, "unexpected token: }"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compiler.NewParser().Parse(tc.mdsl)
			require.Error(t, err)
			var syntaxErr *domain.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Contains(t, syntaxErr.Message, tc.want)
		})
	}
}

func TestLoad_UnsupportedType(t *testing.T) {
	_, err := compiler.Load(42)
	assert.ErrorIs(t, err, domain.ErrUnsupportedDefinition)

	var nilNode *definition.Node
	_, err = compiler.Load(nilNode)
	assert.ErrorIs(t, err, domain.ErrUnsupportedDefinition)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := writeFile(t, dir, "tree.yaml", "type: root\nchild: {type: action, call: Idle}\n")
	roots, err := compiler.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Idle", roots[0].Child.Call)

	mdslPath := writeFile(t, dir, "tree.mdsl", "root { action [Idle] }")
	roots, err = compiler.LoadFile(mdslPath)
	require.NoError(t, err)
	assert.Equal(t, "Idle", roots[0].Child.Call)

	_, err = compiler.LoadFile(dir + "/missing.mdsl")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
