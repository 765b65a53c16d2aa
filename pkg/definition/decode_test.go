package definition_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDefinition = `[
  {
    "type": "root",
    "child": {
      "type": "Sequence",
      "while": {"call": "IsAlive", "succeedOnAbort": true},
      "children": [
        {"type": "action", "call": "Attack", "args": [10, 2.5, "sword", true, null, {"$": "target"}]},
        {"type": "wait", "duration": [500, 1000]},
        {"type": "repeat", "iterations": 3, "child": {"type": "condition", "call": "IsReady"}},
        {"type": "lotto", "weights": [9, 1], "children": [
          {"type": "branch", "ref": "flee"},
          {"type": "action", "call": "Taunt", "exit": {"call": "Log", "args": ["done"]}}
        ]}
      ]
    }
  },
  {"type": "root", "id": "flee", "child": {"type": "action", "call": "Run"}}
]`

const yamlDefinition = `
- type: root
  child:
    type: sequence
    while: {call: IsAlive, succeedOnAbort: true}
    children:
      - {type: action, call: Attack, args: [10, 2.5, sword, true, null, {$: target}]}
      - {type: wait, duration: [500, 1000]}
      - type: repeat
        iterations: 3
        child: {type: condition, call: IsReady}
      - type: lotto
        weights: [9, 1]
        children:
          - {type: branch, ref: flee}
          - type: action
            call: Taunt
            exit: {call: Log, args: [done]}
- type: root
  id: flee
  child: {type: action, call: Run}
`

func TestParseJSON(t *testing.T) {
	roots, err := definition.ParseJSON([]byte(jsonDefinition))
	require.NoError(t, err)
	require.Len(t, roots, 2)

	main := roots[0]
	assert.Equal(t, domain.NodeTypeRoot, main.Type)
	assert.Empty(t, main.ID)

	seq := main.Child
	require.NotNil(t, seq)
	assert.Equal(t, domain.NodeTypeSequence, seq.Type, "node types are case-insensitive")
	require.NotNil(t, seq.While)
	assert.Equal(t, "IsAlive", seq.While.Call)
	assert.True(t, seq.While.SucceedOnAbort)
	require.Len(t, seq.Children, 4)

	attack := seq.Children[0]
	assert.Equal(t, "Attack", attack.Call)
	assert.Equal(t, []definition.Argument{
		definition.Number(10),
		definition.Number(2.5),
		definition.String("sword"),
		definition.Bool(true),
		definition.Null(),
		definition.Property("target"),
	}, attack.Args)
	assert.True(t, attack.Args[0].Integer)
	assert.False(t, attack.Args[1].Integer)

	assert.Equal(t, definition.Between(500, 1000), seq.Children[1].Duration)
	assert.Equal(t, definition.Fixed(3), seq.Children[2].Iterations)
	assert.Equal(t, []int{9, 1}, seq.Children[3].Weights)
	assert.Equal(t, []string{"flee"}, main.BranchRefs())

	assert.Equal(t, "flee", roots[1].ID)
}

func TestParseYAML_MatchesJSON(t *testing.T) {
	fromJSON, err := definition.ParseJSON([]byte(jsonDefinition))
	require.NoError(t, err)
	fromYAML, err := definition.ParseYAML([]byte(yamlDefinition))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
}

func TestMarshalJSON_PropertyReferenceAndRanges(t *testing.T) {
	node := &definition.Node{
		Type: domain.NodeTypeWait,
		Args: []definition.Argument{definition.Property("speed"), definition.Null()},

		Duration: definition.Between(1, 2),
	}
	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"wait","args":[{"$":"speed"},null],"duration":[1,2]}`, string(data))

	node.Duration = definition.Fixed(5)
	data, err = json.Marshal(node)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration":5`)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{
			name: "not a definition",
			json: `42`,
			want: "expected definition to be a root node object or an array of root node objects",
		},
		{
			name: "empty array",
			json: `[]`,
			want: "expected definition to contain at least one root node",
		},
		{
			name: "missing type",
			json: `{"type": "root", "child": {"call": "x"}}`,
			want: "node definition is not an object or 'type' property is not a non-empty string at depth '1'",
		},
		{
			name: "children not array",
			json: `{"type": "root", "child": {"type": "sequence", "children": {}}}`,
			want: "expected an array of at least a single child node for 'children' property for sequence node at depth '1'",
		},
		{
			name: "attribute not object",
			json: `{"type": "root", "while": "IsAlive", "child": {"type": "action", "call": "a"}}`,
			want: "expected attribute 'while' to be an object for 'root' node at depth '0'",
		},
		{
			name: "attribute without call",
			json: `{"type": "root", "child": {"type": "action", "call": "a", "entry": {"args": []}}}`,
			want: "expected 'call' property for attribute 'entry' to be a non-empty string for 'action' node at depth '1'",
		},
		{
			name: "bad range",
			json: `{"type": "root", "child": {"type": "wait", "duration": [1, 2, 3]}}`,
			want: "invalid 'duration' property for wait node at depth '1'",
		},
		{
			name: "bad weights",
			json: `{"type": "root", "child": {"type": "lotto", "weights": [1.5], "children": []}}`,
			want: "expected an array of integers for 'weights' property for lotto node at depth '1'",
		},
		{
			name: "bad property reference",
			json: `{"type": "root", "child": {"type": "action", "call": "a", "args": [{"name": "x"}]}}`,
			want: "invalid 'args' property for action node at depth '1'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := definition.ParseJSON([]byte(tc.json))
			require.Error(t, err)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Message, tc.want)
		})
	}
}

func TestRange_Pick(t *testing.T) {
	r := definition.Range{Min: 2, Max: 4}
	assert.Equal(t, 2, r.Pick(func() float64 { return 0 }))
	assert.Equal(t, 3, r.Pick(func() float64 { return 0.5 }))
	assert.Equal(t, 4, r.Pick(func() float64 { return 0.999 }))
	assert.Equal(t, 4, r.Pick(func() float64 { return 1 }))
	assert.Equal(t, 7, definition.Fixed(7).Pick(nil))
}
