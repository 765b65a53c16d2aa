package validator

import (
	"testing"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, mdsl string) []*definition.Node {
	t.Helper()
	roots, err := compiler.NewParser().Parse(mdsl)
	require.NoError(t, err)
	return roots
}

func requireValidationError(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, want, validationErr.Message)
}

func TestValidateRoots_Valid(t *testing.T) {
	roots := mustParse(t, `
		root { sequence { branch [A] action [Walk] } }
		root [A] { branch [B] }
		root [B] { condition [Ready] }`)
	assert.NoError(t, ValidateRoots(roots))
}

func TestValidateRoots_ToleratesUnknownBranch(t *testing.T) {
	roots := mustParse(t, `root { branch [Elsewhere] }`)
	assert.NoError(t, ValidateRoots(roots))
	requireValidationError(t, ValidateBranchLinks(roots, true),
		"primary tree has branch node that refers to root node 'Elsewhere' which has not been defined")
}

func TestValidateRoots_GlobalErrors(t *testing.T) {
	cases := []struct {
		name string
		mdsl string
		want string
	}{
		{
			name: "no main root",
			mdsl: `root [A] { action [a] }`,
			want: "expected single unnamed root node at base of definition to act as main root",
		},
		{
			name: "two main roots",
			mdsl: `root { action [a] } root { action [b] }`,
			want: "expected single unnamed root node at base of definition to act as main root",
		},
		{
			name: "duplicate names",
			mdsl: `root { action [a] } root [A] { action [b] } root [A] { action [c] }`,
			want: "multiple root nodes found with duplicate name 'A'",
		},
		{
			name: "self reference",
			mdsl: `root { branch [A] } root [A] { branch [A] }`,
			want: "circular dependency found in branch node references: A => A",
		},
		{
			name: "mutual reference",
			mdsl: `root { branch [A] } root [A] { branch [B] } root [B] { sequence { branch [A] } }`,
			want: "circular dependency found in branch node references: A => B => A",
		},
		{
			name: "cycle unreachable from main",
			mdsl: `root { action [a] } root [X] { branch [Y] } root [Y] { branch [X] }`,
			want: "circular dependency found in branch node references: X => Y => X",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireValidationError(t, ValidateRoots(mustParse(t, tc.mdsl)), tc.want)
		})
	}
}

func TestValidateBranchLinks_StrictSubtree(t *testing.T) {
	roots := mustParse(t, `root { branch [A] } root [A] { branch [Missing] }`)
	requireValidationError(t, ValidateBranchLinks(roots, true),
		"subtree 'A' has branch node that refers to root node 'Missing' which has not been defined")
}

func TestValidateNode_Errors(t *testing.T) {
	action := func() *definition.Node {
		return &definition.Node{Type: domain.NodeTypeAction, Call: "Act"}
	}
	root := func(child *definition.Node) *definition.Node {
		return &definition.Node{Type: domain.NodeTypeRoot, Child: child}
	}

	cases := []struct {
		name string
		node *definition.Node
		want string
	}{
		{
			name: "missing type",
			node: root(&definition.Node{}),
			want: "node definition is not an object or 'type' property is not a non-empty string at depth '1'",
		},
		{
			name: "unknown type",
			node: root(&definition.Node{Type: "jump"}),
			want: "unexpected node type of 'jump' at depth '1'",
		},
		{
			name: "nested root",
			node: root(root(action())),
			want: "a root node cannot be the child of another node at depth '1'",
		},
		{
			name: "decorator without child",
			node: root(&definition.Node{Type: domain.NodeTypeFlip}),
			want: "expected property 'child' to be defined for flip node at depth '1'",
		},
		{
			name: "composite without children",
			node: root(&definition.Node{Type: domain.NodeTypeSelector}),
			want: "expected an array of at least a single child node for 'children' property for selector node at depth '1'",
		},
		{
			name: "action without call",
			node: root(&definition.Node{Type: domain.NodeTypeAction}),
			want: "expected non-empty string for 'call' property of action node at depth '1'",
		},
		{
			name: "identifier argument",
			node: root(&definition.Node{Type: domain.NodeTypeCondition, Call: "Is", Args: []definition.Argument{definition.Identifier("x")}}),
			want: "invalid condition node argument value 'x' at depth '1', must be string, number, boolean, agent property reference or null",
		},
		{
			name: "branch without ref",
			node: root(&definition.Node{Type: domain.NodeTypeBranch}),
			want: "expected non-empty string for 'ref' property for branch node at depth '1'",
		},
		{
			name: "branch with attribute",
			node: root(&definition.Node{Type: domain.NodeTypeBranch, Ref: "A", Entry: &definition.Attribute{Call: "Log"}}),
			want: "attributes should not be defined for branch nodes but attribute 'entry' was defined for branch node at depth '1'",
		},
		{
			name: "attribute without call",
			node: root(&definition.Node{Type: domain.NodeTypeAction, Call: "Act", While: &definition.Attribute{}}),
			want: "expected 'call' property for attribute 'while' to be a non-empty string for 'action' node at depth '1'",
		},
		{
			name: "succeedOnAbort on callback",
			node: root(&definition.Node{Type: domain.NodeTypeAction, Call: "Act", Exit: &definition.Attribute{Call: "Done", SucceedOnAbort: true}}),
			want: "'succeedOnAbort' is only valid for guard attributes but was set for attribute 'exit' for 'action' node at depth '1'",
		},
		{
			name: "negative iterations",
			node: root(&definition.Node{Type: domain.NodeTypeRepeat, Iterations: definition.Fixed(-1), Child: action()}),
			want: "expected non-negative values for 'iterations' property defined for repeat node at depth '1'",
		},
		{
			name: "inverted attempts",
			node: root(&definition.Node{Type: domain.NodeTypeRetry, Attempts: definition.Between(5, 2), Child: action()}),
			want: "expected minimum value to not exceed maximum value for 'attempts' property defined for retry node at depth '1'",
		},
		{
			name: "inverted duration",
			node: root(&definition.Node{Type: domain.NodeTypeWait, Duration: definition.Between(9, 1)}),
			want: "expected minimum value to not exceed maximum value for 'duration' property defined for wait node at depth '1'",
		},
		{
			name: "weight count mismatch",
			node: root(&definition.Node{Type: domain.NodeTypeLotto, Weights: []int{1}, Children: []*definition.Node{action(), action()}}),
			want: "expected an array of non-negative integers matching the number of children for 'weights' property if defined for lotto node at depth '1'",
		},
		{
			name: "all zero weights",
			node: root(&definition.Node{Type: domain.NodeTypeLotto, Weights: []int{0, 0}, Children: []*definition.Node{action(), action()}}),
			want: "expected at least one positive value for 'weights' property for lotto node at depth '1'",
		},
		{
			name: "error reported at depth",
			node: root(&definition.Node{Type: domain.NodeTypeSequence, Children: []*definition.Node{action(), {Type: domain.NodeTypeWait, Duration: definition.Fixed(-3)}}}),
			want: "expected non-negative values for 'duration' property defined for wait node at depth '2'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireValidationError(t, ValidateNode(tc.node, 0), tc.want)
		})
	}
}

func TestValidateRoots_RejectsNonRoot(t *testing.T) {
	err := ValidateRoots([]*definition.Node{{Type: domain.NodeTypeAction, Call: "Act"}})
	requireValidationError(t, err, "expected root node at base of definition")

	requireValidationError(t, ValidateRoots(nil), "expected definition to contain at least one root node")
}
