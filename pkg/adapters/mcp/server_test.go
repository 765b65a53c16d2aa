package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.RegisterSubtree("Flee", `root { action [Run] }`))
	return NewServer(reg)
}

func TestValidateDefinition(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	ok, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"definition": `root { sequence { action [Walk] branch [Flee] } }`,
	})
	require.NoError(t, err)
	assert.True(t, ok.Succeeded)
	require.Len(t, ok.Definition, 1)

	bad, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"definition": `root { sequence { } }`,
	})
	require.NoError(t, err)
	assert.False(t, bad.Succeeded)
	assert.NotEmpty(t, bad.ErrorMessage)
}

func TestDescribeTree(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleDescribe(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"definition": `root { selector { condition [InDanger] branch [Flee] } }`,
		"mermaid":    true,
	})
	require.NoError(t, err)

	details, ok := resp.Tree.(domain.NodeDetails)
	require.True(t, ok)
	assert.Equal(t, domain.NodeTypeRoot, details.Type)
	assert.Equal(t, domain.Ready, details.State)

	var names []string
	details.Walk(func(node domain.NodeDetails, depth int) {
		names = append(names, node.Name)
	})
	assert.Equal(t, []string{"ROOT", "SELECTOR", "InDanger", "Run"}, names)
	assert.Contains(t, resp.Mermaid, "graph TD")
}

func TestDescribeTree_UnknownBranch(t *testing.T) {
	s := NewServer(nil)

	_, err := s.handleDescribe(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"definition": `root { branch [Missing] }`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestSubtrees(t *testing.T) {
	s := newTestServer(t)

	list, err := s.handleListSubtrees(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Flee"}, list.Subtrees)

	contents, err := s.readSubtrees(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, subtreesURI, text.URI)

	var subtrees map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text.Text), &subtrees))
	assert.Contains(t, subtrees, "Flee")
}
