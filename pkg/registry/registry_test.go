package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFunction(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.RegisterFunction("Double", func(_ any, args ...any) (any, error) {
		return args[0].(float64) * 2, nil
	}))

	fn, ok := r.Function("Double")
	require.True(t, ok)
	got, err := fn(nil, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	assert.Error(t, r.RegisterFunction("", func(any, ...any) (any, error) { return nil, nil }))
	assert.Error(t, r.RegisterFunction("Nil", nil))
}

func TestRegisterSubtree(t *testing.T) {
	r := registry.New()

	require.NoError(t, r.RegisterSubtree("Patrol", "root { action [Walk] }"))
	root, ok := r.Subtree("Patrol")
	require.True(t, ok)
	assert.Equal(t, "Walk", root.Child.Call)

	t.Run("rejects named roots", func(t *testing.T) {
		err := r.RegisterSubtree("X", "root [X] { action [a] }")
		assert.EqualError(t, err, "error registering definition: expected a single unnamed root node")
	})

	t.Run("rejects several roots", func(t *testing.T) {
		err := r.RegisterSubtree("X", "root { action [a] } root [Y] { action [b] }")
		assert.EqualError(t, err, "error registering definition: expected a single unnamed root node")
	})

	t.Run("rejects invalid subtrees", func(t *testing.T) {
		err := r.RegisterSubtree("X", map[string]any{"type": "root", "child": map[string]any{"type": "action"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error registering definition, invalid subtree")
	})

	t.Run("rejects syntax errors", func(t *testing.T) {
		err := r.RegisterSubtree("X", "root { jump }")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected token: jump")
	})
}

func TestUnregister(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.RegisterSubtree("Shared", "root { action [a] }"))
	require.NoError(t, r.RegisterFunction("Shared", func(any, ...any) (any, error) { return nil, nil }))

	r.Unregister("Shared")
	_, ok := r.Subtree("Shared")
	assert.False(t, ok)
	_, ok = r.Function("Shared")
	assert.False(t, ok)

	require.NoError(t, r.RegisterSubtree("A", "root { action [a] }"))
	require.NoError(t, r.RegisterSubtree("B", "root { action [b] }"))
	assert.Equal(t, []string{"A", "B"}, r.SubtreeNames())

	r.UnregisterAll()
	assert.Empty(t, r.Subtrees())
}

func TestLoadSubtrees(t *testing.T) {
	source := memory.NewSource(map[string]string{
		"patrol.mdsl": "root { action [Walk] }",
		"combat.mdsl": "root [Attack] { action [Swing] } root [Defend] { action [Block] }",
	})

	r := registry.New()
	require.NoError(t, r.LoadSubtrees(context.Background(), source))
	assert.Equal(t, []string{"Attack", "Defend", "patrol.mdsl"}, r.SubtreeNames())

	attack, _ := r.Subtree("Attack")
	assert.Empty(t, attack.ID)
	assert.Equal(t, "Swing", attack.Child.Call)

	broken := memory.NewSource(map[string]string{"bad": "root {"})
	err := r.LoadSubtrees(context.Background(), broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
