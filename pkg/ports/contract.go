package ports

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDefinitionSourceContract verifies that a DefinitionSource holding exactly
// the seeded definitions behaves as the interface requires.
func RunDefinitionSourceContract(t *testing.T, source DefinitionSource, seeded map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		names, err := source.List(ctx)
		require.NoError(t, err)
		assert.Len(t, names, len(seeded))
		for name := range seeded {
			assert.Contains(t, names, name)
		}
		assert.IsNonDecreasing(t, names, "names should be sorted")
	})

	t.Run("Load", func(t *testing.T) {
		for name, want := range seeded {
			got, err := source.Load(ctx, name)
			require.NoError(t, err, "Load(%s)", name)
			assert.Equal(t, strings.TrimSpace(want), strings.TrimSpace(string(got)))
		}
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := source.Load(ctx, "non-existent-definition")
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})
}
