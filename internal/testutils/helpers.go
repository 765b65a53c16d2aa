package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// SetupTestRepo initializes a Loam repository in a temporary directory and
// returns its absolute path along with the repository.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteDefinition writes a Markdown definition document to dir/name. meta is
// rendered as YAML frontmatter and omitted when empty.
func WriteDefinition(t *testing.T, dir, name string, meta map[string]string, body string) string {
	t.Helper()

	content := body
	if len(meta) > 0 {
		frontmatter, err := yaml.Marshal(meta)
		require.NoError(t, err)
		content = "---\n" + string(frontmatter) + "---\n" + body
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
