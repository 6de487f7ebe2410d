package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_CleanProjectLeavesNoState(t *testing.T) {
	root := t.TempDir()

	modelYAML := `
markers:
  custom:
    kind: guard
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "regen.model.yml"), []byte(modelYAML), 0o644))

	source := "package api\n\n// <regen:guard:custom:start>\nmine()\n// <regen:guard:custom:end>\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "api.go"), []byte(source), 0o644))

	cmd := CheckCmd()
	cmd.SetArgs([]string{root})
	require.NoError(t, cmd.Execute())

	// A read-only pass creates neither the state dir nor the database.
	_, err := os.Stat(filepath.Join(root, ".regen"))
	assert.True(t, os.IsNotExist(err))

	// And the source file is untouched.
	data, err := os.ReadFile(filepath.Join(root, "api.go"))
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

func TestCheck_ParseFailureExitsNonZero(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "regen.model.yml"), []byte("markers: {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.go"),
		[]byte("// <regen:guard:g:start>\nnever closed\n"), 0o644))

	cmd := CheckCmd()
	cmd.SetArgs([]string{root})
	assert.Error(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(root, ".regen"))
	assert.True(t, os.IsNotExist(err))
}
