package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestWalk_FiltersByLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "app.py", "pass")
	writeFile(t, root, "image.bin", "\x00")
	writeFile(t, root, "README", "docs")

	files, err := NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.py", "main.go"}, relPaths(t, root, files))
}

func TestWalk_IncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "api/users.go", "")
	writeFile(t, root, "api/users.ts", "")
	writeFile(t, root, "web/app.ts", "")

	files, err := NewWalker([]string{"**/*.ts"}, nil).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"api/users.ts", "web/app.ts"}, relPaths(t, root, files))
}

func TestWalk_ExcludeSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "")
	writeFile(t, root, "vendor/dep/dep.go", "")
	writeFile(t, root, "node_modules/pkg/index.js", "")

	files, err := NewWalker(nil, []string{"vendor/**", "node_modules/**"}).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go"}, relPaths(t, root, files))
}

func TestWalk_ExcludeSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "")
	writeFile(t, root, "skip.go", "")

	files, err := NewWalker(nil, []string{"skip.go"}).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep.go"}, relPaths(t, root, files))
}

func TestHasMarkers(t *testing.T) {
	assert.True(t, HasMarkers("x\n// <regen:guard:g:start>\n"))
	assert.False(t, HasMarkers("plain source file"))
}
