package deps

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_EdgesRoundTrip(t *testing.T) {
	store, path := openStore(t)

	require.NoError(t, store.SaveEdges("a.go", "header", []string{"project.name"}))
	require.NoError(t, store.SaveEdges("a.go", "imports", []string{"features.auth", "markers.imports"}))
	require.NoError(t, store.Close())

	// Reopen and rebuild the graph.
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	tr, err := store.LoadTracker()
	require.NoError(t, err)

	assert.True(t, tr.Known("a.go", "header"))
	assert.Equal(t, []string{"features.auth", "markers.imports"}, tr.Keys("a.go", "imports"))
	assert.Equal(t, map[string][]string{"a.go": {"header"}}, tr.Affected([]string{"project.name"}))
}

func TestStore_SaveEdgesOverwrites(t *testing.T) {
	store, _ := openStore(t)

	require.NoError(t, store.SaveEdges("a.go", "m", []string{"old"}))
	require.NoError(t, store.SaveEdges("a.go", "m", []string{"new"}))

	tr, err := store.LoadTracker()
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, tr.Keys("a.go", "m"))
	assert.Empty(t, tr.Affected([]string{"old"}))
}

func TestStore_Baselines(t *testing.T) {
	store, _ := openStore(t)

	_, found, err := store.Baseline("a.go", "m")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.PutBaseline("a.go", "m", "generated body\nline two"))

	content, found, err := store.Baseline("a.go", "m")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "generated body\nline two", content)

	// Empty content is a real baseline, distinct from absent.
	require.NoError(t, store.PutBaseline("a.go", "empty", ""))
	content, found, err = store.Baseline("a.go", "empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "", content)
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveEdges("a.go", "m", []string{"k"}))
	require.NoError(t, store.PutBaseline("a.go", "m", "body"))
	require.NoError(t, store.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	tr, err := ro.LoadTracker()
	require.NoError(t, err)
	assert.True(t, tr.Known("a.go", "m"))

	content, found, err := ro.Baseline("a.go", "m")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "body", content)

	// Writes are rejected.
	assert.Error(t, ro.PutBaseline("a.go", "m", "changed"))
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	_, err := OpenReadOnly(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
}

func TestStore_Snapshot(t *testing.T) {
	store, _ := openStore(t)

	raw, err := store.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.PutSnapshot([]byte("data:\n  a: 1\n")))

	raw, err = store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "data:\n  a: 1\n", string(raw))
}
