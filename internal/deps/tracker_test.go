package deps

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Affected(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "header", []string{"project.name", "project.version"})
	tr.Record("a.go", "imports", []string{"features.auth"})
	tr.Record("b.go", "header", []string{"project.name"})

	affected := tr.Affected([]string{"project.name"})
	assert.Equal(t, map[string][]string{
		"a.go": {"header"},
		"b.go": {"header"},
	}, affected)

	affected = tr.Affected([]string{"features.auth", "project.version"})
	assert.Equal(t, map[string][]string{
		"a.go": {"header", "imports"},
	}, affected)

	assert.Empty(t, tr.Affected([]string{"unrelated"}))
	assert.Empty(t, tr.Affected(nil))
}

func TestTracker_AffectedBy(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "fields", []string{"entities.user.fields"})
	tr.Record("a.go", "root", []string{"entities"})
	tr.Record("b.go", "other", []string{"features.auth"})

	// Querying a parent key reaches markers recorded with nested keys.
	affected := tr.AffectedBy("entities")
	assert.Equal(t, map[string][]string{"a.go": {"fields", "root"}}, affected)

	// Querying a leaf also reaches markers recorded with an ancestor,
	// since a leaf change alters the ancestor's value too.
	affected = tr.AffectedBy("entities.user.fields")
	assert.Equal(t, map[string][]string{"a.go": {"fields", "root"}}, affected)

	// Siblings do not match.
	affected = tr.AffectedBy("entities.order")
	assert.Equal(t, map[string][]string{"a.go": {"root"}}, affected)

	// Prefix matching is per dotted segment, not per character.
	tr.Record("c.go", "m", []string{"ent"})
	assert.NotContains(t, tr.AffectedBy("entities"), "c.go")

	assert.Empty(t, tr.AffectedBy("unrelated"))
}

func TestTracker_RecordReplaces(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "m", []string{"old.key"})
	tr.Record("a.go", "m", []string{"new.key"})

	assert.Empty(t, tr.Affected([]string{"old.key"}))
	assert.Len(t, tr.Affected([]string{"new.key"}), 1)
	assert.Equal(t, []string{"new.key"}, tr.Keys("a.go", "m"))
}

func TestTracker_RecordEmptyRemoves(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "m", []string{"k"})
	require.True(t, tr.Known("a.go", "m"))

	tr.Record("a.go", "m", nil)
	assert.False(t, tr.Known("a.go", "m"))
	assert.Empty(t, tr.Affected([]string{"k"}))
}

func TestTracker_Forget(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "one", []string{"k"})
	tr.Record("a.go", "two", []string{"k"})
	tr.Record("b.go", "one", []string{"k"})

	tr.Forget("a.go")

	assert.False(t, tr.Known("a.go", "one"))
	assert.False(t, tr.Known("a.go", "two"))
	assert.True(t, tr.Known("b.go", "one"))
	assert.Equal(t, map[string][]string{"b.go": {"one"}}, tr.Affected([]string{"k"}))
}

func TestTracker_Refs(t *testing.T) {
	tr := NewTracker()
	tr.Record("b.go", "z", []string{"k"})
	tr.Record("a.go", "m", []string{"k"})
	tr.Record("a.go", "a", []string{"k"})

	assert.Equal(t, []Ref{
		{File: "a.go", MarkerID: "a"},
		{File: "a.go", MarkerID: "m"},
		{File: "b.go", MarkerID: "z"},
	}, tr.Refs())
}

func TestTracker_ConcurrentReads(t *testing.T) {
	tr := NewTracker()
	tr.Record("a.go", "m", []string{"k"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Affected([]string{"k"})
				tr.Keys("a.go", "m")
				tr.Known("a.go", "m")
			}
		}()
	}
	wg.Wait()
}
