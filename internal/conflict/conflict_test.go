package conflict

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Ordering(t *testing.T) {
	r := NewReporter()
	r.Add(Conflict{File: "b.go", MarkerID: "z"})
	r.Add(Conflict{File: "a.go", MarkerID: "m"}, Conflict{File: "a.go", MarkerID: "a"})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a.go", all[0].File)
	assert.Equal(t, "a", all[0].MarkerID)
	assert.Equal(t, "m", all[1].MarkerID)
	assert.Equal(t, "b.go", all[2].File)
	assert.Equal(t, 3, r.Len())
}

func TestReporter_ConcurrentAdd(t *testing.T) {
	r := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				r.Add(Conflict{File: "f.go", MarkerID: "m"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, r.Len())
}

func TestConflict_Diff(t *testing.T) {
	c := Conflict{
		File:     "f.go",
		MarkerID: "header",
		Existing: "line one\nline two\n",
		Proposed: "line one\nline 2\n",
		Reason:   ReasonManualEdit,
	}

	diff := c.Diff()
	assert.Contains(t, diff, "f.go#header")
	assert.Contains(t, diff, "line two")
	assert.Contains(t, diff, "line 2")
}

func TestConflict_DiffIdentical(t *testing.T) {
	c := Conflict{Existing: "same\n", Proposed: "same\n"}
	assert.Empty(t, c.Diff())
}
