// Package conflict collects divergences between a marker's current
// content and the content the engine expected to find. The engine never
// resolves a conflict on its own; callers decide.
package conflict

import (
	"sort"
	"sync"
)

// Divergence reasons.
const (
	ReasonManualEdit   = "content diverged from last generated baseline"
	ReasonKindMismatch = "marker kind differs from model configuration"
)

// Conflict pairs a marker's existing content with the content the engine
// proposed, for external resolution.
type Conflict struct {
	File     string
	MarkerID string
	Existing string
	Proposed string
	Reason   string
}

// Diff renders the existing-vs-proposed divergence as a unified diff.
func (c Conflict) Diff() string {
	gen := NewDiffer()
	return gen.Unified(c.File+"#"+c.MarkerID+" (existing)", c.File+"#"+c.MarkerID+" (proposed)",
		[]byte(c.Existing), []byte(c.Proposed))
}

// Reporter accumulates conflicts across files. Safe for concurrent use so
// parallel per-file rewrites can share one reporter.
type Reporter struct {
	mu        sync.Mutex
	conflicts []Conflict
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Add records conflicts.
func (r *Reporter) Add(conflicts ...Conflict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts = append(r.conflicts, conflicts...)
}

// All returns every recorded conflict ordered by file then marker id.
func (r *Reporter) All() []Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].MarkerID < out[j].MarkerID
	})
	return out
}

// Len returns the number of recorded conflicts.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conflicts)
}
