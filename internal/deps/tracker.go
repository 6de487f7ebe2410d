// Package deps maintains the bidirectional index between model keys and
// (file, marker) pairs, and persists engine state across runs.
package deps

import (
	"sort"
	"strings"
	"sync"
)

// Ref addresses one marker in one file.
type Ref struct {
	File     string
	MarkerID string
}

// Tracker is the in-memory dependency graph. Reads take a shared lock;
// mutation happens only inside Record, the engine's single-writer step
// between generation passes.
type Tracker struct {
	mu    sync.RWMutex
	byKey map[string]map[Ref]struct{}
	byRef map[Ref][]string
}

// NewTracker creates an empty graph.
func NewTracker() *Tracker {
	return &Tracker{
		byKey: make(map[string]map[Ref]struct{}),
		byRef: make(map[Ref][]string),
	}
}

// Record replaces the dependency keys of one marker. Passing no keys
// removes the marker from the graph.
func (t *Tracker) Record(file, markerID string, keys []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ref := Ref{File: file, MarkerID: markerID}
	for _, key := range t.byRef[ref] {
		delete(t.byKey[key], ref)
		if len(t.byKey[key]) == 0 {
			delete(t.byKey, key)
		}
	}
	delete(t.byRef, ref)

	if len(keys) == 0 {
		return
	}
	stored := make([]string, len(keys))
	copy(stored, keys)
	t.byRef[ref] = stored
	for _, key := range stored {
		if t.byKey[key] == nil {
			t.byKey[key] = make(map[Ref]struct{})
		}
		t.byKey[key][ref] = struct{}{}
	}
}

// Forget drops every marker recorded for a file. Used when a file is
// re-parsed and its marker set may have shrunk.
func (t *Tracker) Forget(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ref := range t.byRef {
		if ref.File != file {
			continue
		}
		for _, key := range t.byRef[ref] {
			delete(t.byKey[key], ref)
			if len(t.byKey[key]) == 0 {
				delete(t.byKey, key)
			}
		}
		delete(t.byRef, ref)
	}
}

// Affected computes the minimal regeneration set for a changed-keys
// delta, grouped by file with marker ids sorted.
func (t *Tracker) Affected(changedKeys []string) map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hit := make(map[Ref]struct{})
	for _, key := range changedKeys {
		for ref := range t.byKey[key] {
			hit[ref] = struct{}{}
		}
	}

	out := make(map[string][]string)
	for ref := range hit {
		out[ref.File] = append(out[ref.File], ref.MarkerID)
	}
	for file := range out {
		sort.Strings(out[file])
	}
	return out
}

// AffectedBy computes the markers a change at one model key would
// regenerate. Unlike Affected, which matches recorded keys exactly (the
// engine's delta already carries every changed key), this expands the
// single key the way a model diff would: a change at a key also changes
// its ancestors' values, and a change to a subtree changes everything
// below it. So "entities" matches a marker recorded with
// "entities.user.fields", and vice versa.
func (t *Tracker) AffectedBy(key string) map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hit := make(map[Ref]struct{})
	for recorded, refs := range t.byKey {
		if !keyTouches(recorded, key) {
			continue
		}
		for ref := range refs {
			hit[ref] = struct{}{}
		}
	}

	out := make(map[string][]string)
	for ref := range hit {
		out[ref.File] = append(out[ref.File], ref.MarkerID)
	}
	for file := range out {
		sort.Strings(out[file])
	}
	return out
}

// keyTouches reports whether two dotted keys name the same model node or
// one names an ancestor of the other.
func keyTouches(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}

// Keys returns the dependency keys recorded for one marker.
func (t *Tracker) Keys(file, markerID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := t.byRef[Ref{File: file, MarkerID: markerID}]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Known reports whether a marker has ever been recorded. A marker the
// graph has not seen is due for initial generation regardless of the
// changed-keys delta.
func (t *Tracker) Known(file, markerID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.byRef[Ref{File: file, MarkerID: markerID}]
	return ok
}

// Refs returns every recorded (file, marker) pair, sorted for stable
// output.
func (t *Tracker) Refs() []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Ref, 0, len(t.byRef))
	for ref := range t.byRef {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].MarkerID < out[j].MarkerID
	})
	return out
}
