// Package engine orchestrates regeneration: it partitions affected
// markers by file, runs per-file rewrites (in parallel across files), and
// owns the synchronized record step that refreshes the dependency graph
// and persisted baselines between generation passes.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"regen/internal/conflict"
	"regen/internal/deps"
	"regen/internal/generate"
	"regen/internal/language"
	"regen/internal/marker"
	"regen/internal/model"
	"regen/internal/parser"
	"regen/internal/render"
	"regen/internal/rewrite"
)

// Session wires the engine's services together for one process lifetime.
// The dependency graph persists across rewrite cycles; documents do not.
type Session struct {
	store    *deps.Store // nil for in-memory sessions
	tracker  *deps.Tracker
	rewriter *rewrite.Rewriter
	reporter *conflict.Reporter
}

// NewSession builds a session. With a store, the dependency graph is
// rebuilt from persisted edges so delta scoping survives restarts.
func NewSession(store *deps.Store) (*Session, error) {
	tracker := deps.NewTracker()
	if store != nil {
		loaded, err := store.LoadTracker()
		if err != nil {
			return nil, fmt.Errorf("loading dependency graph: %w", err)
		}
		tracker = loaded
	}
	return &Session{
		store:    store,
		tracker:  tracker,
		rewriter: rewrite.New(generate.New(render.New())),
		reporter: conflict.NewReporter(),
	}, nil
}

// Tracker exposes the dependency graph for inspection.
func (s *Session) Tracker() *deps.Tracker { return s.tracker }

// Conflicts returns every conflict reported so far this session.
func (s *Session) Conflicts() []conflict.Conflict { return s.reporter.All() }

// FileInput is one file's current on-disk text. The engine itself never
// touches the filesystem; callers read and write.
type FileInput struct {
	Path string
	Text string
}

// FileResult is the outcome for one file. A non-nil Err is fatal for the
// file (parse failure or unknown language): Text is empty and the original
// must be left untouched. Conflicts and Errors are marker-scoped.
type FileResult struct {
	Path      string
	Text      string
	Changed   bool
	Conflicts []conflict.Conflict
	Errors    []error
	Err       error

	records   []recordEntry
	baselines map[string]string
}

type recordEntry struct {
	markerID string
	keys     []string
}

// RegenerateFile runs the full pipeline for one file: parse, select the
// affected subset, generate, merge, reserialize. It is a pure computation
// over the input text and model snapshot; graph mutation is deferred to
// Record.
func (s *Session) RegenerateFile(in FileInput, snap *model.Snapshot, changedKeys []string) FileResult {
	res := FileResult{Path: in.Path}

	profile, err := language.Lookup(filepath.Ext(in.Path))
	if err != nil {
		res.Err = err
		return res
	}

	doc, err := parser.Parse(in.Path, in.Text, profile)
	if err != nil {
		res.Err = err
		return res
	}

	affected := s.affectedSet(doc, snap, changedKeys)
	s.loadBaselines(doc)

	out := s.rewriter.Rewrite(doc, snap, affected)
	res.Text = out.Text
	res.Changed = out.Changed
	res.Conflicts = out.Conflicts
	res.Errors = out.Errors
	res.baselines = out.Baselines
	res.records = pendingRecords(doc, snap)

	s.reporter.Add(out.Conflicts...)
	return res
}

// affectedSet selects which of the document's markers regenerate this
// cycle: those the tracker matched against the changed keys, those it has
// never seen (initial generation), and dependency-less Conditional and
// Template markers, which regenerate unconditionally.
func (s *Session) affectedSet(doc *marker.Document, snap *model.Snapshot, changedKeys []string) map[string]bool {
	byFile := s.tracker.Affected(changedKeys)
	affected := make(map[string]bool, len(byFile[doc.Path]))
	for _, id := range byFile[doc.Path] {
		affected[id] = true
	}

	for _, region := range doc.Regions() {
		cfg, ok := snap.Marker(region.ID)
		if !ok || cfg.Kind() == marker.KindGuard {
			continue
		}
		if !s.tracker.Known(doc.Path, region.ID) {
			affected[region.ID] = true
			continue
		}
		switch cfg.Kind() {
		case marker.KindConditional, marker.KindTemplate:
			if len(marker.Dependencies(cfg)) == 0 {
				affected[region.ID] = true
			}
		}
	}
	return affected
}

// loadBaselines attaches each region's last-generated content. A marker
// with no stored baseline adopts its current body: first sight is never a
// conflict.
func (s *Session) loadBaselines(doc *marker.Document) {
	for _, region := range doc.Regions() {
		region.Baseline = region.Raw
		if s.store == nil {
			continue
		}
		baseline, found, err := s.store.Baseline(doc.Path, region.ID)
		if err != nil || !found {
			continue
		}
		region.Baseline = baseline
		region.Modified = region.Raw != baseline
	}
}

// pendingRecords prepares the graph entries for the record step. Every
// non-guard marker depends on its declared keys plus its own config entry
// ("markers.<id>"), so editing a marker's template in the model
// regenerates exactly that marker.
func pendingRecords(doc *marker.Document, snap *model.Snapshot) []recordEntry {
	var entries []recordEntry
	for _, region := range doc.Regions() {
		cfg, ok := snap.Marker(region.ID)
		if !ok || cfg.Kind() == marker.KindGuard {
			continue
		}
		keys := append([]string{}, marker.Dependencies(cfg)...)
		keys = append(keys, "markers."+region.ID)
		entries = append(entries, recordEntry{markerID: region.ID, keys: keys})
	}
	return entries
}

// Record is the single-writer step between generation passes: it refreshes
// the dependency graph and persists edges and baselines for the given
// results. Files that failed to parse are skipped.
func (s *Session) Record(results ...FileResult) error {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		s.tracker.Forget(res.Path)
		for _, entry := range res.records {
			s.tracker.Record(res.Path, entry.markerID, entry.keys)
			if s.store != nil {
				if err := s.store.SaveEdges(res.Path, entry.markerID, entry.keys); err != nil {
					return fmt.Errorf("persisting edges for %s: %w", res.Path, err)
				}
			}
		}
		if s.store != nil {
			for id, baseline := range res.baselines {
				if err := s.store.PutBaseline(res.Path, id, baseline); err != nil {
					return fmt.Errorf("persisting baseline for %s#%s: %w", res.Path, id, err)
				}
			}
		}
	}
	return nil
}

// Regenerate rewrites many files with a bounded worker pool. Per-file
// rewrites share no mutable state; the dependency graph is only read.
// Cancellation is coarse-grained: a file's rewrite runs to completion, but
// no new file starts after ctx is done.
func (s *Session) Regenerate(ctx context.Context, inputs []FileInput, snap *model.Snapshot, changedKeys []string, workers int) []FileResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.RegenerateFile(inputs[i], snap, changedKeys)
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Path == "" {
				results[i] = FileResult{Path: inputs[i].Path, Err: err}
			}
		}
	}
	return results
}
