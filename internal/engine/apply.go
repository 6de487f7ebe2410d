package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Transaction stages regenerated file writes and commits them atomically:
// if any write fails, files written so far are restored to their previous
// content, so a partial regeneration never lands on disk.
type Transaction struct {
	writes    []stagedWrite
	committed bool
}

type stagedWrite struct {
	path    string
	content []byte
	mode    os.FileMode
}

type undoEntry struct {
	path    string
	content []byte // nil if the file did not exist before
	existed bool
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// AddResult stages the changed files of regeneration results. Failed and
// unchanged files are skipped.
func (t *Transaction) AddResult(results ...FileResult) {
	for _, res := range results {
		if res.Err != nil || !res.Changed {
			continue
		}
		t.AddFile(res.Path, []byte(res.Text), 0o644)
	}
}

// AddFile stages one write.
func (t *Transaction) AddFile(path string, content []byte, mode os.FileMode) {
	t.writes = append(t.writes, stagedWrite{path: path, content: content, mode: mode})
}

// Len returns the number of staged writes.
func (t *Transaction) Len() int { return len(t.writes) }

// Commit writes all staged files. On failure, files already written are
// restored to their prior content (or removed, if they are new) and the
// original error is returned.
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	undo := make([]undoEntry, 0, len(t.writes))
	for _, w := range t.writes {
		dir := filepath.Dir(w.path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			restore(undo)
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}

		prev, err := os.ReadFile(w.path)
		entry := undoEntry{path: w.path, existed: err == nil, content: prev}

		if err := os.WriteFile(w.path, w.content, w.mode); err != nil {
			restore(undo)
			return fmt.Errorf("writing %s: %w", w.path, err)
		}
		undo = append(undo, entry)
	}
	t.committed = true
	return nil
}

// restore is best effort: it puts back what was there before.
func restore(undo []undoEntry) {
	for _, e := range undo {
		if e.existed {
			os.WriteFile(e.path, e.content, 0o644)
		} else {
			os.Remove(e.path)
		}
	}
}
