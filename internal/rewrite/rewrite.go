// Package rewrite merges a parsed document with freshly generated content
// and reserializes it. Non-destructiveness is the governing rule: guard
// regions are copied verbatim, any raw-vs-baseline divergence becomes a
// reported conflict instead of an overwrite, and markers outside the
// affected set pass through without invoking the generator at all.
package rewrite

import (
	"fmt"
	"strings"

	"regen/internal/conflict"
	"regen/internal/marker"
	"regen/internal/model"
)

// ContentGenerator computes a fresh body for one non-Guard region.
type ContentGenerator interface {
	Generate(region *marker.Region, cfg marker.Config, snap *model.Snapshot) (string, error)
}

// Result is the outcome of one file's rewrite. Errors and Conflicts are
// marker-scoped and non-fatal: the rest of the file is still rewritten.
type Result struct {
	Text      string
	Changed   bool
	Conflicts []conflict.Conflict
	Errors    []error

	// Baselines holds the content that is now the last-generated text
	// for each successfully regenerated marker, for persistence.
	Baselines map[string]string
}

// Rewriter merges documents with generated content.
type Rewriter struct {
	gen ContentGenerator
}

// New creates a rewriter around a content generator.
func New(gen ContentGenerator) *Rewriter {
	return &Rewriter{gen: gen}
}

// Rewrite processes doc's regions in document order. affected holds the
// marker ids selected by the dependency tracker for this changed-keys
// delta; everything else passes through unchanged, which is what keeps
// regeneration bounded to the impacted subset.
//
// The document must carry loaded baselines (Region.Baseline/Modified set
// by the caller) before rewriting.
func (rw *Rewriter) Rewrite(doc *marker.Document, snap *model.Snapshot, affected map[string]bool) *Result {
	res := &Result{Baselines: make(map[string]string)}

	for _, region := range doc.Regions() {
		cfg, ok := snap.Marker(region.ID)
		if !ok {
			// The model says nothing about this marker; leave it alone.
			continue
		}
		if cfg.Kind() != region.Kind {
			res.Conflicts = append(res.Conflicts, conflict.Conflict{
				File:     doc.Path,
				MarkerID: region.ID,
				Existing: region.Raw,
				Reason:   conflict.ReasonKindMismatch,
			})
			continue
		}

		if guard, isGuard := cfg.(marker.Guard); isGuard {
			rw.seedGuard(region, guard, res)
			continue
		}
		if !affected[region.ID] {
			continue
		}
		rw.regenerate(doc.Path, region, cfg, snap, res)
	}

	res.Text = doc.Render()
	return res
}

// seedGuard fills an empty guard with its default content, once. Guards
// holding anything else are copied verbatim, whatever the model did.
func (rw *Rewriter) seedGuard(region *marker.Region, cfg marker.Guard, res *Result) {
	if strings.TrimSpace(region.Raw) != "" || cfg.DefaultContent == "" {
		return
	}
	if region.Modified {
		// The developer deliberately emptied it; that is their edit.
		return
	}
	content := cfg.DefaultContent
	if cfg.PreserveIndent {
		content = indentBody(content, region.Indent)
	}
	region.Raw = content
	region.Baseline = content
	res.Baselines[region.ID] = content
	res.Changed = true
}

func (rw *Rewriter) regenerate(path string, region *marker.Region, cfg marker.Config, snap *model.Snapshot, res *Result) {
	// The generator sees the body at column zero so strategies that fold
	// existing lines into their output compare like with like; the
	// marker's indentation is reapplied to whatever comes back.
	work := *region
	work.Raw = stripIndent(region.Raw, region.Indent)
	proposed, err := rw.gen.Generate(&work, cfg, snap)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("%s marker %s: %w", path, region.ID, err))
		return
	}
	proposed = indentBody(proposed, region.Indent)

	if region.Modified && !absorbsEdits(cfg) {
		// The body diverged from the last generated output. Keep the
		// edit, report the divergence, and let the caller decide.
		res.Conflicts = append(res.Conflicts, conflict.Conflict{
			File:     path,
			MarkerID: region.ID,
			Existing: region.Raw,
			Proposed: proposed,
			Reason:   conflict.ReasonManualEdit,
		})
		return
	}

	if proposed != region.Raw {
		region.Raw = proposed
		res.Changed = true
	}
	region.Baseline = proposed
	res.Baselines[region.ID] = proposed
}

// absorbsEdits reports whether a config's strategy folds existing content
// into its output instead of discarding it. For those strategies a manual
// edit is input, not a conflict: a hand-added import under KeepExisting is
// preserved and appended to, never fought over.
func absorbsEdits(cfg marker.Config) bool {
	switch c := cfg.(type) {
	case marker.Generated:
		return c.Strategy != marker.Replace
	case marker.Import:
		return c.Merge != marker.ReplaceImports
	}
	return false
}

// stripIndent removes the marker's indentation from every line of its
// body, the inverse of indentBody.
func stripIndent(body, indent string) string {
	if indent == "" || body == "" {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}

// indentBody aligns generated content to the marker's column. Blank lines
// stay blank.
func indentBody(body, indent string) string {
	if indent == "" || body == "" {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, indent) {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
