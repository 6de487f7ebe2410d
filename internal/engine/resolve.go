package engine

import (
	"fmt"
	"path/filepath"

	"regen/internal/language"
	"regen/internal/parser"
)

// ReplaceMarkerBody swaps one marker's body in the given file text and
// reserializes, leaving every other byte untouched. It is the text-level
// half of applying a conflict resolution.
func ReplaceMarkerBody(path, text, markerID, body string) (string, error) {
	profile, err := language.Lookup(filepath.Ext(path))
	if err != nil {
		return "", err
	}
	doc, err := parser.Parse(path, text, profile)
	if err != nil {
		return "", err
	}
	region, ok := doc.Region(markerID)
	if !ok {
		return "", fmt.Errorf("%s: no marker %q", path, markerID)
	}
	region.Raw = body
	return doc.Render(), nil
}

// AdoptBaseline records content as a marker's last-generated baseline, so
// the next run treats it as engine-produced rather than a manual edit.
// Used when a conflict resolution decides which side wins.
func (s *Session) AdoptBaseline(file, markerID, content string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.PutBaseline(file, markerID, content); err != nil {
		return fmt.Errorf("adopting baseline for %s#%s: %w", file, markerID, err)
	}
	return nil
}
