// Package project selects the source files a regeneration pass considers.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"regen/internal/language"
)

// Walker matches files under a root against include/exclude glob patterns
// (doublestar syntax, so "**" crosses directories) and keeps only files
// whose extension has a language profile.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a walker. With no includes, everything matches.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns the selected file paths under root, relative paths made
// absolute. Directories matching an exclude pattern are skipped whole.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !language.Known(filepath.Ext(path)) {
			return nil
		}
		if w.included(rel) && !w.excluded(rel) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (w *Walker) included(path string) bool {
	for _, pattern := range w.includes {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(path string) bool {
	for _, pattern := range w.excludes {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		// A directory pattern like ".git/" should also exclude its
		// contents.
		if strings.HasSuffix(path, "/") {
			if ok, err := doublestar.Match(pattern, strings.TrimSuffix(path, "/")); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// HasMarkers reports whether text contains at least one marker token, a
// cheap pre-filter before parsing.
func HasMarkers(text string) bool {
	return strings.Contains(text, "<regen:")
}
