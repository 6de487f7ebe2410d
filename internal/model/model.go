// Package model loads the upstream model snapshot that drives generation.
//
// A snapshot is a YAML document with two sections: `data`, an arbitrary
// tree flattened to dotted keys (the dependency keys markers declare), and
// `markers`, the out-of-band attribute table keyed by marker id.
package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"regen/internal/marker"
)

// Snapshot is an immutable view of the model at one point in time.
type Snapshot struct {
	raw     []byte
	values  map[string]any // dotted data keys -> scalar, list, or map
	tree    map[string]any // nested data tree, for template rendering
	markers map[string]marker.Config
}

// Parse decodes a snapshot from YAML.
func Parse(data []byte) (*Snapshot, error) {
	var doc struct {
		Data    map[string]any        `yaml:"data"`
		Markers map[string]markerSpec `yaml:"markers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing model snapshot: %w", err)
	}

	s := &Snapshot{
		raw:     append([]byte(nil), data...),
		values:  make(map[string]any),
		tree:    doc.Data,
		markers: make(map[string]marker.Config, len(doc.Markers)),
	}
	if s.tree == nil {
		s.tree = map[string]any{}
	}
	flatten("", doc.Data, s.values)

	for id, spec := range doc.Markers {
		cfg, err := spec.config()
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", id, err)
		}
		s.markers[id] = cfg
	}
	return s, nil
}

// Raw returns the snapshot's original YAML bytes.
func (s *Snapshot) Raw() []byte { return s.raw }

// Tree returns the nested data tree for template rendering.
func (s *Snapshot) Tree() map[string]any { return s.tree }

// Marker returns the attribute config recorded for a marker id.
func (s *Snapshot) Marker(id string) (marker.Config, bool) {
	cfg, ok := s.markers[id]
	return cfg, ok
}

// MarkerIDs returns all configured marker ids, sorted.
func (s *Snapshot) MarkerIDs() []string {
	ids := make([]string, 0, len(s.markers))
	for id := range s.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the value at a dotted data key.
func (s *Snapshot) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// String returns the value at key rendered as a string.
func (s *Snapshot) String(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok {
		return "", false
	}
	return stringify(v), true
}

// List returns the value at key as a slice, or nil if the key is absent
// or not list-valued.
func (s *Snapshot) List(key string) ([]any, bool) {
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

// Strings returns a list-valued key with every item stringified.
func (s *Snapshot) Strings(key string) ([]string, bool) {
	items, ok := s.List(key)
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = stringify(it)
	}
	return out, true
}

// Truthy reports whether key holds a value that counts as true: a true
// bool, a non-empty string or list, or a non-zero number. A missing key
// is false.
func (s *Snapshot) Truthy(key string) bool {
	v, ok := s.values[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case nil:
		return false
	}
	return true
}

// Diff returns the sorted set of keys whose values differ between two
// snapshots, including keys present in only one of them. Marker config
// changes surface as "markers.<id>" so an edited template regenerates
// exactly its own marker.
func Diff(old, next *Snapshot) []string {
	changed := map[string]struct{}{}

	oldVals, nextVals := map[string]any{}, map[string]any{}
	if old != nil {
		for k, v := range old.values {
			oldVals[k] = v
		}
		for id, cfg := range old.markers {
			oldVals["markers."+id] = fmt.Sprintf("%#v", cfg)
		}
	}
	if next != nil {
		for k, v := range next.values {
			nextVals[k] = v
		}
		for id, cfg := range next.markers {
			nextVals["markers."+id] = fmt.Sprintf("%#v", cfg)
		}
	}

	for k, v := range nextVals {
		if prev, ok := oldVals[k]; !ok || !reflect.DeepEqual(prev, v) {
			changed[k] = struct{}{}
		}
	}
	for k := range oldVals {
		if _, ok := nextVals[k]; !ok {
			changed[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flatten records every path through the tree. Intermediate maps are kept
// too, so a dependency on "schema" fires when anything under it changes.
func flatten(prefix string, node any, out map[string]any) {
	if prefix != "" {
		out[prefix] = node
	}
	m, ok := node.(map[string]any)
	if !ok {
		return
	}
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flatten(key, v, out)
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
