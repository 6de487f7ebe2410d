package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regen/internal/marker"
)

const sampleSnapshot = `
data:
  project:
    name: shop
    version: "2.1"
  features:
    auth: true
    metrics: false
  entities:
    - user
    - order
markers:
  header:
    kind: generated
    deps: [project.name, project.version]
    template: "// {{.project.name}} v{{.project.version}}"
  auth_block:
    kind: conditional
    condition: features.auth
    template: "auth_enabled()"
    deps: [features.auth]
  custom:
    kind: guard
    default: "// your code here"
`

func TestParse_DataLookups(t *testing.T) {
	snap, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	name, ok := snap.String("project.name")
	require.True(t, ok)
	assert.Equal(t, "shop", name)

	// Intermediate map nodes are addressable too.
	_, ok = snap.Lookup("project")
	assert.True(t, ok)

	items, ok := snap.Strings("entities")
	require.True(t, ok)
	assert.Equal(t, []string{"user", "order"}, items)

	_, ok = snap.Lookup("project.missing")
	assert.False(t, ok)
}

func TestSnapshot_Truthy(t *testing.T) {
	snap, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.True(t, snap.Truthy("features.auth"))
	assert.False(t, snap.Truthy("features.metrics"))
	// Non-empty strings and lists count as true.
	assert.True(t, snap.Truthy("project.name"))
	assert.True(t, snap.Truthy("entities"))
	assert.False(t, snap.Truthy("nonexistent"))
}

func TestParse_MarkerConfigs(t *testing.T) {
	snap, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	cfg, ok := snap.Marker("header")
	require.True(t, ok)
	gen, ok := cfg.(marker.Generated)
	require.True(t, ok)
	assert.Equal(t, marker.Replace, gen.Strategy) // default strategy
	assert.Equal(t, []string{"project.name", "project.version"}, gen.Deps)

	cfg, ok = snap.Marker("auth_block")
	require.True(t, ok)
	cond, ok := cfg.(marker.Conditional)
	require.True(t, ok)
	assert.Equal(t, marker.Include, cond.Strategy)
	assert.Equal(t, "features.auth", cond.Condition)

	cfg, ok = snap.Marker("custom")
	require.True(t, ok)
	guard, ok := cfg.(marker.Guard)
	require.True(t, ok)
	assert.Equal(t, "// your code here", guard.DefaultContent)

	assert.Equal(t, []string{"auth_block", "custom", "header"}, snap.MarkerIDs())
}

func TestParse_SpecValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown kind",
			yaml: "markers:\n  m:\n    kind: widget\n",
		},
		{
			name: "bad generation strategy",
			yaml: "markers:\n  m:\n    kind: generated\n    strategy: overwrite\n",
		},
		{
			name: "conditional without condition",
			yaml: "markers:\n  m:\n    kind: conditional\n",
		},
		{
			name: "switch without alternatives",
			yaml: "markers:\n  m:\n    kind: conditional\n    condition: k\n    strategy: switch\n",
		},
		{
			name: "bad import merge",
			yaml: "markers:\n  m:\n    kind: import\n    merge: overwrite\n",
		},
		{
			name: "iteration without source",
			yaml: "markers:\n  m:\n    kind: template\n    iteration:\n      item: x\n",
		},
		{
			name: "not yaml",
			yaml: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	snap, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, snap.Tree())
	assert.Empty(t, snap.MarkerIDs())
}

func TestDiff(t *testing.T) {
	old, err := Parse([]byte(`
data:
  project:
    name: shop
  features:
    auth: true
markers:
  header:
    kind: generated
    template: "v1"
`))
	require.NoError(t, err)

	next, err := Parse([]byte(`
data:
  project:
    name: store
  features:
    auth: true
markers:
  header:
    kind: generated
    template: "v2"
`))
	require.NoError(t, err)

	changed := Diff(old, next)
	assert.Contains(t, changed, "project.name")
	// The parent node's value changes along with its child.
	assert.Contains(t, changed, "project")
	assert.Contains(t, changed, "markers.header")
	assert.NotContains(t, changed, "features.auth")
	assert.NotContains(t, changed, "features")
}

func TestDiff_AddedAndRemovedKeys(t *testing.T) {
	old, err := Parse([]byte("data:\n  a: 1\n  b: 2\n"))
	require.NoError(t, err)
	next, err := Parse([]byte("data:\n  b: 2\n  c: 3\n"))
	require.NoError(t, err)

	changed := Diff(old, next)
	assert.Contains(t, changed, "a")
	assert.Contains(t, changed, "c")
	assert.NotContains(t, changed, "b")
}

func TestDiff_NilOldMarksEverything(t *testing.T) {
	next, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	changed := Diff(nil, next)
	assert.Contains(t, changed, "project.name")
	assert.Contains(t, changed, "markers.header")
	assert.Contains(t, changed, "markers.custom")
}

func TestDiff_Identical(t *testing.T) {
	a, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)
	b, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.Empty(t, Diff(a, b))
}
