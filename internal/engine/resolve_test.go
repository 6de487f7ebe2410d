package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceMarkerBody(t *testing.T) {
	text := `package api

// <regen:generated:endpoints:start>
old body
// <regen:generated:endpoints:end>

untouched trailer
`
	out, err := ReplaceMarkerBody("api.go", text, "endpoints", "fresh body\nsecond line")
	require.NoError(t, err)
	assert.Equal(t, `package api

// <regen:generated:endpoints:start>
fresh body
second line
// <regen:generated:endpoints:end>

untouched trailer
`, out)
}

func TestReplaceMarkerBody_UnknownMarker(t *testing.T) {
	_, err := ReplaceMarkerBody("api.go", "plain file\n", "nope", "x")
	assert.Error(t, err)
}

func TestReplaceMarkerBody_BadFile(t *testing.T) {
	_, err := ReplaceMarkerBody("api.bin", "", "m", "x")
	assert.Error(t, err)

	_, err = ReplaceMarkerBody("api.go", "// <regen:guard:g:start>\n", "g", "x")
	assert.Error(t, err)
}

func TestAdoptBaseline(t *testing.T) {
	store := openStore(t)
	session, err := NewSession(store)
	require.NoError(t, err)

	require.NoError(t, session.AdoptBaseline("api.go", "endpoints", "kept content"))

	content, found, err := store.Baseline("api.go", "endpoints")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kept content", content)
}

func TestAdoptBaseline_NoStore(t *testing.T) {
	session, err := NewSession(nil)
	require.NoError(t, err)
	assert.NoError(t, session.AdoptBaseline("api.go", "m", "x"))
}
