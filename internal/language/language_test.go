package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		ext     string
		id      string
		comment string
	}{
		{"go", "go", "// hello"},
		{".go", "go", "// hello"},
		{"RS", "rust", "// hello"},
		{"py", "python", "# hello"},
		{"yml", "yaml", "# hello"},
		{"html", "html", "<!-- hello -->"},
		{"css", "css", "/* hello */"},
		{"sql", "sql", "-- hello"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			p, err := Lookup(tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.comment, p.Comment("hello"))
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup(".bin")
	assert.Error(t, err)

	assert.False(t, Known(".bin"))
	assert.True(t, Known(".ts"))
}
