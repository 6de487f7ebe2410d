package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Basic(t *testing.T) {
	r := New()

	out, err := r.Render("greeting", "Hello, {{.name}}!", map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRender_Helpers(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		template string
		data     any
		want     string
	}{
		{"pascalCase", `{{pascalCase "user_name"}}`, nil, "UserName"},
		{"pascalCase acronym", `{{pascalCase "user_id"}}`, nil, "UserID"},
		{"camelCase", `{{camelCase "user_name"}}`, nil, "userName"},
		{"camelCase from pascal", `{{camelCase "UserName"}}`, nil, "userName"},
		{"snakeCase", `{{snakeCase "UserName"}}`, nil, "user_name"},
		{"snakeCase acronym run", `{{snakeCase "HTTPServer"}}`, nil, "http_server"},
		{"upper", `{{upper "hi"}}`, nil, "HI"},
		{"title", `{{title "hello world"}}`, nil, "Hello World"},
		{"quote", `{{quote "x"}}`, nil, `"x"`},
		{"indent", "{{indent \"  \" .body}}", map[string]any{"body": "a\nb"}, "  a\n  b"},
		{"default applied", `{{default "anon" .name}}`, map[string]any{"name": ""}, "anon"},
		{"default skipped", `{{default "anon" .name}}`, map[string]any{"name": "ada"}, "ada"},
		{"join strings", `{{join .items ", "}}`, map[string]any{"items": []string{"a", "b"}}, "a, b"},
		{"join any", `{{join .items "-"}}`, map[string]any{"items": []any{"a", 1}}, "a-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.name, tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_MissingKeyIsError(t *testing.T) {
	r := New()

	_, err := r.Render("m", "{{.nope}}", map[string]any{"name": "x"})
	assert.Error(t, err)
}

func TestRender_ParseError(t *testing.T) {
	r := New()

	_, err := r.Render("bad", "{{.unclosed", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestRender_CacheKeyedOnBody(t *testing.T) {
	r := New()

	// Same name, different bodies: the second body must not hit the
	// first's cache entry.
	out, err := r.Render("m", "one", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	out, err = r.Render("m", "two", nil)
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestRender_ConcurrentUse(t *testing.T) {
	r := New()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				out, err := r.Render("c", "v={{.v}}", map[string]any{"v": "x"})
				if err != nil || out != "v=x" {
					t.Errorf("Render = %q, %v", out, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
