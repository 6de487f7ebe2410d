// Package render is the literal-text substitution layer: marker bodies are
// Go text/templates executed against model data. Parsed templates are
// cached so repeated regeneration of the same marker stays cheap.
package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Renderer parses and executes templates with a shared helper funcMap.
// Safe for concurrent use.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// New creates a renderer with the built-in helpers.
func New() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// Render executes a template string against data. The name appears in
// error messages; caching keys on the template text itself, so a marker
// whose template changes between runs never hits a stale entry. Missing
// keys are errors, which is what surfaces absent template parameters.
func (r *Renderer) Render(name, templateStr string, data any) (string, error) {
	key := cacheKey(templateStr)

	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()

	if !ok {
		var err error
		tmpl, err = template.New(name).
			Funcs(r.funcMap).
			Option("missingkey=error").
			Parse(templateStr)
		if err != nil {
			return "", fmt.Errorf("parsing template %q: %w", name, err)
		}
		r.mu.Lock()
		r.cache[key] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return buf.String(), nil
}

// ClearCache drops all cached templates.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func cacheKey(templateStr string) string {
	h := fnv.New64a()
	h.Write([]byte(templateStr))
	return fmt.Sprintf("%x", h.Sum64())
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase,
		"camelCase":  CamelCase,
		"snakeCase":  SnakeCase,

		// String manipulation
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     Title,
		"trim":      strings.TrimSpace,
		"quote":     Quote,
		"join":      Join,
		"split":     strings.Split,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,
		"indent":    Indent,

		// Utilities
		"default": Default,
	}
}

// Join concatenates list items with a separator. It accepts both []string
// and the []any that YAML decoding produces.
func Join(list any, sep string) (string, error) {
	switch items := list.(type) {
	case []string:
		return strings.Join(items, sep), nil
	case []any:
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = fmt.Sprintf("%v", it)
		}
		return strings.Join(parts, sep), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("join: cannot join %T", list)
}

// Indent prefixes every non-empty line of s with prefix.
func Indent(prefix, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// PascalCase converts snake_case or camelCase to PascalCase.
// Examples: user_name → UserName, userName → UserName, user_id → UserID
func PascalCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			if part != "" {
				parts[i] = capitalizeWord(part)
			}
		}
		return strings.Join(parts, "")
	}
	if unicode.IsLower(rune(s[0])) {
		return capitalizeWord(s)
	}
	return s
}

// CamelCase converts snake_case or PascalCase to camelCase.
func CamelCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			if part == "" {
				continue
			}
			if i == 0 {
				parts[i] = strings.ToLower(part)
			} else {
				parts[i] = strings.ToUpper(string(part[0])) + strings.ToLower(part[1:])
			}
		}
		return strings.Join(parts, "")
	}
	if unicode.IsUpper(rune(s[0])) {
		return strings.ToLower(string(s[0])) + s[1:]
	}
	return s
}

// SnakeCase converts PascalCase or camelCase to snake_case, keeping
// acronym runs intact: HTTPServer → http_server.
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// capitalizeWord capitalizes a word with special handling for acronyms.
func capitalizeWord(s string) string {
	if s == "" {
		return ""
	}
	acronyms := map[string]string{
		"id":   "ID",
		"url":  "URL",
		"uri":  "URI",
		"http": "HTTP",
		"api":  "API",
		"uuid": "UUID",
		"sql":  "SQL",
		"html": "HTML",
		"css":  "CSS",
		"json": "JSON",
		"xml":  "XML",
		"ui":   "UI",
		"db":   "DB",
	}
	if acronym, ok := acronyms[strings.ToLower(s)]; ok {
		return acronym
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// Quote wraps a string in double quotes.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title capitalizes the first letter of each word.
func Title(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// Default returns defaultVal when val is nil or empty.
func Default(defaultVal, val any) any {
	if val == nil {
		return defaultVal
	}
	if s, ok := val.(string); ok && s == "" {
		return defaultVal
	}
	switch v := val.(type) {
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}
	return val
}
