// Package language maps file extensions to the comment syntax used to
// recognize regeneration markers. Adding a language is a table edit.
package language

import "fmt"

// Profile describes the comment delimiters of one target language.
// LinePrefix is empty for languages without line comments; BlockOpen and
// BlockClose are empty for languages without block comments.
type Profile struct {
	ID         string
	LinePrefix string
	BlockOpen  string
	BlockClose string
}

// Comment wraps text in this language's preferred comment form. Line
// comments win when both forms exist.
func (p Profile) Comment(text string) string {
	if p.LinePrefix != "" {
		return p.LinePrefix + " " + text
	}
	return p.BlockOpen + " " + text + " " + p.BlockClose
}

var (
	doubleSlash = Profile{LinePrefix: "//", BlockOpen: "/*", BlockClose: "*/"}
	hash        = Profile{LinePrefix: "#"}
	htmlBlock   = Profile{BlockOpen: "<!--", BlockClose: "-->"}
	cssBlock    = Profile{BlockOpen: "/*", BlockClose: "*/"}
	dashDash    = Profile{LinePrefix: "--"}
)

func derive(id string, base Profile) Profile {
	base.ID = id
	return base
}

// profiles is the extension table. Keys are lowercase extensions without
// the leading dot.
var profiles = map[string]Profile{
	"go":    derive("go", doubleSlash),
	"rs":    derive("rust", doubleSlash),
	"js":    derive("javascript", doubleSlash),
	"mjs":   derive("javascript", doubleSlash),
	"jsx":   derive("javascript", doubleSlash),
	"ts":    derive("typescript", doubleSlash),
	"tsx":   derive("typescript", doubleSlash),
	"java":  derive("java", doubleSlash),
	"cs":    derive("csharp", doubleSlash),
	"cpp":   derive("cpp", doubleSlash),
	"cc":    derive("cpp", doubleSlash),
	"cxx":   derive("cpp", doubleSlash),
	"h":     derive("cpp", doubleSlash),
	"hpp":   derive("cpp", doubleSlash),
	"swift": derive("swift", doubleSlash),
	"kt":    derive("kotlin", doubleSlash),
	"py":    derive("python", hash),
	"rb":    derive("ruby", hash),
	"sh":    derive("shell", hash),
	"yaml":  derive("yaml", hash),
	"yml":   derive("yaml", hash),
	"toml":  derive("toml", hash),
	"html":  derive("html", htmlBlock),
	"htm":   derive("html", htmlBlock),
	"xml":   derive("xml", htmlBlock),
	"css":   derive("css", cssBlock),
	"sql":   derive("sql", dashDash),
}

// Lookup returns the profile for a file extension. The extension may be
// given with or without a leading dot.
func Lookup(ext string) (Profile, error) {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	p, ok := profiles[lower(ext)]
	if !ok {
		return Profile{}, fmt.Errorf("no language profile for extension %q", ext)
	}
	return p, nil
}

// Known reports whether an extension has a profile.
func Known(ext string) bool {
	_, err := Lookup(ext)
	return err == nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
