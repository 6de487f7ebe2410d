// Package parser scans source text into an ordered sequence of marked
// regions and verbatim gaps.
//
// The delimiter grammar is comment-syntax-tagged and language-agnostic:
//
//	// <regen:kind:id:start>
//	...body...
//	// <regen:kind:id:end>
//
// with the comment form taken from the file's language profile. Attribute
// data (strategies, conditions, parameters, dependency keys) is supplied
// out-of-band by the model snapshot and matched by id; the delimiter
// carries only kind and id.
//
// Parsing is a pure function of its inputs. Any structural defect — an
// unmatched delimiter, a duplicate id, an unknown kind, a marker nested
// inside another — fails the whole parse so the caller never writes a
// partially understood file.
package parser

import (
	"strconv"
	"strings"

	"regen/internal/language"
	"regen/internal/marker"
)

const (
	tokenOpen  = "<regen:"
	tokenClose = ">"
	posStart   = "start"
	posEnd     = "end"
)

// token is one recognized delimiter line.
type token struct {
	kind  string
	id    string
	start bool
}

// Parse scans text into a document. The returned error, if any, is a
// *marker.ParseError.
func Parse(path, text string, profile language.Profile) (*marker.Document, error) {
	lines := strings.Split(text, "\n")
	trailingNewline := strings.HasSuffix(text, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	var (
		segments []marker.Segment
		verbatim []string
		open     *marker.Region
		openTok  token
		body     []string
		seen     = map[string]int{} // id -> 1-based line of its start
	)

	flushVerbatim := func() {
		if len(verbatim) > 0 {
			segments = append(segments, marker.Segment{Lines: verbatim})
			verbatim = nil
		}
	}

	for i, line := range lines {
		tok, ok := scanLine(line, profile)
		if !ok {
			if open != nil {
				body = append(body, line)
			} else {
				verbatim = append(verbatim, line)
			}
			continue
		}

		if _, known := marker.ParseKind(tok.kind); !known {
			return nil, &marker.ParseError{
				Path:   path,
				Line:   i + 1,
				Code:   marker.ErrUnknownKind,
				Marker: tok.kind + ":" + tok.id,
			}
		}

		if tok.start {
			if open != nil {
				return nil, &marker.ParseError{
					Path:   path,
					Line:   i + 1,
					Code:   marker.ErrNested,
					Marker: tok.kind + ":" + tok.id,
					Detail: tok.kind + ":" + tok.id + " opened inside " + openTok.kind + ":" + openTok.id,
				}
			}
			if at, dup := seen[tok.id]; dup {
				return nil, &marker.ParseError{
					Path:   path,
					Line:   i + 1,
					Code:   marker.ErrDuplicateID,
					Marker: tok.kind + ":" + tok.id,
					Detail: "id " + tok.id + " already used at line " + strconv.Itoa(at),
				}
			}
			seen[tok.id] = i + 1
			flushVerbatim()
			kind, _ := marker.ParseKind(tok.kind)
			open = &marker.Region{
				Kind:      kind,
				ID:        tok.id,
				StartLine: i,
				StartText: line,
				Indent:    leadingWhitespace(line),
			}
			openTok = tok
			body = nil
			continue
		}

		// End token. It must match the most recently opened marker.
		if open == nil || tok.kind != openTok.kind || tok.id != openTok.id {
			detail := "end without matching start"
			if open != nil {
				detail = "expected end of " + openTok.kind + ":" + openTok.id
			}
			return nil, &marker.ParseError{
				Path:   path,
				Line:   i + 1,
				Code:   marker.ErrUnbalanced,
				Marker: tok.kind + ":" + tok.id,
				Detail: detail,
			}
		}
		open.EndLine = i
		open.EndText = line
		open.Raw = strings.Join(body, "\n")
		segments = append(segments, marker.Segment{Region: open})
		open = nil
		body = nil
	}

	if open != nil {
		return nil, &marker.ParseError{
			Path:   path,
			Code:   marker.ErrUnbalanced,
			Marker: openTok.kind + ":" + openTok.id,
			Detail: "start at line " + strconv.Itoa(open.StartLine+1) + " never closed",
		}
	}
	flushVerbatim()

	return marker.NewDocument(path, profile.ID, segments, trailingNewline), nil
}

// scanLine recognizes a delimiter line: a comment in the profile's syntax
// whose text is exactly one well-formed marker token. Malformed tokens are
// treated as plain text; only well-formed ones participate in matching.
func scanLine(line string, profile language.Profile) (token, bool) {
	trimmed := strings.TrimSpace(line)

	var inner string
	switch {
	case profile.LinePrefix != "" && strings.HasPrefix(trimmed, profile.LinePrefix):
		inner = strings.TrimSpace(strings.TrimPrefix(trimmed, profile.LinePrefix))
	case profile.BlockOpen != "" && strings.HasPrefix(trimmed, profile.BlockOpen) && strings.HasSuffix(trimmed, profile.BlockClose):
		inner = strings.TrimPrefix(trimmed, profile.BlockOpen)
		inner = strings.TrimSuffix(inner, profile.BlockClose)
		inner = strings.TrimSpace(inner)
	default:
		return token{}, false
	}

	if !strings.HasPrefix(inner, tokenOpen) || !strings.HasSuffix(inner, tokenClose) {
		return token{}, false
	}
	spec := strings.TrimSuffix(strings.TrimPrefix(inner, tokenOpen), tokenClose)
	parts := strings.Split(spec, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return token{}, false
	}
	switch parts[2] {
	case posStart:
		return token{kind: parts[0], id: parts[1], start: true}, true
	case posEnd:
		return token{kind: parts[0], id: parts[1], start: false}, true
	}
	return token{}, false
}

func leadingWhitespace(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}
