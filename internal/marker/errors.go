package marker

import "fmt"

// ParseErrorCode classifies why a document was rejected.
type ParseErrorCode string

const (
	// ErrUnbalanced covers a start without its end, an end without a
	// start, and an end that doesn't match the open marker.
	ErrUnbalanced ParseErrorCode = "unbalanced marker"
	// ErrDuplicateID means two markers in one document share an id.
	ErrDuplicateID ParseErrorCode = "duplicate marker id"
	// ErrUnknownKind means the delimiter names a kind outside the
	// closed set.
	ErrUnknownKind ParseErrorCode = "unknown marker kind"
	// ErrNested means a marker opened inside another. Nesting between
	// kinds is unsupported and rejected outright.
	ErrNested ParseErrorCode = "nested marker"
)

// ParseError is fatal for the whole file: the engine emits no output for
// it rather than risk partial corruption.
type ParseError struct {
	Path   string
	Line   int // 1-based line of the offending delimiter, 0 at end of input
	Code   ParseErrorCode
	Marker string // kind:id of the offending marker, when known
	Detail string
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Marker)
}
