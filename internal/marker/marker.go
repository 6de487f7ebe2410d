// Package marker defines the region taxonomy shared by the parser,
// generator, and rewriter. The kind set is closed: dispatch over it is
// exhaustive, and each kind carries only its own attributes.
package marker

import "strings"

// Kind identifies what a marked region is for.
type Kind string

const (
	KindGuard       Kind = "guard"
	KindGenerated   Kind = "generated"
	KindConditional Kind = "conditional"
	KindImport      Kind = "import"
	KindTemplate    Kind = "template"
)

// ParseKind returns the kind named by s, if any.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindGuard, KindGenerated, KindConditional, KindImport, KindTemplate:
		return k, true
	}
	return "", false
}

// Strategy controls how freshly generated content combines with the
// existing body of a Generated region.
type Strategy string

const (
	Replace Strategy = "replace"
	Merge   Strategy = "merge"
	IfEmpty Strategy = "if-empty"
	Append  Strategy = "append"
	Prepend Strategy = "prepend"
)

// ConditionalStrategy controls how a Conditional region reacts to its
// condition's value.
type ConditionalStrategy string

const (
	Include ConditionalStrategy = "include"
	Exclude ConditionalStrategy = "exclude"
	Switch  ConditionalStrategy = "switch"
)

// ImportType classifies what an Import region manages.
type ImportType string

const (
	ImportModule     ImportType = "module"
	ImportDependency ImportType = "dependency"
	ImportLocal      ImportType = "local"
	ImportNamespace  ImportType = "namespace"
)

// ImportMergeStrategy controls how required imports combine with entries
// the developer added by hand.
type ImportMergeStrategy string

const (
	KeepExisting   ImportMergeStrategy = "keep-existing"
	ReplaceImports ImportMergeStrategy = "replace"
	MergeImports   ImportMergeStrategy = "merge"
)

// Config is the per-kind attribute set for a marker, supplied out-of-band
// by the model snapshot and matched to regions by id.
type Config interface {
	Kind() Kind
}

// Guard marks developer-owned content. The engine never regenerates it;
// an empty guard is seeded once with DefaultContent.
type Guard struct {
	PreserveIndent bool
	DefaultContent string
}

func (Guard) Kind() Kind { return KindGuard }

// Generated marks model-computed content.
type Generated struct {
	Strategy Strategy
	Deps     []string
	Template string
}

func (Generated) Kind() Kind { return KindGenerated }

// Conditional marks content whose presence or shape depends on a model
// condition. Alternatives is used by the Switch strategy only.
type Conditional struct {
	Condition    string
	Strategy     ConditionalStrategy
	Template     string
	Alternatives map[string]string
	Deps         []string
}

func (Conditional) Kind() Kind { return KindConditional }

// Import marks a managed import list.
type Import struct {
	Type     ImportType
	Merge    ImportMergeStrategy
	Requires []string
	Deps     []string
}

func (Import) Kind() Kind { return KindImport }

// Iteration instantiates a template body once per item of a model data
// source, joined by Separator.
type Iteration struct {
	Source    string
	ItemVar   string
	IndexVar  string
	Separator string
}

// Template marks parameterized content.
type Template struct {
	Body       string
	Parameters map[string]any
	Iteration  *Iteration
	Deps       []string
}

func (Template) Kind() Kind { return KindTemplate }

// Dependencies returns the model keys a config declares, or nil for kinds
// that never regenerate.
func Dependencies(cfg Config) []string {
	switch c := cfg.(type) {
	case Generated:
		return c.Deps
	case Conditional:
		return c.Deps
	case Import:
		return c.Deps
	case Template:
		return c.Deps
	}
	return nil
}

// Region is one marked span of a parsed document. StartText and EndText
// hold the delimiter lines verbatim so untouched regions round-trip
// byte-for-byte.
type Region struct {
	Kind      Kind
	ID        string
	StartLine int
	EndLine   int
	StartText string
	EndText   string
	Indent    string

	// Raw is the current body; Baseline is the last text the engine
	// itself produced for this region. Modified means they diverged
	// through an out-of-band edit.
	Raw      string
	Baseline string
	Modified bool
}

// Segment is one slice of a document: either a region or verbatim lines.
type Segment struct {
	Region *Region
	Lines  []string
}

// Document is the parsed form of one source file: ordered regions
// interleaved with verbatim text. It lives for one rewrite cycle.
type Document struct {
	Path            string
	ProfileID       string
	Segments        []Segment
	TrailingNewline bool

	byID map[string]*Region
}

// NewDocument assembles a document and indexes its regions.
func NewDocument(path, profileID string, segments []Segment, trailingNewline bool) *Document {
	d := &Document{
		Path:            path,
		ProfileID:       profileID,
		Segments:        segments,
		TrailingNewline: trailingNewline,
		byID:            make(map[string]*Region),
	}
	for _, seg := range segments {
		if seg.Region != nil {
			d.byID[seg.Region.ID] = seg.Region
		}
	}
	return d
}

// Regions returns the document's regions in source order.
func (d *Document) Regions() []*Region {
	var out []*Region
	for _, seg := range d.Segments {
		if seg.Region != nil {
			out = append(out, seg.Region)
		}
	}
	return out
}

// Region looks up a region by marker id.
func (d *Document) Region(id string) (*Region, bool) {
	r, ok := d.byID[id]
	return r, ok
}

// Render reserializes the document. Regions emit their original delimiter
// lines around their current body.
func (d *Document) Render() string {
	var lines []string
	for _, seg := range d.Segments {
		if seg.Region == nil {
			lines = append(lines, seg.Lines...)
			continue
		}
		r := seg.Region
		lines = append(lines, r.StartText)
		if r.Raw != "" {
			lines = append(lines, strings.Split(r.Raw, "\n")...)
		}
		lines = append(lines, r.EndText)
	}
	out := strings.Join(lines, "\n")
	if d.TrailingNewline {
		out += "\n"
	}
	return out
}
