// Package generate computes fresh content for non-Guard markers. It is a
// pure function of the marker config, the region's current body, and the
// model snapshot; literal substitution is delegated to the render package.
package generate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"regen/internal/marker"
	"regen/internal/model"
	"regen/internal/render"
)

// Generation failures are scoped to one marker: the previous content is
// retained and the error reported, never propagated as a crash.
var (
	ErrMissingParameter     = errors.New("missing template parameter")
	ErrMissingDataSource    = errors.New("missing iteration data source")
	ErrUnevaluableCondition = errors.New("unevaluable condition")
)

// Generator dispatches on marker kind and strategy.
type Generator struct {
	renderer *render.Renderer
}

// New creates a generator backed by the given renderer.
func New(renderer *render.Renderer) *Generator {
	return &Generator{renderer: renderer}
}

// Generate computes the new body for a region. Guard configs are a
// programming error here; the rewriter never forwards them.
func (g *Generator) Generate(region *marker.Region, cfg marker.Config, snap *model.Snapshot) (string, error) {
	switch c := cfg.(type) {
	case marker.Generated:
		return g.generated(region, c, snap)
	case marker.Conditional:
		return g.conditional(region, c, snap)
	case marker.Import:
		return g.imports(region, c), nil
	case marker.Template:
		return g.template(region, c, snap)
	case marker.Guard:
		return "", fmt.Errorf("guard %q passed to generator", region.ID)
	}
	return "", fmt.Errorf("unknown marker config %T for %q", cfg, region.ID)
}

func (g *Generator) generated(region *marker.Region, cfg marker.Generated, snap *model.Snapshot) (string, error) {
	fresh, err := g.renderer.Render(region.ID, cfg.Template, snap.Tree())
	if err != nil {
		return "", err
	}
	fresh = strings.TrimRight(fresh, "\n")

	switch cfg.Strategy {
	case marker.Replace:
		return fresh, nil
	case marker.Merge:
		return mergeLines(region.Raw, fresh), nil
	case marker.IfEmpty:
		if strings.TrimSpace(region.Raw) == "" {
			return fresh, nil
		}
		return region.Raw, nil
	case marker.Append:
		return concat(region.Raw, fresh), nil
	case marker.Prepend:
		return concat(fresh, region.Raw), nil
	}
	return "", fmt.Errorf("unknown generation strategy %q for %q", cfg.Strategy, region.ID)
}

func (g *Generator) conditional(region *marker.Region, cfg marker.Conditional, snap *model.Snapshot) (string, error) {
	if cfg.Strategy == marker.Switch {
		value, ok := snap.String(cfg.Condition)
		if !ok {
			return "", fmt.Errorf("%w: switch key %q not in model", ErrUnevaluableCondition, cfg.Condition)
		}
		body, ok := cfg.Alternatives[value]
		if !ok {
			body, ok = cfg.Alternatives["default"]
			if !ok {
				return "", fmt.Errorf("%w: no alternative for %q=%q", ErrUnevaluableCondition, cfg.Condition, value)
			}
		}
		out, err := g.renderer.Render(region.ID+":"+value, body, snap.Tree())
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n"), nil
	}

	truth, err := Eval(cfg.Condition, snap)
	if err != nil {
		return "", err
	}
	emit := truth
	if cfg.Strategy == marker.Exclude {
		emit = !truth
	}
	if !emit {
		return "", nil
	}
	out, err := g.renderer.Render(region.ID, cfg.Template, snap.Tree())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// imports produces a deterministic, de-duplicated import list.
func (g *Generator) imports(region *marker.Region, cfg marker.Import) string {
	existing := splitEntries(region.Raw)
	required := dedup(cfg.Requires)

	var out []string
	switch cfg.Merge {
	case marker.KeepExisting:
		// Manual entries stay first, in their original order; required
		// entries not already present are appended.
		out = dedup(existing)
		have := toSet(out)
		for _, imp := range required {
			if _, ok := have[imp]; !ok {
				out = append(out, imp)
			}
		}
	case marker.ReplaceImports:
		out = required
	case marker.MergeImports:
		out = dedup(append(existing, required...))
		sort.Strings(out)
	default:
		out = required
	}
	return strings.Join(out, "\n")
}

func (g *Generator) template(region *marker.Region, cfg marker.Template, snap *model.Snapshot) (string, error) {
	base := make(map[string]any, len(cfg.Parameters)+2)
	for k, v := range cfg.Parameters {
		base[k] = v
	}

	if cfg.Iteration == nil {
		out, err := g.renderer.Render(region.ID, cfg.Body, base)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMissingParameter, err)
		}
		return strings.TrimRight(out, "\n"), nil
	}

	items, ok := snap.List(cfg.Iteration.Source)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingDataSource, cfg.Iteration.Source)
	}
	sep := cfg.Iteration.Separator
	if sep == "" {
		sep = "\n"
	}

	instances := make([]string, 0, len(items))
	for i, item := range items {
		data := make(map[string]any, len(base)+2)
		for k, v := range base {
			data[k] = v
		}
		data[cfg.Iteration.ItemVar] = item
		if cfg.Iteration.IndexVar != "" {
			data[cfg.Iteration.IndexVar] = i
		}
		out, err := g.renderer.Render(region.ID, cfg.Body, data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMissingParameter, err)
		}
		instances = append(instances, strings.TrimRight(out, "\n"))
	}
	return strings.Join(instances, sep), nil
}

// mergeLines unions old and new lines, de-duplicated, original order first.
func mergeLines(old, fresh string) string {
	out := splitEntries(old)
	have := toSet(out)
	for _, line := range strings.Split(fresh, "\n") {
		if line == "" {
			continue
		}
		if _, ok := have[line]; !ok {
			have[line] = struct{}{}
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func concat(first, second string) string {
	switch {
	case first == "":
		return second
	case second == "":
		return first
	}
	return first + "\n" + second
}

// splitEntries breaks a body into its non-blank lines.
func splitEntries(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func dedup(entries []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func toSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e] = struct{}{}
	}
	return set
}
