package model

import (
	"fmt"

	"regen/internal/marker"
)

// markerSpec is the YAML shape of one entry in the `markers` table.
type markerSpec struct {
	Kind string `yaml:"kind"`

	// guard
	PreserveIndent bool   `yaml:"preserve_indent"`
	Default        string `yaml:"default"`

	// generated / conditional / template
	Strategy string   `yaml:"strategy"`
	Deps     []string `yaml:"deps"`
	Template string   `yaml:"template"`

	// conditional
	Condition    string            `yaml:"condition"`
	Alternatives map[string]string `yaml:"alternatives"`

	// import
	Type     string   `yaml:"type"`
	Merge    string   `yaml:"merge"`
	Requires []string `yaml:"requires"`

	// template
	Params    map[string]any `yaml:"params"`
	Iteration *iterationSpec `yaml:"iteration"`
}

type iterationSpec struct {
	Source    string `yaml:"source"`
	Item      string `yaml:"item"`
	Index     string `yaml:"index"`
	Separator string `yaml:"separator"`
}

func (sp markerSpec) config() (marker.Config, error) {
	kind, ok := marker.ParseKind(sp.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", sp.Kind)
	}

	switch kind {
	case marker.KindGuard:
		return marker.Guard{
			PreserveIndent: sp.PreserveIndent,
			DefaultContent: sp.Default,
		}, nil

	case marker.KindGenerated:
		strategy := marker.Strategy(sp.Strategy)
		if sp.Strategy == "" {
			strategy = marker.Replace
		}
		switch strategy {
		case marker.Replace, marker.Merge, marker.IfEmpty, marker.Append, marker.Prepend:
		default:
			return nil, fmt.Errorf("unknown generation strategy %q", sp.Strategy)
		}
		return marker.Generated{
			Strategy: strategy,
			Deps:     sp.Deps,
			Template: sp.Template,
		}, nil

	case marker.KindConditional:
		strategy := marker.ConditionalStrategy(sp.Strategy)
		if sp.Strategy == "" {
			strategy = marker.Include
		}
		switch strategy {
		case marker.Include, marker.Exclude:
		case marker.Switch:
			if len(sp.Alternatives) == 0 {
				return nil, fmt.Errorf("switch strategy requires alternatives")
			}
		default:
			return nil, fmt.Errorf("unknown conditional strategy %q", sp.Strategy)
		}
		if sp.Condition == "" {
			return nil, fmt.Errorf("conditional marker requires a condition")
		}
		return marker.Conditional{
			Condition:    sp.Condition,
			Strategy:     strategy,
			Template:     sp.Template,
			Alternatives: sp.Alternatives,
			Deps:         sp.Deps,
		}, nil

	case marker.KindImport:
		typ := marker.ImportType(sp.Type)
		if sp.Type == "" {
			typ = marker.ImportModule
		}
		switch typ {
		case marker.ImportModule, marker.ImportDependency, marker.ImportLocal, marker.ImportNamespace:
		default:
			return nil, fmt.Errorf("unknown import type %q", sp.Type)
		}
		merge := marker.ImportMergeStrategy(sp.Merge)
		if sp.Merge == "" {
			merge = marker.MergeImports
		}
		switch merge {
		case marker.KeepExisting, marker.ReplaceImports, marker.MergeImports:
		default:
			return nil, fmt.Errorf("unknown import merge strategy %q", sp.Merge)
		}
		return marker.Import{
			Type:     typ,
			Merge:    merge,
			Requires: sp.Requires,
			Deps:     sp.Deps,
		}, nil

	case marker.KindTemplate:
		var iter *marker.Iteration
		if sp.Iteration != nil {
			if sp.Iteration.Source == "" {
				return nil, fmt.Errorf("iteration requires a data source")
			}
			item := sp.Iteration.Item
			if item == "" {
				item = "item"
			}
			iter = &marker.Iteration{
				Source:    sp.Iteration.Source,
				ItemVar:   item,
				IndexVar:  sp.Iteration.Index,
				Separator: sp.Iteration.Separator,
			}
		}
		return marker.Template{
			Body:       sp.Template,
			Parameters: sp.Params,
			Iteration:  iter,
			Deps:       sp.Deps,
		}, nil
	}

	return nil, fmt.Errorf("unknown kind %q", sp.Kind)
}
