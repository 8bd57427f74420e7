// Package headers clusters endpoint header-parameter sets into shared
// header classes. Endpoints are matched against configured class
// definitions by signature (exact, subset or fuzzy), and unmatched
// signatures that recur often enough get a class synthesized for them.
package headers

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy selects how endpoint signatures are compared against
// configured definitions.
type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategySubset Strategy = "subset"
	StrategyFuzzy  Strategy = "fuzzy"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyExact, StrategySubset, StrategyFuzzy:
		return true
	}
	return false
}

// Config is the headers section of the generator configuration.
// CustomMatch and CustomConsolidate default to enabled when omitted.
type Config struct {
	CustomMatch            *bool                     `yaml:"customMatch"`
	MatchStrategy          Strategy                  `yaml:"matchStrategy"`
	FuzzyThreshold         float64                   `yaml:"fuzzyThreshold"`
	CustomConsolidate      *bool                     `yaml:"customConsolidate"`
	ConsolidationThreshold int                       `yaml:"consolidationThreshold"`
	Definitions            map[string]DefinitionSpec `yaml:"definitions"`
}

// MatchEnabled reports whether the matcher runs at all.
func (c Config) MatchEnabled() bool {
	return c.CustomMatch == nil || *c.CustomMatch
}

// ConsolidateEnabled reports whether unmatched signatures feed the
// auto-consolidator.
func (c Config) ConsolidateEnabled() bool {
	return c.CustomConsolidate == nil || *c.CustomConsolidate
}

// Options converts the configuration into matcher options.
func (c Config) Options() Options {
	return Options{
		Enabled:        c.MatchEnabled(),
		Strategy:       c.MatchStrategy,
		FuzzyThreshold: c.FuzzyThreshold,
		Consolidate:    c.ConsolidateEnabled(),
		Threshold:      c.ConsolidationThreshold,
	}
}

// Validate checks option ranges. Definition contents are deliberately
// not validated; a definition whose required list names an absent field
// stays usable as a (possibly never-matching) definition.
func (c Config) Validate() error {
	if c.MatchStrategy != "" && !c.MatchStrategy.Valid() {
		return fmt.Errorf("headers.matchStrategy must be one of exact, subset, fuzzy (got %q)", c.MatchStrategy)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("headers.fuzzyThreshold must be within (0, 1] when set (got %v)", c.FuzzyThreshold)
	}
	if c.ConsolidationThreshold < 0 {
		return fmt.Errorf("headers.consolidationThreshold must be a positive integer when set (got %d)", c.ConsolidationThreshold)
	}
	return nil
}

// DefinitionSpec is the configuration form of one header class. Fields
// accepts either a plain list of header names or a map of per-field
// metadata; both shapes normalize into the same ClassDef before any
// matching happens.
type DefinitionSpec struct {
	Fields      FieldList `yaml:"fields"`
	Required    []string  `yaml:"required"`
	Description string    `yaml:"description"`
}

// FieldSpec carries per-field metadata in the map form of "fields".
type FieldSpec struct {
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description"`
}

// FieldList decodes both accepted YAML shapes for "fields".
type FieldList struct {
	entries []fieldEntry
}

type fieldEntry struct {
	name    string
	spec    FieldSpec
	hasSpec bool
}

// Names lists the declared field names in declaration order.
func (f FieldList) Names() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.name)
	}
	return out
}

// FromNames builds a plain name-only field list; used by tests and
// programmatic configuration.
func FromNames(names ...string) FieldList {
	f := FieldList{}
	for _, n := range names {
		f.entries = append(f.entries, fieldEntry{name: n})
	}
	return f
}

// FromSpecs builds a field list with per-field metadata in the given
// order.
func FromSpecs(names []string, specs map[string]FieldSpec) FieldList {
	f := FieldList{}
	for _, n := range names {
		f.entries = append(f.entries, fieldEntry{name: n, spec: specs[n], hasSpec: true})
	}
	return f
}

// UnmarshalYAML accepts either a sequence of names or a mapping of
// name to FieldSpec.
func (f *FieldList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		for _, n := range value.Content {
			var name string
			if err := n.Decode(&name); err != nil {
				return err
			}
			f.entries = append(f.entries, fieldEntry{name: name})
		}
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			var name string
			if err := value.Content[i].Decode(&name); err != nil {
				return err
			}
			var spec FieldSpec
			if err := value.Content[i+1].Decode(&spec); err != nil {
				return err
			}
			f.entries = append(f.entries, fieldEntry{name: name, spec: spec, hasSpec: true})
		}
		return nil
	}
	return fmt.Errorf("headers definition fields must be a list of names or a map of field specs")
}

// Field is one header field of a canonical class definition. Type uses
// schema type names (string, integer, number, boolean); string when
// unspecified.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// ClassDef is the canonical internal representation of a header class,
// configured or synthesized. Fields are sorted by lowercased name.
type ClassDef struct {
	Name        string
	Fields      []Field
	Description string
	Synthesized bool
}

// Signature returns the canonical signature of the definition's field
// set and required partition.
func (d ClassDef) Signature() string {
	parts := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		parts = append(parts, sigPart(f.Name, f.Required))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// normalize converts a DefinitionSpec into a ClassDef. Names from the
// required list that are absent from the field set are kept as string
// fields so the definition means what it declares.
func (s DefinitionSpec) normalize(name string) ClassDef {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[strings.ToLower(r)] = true
	}

	fields := make([]Field, 0, len(s.Fields.entries))
	seen := make(map[string]struct{}, len(s.Fields.entries))
	for _, e := range s.Fields.entries {
		key := strings.ToLower(e.name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		f := Field{Name: e.name, Type: "string"}
		if e.hasSpec {
			if e.spec.Type != "" {
				f.Type = e.spec.Type
			}
			f.Required = e.spec.Required
			f.Description = e.spec.Description
		}
		if required[key] {
			f.Required = true
		}
		fields = append(fields, f)
	}
	for _, r := range s.Required {
		key := strings.ToLower(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fields = append(fields, Field{Name: r, Type: "string", Required: true})
	}

	sort.Slice(fields, func(i, j int) bool {
		return strings.ToLower(fields[i].Name) < strings.ToLower(fields[j].Name)
	})
	return ClassDef{Name: name, Fields: fields, Description: s.Description}
}
