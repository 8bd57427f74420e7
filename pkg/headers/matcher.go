package headers

import (
	"sort"
	"strings"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// Options tunes a Matcher. Zero values fall back to exact matching,
// a 0.5 fuzzy floor and a consolidation threshold of 3.
type Options struct {
	Enabled        bool
	Strategy       Strategy
	FuzzyThreshold float64
	Consolidate    bool
	Threshold      int
}

// Matcher resolves endpoint header sets to header-class names and
// accumulates the usage statistics for the run report. It is stateful
// and not safe for concurrent use; construct one per generation run.
type Matcher struct {
	opts Options

	defs   []ClassDef          // configured, sorted by name
	byName map[string]ClassDef // configured + synthesized

	counts     map[string]int      // unmatched signature occurrences
	synthBySig map[string]string   // signature -> synthesized class name
	sigPaths   map[string][]string // signature -> endpoint paths, call order

	stats Stats
}

// NewMatcher builds a matcher over the configured definitions.
// Definition names are taken as final class names and are consulted
// when de-colliding synthesized names.
func NewMatcher(defs map[string]DefinitionSpec, opts Options) *Matcher {
	if opts.Strategy == "" {
		opts.Strategy = StrategyExact
	}
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = 0.5
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 3
	}

	m := &Matcher{
		opts:       opts,
		byName:     make(map[string]ClassDef, len(defs)),
		counts:     make(map[string]int),
		synthBySig: make(map[string]string),
		sigPaths:   make(map[string][]string),
		stats:      Stats{PerClass: make(map[string]int)},
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := defs[name].normalize(name)
		m.defs = append(m.defs, def)
		m.byName[name] = def
	}
	return m
}

// FindMatchingHeaderClass returns the header-class name for the given
// endpoint header set, or "" when the endpoint keeps inline header
// parameters. The endpoint path feeds synthesized-class naming.
func (m *Matcher) FindMatchingHeaderClass(path string, params []ir.HeaderParam) string {
	if len(params) == 0 || !m.opts.Enabled {
		return ""
	}
	m.stats.Endpoints++
	sig := Signature(params)

	if name := m.match(sig, params); name != "" {
		m.recordMatch(name)
		return name
	}
	if m.opts.Consolidate {
		if name := m.consolidate(path, sig, params); name != "" {
			return name
		}
	}
	m.stats.Unmatched++
	return ""
}

// Class returns the definition behind a class name, configured or
// synthesized.
func (m *Matcher) Class(name string) (ClassDef, bool) {
	def, ok := m.byName[name]
	return def, ok
}

// ClassFor returns the synthesized class name registered for an
// endpoint signature, if any. Used to re-route endpoints that went
// unmatched before the class crossed the consolidation threshold.
func (m *Matcher) ClassFor(sig string) (string, bool) {
	name, ok := m.synthBySig[sig]
	return name, ok
}

// Classes lists every known definition sorted by name.
func (m *Matcher) Classes() []ClassDef {
	out := make([]ClassDef, 0, len(m.byName))
	for _, def := range m.byName {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Matcher) recordMatch(name string) {
	m.stats.Matched++
	m.stats.PerClass[name]++
}

func (m *Matcher) match(sig string, params []ir.HeaderParam) string {
	switch m.opts.Strategy {
	case StrategySubset:
		return m.matchSubset(params)
	case StrategyFuzzy:
		return m.matchFuzzy(params)
	default:
		return m.matchExact(sig)
	}
}

// matchExact picks the first definition (by name order) whose
// canonical signature equals the endpoint's.
func (m *Matcher) matchExact(sig string) string {
	for _, def := range m.defs {
		if def.Signature() == sig {
			return def.Name
		}
	}
	return ""
}

// matchSubset accepts a definition when the endpoint's headers all
// appear in it and every field the definition requires is present on
// the endpoint. Optional definition fields the endpoint lacks simply
// stay unset on the class instance.
func (m *Matcher) matchSubset(params []ir.HeaderParam) string {
	endpoint := nameSet(params)
	for _, def := range m.defs {
		if m.subsetOf(endpoint, def) {
			return def.Name
		}
	}
	return ""
}

func (m *Matcher) subsetOf(endpoint map[string]bool, def ClassDef) bool {
	fields := defNameSet(def)
	for name := range endpoint {
		if !fields[name] {
			return false
		}
	}
	for _, f := range def.Fields {
		if f.Required && !endpoint[strings.ToLower(f.Name)] {
			return false
		}
	}
	return true
}

// matchFuzzy scores name-set overlap with the Jaccard index and keeps
// the best definition at or above the configured floor. Ties go to the
// definition earlier in name order.
func (m *Matcher) matchFuzzy(params []ir.HeaderParam) string {
	endpoint := nameSet(params)
	best := ""
	bestScore := 0.0
	for _, def := range m.defs {
		score := jaccard(endpoint, defNameSet(def))
		if score >= m.opts.FuzzyThreshold && score > bestScore {
			best = def.Name
			bestScore = score
		}
	}
	return best
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for name := range a {
		if b[name] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
