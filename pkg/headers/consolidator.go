package headers

import (
	"sort"
	"strconv"
	"strings"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
)

// consolidate counts an unmatched signature and synthesizes a shared
// class once the signature has been seen Threshold times. Returns ""
// while the signature is still below the threshold.
func (m *Matcher) consolidate(path, sig string, params []ir.HeaderParam) string {
	m.counts[sig]++
	if name, ok := m.synthBySig[sig]; ok {
		m.recordMatch(name)
		return name
	}
	m.sigPaths[sig] = append(m.sigPaths[sig], path)
	if m.counts[sig] < m.opts.Threshold {
		return ""
	}
	name := m.synthesize(sig, params)
	m.recordMatch(name)
	return name
}

func (m *Matcher) synthesize(sig string, params []ir.HeaderParam) string {
	name := m.uniqueName(synthBaseName(m.sigPaths[sig]))

	fields := make([]Field, 0, len(params))
	for _, p := range params {
		fields = append(fields, Field{
			Name:        p.OriginalName,
			Type:        wireType(p.Type),
			Required:    p.Required,
			Description: p.Description,
		})
	}
	sort.Slice(fields, func(i, j int) bool {
		return strings.ToLower(fields[i].Name) < strings.ToLower(fields[j].Name)
	})

	def := ClassDef{
		Name:        name,
		Fields:      fields,
		Description: "Shared header parameters consolidated across endpoints.",
		Synthesized: true,
	}
	m.byName[name] = def
	m.synthBySig[sig] = name
	m.stats.Consolidated++
	return name
}

// Reroute reassigns a previously unmatched endpoint to the class later
// synthesized for its signature, keeping the run statistics honest.
// The orchestrator calls this in a second pass over endpoints that were
// seen before their signature crossed the threshold.
func (m *Matcher) Reroute(sig string) (string, bool) {
	name, ok := m.synthBySig[sig]
	if !ok {
		return "", false
	}
	m.stats.Unmatched--
	m.recordMatch(name)
	return name, true
}

func (m *Matcher) uniqueName(base string) string {
	name := base + "Headers"
	for i := 2; ; i++ {
		if _, taken := m.byName[name]; !taken {
			return name
		}
		name = base + "Headers" + strconv.Itoa(i)
	}
}

// synthBaseName derives a class-name stem from the paths that share a
// signature: the path tokens common to all of them in first-path
// order, else the first path's first token, else "Shared".
func synthBaseName(paths []string) string {
	if len(paths) == 0 {
		return "Shared"
	}
	first := pathTokens(paths[0])

	common := make([]string, 0, len(first))
	added := make(map[string]struct{}, len(first))
	for _, tok := range first {
		if _, dup := added[tok]; dup {
			continue
		}
		inAll := true
		for _, p := range paths[1:] {
			if !containsToken(pathTokens(p), tok) {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, tok)
			added[tok] = struct{}{}
		}
	}
	if len(common) == 0 && len(first) > 0 {
		common = first[:1]
	}

	var b strings.Builder
	for _, tok := range common {
		b.WriteString(naming.ClassName(tok))
	}
	if b.Len() == 0 {
		return "Shared"
	}
	return b.String()
}

func pathTokens(path string) []string {
	out := []string{}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

// wireType maps a resolved header type back onto the schema type name
// carried by class definitions. Headers travel as strings, so anything
// beyond the simple scalars degrades to string.
func wireType(t ir.ResolvedType) string {
	switch t.Kind {
	case ir.KindInt:
		return "integer"
	case ir.KindDouble:
		return "number"
	case ir.KindBool:
		return "boolean"
	default:
		return "string"
	}
}
