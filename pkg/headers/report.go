package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bndr/gotabulate"
)

// Stats summarizes one generation run. Endpoints counts only endpoints
// that carried custom headers; Unmatched are those left with inline
// header parameters.
type Stats struct {
	Endpoints    int
	Matched      int
	Consolidated int
	Unmatched    int
	PerClass     map[string]int
}

// Stats returns a copy of the accumulated statistics.
func (m *Matcher) Stats() Stats {
	out := m.stats
	out.PerClass = make(map[string]int, len(m.stats.PerClass))
	for name, n := range m.stats.PerClass {
		out.PerClass[name] = n
	}
	return out
}

// Report renders the per-class usage table and a one-line summary for
// the generation log.
func (m *Matcher) Report() string {
	if !m.opts.Enabled {
		return "header class matching disabled\n"
	}

	var b strings.Builder
	if classes := m.Classes(); len(classes) > 0 {
		rows := make([][]string, 0, len(classes))
		for _, def := range classes {
			origin := "configured"
			if def.Synthesized {
				origin = "synthesized"
			}
			rows = append(rows, []string{
				def.Name,
				origin,
				strconv.Itoa(len(def.Fields)),
				strconv.Itoa(m.stats.PerClass[def.Name]),
			})
		}
		t := gotabulate.Create(rows)
		t.SetHeaders([]string{"Header class", "Origin", "Fields", "Endpoints"})
		t.SetAlign("left")
		t.SetWrapStrings(true)
		t.SetMaxCellSize(85)
		b.WriteString(t.Render("grid"))
	}
	fmt.Fprintf(&b, "endpoints with headers: %d, matched: %d (synthesized classes: %d), inline: %d\n",
		m.stats.Endpoints, m.stats.Matched, m.stats.Consolidated, m.stats.Unmatched)
	return b.String()
}
