package headers

import (
	"sort"
	"strings"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// Signature canonicalizes an endpoint's header-parameter set into an
// order-independent key. Two endpoints share a signature exactly when
// they accept the same header names (case-insensitively) with the same
// required/optional split. An empty parameter set yields "".
func Signature(params []ir.HeaderParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, sigPart(p.OriginalName, p.Required))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func sigPart(name string, required bool) string {
	if required {
		return strings.ToLower(name) + ":req"
	}
	return strings.ToLower(name) + ":opt"
}

// nameSet lowers and collects header names for set comparisons.
func nameSet(params []ir.HeaderParam) map[string]bool {
	out := make(map[string]bool, len(params))
	for _, p := range params {
		out[strings.ToLower(p.OriginalName)] = true
	}
	return out
}

func defNameSet(def ClassDef) map[string]bool {
	out := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		out[strings.ToLower(f.Name)] = true
	}
	return out
}
