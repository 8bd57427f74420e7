package resolver

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// resolveSchemaRef resolves an internal schema reference to its
// immediate target. The returned name is the first segment of the
// chain, so aliases keep their own identity; the rest of the chain is
// still walked to prove it terminates. Reference cycles and anything
// that is not an internal schema pointer resolve to not-found, which
// callers degrade to dynamic rather than treating as fatal.
func (r *Resolver) resolveSchemaRef(ref string) (string, *openapi3.SchemaRef, bool) {
	if _, cycling := r.inflightRefs[ref]; cycling {
		return "", nil, false
	}
	r.inflightRefs[ref] = struct{}{}
	defer delete(r.inflightRefs, ref)

	name, ok := refSchemaName(ref)
	if !ok {
		return "", nil, false
	}
	target, ok := r.lookupSchema(name)
	if !ok {
		return "", nil, false
	}
	if target.Ref != "" {
		if _, _, ok := r.resolveSchemaRef(target.Ref); !ok {
			return "", nil, false
		}
	}
	return name, target, true
}

// refSchemaName extracts the schema name from an internal pointer.
// Accepted forms are #/components/schemas/<name> and the legacy
// #/definitions/<name>; JSON-pointer escapes in the name segment are
// unescaped.
func refSchemaName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "#/") {
		return "", false
	}
	segs := strings.Split(ref[2:], "/")
	switch {
	case len(segs) == 3 && segs[0] == "components" && segs[1] == "schemas":
		return unescapePointerToken(segs[2]), true
	case len(segs) == 2 && segs[0] == "definitions":
		return unescapePointerToken(segs[1]), true
	}
	return "", false
}

func unescapePointerToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

func (r *Resolver) lookupSchema(name string) (*openapi3.SchemaRef, bool) {
	if r.doc.Components == nil || r.doc.Components.Schemas == nil {
		return nil, false
	}
	ref, ok := r.doc.Components.Schemas[name]
	if !ok || ref == nil {
		return nil, false
	}
	return ref, true
}
