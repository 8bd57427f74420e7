package resolver

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// allOfType resolves an allOf composition: a single-reference allOf is
// a pure alias to the referenced type, anything else merges into a
// promoted model.
func (r *Resolver) allOfType(s *openapi3.Schema, hint string) ir.ResolvedType {
	if t, ok := r.allOfPassthrough(s, hint); ok {
		return t
	}
	return r.promoteModel(hint, r.mergeAllOf(s))
}

// allOfPassthrough detects the alias form allOf: [$ref] with no
// sibling properties; the wrapper exists only to attach metadata.
func (r *Resolver) allOfPassthrough(s *openapi3.Schema, hint string) (ir.ResolvedType, bool) {
	if len(s.AllOf) != 1 || len(s.Properties) > 0 {
		return ir.ResolvedType{}, false
	}
	member := s.AllOf[0]
	if member == nil || member.Ref == "" {
		return ir.ResolvedType{}, false
	}
	return r.typeFor(member, hint), true
}

// mergeAllOf flattens an allOf composition into one synthetic object
// schema. Members are merged in declaration order, nested allOf
// members recursively; the first occurrence of a property name wins.
// Sibling properties of the composition itself merge after the
// members. Required lists union.
func (r *Resolver) mergeAllOf(s *openapi3.Schema) *openapi3.Schema {
	merged := &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeObject},
		Properties:  openapi3.Schemas{},
		Description: s.Description,
	}
	visited := make(map[*openapi3.Schema]struct{})

	var walk func(m *openapi3.Schema)
	walk = func(m *openapi3.Schema) {
		if m == nil {
			return
		}
		if _, dup := visited[m]; dup {
			return
		}
		visited[m] = struct{}{}

		for _, member := range m.AllOf {
			if member == nil {
				continue
			}
			walk(member.Value)
		}
		for name, prop := range m.Properties {
			if _, exists := merged.Properties[name]; !exists {
				merged.Properties[name] = prop
			}
		}
		for _, req := range m.Required {
			if !containsString(merged.Required, req) {
				merged.Required = append(merged.Required, req)
			}
		}
		if merged.Description == "" {
			merged.Description = m.Description
		}
	}
	walk(s)
	return merged
}

// compositeType resolves oneOf/anyOf. The two-member null pattern
// becomes a nullable single type, a lone member is degenerate and
// resolves directly, two or more members need a discriminator to
// become a union, and everything else degrades to dynamic with a
// note.
func (r *Resolver) compositeType(s *openapi3.Schema, members []*openapi3.SchemaRef, hint string) ir.ResolvedType {
	nonNull, nulls := partitionNull(members)

	switch {
	case nulls > 1:
		r.note("composition at %s has several null members; using dynamic", hint)
		return dynamicType()
	case len(nonNull) == 0:
		return dynamicType()
	case len(nonNull) == 1:
		t := r.typeFor(nonNull[0], hint)
		if nulls == 1 {
			t = nullableType(t)
		}
		return t
	}

	if s.Discriminator != nil && s.Discriminator.PropertyName != "" {
		t := r.promoteUnion(hint, s, nonNull)
		if nulls == 1 {
			t = nullableType(t)
		}
		return t
	}
	r.note("untagged composition at %s; using dynamic", hint)
	return dynamicType()
}

// partitionNull splits composition members into non-null members and
// a count of {type: "null"} markers.
func partitionNull(members []*openapi3.SchemaRef) ([]*openapi3.SchemaRef, int) {
	nonNull := make([]*openapi3.SchemaRef, 0, len(members))
	nulls := 0
	for _, m := range members {
		if isNullSchema(m) {
			nulls++
			continue
		}
		nonNull = append(nonNull, m)
	}
	return nonNull, nulls
}

func isNullSchema(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Ref == "" && ref.Value != nil &&
		ref.Value.Type != nil && ref.Value.Type.Is(openapi3.TypeNull)
}

// isUnionSchema reports whether a named schema will resolve into a
// discriminated union.
func (r *Resolver) isUnionSchema(s *openapi3.Schema) bool {
	if s.Discriminator == nil || s.Discriminator.PropertyName == "" {
		return false
	}
	members := s.OneOf
	if len(members) == 0 {
		members = s.AnyOf
	}
	nonNull, _ := partitionNull(members)
	return len(nonNull) >= 2
}

func containsString(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
