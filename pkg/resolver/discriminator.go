package resolver

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
)

// promoteUnion promotes an inline discriminated composition to a named
// union.
func (r *Resolver) promoteUnion(hint string, s *openapi3.Schema, members []*openapi3.SchemaRef) ir.ResolvedType {
	className := naming.ClassName(hint)
	if r.claimPromotion(className) {
		r.buildUnionAs(className, s, members)
	}
	return r.referenceType(className)
}

// buildUnionAs builds a tagged union over the non-null members of a
// discriminated composition. Duplicate discriminator values keep the
// first member and record a finding; the union is always constructed.
func (r *Resolver) buildUnionAs(className string, s *openapi3.Schema, members []*openapi3.SchemaRef) {
	r.classKinds[className] = ir.KindUnion
	disc := s.Discriminator
	u := &ir.Union{
		Name:        className,
		UnionKey:    disc.PropertyName,
		Description: s.Description,
	}
	r.unions[className] = u

	seen := make(map[string]struct{}, len(members))
	for i, m := range members {
		v, ok := r.unionMember(className, i, m, disc)
		if !ok {
			continue
		}
		if _, dup := seen[v.Tag]; dup {
			u.Findings = append(u.Findings,
				fmt.Sprintf("duplicate discriminator value %q; keeping the first member", v.Tag))
			continue
		}
		seen[v.Tag] = struct{}{}
		u.Variants = append(u.Variants, v)
	}
}

// unionMember resolves one composition member into a variant.
// Referenced members defer their field copy to finalizeUnions, since
// the member model may still be mid-build when the union references it.
func (r *Resolver) unionMember(unionName string, idx int, m *openapi3.SchemaRef, disc *openapi3.Discriminator) (ir.UnionVariant, bool) {
	if m == nil {
		return ir.UnionVariant{}, false
	}

	if m.Ref != "" {
		name, _, ok := r.resolveSchemaRef(m.Ref)
		if !ok {
			r.note("union %s: unresolvable member $ref %q; skipping", unionName, m.Ref)
			return ir.UnionVariant{}, false
		}
		memberClass := naming.ClassName(name)
		kind, _ := r.ensureClass(memberClass)
		if kind != ir.KindModel {
			r.note("union %s: member %s is not an object schema; skipping", unionName, name)
			return ir.UnionVariant{}, false
		}
		tag := mappedTag(disc, m.Ref, name)
		return ir.UnionVariant{
			Tag:        tag,
			Name:       naming.ClassName(unionName + "_" + tag),
			MemberType: memberClass,
		}, true
	}

	// Inline member: tag and variant name derive from the position.
	tag := "type" + strconv.Itoa(idx)
	variantName := naming.ClassName(unionName + "_" + tag)
	s := m.Value
	if s == nil {
		return ir.UnionVariant{}, false
	}
	if len(s.AllOf) > 0 {
		s = r.mergeAllOf(s)
	}
	if effType, _, _ := effectiveType(s.Type); effType != "" && effType != openapi3.TypeObject {
		r.note("union %s: member %d is not an object schema; skipping", unionName, idx)
		return ir.UnionVariant{}, false
	}
	props, _ := r.buildProps(s, variantName)
	fields, imports := variantFields(props, disc.PropertyName)
	return ir.UnionVariant{
		Tag:     tag,
		Name:    variantName,
		Fields:  fields,
		Imports: imports,
	}, true
}

// mappedTag returns the explicit mapping key whose value names the
// member, falling back to the member's schema name as the implicit
// tag. Mapping values may be full references or bare schema names.
func mappedTag(disc *openapi3.Discriminator, refStr, rawName string) string {
	if len(disc.Mapping) > 0 {
		keys := make([]string, 0, len(disc.Mapping))
		for k := range disc.Mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := disc.Mapping[k]
			if v == refStr || v == rawName {
				return k
			}
			if n, ok := refSchemaName(v); ok && n == rawName {
				return k
			}
		}
	}
	return rawName
}

// finalizeUnions copies the now-complete member fields onto referenced
// variants and aggregates per-union imports. Safe to run repeatedly.
func (r *Resolver) finalizeUnions() {
	for _, u := range r.unions {
		var imports []string
		for i := range u.Variants {
			v := &u.Variants[i]
			if v.MemberType != "" {
				if model := r.models[v.MemberType]; model != nil {
					v.Fields, v.Imports = variantFields(model.Properties, u.UnionKey)
				}
			}
			imports = mergeImports(imports, v.Imports)
		}
		sort.Strings(imports)
		u.Imports = nil
		for _, imp := range imports {
			if imp != u.Name {
				u.Imports = append(u.Imports, imp)
			}
		}
	}
}

// variantFields clones member properties onto a variant, dropping the
// discriminator property itself; the variant implies its value.
func variantFields(props []ir.Property, discKey string) ([]ir.Property, []string) {
	fields := make([]ir.Property, 0, len(props))
	var imports []string
	for _, p := range props {
		if p.JSONKey() == discKey {
			continue
		}
		fields = append(fields, p)
		imports = mergeImports(imports, p.Type.Imports)
	}
	sort.Strings(imports)
	return fields, imports
}
