package resolver

import (
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
)

// objectType resolves an inline object schema: objects with properties
// promote to a named model, objects with only additionalProperties
// become maps, bare objects are Map<String, dynamic>.
func (r *Resolver) objectType(s *openapi3.Schema, hint string) ir.ResolvedType {
	if len(s.Properties) > 0 {
		return r.promoteModel(hint, s)
	}
	if ap := s.AdditionalProperties.Schema; ap != nil {
		v := r.typeFor(ap, hint+"_value")
		return ir.ResolvedType{
			Name:    "Map<String, " + v.Name + ">",
			Kind:    ir.KindMap,
			Elem:    &v,
			Imports: cloneStrings(v.Imports),
		}
	}
	d := dynamicType()
	return ir.ResolvedType{Name: "Map<String, dynamic>", Kind: ir.KindMap, Elem: &d}
}

func (r *Resolver) arrayType(s *openapi3.Schema, hint string) ir.ResolvedType {
	elem := r.typeFor(s.Items, hint+"_item")
	return ir.ResolvedType{
		Name:    "List<" + elem.Name + ">",
		Kind:    ir.KindList,
		Elem:    &elem,
		Imports: cloneStrings(elem.Imports),
	}
}

func hasAdditional(s *openapi3.Schema) bool {
	if s.AdditionalProperties.Schema != nil {
		return true
	}
	return s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has
}

// claimPromotion reserves a class name for a promoted inline entity.
// Names already built, mid-build or owned by a component are not
// claimable; the caller references the existing entity instead.
func (r *Resolver) claimPromotion(className string) bool {
	if _, built := r.classKinds[className]; built {
		return false
	}
	if r.building[className] {
		return false
	}
	if _, reserved := r.rawByClass[className]; reserved {
		return false
	}
	return true
}

// promoteModel promotes an inline object to a named model and returns
// a reference to it.
func (r *Resolver) promoteModel(hint string, s *openapi3.Schema) ir.ResolvedType {
	className := naming.ClassName(hint)
	if r.claimPromotion(className) {
		r.buildModelAs(className, s)
	}
	return r.referenceType(className)
}

// promoteEnum promotes an inline string enum to a named enum and
// returns a reference to it.
func (r *Resolver) promoteEnum(hint string, s *openapi3.Schema) ir.ResolvedType {
	className := naming.ClassName(hint)
	if r.claimPromotion(className) {
		r.buildEnumAs(className, s)
	}
	return r.referenceType(className)
}

// buildModelAs builds a model under the given class name. The model
// pointer and kind register before the property walk so cyclic
// references resolve against them.
func (r *Resolver) buildModelAs(className string, s *openapi3.Schema) {
	r.classKinds[className] = ir.KindModel
	m := &ir.Model{
		Name:        className,
		Description: s.Description,
		Deprecated:  s.Deprecated,
	}
	r.models[className] = m
	m.Properties, m.Imports = r.buildProps(s, className)
}

// buildProps resolves an object's properties in sorted key order and
// collects the generated-type imports they pull in.
func (r *Resolver) buildProps(s *openapi3.Schema, owner string) ([]ir.Property, []string) {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	keys := make([]string, 0, len(s.Properties))
	for key := range s.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	props := make([]ir.Property, 0, len(keys))
	var imports []string
	for _, key := range keys {
		ref := s.Properties[key]
		t := r.typeFor(ref, owner+"_"+key)

		var desc string
		if ref != nil && ref.Value != nil {
			desc = ref.Value.Description
		}
		props = append(props, ir.Property{
			Name:         naming.PropertyName(key),
			OriginalName: key,
			Type:         t,
			Required:     required[key],
			Nullable:     !required[key] || t.Nullable,
			Description:  desc,
		})
		for _, imp := range t.Imports {
			if imp != owner {
				imports = appendUnique(imports, imp)
			}
		}
	}
	sort.Strings(imports)
	return props, imports
}

// isStringEnum reports whether the schema is a promotable string enum.
// Enums over other scalar types keep their base type instead.
func isStringEnum(s *openapi3.Schema, effType string) bool {
	if len(s.Enum) == 0 {
		return false
	}
	if effType != "" && effType != openapi3.TypeString {
		return false
	}
	for _, v := range s.Enum {
		if v == nil {
			continue
		}
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

// buildEnumAs builds a string enum under the given class name. A null
// enum value marks the whole enum nullable rather than becoming a
// member; colliding identifiers get a numeric suffix.
func (r *Resolver) buildEnumAs(className string, s *openapi3.Schema) {
	r.classKinds[className] = ir.KindEnum
	e := &ir.Enum{Name: className, Description: s.Description}
	r.enums[className] = e

	used := make(map[string]struct{}, len(s.Enum))
	for _, raw := range s.Enum {
		if raw == nil {
			r.nullableNamed[className] = true
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		ident := naming.PropertyName(str)
		base := ident
		for n := 2; ; n++ {
			if _, taken := used[ident]; !taken {
				break
			}
			ident = base + strconv.Itoa(n)
		}
		used[ident] = struct{}{}
		e.Values = append(e.Values, ir.EnumValue{Name: ident, Value: str})
	}
}
