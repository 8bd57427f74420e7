// Package resolver turns OpenAPI schemas into the Dart-facing IR:
// references are followed with cycle tolerance, compositions are
// flattened, discriminated oneOf/anyOf become tagged unions and inline
// objects and enums are promoted to named nested types. A Resolver is
// built once per document and accumulates every named entity it
// produces; it is not safe for concurrent use.
package resolver

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
	"github.com/blimu-dev/dartgen/pkg/openapi"
)

// Resolver resolves one document's schemas. Named entities are keyed
// by their Dart class name; the first component to claim a class name
// wins and later collisions resolve to the existing entity.
type Resolver struct {
	doc  *openapi3.T
	is31 bool

	// rawByClass maps Dart class names back to component names.
	rawByClass map[string]string
	// classKinds records the kind of every built entity. For aliases
	// it holds the underlying kind; aliasTypes carries the full type.
	classKinds map[string]ir.TypeKind
	aliasTypes map[string]ir.ResolvedType
	// nullableNamed marks named schemas that are nullable at the top
	// level, so every reference to them picks up the '?'.
	nullableNamed map[string]bool

	// building guards named entities currently being resolved;
	// re-entry during a cycle resolves to a provisional reference.
	building map[string]bool
	// inflightRefs guards the reference chain walk.
	inflightRefs map[string]struct{}

	models  map[string]*ir.Model
	enums   map[string]*ir.Enum
	unions  map[string]*ir.Union
	aliases map[string]*ir.Alias

	notes    []string
	noteSeen map[string]struct{}
	noted31  bool
}

// New builds a resolver over a loaded document.
func New(doc *openapi.Document) *Resolver {
	r := &Resolver{
		doc:           doc.T,
		is31:          doc.Is31,
		rawByClass:    make(map[string]string),
		classKinds:    make(map[string]ir.TypeKind),
		aliasTypes:    make(map[string]ir.ResolvedType),
		nullableNamed: make(map[string]bool),
		building:      make(map[string]bool),
		inflightRefs:  make(map[string]struct{}),
		models:        make(map[string]*ir.Model),
		enums:         make(map[string]*ir.Enum),
		unions:        make(map[string]*ir.Union),
		aliases:       make(map[string]*ir.Alias),
		noteSeen:      make(map[string]struct{}),
	}

	if r.doc.Components != nil {
		names := make([]string, 0, len(r.doc.Components.Schemas))
		for name := range r.doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			className := naming.ClassName(name)
			if first, taken := r.rawByClass[className]; taken {
				r.note("components %q and %q normalize to the same name %q; keeping the first", first, name, className)
				continue
			}
			r.rawByClass[className] = name
		}
	}
	return r
}

// ResolveComponents resolves every named schema in the document, in
// sorted name order.
func (r *Resolver) ResolveComponents() {
	names := make([]string, 0, len(r.rawByClass))
	for className := range r.rawByClass {
		names = append(names, className)
	}
	sort.Strings(names)
	for _, className := range names {
		r.ensureClass(className)
	}
}

// Resolve resolves an arbitrary schema node. hint names any entity
// promoted out of inline content, so callers pass their own naming
// context (e.g. "User_address").
func (r *Resolver) Resolve(ref *openapi3.SchemaRef, hint string) ir.ResolvedType {
	return r.typeFor(ref, hint)
}

// ResolveRef resolves an internal schema reference string, reporting
// whether the full reference chain terminates inside the document.
func (r *Resolver) ResolveRef(ref string) (*openapi3.SchemaRef, bool) {
	_, target, ok := r.resolveSchemaRef(ref)
	return target, ok
}

// Models returns the accumulated model definitions sorted by name.
func (r *Resolver) Models() []ir.Model {
	out := make([]ir.Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Enums returns the accumulated enum definitions sorted by name.
func (r *Resolver) Enums() []ir.Enum {
	out := make([]ir.Enum, 0, len(r.enums))
	for _, e := range r.enums {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unions returns the accumulated union definitions sorted by name.
// Referenced variant fields are copied here, once every member model
// has finished building.
func (r *Resolver) Unions() []ir.Union {
	r.finalizeUnions()
	out := make([]ir.Union, 0, len(r.unions))
	for _, u := range r.unions {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Aliases returns the accumulated typedef definitions sorted by name.
func (r *Resolver) Aliases() []ir.Alias {
	out := make([]ir.Alias, 0, len(r.aliases))
	for _, a := range r.aliases {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Notes returns the informational findings collected during
// resolution.
func (r *Resolver) Notes() []string {
	out := make([]string, len(r.notes))
	copy(out, r.notes)
	return out
}

func (r *Resolver) note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if _, dup := r.noteSeen[msg]; dup {
		return
	}
	r.noteSeen[msg] = struct{}{}
	r.notes = append(r.notes, msg)
}

// typeFor is the main dispatch: references, compositions, promotions
// and scalars all funnel through here.
func (r *Resolver) typeFor(ref *openapi3.SchemaRef, hint string) ir.ResolvedType {
	if ref == nil {
		return dynamicType()
	}
	if ref.Ref != "" {
		name, _, ok := r.resolveSchemaRef(ref.Ref)
		if !ok {
			r.note("unresolvable $ref %q; using dynamic", ref.Ref)
			return dynamicType()
		}
		return r.referenceType(naming.ClassName(name))
	}
	s := ref.Value
	if s == nil {
		return dynamicType()
	}

	effType, null31, multi := effectiveType(s.Type)
	if multi && !r.is31 && !r.noted31 {
		r.note("3.1-style type arrays found in a 3.0 document")
		r.noted31 = true
	}

	var t ir.ResolvedType
	switch {
	case len(s.AllOf) > 0:
		t = r.allOfType(s, hint)
	case len(s.OneOf) > 0:
		t = r.compositeType(s, s.OneOf, hint)
	case len(s.AnyOf) > 0:
		t = r.compositeType(s, s.AnyOf, hint)
	case isStringEnum(s, effType):
		t = r.promoteEnum(hint, s)
	case effType == openapi3.TypeArray:
		t = r.arrayType(s, hint)
	case effType == openapi3.TypeObject,
		effType == "" && (len(s.Properties) > 0 || hasAdditional(s)):
		t = r.objectType(s, hint)
	case effType == "":
		t = dynamicType()
	default:
		t = scalarType(effType, s.Format)
	}

	if s.Nullable || null31 {
		t = nullableType(t)
	}
	return t
}

// referenceType builds the type a reference to a named entity
// resolves to. Aliases resolve to their underlying type renamed to the
// typedef; an alias still mid-resolution (a cycle) degrades to
// dynamic.
func (r *Resolver) referenceType(className string) ir.ResolvedType {
	kind, ok := r.ensureClass(className)
	if !ok {
		return dynamicType()
	}

	var t ir.ResolvedType
	switch kind {
	case ir.KindModel, ir.KindEnum, ir.KindUnion:
		t = ir.ResolvedType{Name: className, Kind: kind, Imports: []string{className}}
	default:
		at, built := r.aliasTypes[className]
		if !built {
			return dynamicType()
		}
		t = at
		t.Name = className
		if t.Nullable {
			t.Name += "?"
		}
		t.Imports = appendUnique(cloneStrings(at.Imports), className)
	}

	if r.nullableNamed[className] && !t.Nullable {
		t = nullableType(t)
	}
	return t
}

// ensureClass resolves the named entity behind a class name exactly
// once. Re-entry during a model or union build finds the kind already
// recorded; re-entry during an alias build reports a provisional
// dynamic.
func (r *Resolver) ensureClass(className string) (ir.TypeKind, bool) {
	if k, ok := r.classKinds[className]; ok {
		return k, true
	}
	if r.building[className] {
		return ir.KindDynamic, true
	}
	raw, ok := r.rawByClass[className]
	if !ok {
		return ir.KindDynamic, false
	}
	r.buildNamed(className, r.doc.Components.Schemas[raw])
	if k, ok := r.classKinds[className]; ok {
		return k, true
	}
	return ir.KindDynamic, true
}

// buildNamed classifies a component schema and builds the matching
// entity. The kind is recorded before members are walked so cyclic
// references resolve against it.
func (r *Resolver) buildNamed(className string, ref *openapi3.SchemaRef) {
	if r.building[className] {
		return
	}
	r.building[className] = true
	defer delete(r.building, className)

	if ref == nil {
		r.recordAlias(className, dynamicType(), "")
		return
	}
	if ref.Ref != "" {
		// The component is itself a reference: a pure alias.
		var desc string
		if ref.Value != nil {
			desc = ref.Value.Description
		}
		r.recordAlias(className, r.typeFor(ref, className), desc)
		return
	}
	s := ref.Value
	if s == nil {
		r.recordAlias(className, dynamicType(), "")
		return
	}

	effType, null31, _ := effectiveType(s.Type)
	if s.Nullable || null31 {
		r.nullableNamed[className] = true
	}

	switch {
	case len(s.AllOf) > 0:
		if t, ok := r.allOfPassthrough(s, className); ok {
			r.recordAlias(className, t, s.Description)
			return
		}
		r.buildModelAs(className, r.mergeAllOf(s))
	case isStringEnum(s, effType):
		r.buildEnumAs(className, s)
	case r.isUnionSchema(s):
		members := s.OneOf
		if len(members) == 0 {
			members = s.AnyOf
		}
		nonNull, nulls := partitionNull(members)
		if nulls == 1 {
			r.nullableNamed[className] = true
		}
		r.buildUnionAs(className, s, nonNull)
	case len(s.Properties) > 0:
		r.buildModelAs(className, s)
	default:
		r.recordAlias(className, r.typeFor(&openapi3.SchemaRef{Value: s}, className), s.Description)
	}
}

func (r *Resolver) recordAlias(className string, t ir.ResolvedType, desc string) {
	r.classKinds[className] = t.Kind
	r.aliasTypes[className] = t
	r.aliases[className] = &ir.Alias{Name: className, Type: t, Description: desc}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

func mergeImports(into []string, add []string) []string {
	for _, v := range add {
		into = appendUnique(into, v)
	}
	return into
}
