// Package ir holds the intermediate representation produced by schema
// resolution and consumed by the Dart emitter. Everything here is plain
// data; resolution never mutates the source document, it only derives
// these values.
package ir

// TypeKind classifies a resolved Dart type for serialization purposes.
type TypeKind string

const (
	KindDynamic  TypeKind = "dynamic"
	KindString   TypeKind = "string"
	KindInt      TypeKind = "int"
	KindDouble   TypeKind = "double"
	KindBool     TypeKind = "bool"
	KindDateTime TypeKind = "datetime"
	KindBytes    TypeKind = "bytes"
	KindList     TypeKind = "list"
	KindMap      TypeKind = "map"
	KindModel    TypeKind = "model"
	KindEnum     TypeKind = "enum"
	KindUnion    TypeKind = "union"
	KindVoid     TypeKind = "void"
)

// ResolvedType is the Dart-facing result of resolving a schema node.
// Name is always a concrete Dart type expression; references and
// compositions are fully resolved before a ResolvedType is produced.
type ResolvedType struct {
	// Name is the Dart type expression, e.g. "String", "List<Pet>", "Pet?".
	Name string
	// Kind drives from/to JSON expression generation.
	Kind TypeKind
	// Elem is the element type for lists and the value type for maps.
	Elem *ResolvedType
	// Imports lists generated type names this type depends on.
	Imports []string
	// Nullable reports whether Name carries a trailing '?'.
	Nullable bool
}

// Base returns the type expression without the nullability marker.
func (t ResolvedType) Base() string {
	if t.Nullable && len(t.Name) > 0 && t.Name[len(t.Name)-1] == '?' {
		return t.Name[:len(t.Name)-1]
	}
	return t.Name
}

// Property is one field of a generated model class.
//
// Nullable is true whenever Required is false, and also when the source
// schema expresses an explicit nullable pattern even for a required
// property; required-but-nullable is a distinct state from
// required-and-non-nullable.
type Property struct {
	Name string
	// OriginalName is the source JSON key. It is recorded whenever it
	// differs from Name or the type needs custom (de)serialization.
	OriginalName string
	Type         ResolvedType
	Required     bool
	Nullable     bool
	Description  string
}

// JSONKey returns the wire key for this property.
func (p Property) JSONKey() string {
	if p.OriginalName != "" {
		return p.OriginalName
	}
	return p.Name
}

// Model is a named Dart class definition.
type Model struct {
	Name        string
	Properties  []Property
	Imports     []string
	Description string
	Deprecated  bool
}

// EnumValue pairs a Dart identifier with its original wire value.
type EnumValue struct {
	Name  string
	Value string
}

// Enum is a named string-valued Dart enum.
type Enum struct {
	Name        string
	Values      []EnumValue
	Description string
}

// UnionVariant is one member of a discriminated union. Fields carries
// the member type's resolved properties; the variant class is emitted
// alongside the union base so membership in several unions stays legal.
type UnionVariant struct {
	// Tag is the discriminator value selecting this variant.
	Tag string
	// Name is the variant class name, derived from the union name and tag.
	Name string
	// MemberType is the referenced schema name when the member was a
	// reference, empty for inline members.
	MemberType string
	Fields     []Property
	Imports    []string
}

// Union is a discriminated oneOf/anyOf composition resolved into a
// sealed Dart class with one variant per member.
type Union struct {
	Name string
	// UnionKey is the discriminator property name.
	UnionKey string
	Variants []UnionVariant
	// Findings collects non-fatal validation problems, e.g. duplicate
	// discriminator tag values.
	Findings    []string
	Imports     []string
	Description string
}

// Alias is a named schema that resolves to a non-object type; it is
// emitted as a Dart typedef.
type Alias struct {
	Name        string
	Type        ResolvedType
	Description string
}

// HeaderParam is one header parameter of an endpoint.
type HeaderParam struct {
	// OriginalName is the wire header name, e.g. "x-api-key".
	OriginalName string
	// Name is the normalized Dart identifier, e.g. "xApiKey".
	Name        string
	Type        ResolvedType
	Required    bool
	Description string
}

// HeaderField is one field of a shared header class.
type HeaderField struct {
	OriginalName string
	Name         string
	Type         ResolvedType
	Required     bool
	Description  string
}

// HeaderClass is a shared header class referenced by one or more
// endpoints, either user-configured or synthesized by consolidation.
type HeaderClass struct {
	Name        string
	Fields      []HeaderField
	Description string
	Synthesized bool
}

// Param is a path or query parameter.
type Param struct {
	// OriginalName is the parameter name as written in the document.
	OriginalName string
	Name         string
	Type         ResolvedType
	Required     bool
	Description  string
}

// RequestBody describes an endpoint's request payload.
type RequestBody struct {
	ContentType string
	Type        ResolvedType
	Required    bool
}

// Response describes an endpoint's success response. A void response
// (204 or bodyless 2xx) has Type.Kind == KindVoid.
type Response struct {
	Type        ResolvedType
	Description string
}

// Endpoint is one operation of the API surface.
type Endpoint struct {
	OperationID string
	Method      string
	Path        string
	Summary     string
	Description string
	Deprecated  bool
	Tags        []string
	PathParams  []Param
	QueryParams []Param
	Headers     []HeaderParam
	// HeaderClass names the shared header class assigned to this
	// endpoint; empty when headers stay individual parameters.
	HeaderClass string
	RequestBody *RequestBody
	Response    Response
}

// Service groups endpoints sharing a tag.
type Service struct {
	Tag         string
	Name        string
	Description string
	Endpoints   []Endpoint
}

// IR is the complete resolved representation of one OpenAPI document.
type IR struct {
	PackageName string
	Title       string
	Version     string
	Description string
	BaseURL     string

	Models  []Model
	Enums   []Enum
	Unions  []Union
	Aliases []Alias
	// HeaderClasses holds the shared header classes actually referenced
	// by at least one endpoint, sorted by name.
	HeaderClasses []HeaderClass
	Services      []Service

	// Notes collects informational resolution messages, e.g. ambiguous
	// compositions that fell back to dynamic.
	Notes []string
}
