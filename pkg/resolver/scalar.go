package resolver

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// scalarType maps a schema type/format pair onto its Dart type.
// Unknown formats fall back to the base type; unknown types fall back
// to dynamic.
func scalarType(typ, format string) ir.ResolvedType {
	switch typ {
	case openapi3.TypeString:
		switch format {
		case "date", "date-time":
			return ir.ResolvedType{Name: "DateTime", Kind: ir.KindDateTime}
		case "binary":
			return ir.ResolvedType{Name: "Uint8List", Kind: ir.KindBytes}
		default:
			// base64 "byte" strings stay String and pass through untouched.
			return ir.ResolvedType{Name: "String", Kind: ir.KindString}
		}
	case openapi3.TypeInteger:
		return ir.ResolvedType{Name: "int", Kind: ir.KindInt}
	case openapi3.TypeNumber:
		return ir.ResolvedType{Name: "double", Kind: ir.KindDouble}
	case openapi3.TypeBoolean:
		return ir.ResolvedType{Name: "bool", Kind: ir.KindBool}
	default:
		return dynamicType()
	}
}

// effectiveType collapses the schema's type field into a single base
// type. OpenAPI 3.1 type arrays contribute a nullability flag; a
// "null"-only type or an array with several non-null entries yields an
// empty base type. multi reports the array form so callers can flag it
// in 3.0 documents.
func effectiveType(types *openapi3.Types) (typ string, nullable bool, multi bool) {
	if types == nil {
		return "", false, false
	}
	slice := types.Slice()
	if len(slice) == 0 {
		return "", false, false
	}
	multi = len(slice) > 1

	base := make([]string, 0, len(slice))
	for _, t := range slice {
		if t == openapi3.TypeNull {
			nullable = true
			continue
		}
		base = append(base, t)
	}
	if len(base) == 1 {
		return base[0], nullable, multi
	}
	return "", nullable, multi
}

func dynamicType() ir.ResolvedType {
	return ir.ResolvedType{Name: "dynamic", Kind: ir.KindDynamic}
}

// nullableType marks t nullable, appending the '?' unless the type
// already carries one. dynamic admits null as-is and is never suffixed.
func nullableType(t ir.ResolvedType) ir.ResolvedType {
	if t.Nullable || t.Kind == ir.KindDynamic {
		t.Nullable = true
		return t
	}
	t.Name += "?"
	t.Nullable = true
	return t
}
