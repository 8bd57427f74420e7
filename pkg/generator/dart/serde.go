package dart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// fromJSONExpr builds the Dart expression decoding src (a dynamic
// JSON value) into t. depth suffixes lambda variables so nested
// collections do not shadow each other.
func fromJSONExpr(t ir.ResolvedType, src string, depth int) string {
	nullable := t.Nullable
	base := t.Base()

	switch t.Kind {
	case ir.KindDynamic, ir.KindVoid:
		return src
	case ir.KindString, ir.KindInt, ir.KindBool:
		return fmt.Sprintf("%s as %s", src, castType(base, nullable))
	case ir.KindDouble:
		if nullable {
			return fmt.Sprintf("(%s as num?)?.toDouble()", src)
		}
		return fmt.Sprintf("(%s as num).toDouble()", src)
	case ir.KindDateTime:
		expr := fmt.Sprintf("DateTime.parse(%s as String)", src)
		if nullable {
			return fmt.Sprintf("%s == null ? null : %s", src, expr)
		}
		return expr
	case ir.KindBytes:
		expr := fmt.Sprintf("base64Decode(%s as String)", src)
		if nullable {
			return fmt.Sprintf("%s == null ? null : %s", src, expr)
		}
		return expr
	case ir.KindModel, ir.KindUnion:
		expr := fmt.Sprintf("%s.fromJson(%s as Map<String, dynamic>)", base, src)
		if nullable {
			return fmt.Sprintf("%s == null ? null : %s", src, expr)
		}
		return expr
	case ir.KindEnum:
		expr := fmt.Sprintf("%s.fromJson(%s as String)", base, src)
		if nullable {
			return fmt.Sprintf("%s == null ? null : %s", src, expr)
		}
		return expr
	case ir.KindList:
		elem := elemType(t)
		v := lambdaVar("e", depth)
		if elem.Kind == ir.KindDynamic {
			return fmt.Sprintf("%s as %s", src, castType("List<dynamic>", nullable))
		}
		cast := castType("List<dynamic>", nullable)
		op := "."
		if nullable {
			op = "?."
		}
		return fmt.Sprintf("(%s as %s)%smap((%s) => %s).toList()",
			src, cast, op, v, fromJSONExpr(elem, v, depth+1))
	case ir.KindMap:
		elem := elemType(t)
		if elem.Kind == ir.KindDynamic {
			return fmt.Sprintf("%s as %s", src, castType("Map<String, dynamic>", nullable))
		}
		k := lambdaVar("k", depth)
		v := lambdaVar("v", depth)
		cast := castType("Map<String, dynamic>", nullable)
		op := "."
		if nullable {
			op = "?."
		}
		return fmt.Sprintf("(%s as %s)%smap((%s, %s) => MapEntry(%s, %s))",
			src, cast, op, k, v, k, fromJSONExpr(elem, v, depth+1))
	default:
		return src
	}
}

// toJSONExpr builds the Dart expression encoding src (typed as t) into
// a JSON-compatible value. src must be promotable: either a local or
// already null-guarded by the caller.
func toJSONExpr(t ir.ResolvedType, src string, depth int) string {
	nullable := t.Nullable
	op := "."
	if nullable {
		op = "?."
	}

	switch t.Kind {
	case ir.KindDateTime:
		return fmt.Sprintf("%s%stoIso8601String()", src, op)
	case ir.KindBytes:
		if nullable {
			return fmt.Sprintf("%s == null ? null : base64Encode(%s!)", src, src)
		}
		return fmt.Sprintf("base64Encode(%s)", src)
	case ir.KindModel, ir.KindUnion, ir.KindEnum:
		return fmt.Sprintf("%s%stoJson()", src, op)
	case ir.KindList:
		elem := elemType(t)
		if !needsToJSON(elem) {
			return src
		}
		v := lambdaVar("e", depth)
		return fmt.Sprintf("%s%smap((%s) => %s).toList()", src, op, v, toJSONExpr(elem, v, depth+1))
	case ir.KindMap:
		elem := elemType(t)
		if !needsToJSON(elem) {
			return src
		}
		k := lambdaVar("k", depth)
		v := lambdaVar("v", depth)
		return fmt.Sprintf("%s%smap((%s, %s) => MapEntry(%s, %s))", src, op, k, v, k, toJSONExpr(elem, v, depth+1))
	default:
		return src
	}
}

// needsToJSON reports whether values of t require an explicit encoding
// expression; plain scalars and dynamic pass through json.encode as-is.
func needsToJSON(t ir.ResolvedType) bool {
	switch t.Kind {
	case ir.KindDateTime, ir.KindBytes, ir.KindModel, ir.KindUnion, ir.KindEnum:
		return true
	case ir.KindList, ir.KindMap:
		return needsToJSON(elemType(t))
	default:
		return false
	}
}

func elemType(t ir.ResolvedType) ir.ResolvedType {
	if t.Elem != nil {
		return *t.Elem
	}
	return ir.ResolvedType{Name: "dynamic", Kind: ir.KindDynamic}
}

func lambdaVar(base string, depth int) string {
	if depth == 0 {
		return base
	}
	return base + strconv.Itoa(depth)
}

func castType(base string, nullable bool) string {
	if nullable {
		return base + "?"
	}
	return base
}

// dartStringLit renders s as a single-quoted Dart string literal,
// escaping interpolation triggers.
func dartStringLit(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '$':
			b.WriteString(`\$`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
