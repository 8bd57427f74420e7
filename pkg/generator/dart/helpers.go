package dart

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
)

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

// stripHTML removes markup from documentation text coming out of the
// source document.
func stripHTML(s string) string {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy.Sanitize(s)
}

// dartDoc renders a description as /// doc-comment lines with the
// given indent. Empty descriptions render nothing.
func dartDoc(indent, desc string) string {
	clean := strings.TrimSpace(stripHTML(desc))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(clean, "\n") {
		b.WriteString(indent)
		b.WriteString("///")
		if line = strings.TrimRight(line, " \t"); line != "" {
			b.WriteString(" ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// propType renders the declared Dart type of a model property.
// Optional properties are nullable even when the schema type itself
// is not.
func propType(p ir.Property) string {
	return nullableIf(p.Type, p.Nullable)
}

func nullableIf(t ir.ResolvedType, nullable bool) string {
	name := t.Name
	if nullable && !strings.HasSuffix(name, "?") && name != "dynamic" {
		return name + "?"
	}
	return name
}

// ctorParam renders one named constructor parameter for a property.
func ctorParam(p ir.Property) string {
	if p.Required {
		return "required this." + p.Name + ","
	}
	return "this." + p.Name + ","
}

// propFromJSON renders the decode expression for one property inside
// fromJson.
func propFromJSON(p ir.Property) string {
	t := p.Type
	if p.Nullable && !t.Nullable {
		t.Nullable = true
		t.Name = nullableIf(t, true)
	}
	return fromJSONExpr(t, "json["+dartStringLit(p.JSONKey())+"]", 0)
}

// propToJSONLines renders the toJson statements for one property.
// Optional properties are written only when present.
func propToJSONLines(indent string, p ir.Property) string {
	key := "json[" + dartStringLit(p.JSONKey()) + "]"
	if p.Required {
		return fmt.Sprintf("%s%s = %s;", indent, key, toJSONExpr(p.Type, p.Name, 0))
	}

	var expr string
	if needsToJSON(p.Type) {
		bang := ir.ResolvedType{Name: p.Type.Base(), Kind: p.Type.Kind, Elem: p.Type.Elem}
		expr = toJSONExpr(bang, p.Name+"!", 0)
	} else {
		expr = p.Name
	}
	return fmt.Sprintf("%sif (%s != null) {\n%s  %s = %s;\n%s}", indent, p.Name, indent, key, expr, indent)
}

// returnType renders the Future type of a service method.
func returnType(t ir.ResolvedType) string {
	if t.Kind == ir.KindVoid {
		return "Future<void>"
	}
	return "Future<" + t.Name + ">"
}

// methodName derives the Dart method identifier for an endpoint.
func methodName(ep ir.Endpoint) string {
	return naming.PropertyName(ep.OperationID)
}

// methodParams builds the named-parameter list of a service method.
func methodParams(ep ir.Endpoint, classes map[string]ir.HeaderClass) []string {
	var parts []string
	for _, p := range ep.PathParams {
		parts = append(parts, fmt.Sprintf("required %s %s,", p.Type.Name, p.Name))
	}
	for _, p := range ep.QueryParams {
		if p.Required {
			parts = append(parts, fmt.Sprintf("required %s %s,", p.Type.Name, p.Name))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s,", nullableIf(p.Type, true), p.Name))
		}
	}
	if ep.RequestBody != nil {
		if ep.RequestBody.Required {
			parts = append(parts, fmt.Sprintf("required %s body,", ep.RequestBody.Type.Name))
		} else {
			parts = append(parts, fmt.Sprintf("%s body,", nullableIf(ep.RequestBody.Type, true)))
		}
	}
	if ep.HeaderClass != "" {
		if headerClassRequired(classes[ep.HeaderClass]) {
			parts = append(parts, fmt.Sprintf("required %s headers,", ep.HeaderClass))
		} else {
			parts = append(parts, fmt.Sprintf("%s? headers,", ep.HeaderClass))
		}
	} else {
		for _, h := range ep.Headers {
			if h.Required {
				parts = append(parts, fmt.Sprintf("required %s %s,", h.Type.Name, h.Name))
			} else {
				parts = append(parts, fmt.Sprintf("%s %s,", nullableIf(h.Type, true), h.Name))
			}
		}
	}
	return parts
}

func headerClassRequired(hc ir.HeaderClass) bool {
	for _, f := range hc.Fields {
		if f.Required {
			return true
		}
	}
	return false
}

// pathExpr renders the interpolated request path. Parameters are
// string-converted and percent-encoded.
func pathExpr(ep ir.Endpoint) string {
	byOriginal := map[string]string{}
	for _, p := range ep.PathParams {
		byOriginal[p.OriginalName] = p.Name
	}

	var b strings.Builder
	b.WriteByte('\'')
	path := ep.Path
	for i := 0; i < len(path); i++ {
		if path[i] == '{' {
			j := i + 1
			for j < len(path) && path[j] != '}' {
				j++
			}
			if j < len(path) {
				name := path[i+1 : j]
				if dartName, ok := byOriginal[name]; ok {
					b.WriteString("${Uri.encodeComponent(" + dartName + ".toString())}")
					i = j
					continue
				}
			}
		}
		switch path[i] {
		case '\'':
			b.WriteString(`\'`)
		case '$':
			b.WriteString(`\$`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(path[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// queryEntries renders the map-literal entries building the query
// parameters; optional entries guard on null.
func queryEntries(ep ir.Endpoint) []string {
	var out []string
	for _, p := range ep.QueryParams {
		value := p.Name
		if needsToJSON(p.Type) {
			t := p.Type
			if !p.Required {
				t = ir.ResolvedType{Name: t.Base(), Kind: t.Kind, Elem: t.Elem}
			}
			value = toJSONExpr(t, p.Name, 0)
		}
		key := dartStringLit(p.OriginalName)
		if p.Required {
			out = append(out, fmt.Sprintf("%s: %s,", key, value))
		} else {
			out = append(out, fmt.Sprintf("if (%s != null) %s: %s,", p.Name, key, value))
		}
	}
	return out
}

// headerEntries renders map-literal entries for inline header
// parameters. Values are stringified for the wire.
func headerEntries(params []ir.HeaderParam) []string {
	var out []string
	for _, h := range params {
		key := dartStringLit(h.OriginalName)
		if h.Required {
			out = append(out, fmt.Sprintf("%s: %s,", key, headerValue(h.Type, h.Name, false)))
		} else {
			out = append(out, fmt.Sprintf("if (%s != null) %s: %s,", h.Name, key, headerValue(h.Type, h.Name, true)))
		}
	}
	return out
}

// headerValue stringifies one header value expression. guarded marks
// values already null-checked by the caller.
func headerValue(t ir.ResolvedType, name string, guarded bool) string {
	if t.Kind == ir.KindString && !t.Nullable {
		if guarded {
			return name + "!"
		}
		return name
	}
	if guarded {
		return name + "!.toString()"
	}
	return name + ".toString()"
}

// responseExpr renders the return statement body decoding the response.
func responseExpr(t ir.ResolvedType) string {
	return fromJSONExpr(t, "response.data", 0)
}

// typeNeeds walks a resolved type and flags the dart: imports its
// serde expressions require.
func typeNeeds(t ir.ResolvedType, needs map[string]bool) {
	switch t.Kind {
	case ir.KindBytes:
		needs["dart:convert"] = true
		needs["dart:typed_data"] = true
	case ir.KindList, ir.KindMap:
		if t.Elem != nil {
			typeNeeds(*t.Elem, needs)
		}
	}
}

// fileFor maps a generated type name to its models/ file base name.
func fileFor(name string) string {
	return naming.FileName(name)
}

// modelImports renders the import lines of one model/union/alias file
// living in lib/src/models. deps are generated type names; self is
// excluded.
func modelImports(self string, deps []string, types ...ir.ResolvedType) []string {
	needs := map[string]bool{}
	for _, t := range types {
		typeNeeds(t, needs)
	}

	var lines []string
	if needs["dart:convert"] {
		lines = append(lines, "import 'dart:convert';")
	}
	if needs["dart:typed_data"] {
		lines = append(lines, "import 'dart:typed_data';")
	}
	seen := map[string]bool{}
	names := append([]string(nil), deps...)
	sort.Strings(names)
	for _, dep := range names {
		if dep == self || seen[dep] {
			continue
		}
		seen[dep] = true
		lines = append(lines, "import '"+fileFor(dep)+".dart';")
	}
	return lines
}
