package dart

import (
	"sort"
	"strings"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

// endpointDoc combines an endpoint's summary and description for its
// method doc comment.
func endpointDoc(ep ir.Endpoint) string {
	switch {
	case ep.Summary != "" && ep.Description != "" && ep.Summary != ep.Description:
		return ep.Summary + "\n\n" + ep.Description
	case ep.Summary != "":
		return ep.Summary
	default:
		return ep.Description
	}
}

// methodBody builds the statement lines of one service method.
func methodBody(ep ir.Endpoint, classes map[string]ir.HeaderClass) []string {
	var lines []string

	query := queryEntries(ep)
	if len(query) > 0 {
		lines = append(lines, "final queryParameters = <String, dynamic>{")
		for _, e := range query {
			lines = append(lines, "  "+e)
		}
		lines = append(lines, "};")
	}

	hasHeaders := false
	if ep.HeaderClass != "" {
		hasHeaders = true
		if headerClassRequired(classes[ep.HeaderClass]) {
			lines = append(lines, "final headerMap = headers.toMap();")
		} else {
			lines = append(lines, "final headerMap = headers?.toMap();")
		}
	} else if len(ep.Headers) > 0 {
		hasHeaders = true
		lines = append(lines, "final headerMap = <String, String>{")
		for _, e := range headerEntries(ep.Headers) {
			lines = append(lines, "  "+e)
		}
		lines = append(lines, "};")
	}

	isVoid := ep.Response.Type.Kind == ir.KindVoid
	call := "await _client.request("
	if !isVoid {
		call = "final response = " + call
	}
	lines = append(lines, call)
	lines = append(lines, "  "+dartStringLit(ep.Method)+",")
	lines = append(lines, "  "+pathExpr(ep)+",")
	if len(query) > 0 {
		lines = append(lines, "  queryParameters: queryParameters,")
	}
	if hasHeaders {
		lines = append(lines, "  headers: headerMap,")
	}
	if ep.RequestBody != nil {
		lines = append(lines, "  data: "+bodyExpr(*ep.RequestBody)+",")
		lines = append(lines, "  contentType: "+dartStringLit(ep.RequestBody.ContentType)+",")
	}
	lines = append(lines, ");")
	if !isVoid {
		lines = append(lines, "return "+responseExpr(ep.Response.Type)+";")
	}
	return lines
}

func bodyExpr(rb ir.RequestBody) string {
	t := rb.Type
	if !rb.Required && !t.Nullable {
		t.Nullable = true
	}
	if !needsToJSON(t) {
		return "body"
	}
	return toJSONExpr(t, "body", 0)
}

// headerFieldDecl renders the declared type of a header class field.
func headerFieldDecl(f ir.HeaderField) string {
	return nullableIf(f.Type, !f.Required)
}

func headerCtorParam(f ir.HeaderField) string {
	if f.Required {
		return "required this." + f.Name + ","
	}
	return "this." + f.Name + ","
}

// headerMapLines renders the toMap statements of a header class.
func headerMapLines(hc ir.HeaderClass) []string {
	var lines []string
	for _, f := range hc.Fields {
		key := "map[" + dartStringLit(f.OriginalName) + "]"
		if f.Required {
			lines = append(lines, key+" = "+headerValue(f.Type, f.Name, false)+";")
		} else {
			lines = append(lines, "if ("+f.Name+" != null) {")
			lines = append(lines, "  "+key+" = "+headerValue(f.Type, f.Name, true)+";")
			lines = append(lines, "}")
		}
	}
	return lines
}

// endpointTypes lists every resolved type an endpoint touches.
func endpointTypes(ep ir.Endpoint) []ir.ResolvedType {
	var types []ir.ResolvedType
	for _, p := range ep.PathParams {
		types = append(types, p.Type)
	}
	for _, p := range ep.QueryParams {
		types = append(types, p.Type)
	}
	for _, h := range ep.Headers {
		types = append(types, h.Type)
	}
	if ep.RequestBody != nil {
		types = append(types, ep.RequestBody.Type)
	}
	types = append(types, ep.Response.Type)
	return types
}

func modelFileImports(m ir.Model) []string {
	types := make([]ir.ResolvedType, 0, len(m.Properties))
	for _, p := range m.Properties {
		types = append(types, p.Type)
	}
	return modelImports(m.Name, m.Imports, types...)
}

func unionFileImports(u ir.Union) []string {
	var types []ir.ResolvedType
	for _, v := range u.Variants {
		for _, f := range v.Fields {
			types = append(types, f.Type)
		}
	}
	return modelImports(u.Name, u.Imports, types...)
}

func aliasFileImports(a ir.Alias) []string {
	return modelImports(a.Name, a.Type.Imports, a.Type)
}

// serviceImports renders the import lines of one service file under
// lib/src/services.
func serviceImports(svc ir.Service) []string {
	needs := map[string]bool{}
	deps := map[string]bool{}
	usesHeaderClass := false
	for _, ep := range svc.Endpoints {
		for _, t := range endpointTypes(ep) {
			typeNeeds(t, needs)
			for _, name := range t.Imports {
				deps[name] = true
			}
		}
		if ep.HeaderClass != "" {
			usesHeaderClass = true
		}
	}

	var lines []string
	if needs["dart:convert"] {
		lines = append(lines, "import 'dart:convert';")
	}
	if needs["dart:typed_data"] {
		lines = append(lines, "import 'dart:typed_data';")
	}
	lines = append(lines, "import '../api_client.dart';")
	if usesHeaderClass {
		lines = append(lines, "import '../header_models.dart';")
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, "import '../models/"+fileFor(name)+".dart';")
	}
	return lines
}

// singleImports renders the import block of the single-file library.
func singleImports(doc *ir.IR) []string {
	needs := map[string]bool{}
	for _, m := range doc.Models {
		for _, p := range m.Properties {
			typeNeeds(p.Type, needs)
		}
	}
	for _, u := range doc.Unions {
		for _, v := range u.Variants {
			for _, f := range v.Fields {
				typeNeeds(f.Type, needs)
			}
		}
	}
	for _, a := range doc.Aliases {
		typeNeeds(a.Type, needs)
	}
	for _, svc := range doc.Services {
		for _, ep := range svc.Endpoints {
			for _, t := range endpointTypes(ep) {
				typeNeeds(t, needs)
			}
		}
	}

	var lines []string
	if needs["dart:convert"] {
		lines = append(lines, "import 'dart:convert';")
	}
	if needs["dart:typed_data"] {
		lines = append(lines, "import 'dart:typed_data';")
	}
	lines = append(lines, "import 'package:dio/dio.dart';")
	return lines
}

// barrelExports lists the export statements of the library barrel.
func barrelExports(doc *ir.IR) []string {
	lines := []string{"export 'src/api_client.dart';"}
	if len(doc.HeaderClasses) > 0 {
		lines = append(lines, "export 'src/header_models.dart';")
	}

	var names []string
	for _, m := range doc.Models {
		names = append(names, m.Name)
	}
	for _, e := range doc.Enums {
		names = append(names, e.Name)
	}
	for _, u := range doc.Unions {
		names = append(names, u.Name)
	}
	for _, a := range doc.Aliases {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, "export 'src/models/"+fileFor(name)+".dart';")
	}

	for _, svc := range doc.Services {
		lines = append(lines, "export 'src/services/"+fileFor(svc.Tag)+"_service.dart';")
	}
	return lines
}

// pubspecDescription squeezes a document description onto one line for
// pubspec.yaml.
func pubspecDescription(doc *ir.IR) string {
	desc := strings.TrimSpace(stripHTML(doc.Description))
	desc = strings.Join(strings.Fields(desc), " ")
	if desc == "" {
		title := doc.Title
		if title == "" {
			title = doc.PackageName
		}
		desc = "API client for " + title + "."
	}
	return desc
}
