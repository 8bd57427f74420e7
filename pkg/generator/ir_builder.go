package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/dartgen/pkg/config"
	"github.com/blimu-dev/dartgen/pkg/headers"
	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
	"github.com/blimu-dev/dartgen/pkg/openapi"
	"github.com/blimu-dev/dartgen/pkg/resolver"
)

// defaultTag groups operations that carry no tags of their own.
const defaultTag = "default"

// Builder turns one loaded OpenAPI document into the Dart-facing IR.
// It owns a resolver and a header matcher; both are per-run and must
// not be shared across builds.
type Builder struct {
	doc     *openapi.Document
	cfg     config.Config
	res     *resolver.Resolver
	matcher *headers.Matcher
}

// NewBuilder creates a builder for one generation run.
func NewBuilder(doc *openapi.Document, cfg config.Config) *Builder {
	return &Builder{
		doc:     doc,
		cfg:     cfg,
		res:     resolver.New(doc),
		matcher: headers.NewMatcher(cfg.Headers.Definitions, cfg.Headers.Options()),
	}
}

// BuildIR resolves doc into an IR using cfg. Convenience wrapper for
// callers that do not need the header report afterwards.
func BuildIR(doc *openapi.Document, cfg config.Config) (*ir.IR, error) {
	return NewBuilder(doc, cfg).Build()
}

// HeaderReport renders the matcher's post-build summary.
func (b *Builder) HeaderReport() string {
	return b.matcher.Report()
}

// HeaderStats returns the matcher's counters for the finished build.
func (b *Builder) HeaderStats() headers.Stats {
	return b.matcher.Stats()
}

// Build resolves all named schemas, walks every operation and
// assembles the IR. The result is deterministic for a given document
// and configuration.
func (b *Builder) Build() (*ir.IR, error) {
	include, exclude, err := compileTagFilters(b.cfg.IncludeTags, b.cfg.ExcludeTags)
	if err != nil {
		return nil, err
	}

	b.res.ResolveComponents()
	services := b.buildServices(include, exclude)

	out := &ir.IR{
		PackageName:   b.packageName(),
		Models:        b.res.Models(),
		Enums:         b.res.Enums(),
		Unions:        b.res.Unions(),
		Aliases:       b.res.Aliases(),
		HeaderClasses: b.referencedHeaderClasses(services),
		Services:      services,
		Notes:         b.res.Notes(),
	}
	if info := b.doc.T.Info; info != nil {
		out.Title = info.Title
		out.Version = info.Version
		out.Description = info.Description
	}
	if len(b.doc.T.Servers) > 0 {
		out.BaseURL = b.doc.T.Servers[0].URL
	}
	for _, u := range out.Unions {
		for _, f := range u.Findings {
			out.Notes = append(out.Notes, fmt.Sprintf("union %s: %s", u.Name, f))
		}
	}

	if len(b.cfg.IncludeTags) > 0 || len(b.cfg.ExcludeTags) > 0 {
		pruneUnreachable(out)
	}
	return out, nil
}

func (b *Builder) packageName() string {
	if b.cfg.Name != "" {
		return b.cfg.Name
	}
	if info := b.doc.T.Info; info != nil && info.Title != "" {
		return naming.FileName(info.Title)
	}
	return "api"
}

// methodOrder fixes the operation walk order within one path item.
var methodOrder = []struct {
	name string
	pick func(*openapi3.PathItem) *openapi3.Operation
}{
	{"GET", func(p *openapi3.PathItem) *openapi3.Operation { return p.Get }},
	{"PUT", func(p *openapi3.PathItem) *openapi3.Operation { return p.Put }},
	{"POST", func(p *openapi3.PathItem) *openapi3.Operation { return p.Post }},
	{"DELETE", func(p *openapi3.PathItem) *openapi3.Operation { return p.Delete }},
	{"OPTIONS", func(p *openapi3.PathItem) *openapi3.Operation { return p.Options }},
	{"HEAD", func(p *openapi3.PathItem) *openapi3.Operation { return p.Head }},
	{"PATCH", func(p *openapi3.PathItem) *openapi3.Operation { return p.Patch }},
	{"TRACE", func(p *openapi3.PathItem) *openapi3.Operation { return p.Trace }},
}

func (b *Builder) buildServices(include, exclude []*regexp.Regexp) []ir.Service {
	byTag := map[string]*ir.Service{}

	if b.doc.T.Paths != nil {
		paths := make([]string, 0, b.doc.T.Paths.Len())
		for p := range b.doc.T.Paths.Map() {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, path := range paths {
			item := b.doc.T.Paths.Map()[path]
			if item == nil {
				continue
			}
			for _, m := range methodOrder {
				op := m.pick(item)
				if op == nil {
					continue
				}
				tags := op.Tags
				if len(tags) == 0 {
					tags = []string{defaultTag}
				}
				if !shouldIncludeOperation(tags, include, exclude) {
					continue
				}
				tag := groupingTag(tags, include, exclude)
				svc, ok := byTag[tag]
				if !ok {
					svc = &ir.Service{
						Tag:         tag,
						Name:        naming.ClassName(tag) + "Service",
						Description: b.tagDescription(tag),
					}
					byTag[tag] = svc
				}
				svc.Endpoints = append(svc.Endpoints, b.buildEndpoint(m.name, path, item, op, tags))
			}
		}
	}

	b.rerouteConsolidated(byTag)

	out := make([]ir.Service, 0, len(byTag))
	for _, svc := range byTag {
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// rerouteConsolidated assigns synthesized classes to endpoints whose
// own matcher call preceded the consolidation threshold. The matcher
// reconciles its counters for every rerouted endpoint.
func (b *Builder) rerouteConsolidated(byTag map[string]*ir.Service) {
	for _, svc := range byTag {
		for i := range svc.Endpoints {
			ep := &svc.Endpoints[i]
			if ep.HeaderClass != "" || len(ep.Headers) == 0 {
				continue
			}
			if name, ok := b.matcher.Reroute(headers.Signature(ep.Headers)); ok {
				ep.HeaderClass = name
			}
		}
	}
}

func (b *Builder) tagDescription(tag string) string {
	for _, t := range b.doc.T.Tags {
		if t != nil && t.Name == tag {
			return t.Description
		}
	}
	return ""
}

func (b *Builder) buildEndpoint(method, path string, item *openapi3.PathItem, op *openapi3.Operation, tags []string) ir.Endpoint {
	id := op.OperationID
	if id == "" {
		id = derivedOperationID(method, path)
	}

	ep := ir.Endpoint{
		OperationID: id,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Tags:        tags,
	}
	ep.PathParams, ep.QueryParams, ep.Headers = b.collectParams(id, item, op)
	ep.RequestBody = b.extractRequestBody(id, op)
	ep.Response = b.extractResponse(id, op)
	ep.HeaderClass = b.matcher.FindMatchingHeaderClass(path, ep.Headers)
	return ep
}

// ignoredHeaders are managed by the HTTP client itself and never
// become endpoint parameters.
var ignoredHeaders = map[string]bool{
	"accept":        true,
	"content-type":  true,
	"authorization": true,
}

// collectParams merges path-item parameters with operation parameters
// (the operation wins on a (name, location) collision) and splits them
// by location.
func (b *Builder) collectParams(opID string, item *openapi3.PathItem, op *openapi3.Operation) (pathParams, queryParams []ir.Param, headerParams []ir.HeaderParam) {
	type key struct{ name, in string }
	merged := map[key]*openapi3.Parameter{}
	order := make([]key, 0, len(item.Parameters)+len(op.Parameters))

	add := func(list openapi3.Parameters) {
		for _, pr := range list {
			if pr == nil || pr.Value == nil {
				continue
			}
			k := key{pr.Value.Name, pr.Value.In}
			if _, seen := merged[k]; !seen {
				order = append(order, k)
			}
			merged[k] = pr.Value
		}
	}
	add(item.Parameters)
	add(op.Parameters)

	for _, k := range order {
		p := merged[k]
		t := b.res.Resolve(p.Schema, opID+"_"+p.Name)
		switch p.In {
		case openapi3.ParameterInPath:
			pathParams = append(pathParams, ir.Param{
				OriginalName: p.Name,
				Name:         naming.PropertyName(p.Name),
				Type:         t,
				Required:     p.Required,
				Description:  p.Description,
			})
		case openapi3.ParameterInQuery:
			queryParams = append(queryParams, ir.Param{
				OriginalName: p.Name,
				Name:         naming.PropertyName(p.Name),
				Type:         t,
				Required:     p.Required,
				Description:  p.Description,
			})
		case openapi3.ParameterInHeader:
			if ignoredHeaders[strings.ToLower(p.Name)] {
				continue
			}
			headerParams = append(headerParams, ir.HeaderParam{
				OriginalName: p.Name,
				Name:         naming.HeaderPropertyName(p.Name),
				Type:         t,
				Required:     p.Required,
				Description:  p.Description,
			})
		}
	}

	sort.Slice(pathParams, func(i, j int) bool { return pathParams[i].Name < pathParams[j].Name })
	sort.Slice(queryParams, func(i, j int) bool { return queryParams[i].Name < queryParams[j].Name })
	sort.Slice(headerParams, func(i, j int) bool {
		return strings.ToLower(headerParams[i].OriginalName) < strings.ToLower(headerParams[j].OriginalName)
	})
	return pathParams, queryParams, headerParams
}

func (b *Builder) extractRequestBody(opID string, op *openapi3.Operation) *ir.RequestBody {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	rb := op.RequestBody.Value
	if len(rb.Content) == 0 {
		return nil
	}

	if media, ok := rb.Content["application/json"]; ok {
		return &ir.RequestBody{
			ContentType: "application/json",
			Type:        b.res.Resolve(media.Schema, opID+"_request"),
			Required:    rb.Required,
		}
	}
	if media, ok := rb.Content["application/x-www-form-urlencoded"]; ok {
		return &ir.RequestBody{
			ContentType: "application/x-www-form-urlencoded",
			Type:        b.res.Resolve(media.Schema, opID+"_request"),
			Required:    rb.Required,
		}
	}
	if _, ok := rb.Content["multipart/form-data"]; ok {
		return &ir.RequestBody{
			ContentType: "multipart/form-data",
			Type:        ir.ResolvedType{Name: "dynamic", Kind: ir.KindDynamic},
			Required:    rb.Required,
		}
	}

	cts := make([]string, 0, len(rb.Content))
	for ct := range rb.Content {
		cts = append(cts, ct)
	}
	sort.Strings(cts)
	return &ir.RequestBody{
		ContentType: cts[0],
		Type:        b.res.Resolve(rb.Content[cts[0]].Schema, opID+"_request"),
		Required:    rb.Required,
	}
}

// extractResponse picks the lowest 2xx response. A 204 or a bodyless
// success maps to void.
func (b *Builder) extractResponse(opID string, op *openapi3.Operation) ir.Response {
	void := ir.Response{Type: ir.ResolvedType{Name: "void", Kind: ir.KindVoid}}
	if op.Responses == nil {
		return void
	}

	codes := make([]string, 0, op.Responses.Len())
	for code := range op.Responses.Map() {
		if len(code) == 3 && code[0] == '2' {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return void
	}
	sort.Strings(codes)

	rr := op.Responses.Map()[codes[0]]
	if rr == nil || rr.Value == nil {
		return void
	}
	resp := rr.Value

	desc := ""
	if resp.Description != nil {
		desc = *resp.Description
	}
	if codes[0] == "204" || len(resp.Content) == 0 {
		void.Description = desc
		return void
	}

	if media, ok := resp.Content["application/json"]; ok {
		return ir.Response{Type: b.res.Resolve(media.Schema, opID+"_response"), Description: desc}
	}
	cts := make([]string, 0, len(resp.Content))
	for ct := range resp.Content {
		cts = append(cts, ct)
	}
	sort.Strings(cts)
	return ir.Response{Type: b.res.Resolve(resp.Content[cts[0]].Schema, opID+"_response"), Description: desc}
}

// referencedHeaderClasses converts every matcher class assigned to at
// least one endpoint into its IR form, sorted by name.
func (b *Builder) referencedHeaderClasses(services []ir.Service) []ir.HeaderClass {
	used := map[string]bool{}
	for _, svc := range services {
		for _, ep := range svc.Endpoints {
			if ep.HeaderClass != "" {
				used[ep.HeaderClass] = true
			}
		}
	}
	if len(used) == 0 {
		return nil
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ir.HeaderClass, 0, len(names))
	for _, name := range names {
		def, ok := b.matcher.Class(name)
		if !ok {
			continue
		}
		hc := ir.HeaderClass{
			Name:        def.Name,
			Description: def.Description,
			Synthesized: def.Synthesized,
		}
		for _, f := range def.Fields {
			hc.Fields = append(hc.Fields, ir.HeaderField{
				OriginalName: f.Name,
				Name:         naming.HeaderPropertyName(f.Name),
				Type:         headerFieldType(f.Type),
				Required:     f.Required,
				Description:  f.Description,
			})
		}
		out = append(out, hc)
	}
	return out
}

func headerFieldType(schemaType string) ir.ResolvedType {
	switch schemaType {
	case "integer":
		return ir.ResolvedType{Name: "int", Kind: ir.KindInt}
	case "number":
		return ir.ResolvedType{Name: "double", Kind: ir.KindDouble}
	case "boolean":
		return ir.ResolvedType{Name: "bool", Kind: ir.KindBool}
	default:
		return ir.ResolvedType{Name: "String", Kind: ir.KindString}
	}
}

func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation keeps an operation when any tag matches the
// include patterns (or none are configured) and no tag matches an
// exclude pattern.
func shouldIncludeOperation(tags []string, include, exclude []*regexp.Regexp) bool {
	included := len(include) == 0
	for _, tag := range tags {
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
			}
		}
	}
	if !included {
		return false
	}
	for _, tag := range tags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}

// groupingTag picks the service tag for an already-included operation:
// the first tag that individually survives the filters, else the first
// tag.
func groupingTag(tags []string, include, exclude []*regexp.Regexp) string {
	for _, tag := range tags {
		if tagAllowed(tag, include, exclude) {
			return tag
		}
	}
	return tags[0]
}

func tagAllowed(tag string, include, exclude []*regexp.Regexp) bool {
	ok := len(include) == 0
	for _, r := range include {
		if r.MatchString(tag) {
			ok = true
		}
	}
	if !ok {
		return false
	}
	for _, r := range exclude {
		if r.MatchString(tag) {
			return false
		}
	}
	return true
}

func derivedOperationID(method, path string) string {
	parts := []string{strings.ToLower(method)}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			parts = append(parts, "by", strings.Trim(seg, "{}"))
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, "_")
}

// pruneUnreachable drops named types no kept endpoint references,
// directly or transitively. Runs only when tag filtering removed
// operations; an unfiltered build keeps every component.
func pruneUnreachable(out *ir.IR) {
	deps := map[string][]string{}
	for _, m := range out.Models {
		deps[m.Name] = m.Imports
	}
	for _, e := range out.Enums {
		deps[e.Name] = nil
	}
	for _, u := range out.Unions {
		deps[u.Name] = u.Imports
	}
	for _, a := range out.Aliases {
		deps[a.Name] = a.Type.Imports
	}

	reachable := map[string]bool{}
	var visit func(name string)
	visit = func(name string) {
		if reachable[name] {
			return
		}
		if _, known := deps[name]; !known {
			return
		}
		reachable[name] = true
		for _, dep := range deps[name] {
			visit(dep)
		}
	}
	seed := func(t ir.ResolvedType) {
		for _, name := range t.Imports {
			visit(name)
		}
	}

	for _, svc := range out.Services {
		for _, ep := range svc.Endpoints {
			for _, p := range ep.PathParams {
				seed(p.Type)
			}
			for _, p := range ep.QueryParams {
				seed(p.Type)
			}
			for _, h := range ep.Headers {
				seed(h.Type)
			}
			if ep.RequestBody != nil {
				seed(ep.RequestBody.Type)
			}
			seed(ep.Response.Type)
		}
	}

	models := out.Models[:0]
	for _, m := range out.Models {
		if reachable[m.Name] {
			models = append(models, m)
		}
	}
	out.Models = models

	enums := out.Enums[:0]
	for _, e := range out.Enums {
		if reachable[e.Name] {
			enums = append(enums, e)
		}
	}
	out.Enums = enums

	unions := out.Unions[:0]
	for _, u := range out.Unions {
		if reachable[u.Name] {
			unions = append(unions, u)
		}
	}
	out.Unions = unions

	aliases := out.Aliases[:0]
	for _, a := range out.Aliases {
		if reachable[a.Name] {
			aliases = append(aliases, a)
		}
	}
	out.Aliases = aliases
}
