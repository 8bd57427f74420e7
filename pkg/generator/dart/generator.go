// Package dart renders a resolved API description into a Dart package
// built on the dio HTTP client.
package dart

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/dartgen/pkg/config"
	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/naming"
)

//go:embed templates/*.gotmpl
var templatesFS embed.FS

// Generator emits Dart source from the resolved IR.
type Generator struct {
	log io.Writer
}

// New creates a Dart generator that reports progress on stdout.
func New() *Generator {
	return &Generator{log: os.Stdout}
}

// ID returns the generator identifier used in configuration.
func (g *Generator) ID() string {
	return "dart"
}

// SetLog redirects per-file progress output.
func (g *Generator) SetLog(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	g.log = w
}

// Generate writes the Dart package for doc into outDir.
func (g *Generator) Generate(doc *ir.IR, outDir string, cfg config.Config) error {
	funcMap := g.funcMap(doc)

	if cfg.SplitOutput() {
		if err := g.generateSplit(doc, outDir, funcMap); err != nil {
			return err
		}
	} else {
		if err := g.generateSingle(doc, outDir, funcMap); err != nil {
			return err
		}
	}

	if cfg.EmitPubspec() {
		body, err := g.render("pubspec.gotmpl", funcMap, map[string]any{"IR": doc})
		if err != nil {
			return err
		}
		if err := g.writeFile(outDir, "pubspec.yaml", nil, body); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) funcMap(doc *ir.IR) template.FuncMap {
	classes := make(map[string]ir.HeaderClass, len(doc.HeaderClasses))
	for _, hc := range doc.HeaderClasses {
		classes[hc.Name] = hc
	}

	funcMap := template.FuncMap{
		"className":       naming.ClassName,
		"propName":        naming.PropertyName,
		"fileBase":        fileFor,
		"dartDoc":         dartDoc,
		"strLit":          dartStringLit,
		"propType":        propType,
		"ctorParam":       ctorParam,
		"fromJson":        propFromJSON,
		"toJsonLines":     propToJSONLines,
		"returnType":      returnType,
		"methodName":      methodName,
		"endpointDoc":     endpointDoc,
		"pubspecDesc":     pubspecDescription,
		"headerFieldDecl": headerFieldDecl,
		"headerCtorParam": headerCtorParam,
		"headerMapLines":  headerMapLines,
		"methodParams": func(ep ir.Endpoint) []string {
			return methodParams(ep, classes)
		},
		"methodBody": func(ep ir.Endpoint) []string {
			return methodBody(ep, classes)
		},
	}
	for name, fn := range sprig.FuncMap() {
		funcMap[name] = fn
	}
	return funcMap
}

func (g *Generator) generateSplit(doc *ir.IR, outDir string, funcMap template.FuncMap) error {
	for _, m := range doc.Models {
		body, err := g.render("model.gotmpl", funcMap, map[string]any{"Model": m})
		if err != nil {
			return err
		}
		path := filepath.Join("lib", "src", "models", fileFor(m.Name)+".dart")
		if err := g.writeFile(outDir, path, modelFileImports(m), body); err != nil {
			return err
		}
	}
	for _, e := range doc.Enums {
		body, err := g.render("enum.gotmpl", funcMap, map[string]any{"Enum": e})
		if err != nil {
			return err
		}
		path := filepath.Join("lib", "src", "models", fileFor(e.Name)+".dart")
		if err := g.writeFile(outDir, path, nil, body); err != nil {
			return err
		}
	}
	for _, u := range doc.Unions {
		body, err := g.render("union.gotmpl", funcMap, map[string]any{"Union": u})
		if err != nil {
			return err
		}
		path := filepath.Join("lib", "src", "models", fileFor(u.Name)+".dart")
		if err := g.writeFile(outDir, path, unionFileImports(u), body); err != nil {
			return err
		}
	}
	for _, a := range doc.Aliases {
		body, err := g.render("alias.gotmpl", funcMap, map[string]any{"Alias": a})
		if err != nil {
			return err
		}
		path := filepath.Join("lib", "src", "models", fileFor(a.Name)+".dart")
		if err := g.writeFile(outDir, path, aliasFileImports(a), body); err != nil {
			return err
		}
	}

	if len(doc.HeaderClasses) > 0 {
		bodies := make([]string, 0, len(doc.HeaderClasses))
		for _, hc := range doc.HeaderClasses {
			body, err := g.render("header_class.gotmpl", funcMap, map[string]any{"Class": hc})
			if err != nil {
				return err
			}
			bodies = append(bodies, body)
		}
		if err := g.writeFile(outDir, filepath.Join("lib", "src", "header_models.dart"), nil, bodies...); err != nil {
			return err
		}
	}

	clientBody, err := g.render("api_client.gotmpl", funcMap, map[string]any{"IR": doc})
	if err != nil {
		return err
	}
	clientImports := []string{"import 'package:dio/dio.dart';"}
	if err := g.writeFile(outDir, filepath.Join("lib", "src", "api_client.dart"), clientImports, clientBody); err != nil {
		return err
	}

	for _, svc := range doc.Services {
		body, err := g.render("service.gotmpl", funcMap, map[string]any{"Service": svc})
		if err != nil {
			return err
		}
		path := filepath.Join("lib", "src", "services", fileFor(svc.Tag)+"_service.dart")
		if err := g.writeFile(outDir, path, serviceImports(svc), body); err != nil {
			return err
		}
	}

	barrel, err := g.render("barrel.gotmpl", funcMap, map[string]any{"Exports": barrelExports(doc)})
	if err != nil {
		return err
	}
	return g.writeFile(outDir, filepath.Join("lib", doc.PackageName+".dart"), nil, barrel)
}

func (g *Generator) generateSingle(doc *ir.IR, outDir string, funcMap template.FuncMap) error {
	var bodies []string
	appendBody := func(name string, data map[string]any) error {
		body, err := g.render(name, funcMap, data)
		if err != nil {
			return err
		}
		bodies = append(bodies, body)
		return nil
	}

	for _, m := range doc.Models {
		if err := appendBody("model.gotmpl", map[string]any{"Model": m}); err != nil {
			return err
		}
	}
	for _, e := range doc.Enums {
		if err := appendBody("enum.gotmpl", map[string]any{"Enum": e}); err != nil {
			return err
		}
	}
	for _, u := range doc.Unions {
		if err := appendBody("union.gotmpl", map[string]any{"Union": u}); err != nil {
			return err
		}
	}
	for _, a := range doc.Aliases {
		if err := appendBody("alias.gotmpl", map[string]any{"Alias": a}); err != nil {
			return err
		}
	}
	for _, hc := range doc.HeaderClasses {
		if err := appendBody("header_class.gotmpl", map[string]any{"Class": hc}); err != nil {
			return err
		}
	}
	if err := appendBody("api_client.gotmpl", map[string]any{"IR": doc}); err != nil {
		return err
	}
	for _, svc := range doc.Services {
		if err := appendBody("service.gotmpl", map[string]any{"Service": svc}); err != nil {
			return err
		}
	}

	path := filepath.Join("lib", doc.PackageName+".dart")
	return g.writeFile(outDir, path, singleImports(doc), bodies...)
}

func (g *Generator) render(name string, funcMap template.FuncMap, data any) (string, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// writeFile assembles an import block and one or more rendered bodies
// into a file under outDir, creating parent directories as needed.
func (g *Generator) writeFile(outDir, rel string, imports []string, bodies ...string) error {
	var b bytes.Buffer
	for _, imp := range imports {
		b.WriteString(imp)
		b.WriteString("\n")
	}
	if len(imports) > 0 {
		b.WriteString("\n")
	}
	for i, body := range bodies {
		if i > 0 {
			b.WriteString("\n")
		}
		body = trimBlankEdges(body)
		b.WriteString(body)
		b.WriteString("\n")
	}

	path := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	fmt.Fprintf(g.log, "Generated %s\n", rel)
	return nil
}

func trimBlankEdges(s string) string {
	for len(s) > 0 && (s[0] == '\n' || s[0] == '\r') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
