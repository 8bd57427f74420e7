// Package openapi loads OpenAPI 3.x documents from files, URLs or raw
// bytes. External file references are not followed; resolution operates
// on a single self-contained document.
package openapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
	version "github.com/hashicorp/go-version"
)

var (
	minVersion = version.Must(version.NewVersion("3.0"))
	v31        = version.Must(version.NewVersion("3.1"))
)

// Document pairs a parsed OpenAPI document with derived version
// semantics used during resolution.
type Document struct {
	T *openapi3.T
	// Is31 reports a 3.1+ document, where nullability may be expressed
	// through "null" entries in type arrays instead of the 3.0
	// nullable keyword.
	Is31 bool
}

// Load loads an OpenAPI document from a local file path or an HTTP(S) URL.
func Load(input string) (*Document, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	return LoadWithLoader(loader, input)
}

// LoadWithLoader loads an OpenAPI document using a custom loader.
func LoadWithLoader(loader *openapi3.Loader, input string) (*Document, error) {
	// Try to parse as URL; if it looks like http(s), fetch via URL
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		doc, err := loader.LoadFromURI(u)
		if err != nil {
			return nil, err
		}
		return wrap(doc)
	}
	doc, err := loader.LoadFromFile(input)
	if err != nil {
		return nil, err
	}
	return wrap(doc)
}

// LoadFromData loads an OpenAPI document from raw YAML or JSON bytes.
func LoadFromData(data []byte) (*Document, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, err
	}
	return wrap(doc)
}

// Validate validates a loaded document. Example values are skipped;
// they are irrelevant to client generation and frequently out of spec
// in otherwise usable documents.
func Validate(doc *Document) error {
	return doc.T.Validate(context.Background(), openapi3.DisableExamplesValidation())
}

// ValidateInput loads and validates a document in one step.
func ValidateInput(input string) error {
	doc, err := Load(input)
	if err != nil {
		return err
	}
	return Validate(doc)
}

// wrap checks the declared OpenAPI version and derives version flags.
// Pre-3.0 documents (and documents without a version, typically
// Swagger 2.0) are rejected here rather than failing obscurely during
// resolution.
func wrap(doc *openapi3.T) (*Document, error) {
	if doc.OpenAPI == "" {
		return nil, fmt.Errorf("document does not declare an OpenAPI 3.x version (swagger 2.0 is not supported)")
	}
	v, err := version.NewVersion(doc.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAPI version %q: %w", doc.OpenAPI, err)
	}
	if v.LessThan(minVersion) {
		return nil, fmt.Errorf("unsupported OpenAPI version %q: 3.0 or newer is required", doc.OpenAPI)
	}
	return &Document{T: doc, Is31: v.GreaterThanOrEqual(v31)}, nil
}
