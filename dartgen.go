// Package dartgen provides a Go library for generating type-safe Dart
// API clients from OpenAPI specifications.
//
// This package offers both a simple API for common use cases and a
// flexible API for advanced scenarios. The generated code targets Dart 3
// and performs HTTP calls through the dio package.
//
// Quick Start:
//
//	import "github.com/blimu-dev/dartgen"
//
//	// Generate a Dart client package
//	err := dartgen.GenerateDartClient(
//		"https://petstore3.swagger.io/api/v3/openapi.json",
//		"./petstore_client",
//		"petstore_client",
//	)
//
// For more advanced usage, see the generator package.
package dartgen

import (
	"github.com/blimu-dev/dartgen/pkg/generator"
)

// GenerateDartClient is a convenience function for generating a Dart
// client with minimal configuration. It generates a complete Dart
// package from an OpenAPI specification.
//
// Parameters:
//   - spec: Path to OpenAPI specification file or HTTP(S) URL
//   - outDir: Output directory for the generated package
//   - packageName: Dart package name (empty derives it from the spec title)
//
// Example:
//
//	err := dartgen.GenerateDartClient(
//		"./openapi.yaml",
//		"./my_client",
//		"my_api_client",
//	)
func GenerateDartClient(spec, outDir, packageName string) error {
	return generator.GenerateDartClient(spec, outDir, packageName)
}

// Generate generates a Dart client with full configuration options.
// This function provides more control over the generation process.
//
// Example:
//
//	err := dartgen.Generate(dartgen.GenerateOptions{
//		Spec:       "./openapi.yaml",
//		Output:     "./my_client",
//		Name:       "my_api_client",
//		SingleFile: true,
//	})
func Generate(opts GenerateOptions) error {
	return generator.GenerateClient(generator.GenerateOptions{
		ConfigPath: opts.ConfigPath,
		Spec:       opts.Spec,
		Output:     opts.Output,
		Name:       opts.Name,
		SingleFile: opts.SingleFile,
		Validate:   opts.Validate,
		Quiet:      opts.Quiet,
	})
}

// GenerateFromConfig generates a Dart client from a YAML configuration
// file.
//
// Example:
//
//	err := dartgen.GenerateFromConfig("./dartgen.yaml")
func GenerateFromConfig(configPath string) error {
	return generator.GenerateFromConfig(configPath)
}

// ValidateSpec validates an OpenAPI specification file.
// This is useful for checking a spec before attempting generation.
//
// Example:
//
//	err := dartgen.ValidateSpec("./openapi.yaml")
//	if err != nil {
//		log.Fatalf("Invalid OpenAPI spec: %v", err)
//	}
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}

// GenerateOptions contains options for client generation.
type GenerateOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// Overrides applied on top of the config file, or used on their
	// own when no config file is given.
	Spec       string // OpenAPI spec file or URL
	Output     string // Output directory
	Name       string // Dart package name
	SingleFile bool   // Render the whole client into one library file
	Validate   bool   // Validate the spec before generating
	Quiet      bool   // Suppress progress output
}
