package generator

import (
	"path/filepath"

	"github.com/blimu-dev/dartgen/pkg/openapi"
)

// GenerateClient is a convenience function for generating a client with
// minimal setup.
func GenerateClient(opts GenerateOptions) error {
	return NewService().Generate(opts)
}

// GenerateDartClient generates a Dart package for spec into outDir.
// packageName may be empty, in which case the name derives from the
// document title.
func GenerateDartClient(spec, outDir, packageName string) error {
	// Ensure absolute path for outDir
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}

	return GenerateClient(GenerateOptions{
		Spec:   spec,
		Output: absOutDir,
		Name:   packageName,
	})
}

// GenerateFromConfig is a convenience function for generating from a
// config file.
func GenerateFromConfig(configPath string) error {
	return GenerateClient(GenerateOptions{ConfigPath: configPath})
}

// ValidateSpec validates an OpenAPI specification. The input may be a
// local file path or an HTTP(S) URL.
func ValidateSpec(input string) error {
	return openapi.ValidateInput(input)
}
