// Package config loads and validates the dartgen YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/dartgen/pkg/headers"
)

// Config represents the complete configuration for one generation run.
// SplitFiles and Pubspec default to enabled when omitted; they are
// pointers so an explicit false survives the defaults merge.
type Config struct {
	// Spec is the OpenAPI document to read: a file path or an http(s) URL.
	Spec string `yaml:"spec"`
	// Output is the directory the Dart package is written into.
	Output string `yaml:"output"`
	// Name overrides the Dart package name derived from info.title.
	Name string `yaml:"name"`
	// ValidateSpec runs full document validation before generating.
	ValidateSpec bool `yaml:"validate"`
	// SplitFiles selects one file per model/service (default) or a
	// single library file.
	SplitFiles *bool `yaml:"splitFiles"`
	// Pubspec controls whether a pubspec.yaml is emitted.
	Pubspec *bool `yaml:"pubspec"`
	// IncludeTags keeps only operations whose tags match one of these
	// patterns; ExcludeTags then removes matches. Patterns are
	// regular expressions matched anywhere in the tag.
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
	// Headers configures header-class matching and consolidation.
	Headers headers.Config `yaml:"headers"`
}

// SplitOutput reports whether generation writes one file per type.
func (c *Config) SplitOutput() bool {
	return c.SplitFiles == nil || *c.SplitFiles
}

// EmitPubspec reports whether a pubspec.yaml is written.
func (c *Config) EmitPubspec() bool {
	return c.Pubspec == nil || *c.Pubspec
}

var packageNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Load loads configuration from a YAML file, applies defaults,
// validates it and resolves relative paths against the file's
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.AbsolutizePaths(filepath.Dir(abs))
	return &cfg, nil
}

// ApplyDefaults fills unset fields. Exposed so flag-built configs go
// through the same merge as file-loaded ones.
func ApplyDefaults(c *Config) error {
	if err := mergo.Merge(c, defaults()); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}
	return nil
}

// Validate checks required fields and option ranges.
func (c *Config) Validate() error {
	if c.Spec == "" {
		return errors.New("config.spec is required")
	}
	if c.Output == "" {
		return errors.New("config.output is required")
	}
	if c.Name != "" && !packageNameRe.MatchString(c.Name) {
		return fmt.Errorf("config.name %q is not a valid Dart package name (want lower_snake_case)", c.Name)
	}
	return c.Headers.Validate()
}

// AbsolutizePaths resolves relative spec and output paths against
// baseDir. URL specs are kept as-is.
func (c *Config) AbsolutizePaths(baseDir string) {
	if c.Spec != "" && !isURL(c.Spec) && !filepath.IsAbs(c.Spec) {
		c.Spec = filepath.Join(baseDir, c.Spec)
	}
	if c.Output != "" && !filepath.IsAbs(c.Output) {
		c.Output = filepath.Join(baseDir, c.Output)
	}
}

func defaults() Config {
	return Config{
		SplitFiles: boolPtr(true),
		Pubspec:    boolPtr(true),
		Headers: headers.Config{
			CustomMatch:            boolPtr(true),
			MatchStrategy:          headers.StrategyExact,
			FuzzyThreshold:         0.5,
			CustomConsolidate:      boolPtr(true),
			ConsolidationThreshold: 3,
		},
	}
}

func boolPtr(v bool) *bool { return &v }

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
