package generator

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/blimu-dev/dartgen/pkg/config"
	"github.com/blimu-dev/dartgen/pkg/generator/dart"
	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/openapi"
)

// Generator renders one output flavor from a resolved IR.
type Generator interface {
	// ID returns the registry identifier, e.g. "dart".
	ID() string
	// Generate writes the client package for doc into outDir.
	Generate(doc *ir.IR, outDir string, cfg config.Config) error
}

// logSetter is implemented by generators that report per-file progress.
type logSetter interface {
	SetLog(io.Writer)
}

// Registry manages available generators.
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates an empty generator registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds a generator to the registry.
func (r *Registry) Register(gen Generator) {
	r.generators[gen.ID()] = gen
}

// Get retrieves a generator by id.
func (r *Registry) Get(id string) (Generator, bool) {
	gen, ok := r.generators[id]
	return gen, ok
}

// IDs returns all registered generator ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.generators))
	for id := range r.generators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GenerateOptions drives one generation run. Flag values override the
// config file; with no config path the flags must form a complete
// configuration on their own.
type GenerateOptions struct {
	ConfigPath string

	Spec       string
	Output     string
	Name       string
	SingleFile bool
	Validate   bool

	// Quiet suppresses progress lines, resolution notes and the
	// header report.
	Quiet bool
	// Out receives progress output; defaults to os.Stdout.
	Out io.Writer
}

// Service wires loading, IR building, generation and reporting.
type Service struct {
	registry *Registry
}

// NewService creates a service with the default generators registered.
func NewService() *Service {
	registry := NewRegistry()
	registry.Register(dart.New())
	return &Service{registry: registry}
}

// NewServiceWithRegistry creates a service with a custom registry.
func NewServiceWithRegistry(registry *Registry) *Service {
	return &Service{registry: registry}
}

// Registry returns the generator registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Generate runs one full generation: resolve configuration, load the
// document, build the IR, render the Dart package and print the header
// report.
func (s *Service) Generate(opts GenerateOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	progress := out
	if opts.Quiet {
		progress = io.Discard
	}

	doc, err := openapi.Load(cfg.Spec)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Spec, err)
	}
	if cfg.ValidateSpec {
		if err := openapi.Validate(doc); err != nil {
			return fmt.Errorf("validating %s: %w", cfg.Spec, err)
		}
	}

	builder := NewBuilder(doc, *cfg)
	docIR, err := builder.Build()
	if err != nil {
		return err
	}

	gen, ok := s.registry.Get("dart")
	if !ok {
		return fmt.Errorf("no dart generator registered")
	}
	if ls, ok := gen.(logSetter); ok {
		ls.SetLog(progress)
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := gen.Generate(docIR, cfg.Output, *cfg); err != nil {
		return err
	}

	if !opts.Quiet {
		for _, note := range docIR.Notes {
			fmt.Fprintf(out, "note: %s\n", note)
		}
		fmt.Fprint(out, builder.HeaderReport())
	}
	return nil
}

// ValidateSpec loads and validates a document without generating.
func (s *Service) ValidateSpec(input string) error {
	return openapi.ValidateInput(input)
}

// resolveConfig merges the config file with flag overrides. A missing
// config path builds the configuration from the flags alone.
func resolveConfig(opts GenerateOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	if opts.Spec != "" {
		cfg.Spec = opts.Spec
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if opts.Name != "" {
		cfg.Name = opts.Name
	}
	if opts.SingleFile {
		split := false
		cfg.SplitFiles = &split
	}
	if opts.Validate {
		cfg.ValidateSpec = true
	}

	if opts.ConfigPath == "" {
		if err := config.ApplyDefaults(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
