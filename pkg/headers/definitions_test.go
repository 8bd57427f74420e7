package headers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestDefinitionSpecListForm(t *testing.T) {
	t.Parallel()

	src := `
TenantHeaders:
  fields:
    - X-Tenant-ID
    - X-Request-ID
  required:
    - X-Tenant-ID
  description: Tenant scoping headers.
`
	var defs map[string]DefinitionSpec
	if err := yaml.Unmarshal([]byte(src), &defs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := defs["TenantHeaders"].normalize("TenantHeaders")
	want := ClassDef{
		Name:        "TenantHeaders",
		Description: "Tenant scoping headers.",
		Fields: []Field{
			{Name: "X-Request-ID", Type: "string"},
			{Name: "X-Tenant-ID", Type: "string", Required: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalized definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDefinitionSpecMapForm(t *testing.T) {
	t.Parallel()

	src := `
PagingHeaders:
  fields:
    X-Page-Size:
      type: integer
      required: true
      description: Items per page.
    X-Page-Token:
      type: string
`
	var defs map[string]DefinitionSpec
	if err := yaml.Unmarshal([]byte(src), &defs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := defs["PagingHeaders"].normalize("PagingHeaders")
	want := ClassDef{
		Name: "PagingHeaders",
		Fields: []Field{
			{Name: "X-Page-Size", Type: "integer", Required: true, Description: "Items per page."},
			{Name: "X-Page-Token", Type: "string"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalized definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDefinitionSpecBothFormsEquivalent(t *testing.T) {
	t.Parallel()

	listForm := `
fields:
  - X-API-Key
required:
  - X-API-Key
`
	mapForm := `
fields:
  X-API-Key:
    type: string
    required: true
`
	var a, b DefinitionSpec
	if err := yaml.Unmarshal([]byte(listForm), &a); err != nil {
		t.Fatalf("unmarshal list form: %v", err)
	}
	if err := yaml.Unmarshal([]byte(mapForm), &b); err != nil {
		t.Fatalf("unmarshal map form: %v", err)
	}
	if diff := cmp.Diff(a.normalize("AuthHeaders"), b.normalize("AuthHeaders")); diff != "" {
		t.Errorf("forms normalize differently (-list +map):\n%s", diff)
	}
}

func TestDefinitionSpecOrphanRequired(t *testing.T) {
	t.Parallel()

	// A required name missing from fields still becomes part of the
	// definition rather than failing the load.
	spec := DefinitionSpec{
		Fields:   FromNames("X-Present"),
		Required: []string{"X-Ghost"},
	}
	def := spec.normalize("OddHeaders")
	if len(def.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(def.Fields))
	}
	if def.Fields[0].Name != "X-Ghost" || !def.Fields[0].Required {
		t.Errorf("orphan required field not kept: %+v", def.Fields[0])
	}
}

func TestDefinitionSpecRejectsScalarFields(t *testing.T) {
	t.Parallel()

	var spec DefinitionSpec
	err := yaml.Unmarshal([]byte(`fields: nope`), &spec)
	if err == nil {
		t.Fatal("scalar fields value did not error")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero config", cfg: Config{}},
		{name: "known strategy", cfg: Config{MatchStrategy: StrategyFuzzy, FuzzyThreshold: 0.7}},
		{name: "unknown strategy", cfg: Config{MatchStrategy: "levenshtein"}, wantErr: true},
		{name: "threshold above one", cfg: Config{FuzzyThreshold: 1.5}, wantErr: true},
		{name: "negative consolidation threshold", cfg: Config{ConsolidationThreshold: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
