package headers

import (
	"testing"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

func testDefs() map[string]DefinitionSpec {
	return map[string]DefinitionSpec{
		"TenantHeaders": {
			Fields:   FromNames("X-Tenant-ID", "X-Request-ID"),
			Required: []string{"X-Tenant-ID"},
		},
		"TracingHeaders": {
			Fields: FromNames("X-Trace-ID", "X-Span-ID", "X-Parent-Span-ID"),
		},
	}
}

func TestMatchExact(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDefs(), Options{Enabled: true, Strategy: StrategyExact})

	tests := []struct {
		name   string
		params []ir.HeaderParam
		want   string
	}{
		{
			name:   "full match regardless of order",
			params: []ir.HeaderParam{hp("X-Request-ID", false), hp("X-Tenant-ID", true)},
			want:   "TenantHeaders",
		},
		{
			name:   "required flag mismatch",
			params: []ir.HeaderParam{hp("X-Request-ID", false), hp("X-Tenant-ID", false)},
			want:   "",
		},
		{
			name:   "missing field",
			params: []ir.HeaderParam{hp("X-Tenant-ID", true)},
			want:   "",
		},
		{
			name:   "extra field",
			params: []ir.HeaderParam{hp("X-Tenant-ID", true), hp("X-Request-ID", false), hp("X-Extra", false)},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.FindMatchingHeaderClass("/users", tt.params); got != tt.want {
				t.Errorf("FindMatchingHeaderClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchExactRequiredPartition(t *testing.T) {
	t.Parallel()

	// Two definitions over the same three fields, split differently
	// between required and optional.
	defs := map[string]DefinitionSpec{
		"StrictAuthHeaders": {
			Fields:   FromNames("X-Api-Key", "X-Company-Id", "X-User-Id"),
			Required: []string{"X-Api-Key", "X-Company-Id", "X-User-Id"},
		},
		"LooseAuthHeaders": {
			Fields:   FromNames("X-Api-Key", "X-Company-Id", "X-User-Id"),
			Required: []string{"X-Api-Key"},
		},
	}
	m := NewMatcher(defs, Options{Enabled: true, Strategy: StrategyExact})

	tests := []struct {
		name   string
		params []ir.HeaderParam
		want   string
	}{
		{
			name: "all required",
			params: []ir.HeaderParam{
				hp("X-Api-Key", true), hp("X-Company-Id", true), hp("X-User-Id", true),
			},
			want: "StrictAuthHeaders",
		},
		{
			name: "only the key required",
			params: []ir.HeaderParam{
				hp("X-Api-Key", true), hp("X-Company-Id", false), hp("X-User-Id", false),
			},
			want: "LooseAuthHeaders",
		},
		{
			name: "a third partition matches neither",
			params: []ir.HeaderParam{
				hp("X-Api-Key", true), hp("X-Company-Id", true), hp("X-User-Id", false),
			},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.FindMatchingHeaderClass("/auth", tt.params); got != tt.want {
				t.Errorf("FindMatchingHeaderClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchSubset(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDefs(), Options{Enabled: true, Strategy: StrategySubset})

	tests := []struct {
		name   string
		params []ir.HeaderParam
		want   string
	}{
		{
			name:   "endpoint uses a slice of the definition",
			params: []ir.HeaderParam{hp("X-Trace-ID", false)},
			want:   "TracingHeaders",
		},
		{
			name:   "definition required field must be present",
			params: []ir.HeaderParam{hp("X-Request-ID", false)},
			want:   "",
		},
		{
			name:   "required present, optional omitted",
			params: []ir.HeaderParam{hp("X-Tenant-ID", true)},
			want:   "TenantHeaders",
		},
		{
			name:   "field outside every definition",
			params: []ir.HeaderParam{hp("X-Trace-ID", false), hp("X-Unknown", false)},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.FindMatchingHeaderClass("/orders", tt.params); got != tt.want {
				t.Errorf("FindMatchingHeaderClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchFuzzy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold float64
		params    []ir.HeaderParam
		want      string
	}{
		{
			name:      "two of three fields shared",
			threshold: 0.5,
			params:    []ir.HeaderParam{hp("X-Trace-ID", false), hp("X-Span-ID", false)},
			want:      "TracingHeaders",
		},
		{
			name:      "overlap below floor",
			threshold: 0.5,
			params:    []ir.HeaderParam{hp("X-Trace-ID", false), hp("X-A", false), hp("X-B", false)},
			want:      "",
		},
		{
			name:      "floor raised above overlap",
			threshold: 0.9,
			params:    []ir.HeaderParam{hp("X-Trace-ID", false), hp("X-Span-ID", false)},
			want:      "",
		},
		{
			name:      "exact field set scores one",
			threshold: 1.0,
			params:    []ir.HeaderParam{hp("X-Tenant-ID", false), hp("X-Request-ID", true)},
			want:      "TenantHeaders",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(testDefs(), Options{Enabled: true, Strategy: StrategyFuzzy, FuzzyThreshold: tt.threshold})
			if got := m.FindMatchingHeaderClass("/traces", tt.params); got != tt.want {
				t.Errorf("FindMatchingHeaderClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchFuzzyTieGoesToEarlierName(t *testing.T) {
	t.Parallel()

	defs := map[string]DefinitionSpec{
		"BravoHeaders": {Fields: FromNames("X-One", "X-Two")},
		"AlphaHeaders": {Fields: FromNames("X-One", "X-Three")},
	}
	m := NewMatcher(defs, Options{Enabled: true, Strategy: StrategyFuzzy, FuzzyThreshold: 0.3})

	// X-One overlaps both definitions with the same score.
	got := m.FindMatchingHeaderClass("/things", []ir.HeaderParam{hp("X-One", false)})
	if got != "AlphaHeaders" {
		t.Errorf("tie broke to %q, want AlphaHeaders", got)
	}
}

func TestMatcherDisabled(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDefs(), Options{Enabled: false, Strategy: StrategyExact})
	got := m.FindMatchingHeaderClass("/users", []ir.HeaderParam{hp("X-Tenant-ID", true), hp("X-Request-ID", false)})
	if got != "" {
		t.Errorf("disabled matcher returned %q", got)
	}
	if s := m.Stats(); s.Endpoints != 0 || s.Matched != 0 {
		t.Errorf("disabled matcher recorded stats: %+v", s)
	}
}

func TestMatcherEmptyHeaders(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDefs(), Options{Enabled: true, Strategy: StrategyExact})
	if got := m.FindMatchingHeaderClass("/users", nil); got != "" {
		t.Errorf("empty header set matched %q", got)
	}
	if s := m.Stats(); s.Endpoints != 0 {
		t.Errorf("empty header set counted as an endpoint: %+v", s)
	}
}

func TestMatcherStats(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testDefs(), Options{Enabled: true, Strategy: StrategyExact})
	tenant := []ir.HeaderParam{hp("X-Tenant-ID", true), hp("X-Request-ID", false)}
	m.FindMatchingHeaderClass("/users", tenant)
	m.FindMatchingHeaderClass("/orders", tenant)
	m.FindMatchingHeaderClass("/misc", []ir.HeaderParam{hp("X-Nobody", false)})

	s := m.Stats()
	if s.Endpoints != 3 || s.Matched != 2 || s.Unmatched != 1 {
		t.Errorf("stats = %+v, want 3 endpoints, 2 matched, 1 unmatched", s)
	}
	if s.PerClass["TenantHeaders"] != 2 {
		t.Errorf("PerClass[TenantHeaders] = %d, want 2", s.PerClass["TenantHeaders"])
	}
}
