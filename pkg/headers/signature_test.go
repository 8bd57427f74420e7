package headers

import (
	"testing"

	"github.com/blimu-dev/dartgen/pkg/ir"
)

func hp(name string, required bool) ir.HeaderParam {
	return ir.HeaderParam{
		OriginalName: name,
		Name:         name,
		Type:         ir.ResolvedType{Name: "String", Kind: ir.KindString},
		Required:     required,
	}
}

func TestSignatureOrderIndependent(t *testing.T) {
	t.Parallel()

	a := Signature([]ir.HeaderParam{hp("X-Tenant-ID", true), hp("X-Request-ID", false)})
	b := Signature([]ir.HeaderParam{hp("X-Request-ID", false), hp("X-Tenant-ID", true)})
	if a != b {
		t.Errorf("signature depends on parameter order: %q vs %q", a, b)
	}
	if want := "x-request-id:opt|x-tenant-id:req"; a != want {
		t.Errorf("Signature = %q, want %q", a, want)
	}
}

func TestSignatureCaseInsensitive(t *testing.T) {
	t.Parallel()

	a := Signature([]ir.HeaderParam{hp("X-API-Key", true)})
	b := Signature([]ir.HeaderParam{hp("x-api-key", true)})
	if a != b {
		t.Errorf("signature is case sensitive: %q vs %q", a, b)
	}
}

func TestSignatureRequiredSensitive(t *testing.T) {
	t.Parallel()

	req := Signature([]ir.HeaderParam{hp("X-API-Key", true)})
	opt := Signature([]ir.HeaderParam{hp("X-API-Key", false)})
	if req == opt {
		t.Errorf("required and optional collapsed to the same signature %q", req)
	}
}

func TestSignatureEmpty(t *testing.T) {
	t.Parallel()

	if got := Signature(nil); got != "" {
		t.Errorf("Signature(nil) = %q, want empty", got)
	}
}

func TestClassDefSignatureMatchesEndpointSignature(t *testing.T) {
	t.Parallel()

	spec := DefinitionSpec{
		Fields:   FromNames("X-Tenant-ID", "X-Request-ID"),
		Required: []string{"X-Tenant-ID"},
	}
	def := spec.normalize("TenantHeaders")
	endpoint := Signature([]ir.HeaderParam{hp("x-request-id", false), hp("x-tenant-id", true)})
	if def.Signature() != endpoint {
		t.Errorf("definition signature %q does not line up with endpoint signature %q", def.Signature(), endpoint)
	}
}
