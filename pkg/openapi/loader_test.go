package openapi

import (
	"strings"
	"testing"
)

const sampleDoc = `
openapi: "%s"
info:
  title: Sample
  version: "1.0"
paths:
  /ping:
    get:
      responses:
        '204':
          description: ok
`

func TestLoadFromDataVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		is31    bool
	}{
		{"3.0.0", false},
		{"3.0.3", false},
		{"3.1.0", true},
		{"3.1.1", true},
	}
	for _, test := range tests {
		data := strings.Replace(sampleDoc, "%s", test.version, 1)
		doc, err := LoadFromData([]byte(data))
		if err != nil {
			t.Fatalf("LoadFromData(%s): %v", test.version, err)
		}
		if doc.Is31 != test.is31 {
			t.Errorf("version %s: Is31 = %v, expected %v", test.version, doc.Is31, test.is31)
		}
	}
}

func TestLoadFromDataRejectsOldVersions(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "%s", "2.0", 1)
	if _, err := LoadFromData([]byte(data)); err == nil {
		t.Fatal("expected error for OpenAPI 2.0 document")
	}
}

func TestLoadFromDataValidates(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "%s", "3.0.3", 1)
	doc, err := LoadFromData([]byte(data))
	if err != nil {
		t.Fatalf("LoadFromData: %v", err)
	}
	if err := Validate(doc); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/no/such/openapi.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
