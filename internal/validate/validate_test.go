package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validDocJSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Probe API", "version": "1.0.0"},
  "paths": {
    "/health": {
      "get": {
        "responses": {
          "200": {"description": "OK"}
        }
      }
    }
  }
}`

const validDocYAML = `openapi: 3.0.3
info:
  title: Probe API
  version: 1.0.0
paths:
  /health:
    get:
      responses:
        "200":
          description: OK
`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func codeOf(t *testing.T, err error) Code {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return verr.Code
}

func TestFileAcceptsValidDocuments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	jsonPath := writeArtifact(t, "api.json", validDocJSON)
	if err := File(ctx, jsonPath); err != nil {
		t.Fatalf("json artifact should pass: %v", err)
	}

	yamlPath := writeArtifact(t, "api.yaml", validDocYAML)
	if err := File(ctx, yamlPath); err != nil {
		t.Fatalf("yaml artifact should pass: %v", err)
	}
}

func TestFileClassifiesLoadFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	err := File(ctx, filepath.Join(t.TempDir(), "missing.json"))
	if got := codeOf(t, err); got != LoadError {
		t.Fatalf("missing file: got %s", got)
	}

	broken := writeArtifact(t, "broken.json", "{not json at all")
	if got := codeOf(t, File(ctx, broken)); got != LoadError {
		t.Fatalf("unparseable file: got %s", got)
	}
}

func TestFileClassifiesSemanticFailures(t *testing.T) {
	t.Parallel()
	// Parses fine but has no info section.
	path := writeArtifact(t, "noinfo.json", `{"openapi": "3.0.3", "paths": {}}`)
	err := File(context.Background(), path)
	if got := codeOf(t, err); got != SemanticError {
		t.Fatalf("got %s, want %s (%v)", got, SemanticError, err)
	}
}

func TestStructuralRejectsWrongMajorVersion(t *testing.T) {
	t.Parallel()
	// The document validator only insists the version is present; the
	// meta-schema pins the 3.0.x line.
	doc := strings.Replace(validDocJSON, `"openapi": "3.0.3"`, `"openapi": "4.0.0"`, 1)
	path := writeArtifact(t, "future.json", doc)

	if err := Semantic(context.Background(), path); err != nil {
		t.Fatalf("semantic check should accept it: %v", err)
	}
	err := Structural(path)
	if got := codeOf(t, err); got != StructuralError {
		t.Fatalf("got %s, want %s (%v)", got, StructuralError, err)
	}

	// File runs both, so the structural failure surfaces there too.
	if got := codeOf(t, File(context.Background(), path)); got != StructuralError {
		t.Fatalf("File: got %s", got)
	}
}

func TestStructuralRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()
	path := writeArtifact(t, "api.txt", validDocJSON)
	err := Structural(path)
	if got := codeOf(t, err); got != LoadError {
		t.Fatalf("got %s, want %s", got, LoadError)
	}
	if !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("error text: %v", err)
	}
}

func TestDecodeInstanceRoundTripsYAMLToJSONTypes(t *testing.T) {
	t.Parallel()
	path := writeArtifact(t, "typed.yaml", "count: 3\nratio: 0.5\nflag: true\nname: pve\n")

	instance, err := decodeInstance(path)
	if err != nil {
		t.Fatalf("decodeInstance: %v", err)
	}
	m, ok := instance.(map[string]any)
	if !ok {
		t.Fatalf("instance type: %T", instance)
	}
	// After the round trip every number is a JSON float64.
	if m["count"] != float64(3) {
		t.Fatalf("count: got %T %v", m["count"], m["count"])
	}
	if m["ratio"] != 0.5 || m["flag"] != true || m["name"] != "pve" {
		t.Fatalf("values: got %v", m)
	}
}

func TestFilesReportsInOrder(t *testing.T) {
	t.Parallel()
	good := writeArtifact(t, "good.json", validDocJSON)
	bad := writeArtifact(t, "bad.json", "{")

	reports := Files(context.Background(), []string{good, bad})
	if len(reports) != 2 {
		t.Fatalf("reports: got %d", len(reports))
	}
	if reports[0].Path != good || reports[0].Err != nil {
		t.Fatalf("first report: %+v", reports[0])
	}
	if reports[1].Path != bad || reports[1].Err == nil {
		t.Fatalf("second report: %+v", reports[1])
	}
}

func TestDiscoverFindsConventionalLayouts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	seed := func(rel, content string) string {
		t.Helper()
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return p
	}

	pveNested := seed("proxmox-virtual-environment/pve-api.json", validDocJSON)
	pveRoot := seed("pve-api.yaml", validDocYAML)
	pbsScripts := seed("scripts/pbs/pbs-api.yaml", validDocYAML)
	seed("pve-api.txt", "notes, not an artifact")
	seed("unrelated.json", validDocJSON)

	found, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{pveNested, pveRoot, pbsScripts}
	if len(found) != len(want) {
		t.Fatalf("found %v, want %v", found, want)
	}
	for i := range want {
		if found[i] != want[i] {
			t.Fatalf("found[%d] = %s, want %s", i, found[i], want[i])
		}
	}
}

func TestDiscoverEmptyDir(t *testing.T) {
	t.Parallel()
	found, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected nothing, got %v", found)
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	e := &Error{Code: SemanticError, Path: "pve-api.json", Err: inner}
	if e.Error() != "pve-api.json: boom" {
		t.Fatalf("Error(): got %q", e.Error())
	}
	if !errors.Is(e, inner) {
		t.Fatalf("Unwrap should expose the cause")
	}
}
