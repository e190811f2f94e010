// Package validate checks generated artifacts: kin-openapi document
// validation for OpenAPI semantics, plus a structural check against the
// OpenAPI 3.0 meta-schema so the two failure classes stay distinguishable.
package validate

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Code categorizes validation failures for clearer handling and messaging.
type Code string

const (
	// LoadError means the file could not be read or parsed at all.
	LoadError Code = "LoadError"
	// SemanticError means kin-openapi rejected the document.
	SemanticError Code = "SemanticError"
	// StructuralError means the document does not fit the OpenAPI 3.0
	// meta-schema.
	StructuralError Code = "StructuralError"
)

// Error is a classified validation failure for one file.
type Error struct {
	Code Code
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

//go:embed openapi3_schema.json
var metaSchemaJSON []byte

var compileMetaSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft4
	if err := compiler.AddResource("openapi3_schema.json", bytes.NewReader(metaSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add meta-schema resource: %w", err)
	}
	return compiler.Compile("openapi3_schema.json")
})

// File runs both checks on one artifact. The returned error, if any, is an
// *Error carrying the failure class.
func File(ctx context.Context, path string) error {
	if err := Semantic(ctx, path); err != nil {
		return err
	}
	return Structural(path)
}

// Semantic loads the artifact with kin-openapi and validates the document.
func Semantic(ctx context.Context, path string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return &Error{Code: LoadError, Path: path, Err: err}
	}
	if err := doc.Validate(ctx); err != nil {
		return &Error{Code: SemanticError, Path: path, Err: err}
	}
	return nil
}

// Structural checks the raw document tree against the OpenAPI 3.0
// meta-schema.
func Structural(path string) error {
	instance, err := decodeInstance(path)
	if err != nil {
		return &Error{Code: LoadError, Path: path, Err: err}
	}
	schema, err := compileMetaSchema()
	if err != nil {
		return &Error{Code: StructuralError, Path: path, Err: err}
	}
	if err := schema.Validate(instance); err != nil {
		return &Error{Code: StructuralError, Path: path, Err: err}
	}
	return nil
}

// decodeInstance reads path into JSON-typed values. YAML input is
// round-tripped through JSON so the meta-schema sees only JSON types.
func decodeInstance(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("yaml parsing error: %w", err)
		}
		data, err = json.Marshal(tree)
		if err != nil {
			return nil, err
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("json parsing error: %w", err)
	}
	return instance, nil
}

// Report is the outcome for one file.
type Report struct {
	Path string
	Err  error // nil means the file passed both checks
}

// Files validates each path in order.
func Files(ctx context.Context, paths []string) []Report {
	reports := make([]Report, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, Report{Path: path, Err: File(ctx, path)})
	}
	return reports
}

var discoverPatterns = []string{
	"proxmox-virtual-environment/pve-api.*",
	"proxmox-backup-server/pbs-api.*",
	"scripts/pve/pve-api.*",
	"scripts/pbs/pbs-api.*",
	"pve-api.*",
	"pbs-api.*",
}

// Discover returns artifact candidates under dir following the conventional
// layout, filtered to JSON and YAML files.
func Discover(dir string) ([]string, error) {
	var found []string
	for _, pattern := range discoverPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			switch strings.ToLower(filepath.Ext(m)) {
			case ".json", ".yaml", ".yml":
				found = append(found, m)
			}
		}
	}
	sort.Strings(found)
	return found, nil
}
