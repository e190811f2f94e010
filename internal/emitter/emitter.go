// Package emitter writes a synthesized document to disk as paired JSON and
// YAML artifacts.
package emitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Options controls where and how artifacts are written.
type Options struct {
	OutDir string // required; target directory, created if missing
	Name   string // required; artifact base name, e.g. "pve-api"
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
}

// Result returns the planned files.
type Result struct {
	Planned []PlannedFile
}

// WriteDocument renders doc as <Name>.json and <Name>.yaml under OutDir.
// Existing artifacts are overwritten; regeneration is the normal flow.
func WriteDocument(doc *openapi3.T, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("emitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("emitter: Name is required")
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	yamlBytes, err := JSONToYAML(jsonBytes)
	if err != nil {
		return nil, fmt.Errorf("render yaml: %w", err)
	}

	files := map[string][]byte{
		opts.Name + ".json": jsonBytes,
		opts.Name + ".yaml": yamlBytes,
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel])})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

// JSONToYAML re-encodes a JSON document as YAML. Every JSON document is
// valid YAML, so decoding goes through the YAML reader directly.
func JSONToYAML(jsonBytes []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(jsonBytes, &tree); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return yaml.Marshal(tree)
}

func writeFiles(outDir string, files map[string][]byte) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
