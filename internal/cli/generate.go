package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/basher83/Proxmox-OpenAPI/internal/apidoc"
	"github.com/basher83/Proxmox-OpenAPI/internal/emitter"
	"github.com/basher83/Proxmox-OpenAPI/internal/openapi"
	"github.com/basher83/Proxmox-OpenAPI/internal/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, environment values, and CLI overrides.
type GenerateConfig struct {
	API         string
	Input       string
	Out         string
	Name        string
	NodeBinary  string
	Timeout     time.Duration
	DisableExec bool
	DryRun      bool
	Verbose     bool
}

func defaultGenerateConfig() (GenerateConfig, error) {
	d, err := loadEnvDefaults()
	if err != nil {
		return GenerateConfig{}, fmt.Errorf("read environment: %w", err)
	}
	return GenerateConfig{
		Input:       d.Input,
		Out:         d.Out,
		Name:        d.Name,
		NodeBinary:  d.NodeBinary,
		Timeout:     d.Timeout,
		DisableExec: d.DisableExec,
	}, nil
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an OpenAPI document from a Proxmox apidoc.js file",
		Long: "Generate an OpenAPI 3.0.3 document from the apiSchema embedded in a Proxmox " +
			"apidoc.js viewer file. Options can be provided via flags or PROXMOX_OPENAPI_* " +
			"environment variables.",
		Example: strings.TrimSpace(`  proxmox-openapi generate --api pve --input apidoc.js --out ./specs
  proxmox-openapi generate --api pbs --dry-run --verbose`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("api", "", "Which API to generate (pve|pbs)")
	flags.String("input", "", "Path to the apidoc.js viewer file (discovered when omitted)")
	flags.String("out", "", "Output directory (current directory when omitted)")
	flags.String("name", "", "Artifact base name; defaults to <api>-api")
	flags.String("node-bin", "", "Node.js binary used by the subprocess recovery tier")
	flags.Duration("timeout", apidoc.DefaultTimeout, "Per-tier evaluation timeout")
	flags.Bool("no-exec", false, "Skip the Node.js subprocess recovery tier")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg, err := defaultGenerateConfig()
	if err != nil {
		return nil, err
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("api") {
		value, err := flags.GetString("api")
		if err != nil {
			return err
		}
		cfg.API = strings.TrimSpace(value)
	}
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("name") {
		value, err := flags.GetString("name")
		if err != nil {
			return err
		}
		cfg.Name = strings.TrimSpace(value)
	}
	if flags.Changed("node-bin") {
		value, err := flags.GetString("node-bin")
		if err != nil {
			return err
		}
		cfg.NodeBinary = strings.TrimSpace(value)
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	if flags.Changed("no-exec") {
		value, err := flags.GetBool("no-exec")
		if err != nil {
			return err
		}
		cfg.DisableExec = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.API = strings.ToLower(strings.TrimSpace(c.API))
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Name = strings.TrimSpace(c.Name)
	c.NodeBinary = strings.TrimSpace(c.NodeBinary)
	if c.NodeBinary == "" {
		c.NodeBinary = "node"
	}
	if c.Timeout == 0 {
		c.Timeout = apidoc.DefaultTimeout
	}
}

func (c *GenerateConfig) validate() error {
	switch c.API {
	case "":
		return newUsageError("generate: --api is required (pve or pbs)")
	case "pve", "pbs":
	default:
		return newUsageErrorf("generate: unsupported --api %q (allowed: pve, pbs)", c.API)
	}

	if c.Timeout < 0 {
		return newUsageError("generate: --timeout must be positive")
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	prof, err := profile.ByName(cfg.API)
	if err != nil {
		return newUsageErrorf("generate: %v", err)
	}

	input := cfg.Input
	if input == "" {
		input, err = discoverInput(prof.Family)
		if err != nil {
			return err
		}
	} else if _, err := os.Stat(input); errors.Is(err, fs.ErrNotExist) {
		return newUsageErrorf("generate: input file %s does not exist", input)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ex := apidoc.NewExtractor(apidoc.Options{
		Logger:      logger,
		NodeBinary:  cfg.NodeBinary,
		Timeout:     cfg.Timeout,
		DisableExec: cfg.DisableExec,
	})

	res, err := ex.ExtractFile(ctx, input)
	if err != nil {
		return fmt.Errorf("extract schema: %w", err)
	}

	endpoints := apidoc.Flatten(res.Nodes)

	doc, report := openapi.NewSynthesizer(prof).Document(endpoints)

	name := cfg.Name
	if name == "" {
		name = string(prof.Family) + "-api"
	}
	outDir := cfg.Out
	if outDir == "" {
		outDir = "."
	}

	// Absolute path only for display; the emitter handles actual writes.
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	eres, err := emitter.WriteDocument(doc, emitter.Options{
		OutDir: outDir,
		Name:   name,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	fmt.Fprintf(os.Stdout, "Recovered %d endpoints from %s via %s tier\n", report.Endpoints, input, res.Tier)
	fmt.Fprintf(os.Stdout, "Paths: %d  Operations: %d  Tags: %d\n", len(doc.Paths), report.Operations, len(doc.Tags))
	if len(report.DuplicatePaths) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d duplicate path(s), last definition kept: %s\n",
			len(report.DuplicatePaths), strings.Join(report.DuplicatePaths, ", "))
	}

	if cfg.DryRun {
		printPlan(absOut, len(eres.Planned), func() []string {
			paths := make([]string, 0, len(eres.Planned))
			for _, p := range eres.Planned {
				paths = append(paths, p.RelPath)
			}
			return paths
		}())
		return nil
	}

	for _, p := range eres.Planned {
		fmt.Fprintf(os.Stdout, "Wrote %s\n", filepath.Join(absOut, p.RelPath))
	}
	return nil
}

// discoverInput mirrors the historical search order for viewer files: the
// working directory first, then the per-product directory relative to the
// scripts tree and the project root.
func discoverInput(family profile.Family) (string, error) {
	dir := "proxmox-virtual-environment"
	if family == profile.PBS {
		dir = "proxmox-backup-server"
	}
	candidates := []string{
		"apidoc.js",
		filepath.Join("..", "..", dir, "apidoc.js"),
		filepath.Join("..", dir, "apidoc.js"),
		filepath.Join(dir, "apidoc.js"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", newUsageErrorf("generate: could not find apidoc.js for %s\nExpected locations:\n  - %s\nPass --input to point at the viewer file.",
		family, strings.Join(candidates, "\n  - "))
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageErrorf("output error for %s: %s\nHint: choose a different --out or check directory permissions.", outDir, msg)
	}
	return err
}
