package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample environment file",
		Long:  "Scaffold a commented .env file that documents the PROXMOX_OPENAPI_* variables the generate command reads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", ".env", "Where to write the sample environment file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = ".env"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageErrorf("init: %q already exists (use --force to overwrite)", absPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageErrorf("init: cannot create parent directory: %v", err)
	}

	content := strings.TrimSpace(sampleEnvFile) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageErrorf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageErrorf("init: cannot place file at %s: %v", absPath, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote sample environment file to %s\n", absPath)
	return nil
}

// sampleEnvFile is a commented example documenting the variables the
// generate command reads. Command-line flags override environment values.
const sampleEnvFile = `# proxmox-openapi environment configuration
# All variables are optional. Command-line flags override environment values.

# Path to the apidoc.js viewer file. Discovered from conventional
# locations when omitted.
# PROXMOX_OPENAPI_INPUT=./apidoc.js

# Output directory for generated documents. Defaults to the current directory.
# PROXMOX_OPENAPI_OUT=./specs

# Artifact base name. Defaults to <api>-api (pve-api or pbs-api).
# PROXMOX_OPENAPI_NAME=pve-api

# Node.js binary used by the subprocess recovery tier.
# PROXMOX_OPENAPI_NODE_BIN=node

# Per-tier evaluation timeout (Go duration syntax).
# PROXMOX_OPENAPI_TIMEOUT=30s

# Skip the Node.js subprocess recovery tier entirely.
# PROXMOX_OPENAPI_NO_EXEC=false
`
