package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/basher83/Proxmox-OpenAPI/internal/emitter"
	"github.com/spf13/cobra"
)

var convertRunner = runConvert

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input.json>",
		Short: "Convert a JSON OpenAPI document to YAML",
		Example: strings.TrimSpace(`  proxmox-openapi convert pve-api.json
  proxmox-openapi convert pbs-api.json -o specs/pbs-api.yaml`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			return convertRunner(args[0], strings.TrimSpace(out))
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output path; defaults to the input with a .yaml extension")

	return cmd
}

func runConvert(input, output string) error {
	if output == "" {
		ext := filepath.Ext(input)
		output = strings.TrimSuffix(input, ext) + ".yaml"
	}

	jsonBytes, err := os.ReadFile(input)
	if err != nil {
		return newUsageErrorf("convert: read %s: %v", input, err)
	}

	yamlBytes, err := emitter.JSONToYAML(jsonBytes)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}

	if err := os.WriteFile(output, yamlBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(os.Stdout, "Converted %s (%d bytes) to %s (%d bytes)\n",
		input, len(jsonBytes), output, len(yamlBytes))
	return nil
}
