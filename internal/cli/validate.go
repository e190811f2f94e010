package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/basher83/Proxmox-OpenAPI/internal/validate"
	"github.com/spf13/cobra"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate generated OpenAPI documents",
		Long: "Validate OpenAPI documents semantically (references, schema constraints) and " +
			"structurally (shape against the OpenAPI 3.0 meta-schema). Without arguments, " +
			"documents are discovered in the conventional repository locations.",
		Example: strings.TrimSpace(`  proxmox-openapi validate pve-api.json pbs-api.yaml
  proxmox-openapi validate`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRunner(cmd.Context(), args)
		},
	}
	return cmd
}

func runValidate(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		discovered, err := validate.Discover(".")
		if err != nil {
			return fmt.Errorf("discover documents: %w", err)
		}
		if len(discovered) == 0 {
			return newUsageError("validate: no OpenAPI documents found; pass file paths or run from a directory containing pve-api.* or pbs-api.* artifacts")
		}
		paths = discovered
	}

	reports := validate.Files(ctx, paths)
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL %s\n", r.Path)
			fmt.Fprintf(os.Stdout, "     %v\n", r.Err)
			continue
		}
		fmt.Fprintf(os.Stdout, "PASS %s\n", r.Path)
	}

	if failed > 0 {
		return fmt.Errorf("validate: %d of %d document(s) failed", failed, len(reports))
	}
	fmt.Fprintf(os.Stdout, "%d document(s) valid\n", len(reports))
	return nil
}
