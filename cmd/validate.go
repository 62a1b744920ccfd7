package cmd

import (
	"fmt"
	"os"

	"github.com/hivemind-vault/hivemind/internal/adapters/cli"
	"github.com/hivemind-vault/hivemind/internal/adapters/encoding"
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:     "validate",
	Short:   "Validate vault notes against the active template",
	Long:    "Scan the vault for missing frontmatter, missing required fields, invalid enum values, and folder/type mismatches.",
	GroupID: "indexing",
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit issues as JSON instead of formatted text")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reporter := cli.NewProgressReporter()

	rt, err := newRuntime(ctx, VaultRoot)
	if err != nil {
		reporter.ReportError(err)
		return err
	}
	defer rt.close()

	issues, err := rt.validateVault().Run(ctx, VaultRoot)
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	if validateJSON {
		enc := encoding.NewEncoder()
		out, err := enc.EncodeJSON(issues)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		if len(issues) > 0 {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		return nil
	}

	cli.NewReportFormatter().PrintIssues(issues)
	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	return nil
}
