package cmd

import (
	"github.com/hivemind-vault/hivemind/internal/adapters/cli"
	"github.com/spf13/cobra"
)

var fixApply bool

var fixCmd = &cobra.Command{
	Use:     "fix",
	Short:   "Apply safe automatic corrections to vault notes",
	Long:    "Report the same findings as validate, and with --apply, write schema defaults and folder/type corrections back to disk.",
	GroupID: "indexing",
	RunE:    runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().BoolVar(&fixApply, "apply", false, "write corrections to disk instead of a dry run")
}

func runFix(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reporter := cli.NewProgressReporter()

	rt, err := newRuntime(ctx, VaultRoot)
	if err != nil {
		reporter.ReportError(err)
		return err
	}
	defer rt.close()

	issues, err := rt.fixVault().Run(ctx, VaultRoot, fixApply)
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	cli.NewReportFormatter().PrintIssues(issues)
	if fixApply {
		reporter.ReportSuccess("corrections written to disk")
	} else {
		reporter.ReportInfo("dry run: pass --apply to write corrections to disk")
	}
	return nil
}
