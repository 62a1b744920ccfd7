package cmd

import (
	"fmt"

	"github.com/hivemind-vault/hivemind/internal/adapters/cli"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Short:   "Build the full index for a vault",
	Long:    "Scan the vault, parse every note, build the knowledge graph, and persist the result to storage.",
	GroupID: "indexing",
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reporter := cli.NewProgressReporter()
	formatter := cli.NewReportFormatter()

	reporter.ReportInfo(fmt.Sprintf("building index for %s", VaultRoot))

	rt, err := newRuntime(ctx, VaultRoot)
	if err != nil {
		reporter.ReportError(err)
		return err
	}
	defer rt.close()

	stats, err := rt.buildIndex().Run(ctx, VaultRoot)
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	formatter.PrintBuildReport(stats)
	return nil
}
