package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hivemind-vault/hivemind/internal/core/entities"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

var (
	colorPrimary = lipgloss.Color("#2563eb")
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
)

// Compile-time interface check
var _ usecases.ReportFormatter = (*ReportFormatter)(nil)

// ReportFormatter implements the usecases.ReportFormatter interface
// for CLI output formatting.
type ReportFormatter struct{}

// NewReportFormatter creates a new ReportFormatter instance.
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

// PrintIssues prints validate/fix issues to stdout, grouped by kind.
func (f *ReportFormatter) PrintIssues(issues []entities.Issue) {
	if len(issues) == 0 {
		fmt.Println(successStyle.Render("✓ No issues found!"))
		return
	}

	byKind := make(map[entities.IssueKind][]entities.Issue)
	for _, issue := range issues {
		byKind[issue.Kind] = append(byKind[issue.Kind], issue)
	}

	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		group := byKind[entities.IssueKind(kind)]
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%d):", kind, len(group))))
		for _, issue := range group {
			if issue.Field != "" {
				fmt.Printf("  %s [%s] — %s\n", issue.Path, issue.Field, issue.Message)
			} else {
				fmt.Printf("  %s — %s\n", issue.Path, issue.Message)
			}
		}
	}

	fmt.Println(mutedStyle.Render(fmt.Sprintf("\nTotal issues: %d", len(issues))))
}

// PrintBuildReport prints index build statistics to stdout.
func (f *ReportFormatter) PrintBuildReport(stats usecases.BuildStats) {
	fmt.Println(titleStyle.Render("Index build complete:"))
	fmt.Printf("  Notes scanned:  %d\n", stats.NotesScanned)
	fmt.Printf("  Notes admitted: %d\n", stats.NotesAdmitted)
	fmt.Printf("  Edges resolved: %d\n", stats.EdgesResolved)
	fmt.Printf("  Duration:       %s\n", stats.Duration.Round(time.Millisecond))
}
