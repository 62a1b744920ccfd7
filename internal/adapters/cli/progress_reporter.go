package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/hivemind-vault/hivemind/internal/core/usecases"
)

var (
	colorSuccess = lipgloss.Color("#10b981")
	colorError   = lipgloss.Color("#ef4444")
	colorMuted   = lipgloss.Color("#6b7280")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Compile-time interface check
var _ usecases.ProgressReporter = (*ProgressReporter)(nil)

// ProgressReporter implements ProgressReporter for styled console output.
type ProgressReporter struct{}

// NewProgressReporter creates a new ProgressReporter.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

// ReportProgress reports progress against a named step.
func (r *ProgressReporter) ReportProgress(step string, current int, total int, message string) {
	if total > 0 {
		percent := (current * 100) / total
		fmt.Printf("  %s %3d%% %s\n", mutedStyle.Render("["+step+"]"), percent, message)
	} else {
		fmt.Printf("  %s %s\n", mutedStyle.Render("["+step+"]"), message)
	}
}

// ReportError reports an error.
func (r *ProgressReporter) ReportError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
}

// ReportSuccess reports success.
func (r *ProgressReporter) ReportSuccess(message string) {
	fmt.Println(successStyle.Render("✓ " + message))
}

// ReportInfo reports an informational message.
func (r *ProgressReporter) ReportInfo(message string) {
	fmt.Println("ℹ " + message)
}
