package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DC4E4"))
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6DA95"))
	Warning  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EED49F"))
	Error    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ED8796"))
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E738D"))
	Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A97F")).Bold(true)
	Pane     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#494D64")).Padding(0, 1)
)

// Severity renders a diagnostic severity label.
func Severity(severity string) string {
	switch severity {
	case "skipped":
		return Error.Render(severity)
	case "warning":
		return Warning.Render(severity)
	default:
		return Muted.Render(severity)
	}
}

// Check renders a checklist box.
func Check(on bool) string {
	if on {
		return Success.Render("[x]")
	}
	return Muted.Render("[ ]")
}
