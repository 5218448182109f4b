package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

// scanProgressMsg reports how many workshop items have been inspected.
type scanProgressMsg struct {
	done  int
	total int
}

// scanDoneMsg carries the outcome of a scan.
type scanDoneMsg struct {
	report *workshop.Report
	err    error
}

// ScanModel controls the UI for a running scan
type ScanModel struct {
	spinner spinner.Model
	root    string

	// State
	done     int
	total    int
	report   *workshop.Report
	err      error
	finished bool
	aborted  bool
}

func initialScanModel(root string) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ScanModel{
		spinner: s,
		root:    root,
	}
}

func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.aborted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanProgressMsg:
		// Progress callbacks race each other, keep the highest count.
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total

	case scanDoneMsg:
		m.finished = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m ScanModel) View() string {
	if m.finished {
		if m.err != nil {
			return fmt.Sprintf("\n %s Scan failed: %v\n\n", ui.Error.Render("✗"), m.err)
		}
		return fmt.Sprintf("\n %s %s\n\n", ui.Success.Render("✓"), m.report.Summary())
	}
	if m.aborted {
		return "\n Scan canceled.\n\n"
	}

	progress := ""
	if m.total > 0 {
		progress = fmt.Sprintf(" %d/%d", m.done, m.total)
	}
	return fmt.Sprintf("\n %s Scanning %s%s\n\n", m.spinner.View(), ui.Muted.Render(m.root), progress)
}

// runScanTUI scans with a spinner on stderr and returns the report.
func runScanTUI(ctx context.Context, s *workshop.Scanner) (*workshop.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialScanModel(s.Root), tea.WithOutput(os.Stderr))

	scanner := *s
	scanner.OnProgress = func(done, total int) {
		p.Send(scanProgressMsg{done: done, total: total})
	}
	go func() {
		report, err := scanner.Scan(ctx)
		p.Send(scanDoneMsg{report: report, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run scan display: %w", err)
	}
	m := final.(ScanModel)
	if !m.finished {
		return nil, fmt.Errorf("scan canceled: %w", context.Canceled)
	}
	return m.report, m.err
}
