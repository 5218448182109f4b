package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick mods interactively and export the server settings",
	Long: `Scan the workshop directory and open a checklist of the installed mods.

  ↑/k ↓/j   move
  space     enable or disable the mod under the cursor
  a / n     enable all / none
  s         save the selection as a preset
  e         export WorkshopItems=, Mods= and Map=
  q         quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		presetName, _ := cmd.Flags().GetString("preset")
		return runSelect(cmd, presetName)
	},
}

func init() {
	selectCmd.Flags().String("preset", "", "start from a saved preset")
	rootCmd.AddCommand(selectCmd)
}

type selectMode int

const (
	modeList selectMode = iota
	modeSaving
	modeExport
)

// exportOutcome is what the checklist needs to show after an export.
type exportOutcome struct {
	Export      workshop.Export
	ExportID    string
	Items       int
	Diagnostics workshop.Diagnostics
}

// Message types
type exportDoneMsg struct {
	outcome *exportOutcome
	err     error
}

type presetSavedMsg struct {
	name string
	err  error
}

type clearMessageMsg struct{}

// SelectModel is the checklist state. It owns the selection for the
// lifetime of the program.
type SelectModel struct {
	catalog workshop.Catalog
	names   []string
	sel     workshop.Selection
	preset  string

	cursor int
	offset int
	width  int
	height int

	mode      selectMode
	input     textinput.Model
	exporting bool
	outcome   *exportOutcome
	message   string
	error     string

	savePreset func(name string, sel workshop.Selection) error
	runExport  func(sel workshop.Selection, presetName string) (*exportOutcome, error)
	copyText   func(text string) error
}

func newSelectModel(catalog workshop.Catalog, sel workshop.Selection, presetName string) SelectModel {
	ti := textinput.New()
	ti.Placeholder = "preset name"
	ti.Prompt = "Save as: "
	ti.CharLimit = 64

	return SelectModel{
		catalog: catalog,
		names:   catalog.Names(),
		sel:     sel,
		preset:  presetName,
		width:   100,
		height:  24,
		input:   ti,
	}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
	case tea.KeyMsg:
		switch m.mode {
		case modeSaving:
			return m.handleSavingKey(msg)
		case modeExport:
			return m.handleExportKey(msg)
		default:
			return m.handleListKey(msg)
		}
	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.error = fmt.Sprintf("Export failed: %v", msg.err)
			return m, nil
		}
		m.outcome = msg.outcome
		m.mode = modeExport
	case presetSavedMsg:
		if msg.err != nil {
			m.error = fmt.Sprintf("Failed to save preset: %v", msg.err)
			return m, nil
		}
		m.preset = msg.name
		cmd := m.flash(fmt.Sprintf("Saved preset %q", msg.name))
		return m, cmd
	case clearMessageMsg:
		m.message = ""
	}
	return m, nil
}

func (m SelectModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.error = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.names)-1, 0)
	case " ", "x":
		if len(m.names) > 0 {
			m.sel.Toggle(m.names[m.cursor])
		}
	case "a":
		m.sel.SetAll(true)
	case "n":
		m.sel.SetAll(false)
	case "s":
		if m.savePreset == nil {
			return m, nil
		}
		m.mode = modeSaving
		m.input.SetValue(m.preset)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	case "e":
		if m.runExport == nil || m.exporting {
			return m, nil
		}
		m.exporting = true
		return m, m.exportCmd()
	}
	m.clampOffset()
	return m, nil
}

func (m SelectModel) handleSavingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		if name == "" {
			m.error = "Preset name is empty"
			return m, nil
		}
		return m, m.saveCmd(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SelectModel) handleExportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "c":
		if m.copyText == nil || m.outcome == nil {
			return m, nil
		}
		if err := m.copyText(m.outcome.Export.String()); err != nil {
			m.error = fmt.Sprintf("Clipboard unavailable: %v", err)
			return m, nil
		}
		cmd := m.flash("Copied to clipboard")
		return m, cmd
	default:
		m.mode = modeList
	}
	return m, nil
}

func (m *SelectModel) flash(message string) tea.Cmd {
	m.message = message
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

func (m SelectModel) exportCmd() tea.Cmd {
	sel := cloneSelection(m.sel)
	run, presetName := m.runExport, m.preset
	return func() tea.Msg {
		outcome, err := run(sel, presetName)
		return exportDoneMsg{outcome: outcome, err: err}
	}
}

func (m SelectModel) saveCmd(name string) tea.Cmd {
	sel := cloneSelection(m.sel)
	save := m.savePreset
	return func() tea.Msg {
		return presetSavedMsg{name: name, err: save(name, sel)}
	}
}

func (m SelectModel) listHeight() int {
	return max(m.height-6, 3)
}

// clampOffset keeps the cursor inside the visible window.
func (m *SelectModel) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the UI
func (m SelectModel) View() string {
	if m.mode == modeExport && m.outcome != nil {
		return m.renderExport()
	}
	if len(m.names) == 0 {
		return "No mods found in the workshop directory. Press q to quit.\n"
	}

	listWidth := max(m.width/2, 30)
	list := m.renderList(listWidth)
	detail := ui.Pane.Width(max(m.width-listWidth-4, 20)).Render(m.renderDetail())

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail))
	b.WriteString("\n")

	switch {
	case m.mode == modeSaving:
		b.WriteString(m.input.View())
	case m.exporting:
		b.WriteString(ui.Muted.Render("Resolving selected mods..."))
	default:
		b.WriteString(renderSelectFooter())
	}
	if m.message != "" {
		b.WriteString("\n" + ui.Success.Render(m.message))
	}
	if m.error != "" {
		b.WriteString("\n" + ui.Error.Render(m.error))
	}
	return b.String()
}

func (m SelectModel) renderHeader() string {
	title := fmt.Sprintf("%d of %d mods enabled", len(m.sel.Enabled()), len(m.names))
	if m.preset != "" {
		title += "  preset: " + m.preset
	}
	return ui.Title.Render(title)
}

func (m SelectModel) renderList(width int) string {
	end := min(m.offset+m.listHeight(), len(m.names))
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		name := m.names[i]
		row := fmt.Sprintf("%s %s", ui.Check(m.sel[name]), truncate(name, width-6))
		if i == m.cursor {
			row = ui.Selected.Render("›") + " " + row
		} else {
			row = "  " + row
		}
		rows = append(rows, row)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(rows, "\n"))
}

func (m SelectModel) renderDetail() string {
	name := m.names[m.cursor]
	mod := m.catalog[name]

	lines := []string{
		ui.Title.Render(name),
		ui.Muted.Render("Workshop ID: ") + mod.WorkshopID,
	}
	if mod.ModID != "" {
		lines = append(lines, ui.Muted.Render("Mod ID: ")+mod.ModID)
	}
	if mod.ImagePath != "" {
		lines = append(lines, ui.Muted.Render("Preview: ")+filepath.Base(mod.ImagePath))
	}
	lines = append(lines, "")
	if mod.Description != "" {
		lines = append(lines, mod.Description)
	} else {
		lines = append(lines, ui.Muted.Render("No description."))
	}
	return strings.Join(lines, "\n")
}

func renderSelectFooter() string {
	return ui.Muted.Italic(true).Render("↑/k ↓/j: move  space: toggle  a/n: all/none  s: save preset  e: export  q: quit")
}

func (m SelectModel) renderExport() string {
	var b strings.Builder
	b.WriteString(ui.Title.Render(fmt.Sprintf("Export of %d workshop items", m.outcome.Items)))
	b.WriteString("\n\n")
	for _, line := range m.outcome.Export.Lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if n := len(m.outcome.Diagnostics); n > 0 {
		b.WriteString(ui.Warning.Render(fmt.Sprintf("%d problems: %s", n, m.outcome.Diagnostics.Reasons())))
		b.WriteString("\n")
	}
	b.WriteString(ui.Muted.Render("Export " + m.outcome.ExportID))
	b.WriteString("\n")
	b.WriteString(ui.Muted.Italic(true).Render("c: copy to clipboard  any other key: back  q: quit"))
	if m.message != "" {
		b.WriteString("\n" + ui.Success.Render(m.message))
	}
	if m.error != "" {
		b.WriteString("\n" + ui.Error.Render(m.error))
	}
	return b.String()
}

func cloneSelection(sel workshop.Selection) workshop.Selection {
	out := make(workshop.Selection, len(sel))
	for k, v := range sel {
		out[k] = v
	}
	return out
}

// catalogModIDs lists the mod IDs of the enabled entries in name order.
func catalogModIDs(sel workshop.Selection, catalog workshop.Catalog) []string {
	var ids []string
	for _, name := range sel.Enabled() {
		if id := catalog[name].ModID; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func runSelect(cmd *cobra.Command, presetName string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !isTerminal(os.Stdout) {
		return fmt.Errorf("select needs an interactive terminal, use 'zsmm export' instead")
	}

	s, err := a.scanner()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	report, err := a.scan(ctx, s, true)
	if err != nil {
		return err
	}
	sel, err := a.loadSelection(presetName, report.Catalog)
	if err != nil {
		return err
	}

	m := newSelectModel(report.Catalog, sel, presetName)
	m.savePreset = func(name string, sel workshop.Selection) error {
		return a.store.Save(name, sel, catalogModIDs(sel, report.Catalog))
	}
	m.runExport = func(sel workshop.Selection, presetName string) (*exportOutcome, error) {
		return a.export(ctx, s, sel, report.Catalog, presetName)
	}
	m.copyText = copyToClipboard

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("failed to run checklist: %w", err)
	}

	out := cmd.OutOrStdout()
	if fm, ok := final.(SelectModel); ok && fm.outcome != nil {
		printExport(out, fm.outcome.Export)
		fmt.Fprintln(out, ui.Muted.Render("Export "+fm.outcome.ExportID))
	}
	summarize(out, report.Diagnostics)
	return nil
}

// export resolves and records an export and, when a preset is active,
// saves the selection to it with the resolved mod IDs.
func (a *app) export(ctx context.Context, s *workshop.Scanner, sel workshop.Selection, catalog workshop.Catalog, presetName string) (*exportOutcome, error) {
	result, record, err := a.resolveAndRecord(ctx, s, sel, catalog, presetName)
	if err != nil {
		return nil, err
	}
	if presetName != "" {
		if err := a.store.Save(presetName, sel, result.ModIDs()); err != nil {
			return nil, err
		}
		a.log.Infow("Preset updated on export", zap.String("preset", presetName))
	}
	return &exportOutcome{
		Export:      result.Export(),
		ExportID:    record.ExportID,
		Items:       len(result.Items),
		Diagnostics: result.Diagnostics,
	}, nil
}
