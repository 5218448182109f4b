package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the workshop directory and list the installed mods",
	Long: `Scan every workshop item under the workshop directory, read its
mod.info and list the mods found. Mods that cannot be read are
reported with a reason and left out. The result is cached for 'zsmm list'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.scanner()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		interactive := !plain && isTerminal(os.Stdout) && isTerminal(os.Stderr)
		report, err := a.scan(ctx, s, interactive)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderCatalog(report.Catalog, !interactive))
		printDiagnostics(out, report.Diagnostics)
		fmt.Fprintln(out, report.Summary())
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("plain", false, "print tab separated output without colors or progress")
	rootCmd.AddCommand(scanCmd)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderCatalog lists the catalog sorted by name, as a table or as tab
// separated lines.
func renderCatalog(c workshop.Catalog, plain bool) string {
	names := c.Names()
	if plain {
		var b strings.Builder
		for _, name := range names {
			m := c[name]
			fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", name, m.WorkshopID, m.ModID, m.ImagePath)
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		m := c[name]
		image := ""
		if m.ImagePath != "" {
			image = filepath.Base(m.ImagePath)
		}
		rows = append(rows, []string{truncate(name, 40), m.WorkshopID, truncate(m.ModID, 30), image})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ui.Muted).
		Headers("Name", "Workshop ID", "Mod ID", "Preview").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}
