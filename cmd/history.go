package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zomboid-mod-manager/db"
	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous exports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		exports, err := db.ListExports(a.db, limit)
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), exports)
		return nil
	},
}

// restoreCmd reprints an earlier export
var restoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Print an earlier export again",
	Long: `Print an earlier export again.
Example: zsmm restore 3f2a

The ID may be shortened to any unambiguous prefix. With --save the
selection that produced the export is stored as a preset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		copyOut, _ := cmd.Flags().GetBool("copy")
		saveAs, _ := cmd.Flags().GetString("save")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := db.GetExport(a.db, args[0])
		if err != nil {
			return err
		}
		log := a.log.With(zap.String("export_id", record.ExportID))
		log.Infow("Restoring export")

		e := exportOf(record)
		out := cmd.OutOrStdout()
		printExport(out, e)

		if copyOut {
			if err := copyToClipboard(e.String()); err == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Success.Render("Copied to clipboard"))
			}
		}
		if saveAs != "" {
			sel := make(workshop.Selection, len(record.Enabled))
			for _, name := range record.Enabled {
				sel[name] = true
			}
			if err := a.store.Save(saveAs, sel, splitTerminated(record.Mods)); err != nil {
				return err
			}
			log.Infow("Export saved as preset", zap.String("preset", saveAs))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.Success.Render("Saved preset"), saveAs)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of exports to show, 0 for all")
	restoreCmd.Flags().Bool("copy", false, "also copy the lines to the clipboard")
	restoreCmd.Flags().String("save", "", "save the export's selection under this preset name")
	rootCmd.AddCommand(historyCmd, restoreCmd)
}

func renderHistory(w io.Writer, exports []db.Export) {
	if len(exports) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("No exports recorded."))
		return
	}
	for _, e := range exports {
		label := e.Preset
		if label == "" {
			label = "-"
		}
		items := len(splitTerminated(e.WorkshopItems))
		fmt.Fprintf(w, "%s  %s  %-20s %s\n",
			ui.Selected.Render(shortID(e.ExportID)),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(label, 20),
			ui.Muted.Render(fmt.Sprintf("%d items, %d mods", items, len(splitTerminated(e.Mods)))),
		)
	}
}

func exportOf(record *db.Export) workshop.Export {
	return workshop.Export{
		WorkshopItems: record.WorkshopItems,
		Mods:          record.Mods,
		Maps:          record.Maps,
	}
}

// splitTerminated is the inverse of the export's "a;b;" formatting.
func splitTerminated(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
