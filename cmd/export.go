package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the server settings for a preset or for every mod",
	Long: `Scan the workshop directory, resolve the enabled mods and print the
WorkshopItems=, Mods= and Map= lines without opening the checklist.
Example: zsmm export --preset server --copy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		presetName, _ := cmd.Flags().GetString("preset")
		all, _ := cmd.Flags().GetBool("all")
		copyOut, _ := cmd.Flags().GetBool("copy")
		saveAs, _ := cmd.Flags().GetString("save")

		if presetName == "" && !all {
			return fmt.Errorf("choose a selection with --preset NAME or --all")
		}

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

		report, err := a.scan(ctx, s, false)
		if err != nil {
			return err
		}

		sel := workshop.NewSelection(report.Catalog)
		if !all {
			if sel, err = a.loadSelection(presetName, report.Catalog); err != nil {
				return err
			}
		}

		target := presetName
		if saveAs != "" {
			target = saveAs
		}
		outcome, err := a.export(ctx, s, sel, report.Catalog, target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printExport(out, outcome.Export)
		if copyOut {
			if err := copyToClipboard(outcome.Export.String()); err == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Success.Render("Copied to clipboard"))
			}
		}
		a.log.Infow("Export printed", zap.String("export_id", outcome.ExportID))

		diags := append(workshop.Diagnostics{}, report.Diagnostics...)
		diags = append(diags, outcome.Diagnostics...)
		printDiagnostics(cmd.ErrOrStderr(), diags)
		summarize(cmd.ErrOrStderr(), diags)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("preset", "", "export the selection saved in this preset")
	exportCmd.Flags().Bool("all", false, "export every mod found in the workshop directory")
	exportCmd.Flags().Bool("copy", false, "also copy the lines to the clipboard")
	exportCmd.Flags().String("save", "", "save the selection and resolved mod IDs under this preset name")
	exportCmd.MarkFlagsMutuallyExclusive("preset", "all")
	rootCmd.AddCommand(exportCmd)
}
