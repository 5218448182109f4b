package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zomboid-mod-manager/db"
	"zomboid-mod-manager/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the mods from the last scan without rescanning",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.workshopDir()
		if err != nil {
			return err
		}

		catalog, scannedAt, err := db.ListMods(a.db, dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(catalog) == 0 {
			fmt.Fprintf(out, "No cached mods for %s, run 'zsmm scan' first.\n", dir)
			return nil
		}
		fmt.Fprintln(out, renderCatalog(catalog, plain))
		fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d mods, scanned %s", len(catalog), scannedAt.Local().Format("2006-01-02 15:04"))))
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("plain", false, "print tab separated output")
	rootCmd.AddCommand(listCmd)
}
