package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zomboid-mod-manager/config"
	"zomboid-mod-manager/preset"
	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

var locationCmd = &cobra.Command{
	Use:   "location [dir]",
	Short: "Show or set the workshop content directory",
	Long: `Show or set the workshop content directory.
Example: zsmm location ~/.steam/steam/steamapps/workshop/content/108600

Without an argument the saved location is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			dir, err := a.store.LoadWorkshopLocation()
			if errors.Is(err, preset.ErrNoWorkshopLocation) {
				fmt.Fprintln(out, ui.Muted.Render("No workshop location saved."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, dir)
			return nil
		}
		return setLocation(a, args[0], out)
	},
}

func init() {
	rootCmd.AddCommand(locationCmd)
}

func setLocation(a *app, raw string, out io.Writer) error {
	dir, err := config.NormalizePath(raw)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("workshop directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workshop directory %s is not a directory", dir)
	}

	ids, err := workshop.ListWorkshopIDs(dir)
	if err != nil {
		return err
	}
	if err := a.store.SaveWorkshopLocation(dir); err != nil {
		return err
	}
	a.log.Infow("Workshop location saved", zap.String("path", dir), zap.Int("items", len(ids)))
	fmt.Fprintf(out, "%s %s (%d workshop items)\n", ui.Success.Render("Saved"), dir, len(ids))
	return nil
}
