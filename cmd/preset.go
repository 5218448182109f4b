package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zomboid-mod-manager/ui"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.store.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, ui.Muted.Render("No presets saved."))
			return nil
		}
		for _, name := range names {
			p, err := a.store.Get(name)
			if err != nil {
				// Unreadable files are listed so they can be deleted.
				fmt.Fprintf(out, "%s  %s\n", name, ui.Error.Render(err.Error()))
				continue
			}
			enabled := 0
			for _, e := range p.Selection {
				if e.Enabled {
					enabled++
				}
			}
			fmt.Fprintf(out, "%s  %s\n", name, ui.Muted.Render(fmt.Sprintf("%d/%d enabled, saved %s", enabled, len(p.Selection), p.SavedAt.Local().Format("2006-01-02 15:04"))))
		}
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show the selection stored in a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.store.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Title.Render(p.Name))
		for _, e := range p.Selection {
			fmt.Fprintf(out, "%s %s\n", ui.Check(e.Enabled), e.Name)
		}
		if len(p.ModIDs) > 0 {
			fmt.Fprintf(out, "%s %s\n", ui.Muted.Render("Mod IDs:"), joinIDs(p.ModIDs))
		}
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Delete(args[0]); err != nil {
			return err
		}
		a.log.Infow("Preset deleted", zap.String("preset", args[0]))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success.Render("Deleted"), args[0])
		return nil
	},
}

func init() {
	presetCmd.AddCommand(presetListCmd, presetShowCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ";") + ";"
}
