package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"zomboid-mod-manager/db"
	"zomboid-mod-manager/workshop"
)

var infoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show the details of a mod from the last scan",
	Long: `Show the details of a mod from the last scan.
Example: zsmm info "Brita's Weapon Pack"

The name is matched case-insensitively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.workshopDir()
		if err != nil {
			return err
		}
		catalog, _, err := db.ListMods(a.db, dir)
		if err != nil {
			return err
		}

		name, ok := lookupName(catalog, args[0])
		if !ok {
			return fmt.Errorf("no mod named %q in the last scan of %s", args[0], dir)
		}

		rendered, err := renderModCard(name, catalog[name], 80)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// lookupName finds a catalog name, preferring an exact match.
func lookupName(c workshop.Catalog, query string) (string, bool) {
	if _, ok := c[query]; ok {
		return query, true
	}
	for _, name := range c.Names() {
		if strings.EqualFold(name, query) {
			return name, true
		}
	}
	return "", false
}

func modCardMarkdown(name string, m workshop.ModMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Workshop ID | `%s` |\n", m.WorkshopID)
	if m.ModID != "" {
		fmt.Fprintf(&b, "| Mod ID | `%s` |\n", m.ModID)
	}
	if m.ImagePath != "" {
		fmt.Fprintf(&b, "| Preview | %s |\n", filepath.Base(m.ImagePath))
	}
	fmt.Fprintf(&b, "| mod.info | %s |\n\n", m.InfoPath)
	if m.Description != "" {
		b.WriteString(m.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// renderModCard renders the mod's details as terminal markdown.
func renderModCard(name string, m workshop.ModMetadata, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(modCardMarkdown(name, m))
}
