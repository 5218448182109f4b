package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zsmm",
	Short: "Pick Project Zomboid workshop mods and export server settings",
	Long: `zsmm scans a Steam workshop content directory for Project Zomboid,
lets you enable or disable the installed mods, and prints the
WorkshopItems=, Mods= and Map= lines for a dedicated server.

Selections can be saved as named presets and every export is kept
in a local history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config-dir", "", "configuration directory (default is the user config dir + /zsmm)")
	pf.String("workshop-dir", "", "workshop content directory, overrides the saved location")
	pf.Int("workers", 0, "number of concurrent scan workers (default is the CPU count)")
	pf.String("log-level", "", "minimum level written to the log file")
	pf.BoolP("verbose", "v", false, "mirror debug logs to stderr")
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	// fang styles help and error output
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
