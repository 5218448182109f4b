package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	// Running zsmm without a subcommand opens the checklist.
	rootCmd.Flags().String("preset", "", "start from a saved preset")
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		presetName, _ := cmd.Flags().GetString("preset")
		return runSelect(cmd, presetName)
	}
}
