package cli

import (
	"github.com/spf13/cobra"

	"github.com/raaihank/clipboard-cleaner/internal/clipboard"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Clear the system clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cb, err := openClipboard()
		if err != nil {
			return err
		}
		if err := clipboard.Wipe(cb); err != nil {
			return err
		}
		cmd.PrintErrln("Clipboard cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wipeCmd)
}
