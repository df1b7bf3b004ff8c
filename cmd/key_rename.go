package cmd

import (
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var keyRenameCmd = &cobra.Command{
	Use:   "rename <key> <nickname>",
	Short: "Change the nickname of a registered security key",
	Long: `Changes the nickname stored with a key. No security key is needed.

Examples:
  prfvault key rename laptop-1 "work yubikey"
  prfvault key rename qgE3 backup`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key rename command")
		spinner, cleanup := startSpinner("Renaming key...")
		defer cleanup()

		result, err := workflows.Rename(cmd.Context(), workflows.RenameOptions{
			Credential: args[0],
			Nickname:   args[1],
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		spinner.FinalMSG = ui.SuccessLine("Renamed %s to %s",
			ui.Highlight.Sprint(result.OldNickname), ui.Highlight.Sprint(result.Nickname))
		return nil
	},
}
