package cmd

import (
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var removeForce bool

func init() {
	keyRemoveCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "skip the confirmation prompt")
}

func resetKeyRemoveCommandState() {
	removeForce = false
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a security key from the vault",
	Long: `Deletes the key's keypair and its access to every entry. Entries that
only this key could decrypt become unreadable.

Examples:
  prfvault key remove "old yubikey"
  prfvault key remove qgE3 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key remove command")
		spinner, cleanup := startSpinner("Removing key...")
		defer cleanup()

		if !removeForce {
			question := ui.WarningLine("Remove %s? Entries only it can decrypt will be lost.", ui.Highlight.Sprint(args[0]))
			if !confirm(spinner, question) {
				spinner.FinalMSG = ui.ErrorLine("Removal aborted")
				return nil
			}
		}

		result, err := workflows.Remove(cmd.Context(), workflows.RemoveOptions{Credential: args[0]})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		spinner.FinalMSG = ui.SuccessLine("Removed %s", ui.Highlight.Sprint(result.Nickname))
		if len(result.Orphaned) > 0 {
			spinner.FinalMSG += "\n" + ui.WarningLine("No registered key can decrypt:%s",
				utils.FormatList(result.Orphaned, ui.Highlight))
		}
		return nil
	},
}
