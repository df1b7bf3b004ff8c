package cmd

import (
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var vaultDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault delete command")
		spinner, cleanup := startSpinner("Deleting entry...")
		defer cleanup()

		result, err := workflows.Delete(cmd.Context(), workflows.DeleteOptions{Name: args[0]})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		spinner.FinalMSG = ui.SuccessLine("Deleted %s", ui.Highlight.Sprint(result.Name))
		return nil
	},
}
