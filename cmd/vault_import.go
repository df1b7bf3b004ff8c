package cmd

import (
	"os"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var importForce bool

func init() {
	vaultImportCmd.Flags().BoolVarP(&importForce, "force", "f", false, "replace an existing vault")
}

func resetVaultImportCommandState() {
	importForce = false
}

var vaultImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the vault with an exported one",
	Long: `Reads a vault written by 'prfvault vault export' from a file or stdin,
validates it and stores it as the current vault.

Examples:
  prfvault vault import vault.json
  prfvault vault import --force < vault.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault import command")

		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = utils.ReadStdin()
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read vault: %v", err)
		}

		spinner, cleanup := startSpinner("Importing vault...")
		defer cleanup()

		result, err := workflows.Import(cmd.Context(), workflows.ImportOptions{
			Data:  data,
			Force: importForce,
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		spinner.FinalMSG = ui.SuccessLine("Imported vault for %s with %d keys and %d entries",
			ui.Highlight.Sprint(result.Username), result.Keypairs, result.Entries)
		if result.Replaced {
			spinner.FinalMSG += "\n" + ui.WarningLine("The previous vault was replaced")
		}
		return nil
	},
}
