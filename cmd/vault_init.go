package cmd

import (
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	initUsername string
	initForce    bool
)

func init() {
	vaultInitCmd.Flags().StringVarP(&initUsername, "username", "u", "", "vault owner (default: the current OS user)")
	vaultInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "replace an existing vault")
}

func resetVaultInitCommandState() {
	initUsername = ""
	initForce = false
}

var vaultInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty vault",
	Long: `Creates an empty vault owned by the given user in the configured store.

Replacing an existing vault with --force makes every entry in it
unreachable. Export the vault first if you may need it again.

Examples:
  prfvault vault init
  prfvault vault init --username alice --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault init command")
		spinner, cleanup := startSpinner("Creating vault...")
		defer cleanup()

		result, err := workflows.Init(cmd.Context(), workflows.InitOptions{
			Username: initUsername,
			Force:    initForce,
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}
		Logger.Debugf("Vault written to %s store at %s", result.Backend, result.StorePath)

		verb := "Created"
		if result.Replaced {
			verb = "Replaced"
		}
		spinner.FinalMSG = ui.SuccessLine("%s vault for %s", verb, ui.Highlight.Sprint(result.Username)) + "\n" +
			ui.HintLine("Run %s to add a security key", ui.Code.Sprint("prfvault key register"))
		return nil
	},
}
