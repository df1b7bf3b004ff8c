package cmd

import (
	"github.com/prfvault/prfvault/internal/codec"
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var registerNickname string

func init() {
	keyRegisterCmd.Flags().StringVarP(&registerNickname, "nickname", "n", "", "label for the key (default: derived from the hostname)")
}

func resetKeyRegisterCommandState() {
	registerNickname = ""
}

var keyRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a security key with the vault",
	Long: `Creates a credential on the security key and stores a keypair that only
it can unwrap. Entries inserted afterwards are encrypted to it as well.

Existing entries are not readable by the new key until they are
re-encrypted with a key that can already decrypt them.

Examples:
  prfvault key register
  prfvault key register --nickname "backup yubikey"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key register command")
		spinner, cleanup := startSpinner("Waiting for security key...")
		defer cleanup()

		result, err := workflows.Register(cmd.Context(), workflows.RegisterOptions{
			Nickname: registerNickname,
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}
		Logger.Debugf("Registered credential %s", codec.URL(result.CredentialID))

		spinner.FinalMSG = ui.SuccessLine("Registered %s %s", ui.Highlight.Sprint(result.Nickname),
			ui.Muted.Sprint(codec.Abbrev(result.CredentialID, 12)))
		if result.Keypairs > 1 {
			spinner.FinalMSG += "\n" + ui.HintLine("Run %s to let it decrypt existing entries",
				ui.Code.Sprint("prfvault vault reencrypt --all"))
		}
		return nil
	},
}
