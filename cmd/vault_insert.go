package cmd

import (
	"os"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	insertFile    string
	insertReplace bool
)

func init() {
	vaultInsertCmd.Flags().StringVar(&insertFile, "file", "", "read the secret from a file")
	vaultInsertCmd.Flags().BoolVar(&insertReplace, "replace", false, "overwrite an existing entry")
}

func resetVaultInsertCommandState() {
	insertFile = ""
	insertReplace = false
}

var vaultInsertCmd = &cobra.Command{
	Use:   "insert <name>",
	Short: "Encrypt a secret to every registered security key",
	Long: `Encrypts a secret and stores it under the given name. Every registered
security key can decrypt it. No security key is needed to insert.

The secret is read from --file, from piped stdin, or typed at a hidden
prompt.

Examples:
  prfvault vault insert github-token
  echo -n "hunter2" | prfvault vault insert db-password
  prfvault vault insert tls-key --file server.key --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault insert command")

		content, err := readInsertContent()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read secret: %v", err)
		}
		defer zero(content)

		spinner, cleanup := startSpinner("Encrypting entry...")
		defer cleanup()

		result, err := workflows.Insert(cmd.Context(), workflows.InsertOptions{
			Name:    args[0],
			Content: content,
			Replace: insertReplace,
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		verb := "Encrypted"
		if result.Replaced {
			verb = "Replaced"
		}
		spinner.FinalMSG = ui.SuccessLine("%s %s for:%s", verb,
			ui.Highlight.Sprint(result.Name), utils.FormatList(result.Recipients, ui.Highlight))
		return nil
	},
}

func readInsertContent() ([]byte, error) {
	if insertFile != "" {
		Logger.Debugf("Reading secret from %s", insertFile)
		return os.ReadFile(insertFile)
	}
	if !utils.IsTerminal() {
		Logger.Debugf("Reading secret from stdin")
		return utils.ReadStdin()
	}
	return utils.ReadSecretFromTTY("Secret: ")
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
