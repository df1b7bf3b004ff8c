package cmd

import (
	"fmt"
	"strings"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var reencryptAll bool

func init() {
	vaultReencryptCmd.Flags().BoolVarP(&reencryptAll, "all", "a", false, "re-encrypt every entry")
}

func resetVaultReencryptCommandState() {
	reencryptAll = false
}

var vaultReencryptCmd = &cobra.Command{
	Use:   "reencrypt [name...]",
	Short: "Grant newly registered security keys access to entries",
	Long: `Decrypts entries with a security key that can already read them and
encrypts them again to every registered key.

Each entry needs one unlock unless session.ttl allows the unlocked key to
be reused. With --all, entries no registered key can decrypt are skipped.

Examples:
  prfvault vault reencrypt github-token
  prfvault vault reencrypt --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault reencrypt command")

		if !reencryptAll && len(args) == 0 {
			fmt.Println(ui.ErrorLine("No entries named"))
			fmt.Println(ui.HintLine("Pass entry names or use %s", ui.Flag.Sprint("--all")))
			return nil
		}

		spinner, cleanup := startSpinner("Re-encrypting entries...")
		defer cleanup()

		result, err := workflows.Reencrypt(cmd.Context(), workflows.ReencryptOptions{
			Names: args,
			All:   reencryptAll,
		})
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		for _, entry := range result.Entries {
			Logger.Infof("Re-encrypted %s: %d -> %d recipients", entry.Name, entry.Before, entry.After)
		}

		var b strings.Builder
		if len(result.Entries) == 0 {
			b.WriteString(ui.HintLine("Nothing to re-encrypt"))
		} else {
			b.WriteString(ui.SuccessLine("Re-encrypted %d entr%s", len(result.Entries), plural(len(result.Entries), "y", "ies")))
		}
		if len(result.Skipped) > 0 {
			b.WriteString("\n")
			b.WriteString(ui.WarningLine("Skipped entries no registered key can decrypt:%s", utils.FormatList(result.Skipped, ui.Highlight)))
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}
