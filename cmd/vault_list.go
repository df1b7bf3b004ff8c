package cmd

import (
	"fmt"
	"strings"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries and the security keys that can decrypt them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault list command")
		spinner, cleanup := startSpinner("Reading vault...")
		defer cleanup()

		result, err := workflows.List(cmd.Context())
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		if len(result.Entries) == 0 {
			spinner.FinalMSG = ui.HintLine("No entries yet. Run %s to add one", ui.Code.Sprint("prfvault vault insert"))
			return nil
		}

		rows := make([][]string, 0, len(result.Entries))
		undecryptable := 0
		for _, entry := range result.Entries {
			recipients := strings.Join(entry.Recipients, ", ")
			if entry.Undecryptable() {
				undecryptable++
				recipients = ui.Error.Sprint("none")
			}
			rows = append(rows, []string{entry.Name, recipients})
		}

		spinner.Stop()
		fmt.Print(ui.Table([]string{"NAME", "KEYS"}, rows))

		if undecryptable > 0 {
			spinner.FinalMSG = ui.WarningLine("%d entr%s can't be decrypted by any registered key", undecryptable, plural(undecryptable, "y", "ies"))
		}
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
