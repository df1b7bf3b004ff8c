package cmd

import (
	"fmt"

	"github.com/prfvault/prfvault/internal/codec"
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered security keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key list command")
		spinner, cleanup := startSpinner("Reading vault...")
		defer cleanup()

		result, err := workflows.ListKeys(cmd.Context())
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		if len(result.Keys) == 0 {
			spinner.FinalMSG = ui.HintLine("No keys registered. Run %s to add one", ui.Code.Sprint("prfvault key register"))
			return nil
		}

		rows := make([][]string, 0, len(result.Keys))
		for _, key := range result.Keys {
			device := "yes"
			if !key.OnDevice {
				device = ui.Muted.Sprint("no")
			}
			rows = append(rows, []string{
				key.Nickname,
				codec.URL(key.CredentialID),
				fmt.Sprintf("%d", key.Entries),
				device,
			})
		}

		spinner.Stop()
		fmt.Print(ui.Table([]string{"NICKNAME", "CREDENTIAL", "ENTRIES", "ON DEVICE"}, rows))
		return nil
	},
}
