package cmd

import (
	"fmt"
	"strings"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var vaultStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault and authenticator configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault status command")
		spinner, cleanup := startSpinner("Reading vault...")
		defer cleanup()

		result, err := workflows.Status(cmd.Context())
		if err != nil {
			return handleWorkflowError(spinner, err)
		}

		spinner.Stop()
		fmt.Print(formatStatus(result))

		if !result.Initialized {
			spinner.FinalMSG = ui.HintLine("Run %s to create the vault", ui.Code.Sprint("prfvault vault init"))
		} else if len(result.Undecryptable) > 0 {
			spinner.FinalMSG = ui.WarningLine("Entries no registered key can decrypt:%s", utils.FormatList(result.Undecryptable, ui.Highlight))
		}
		return nil
	},
}

func formatStatus(result *workflows.StatusResult) string {
	ttl := "disabled"
	if result.SessionTTL > 0 {
		ttl = result.SessionTTL.String()
	}

	rows := [][]string{
		{"Relying party", result.RelyingParty},
		{"Store", result.Backend + " " + ui.Path.Sprint(result.StorePath)},
		{"Device", ui.Path.Sprint(result.DevicePath)},
		{"Session reuse", ttl},
	}
	if result.Initialized {
		rows = append(rows,
			[]string{"Owner", result.Username},
			[]string{"Keys", fmt.Sprintf("%d registered, %d on device", result.Keypairs, result.DeviceCredentials)},
			[]string{"Entries", fmt.Sprintf("%d", result.Entries)},
		)
	} else {
		rows = append(rows, []string{"Vault", ui.Warning.Sprint("not initialized")})
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-14s %s\n", row[0]+":", row[1]))
	}
	return b.String()
}
