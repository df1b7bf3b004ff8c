package cmd

import (
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var exportOutputPath string

func init() {
	vaultExportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "file to write (default: stdout)")
}

func resetVaultExportCommandState() {
	exportOutputPath = ""
}

var vaultExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the vault as JSON for backup or transfer",
	Long: `Writes the serialized vault. Entries stay encrypted and keypairs stay
wrapped, so no security key is needed and the output can be stored like
any other backup.

Examples:
  prfvault vault export > vault.json
  prfvault vault export -o /backups/vault.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault export command")
		spinner, cleanup := startSpinner("Exporting vault...")
		defer cleanup()

		opts := workflows.ExportOptions{OutputPath: exportOutputPath}
		if exportOutputPath == "" {
			spinner.Stop()
			opts.Output = cmd.OutOrStdout()
		}

		result, err := workflows.Export(cmd.Context(), opts)
		if err != nil {
			return handleWorkflowError(spinner, err)
		}
		Logger.Debugf("Exported %d bytes", result.Bytes)

		if result.OutputPath != "" {
			spinner.FinalMSG = ui.SuccessLine("Exported %d keys and %d entries to %s",
				result.Keypairs, result.Entries, ui.Path.Sprint(result.OutputPath))
		}
		return nil
	},
}
