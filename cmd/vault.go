package cmd

import (
	"github.com/spf13/cobra"
)

// VaultCmd groups the commands that create the vault and manage entries.
var VaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Create the vault and manage its entries",
	Long: `Creates, inspects, exports and imports the vault, and inserts, shows,
deletes and re-encrypts its entries.

Inserting an entry never needs a security key. Showing or re-encrypting one
asks the security key to unlock it.`,
}

func init() {
	VaultCmd.AddCommand(vaultInitCmd)
	VaultCmd.AddCommand(vaultInsertCmd)
	VaultCmd.AddCommand(vaultShowCmd)
	VaultCmd.AddCommand(vaultListCmd)
	VaultCmd.AddCommand(vaultDeleteCmd)
	VaultCmd.AddCommand(vaultReencryptCmd)
	VaultCmd.AddCommand(vaultStatusCmd)
	VaultCmd.AddCommand(vaultExportCmd)
	VaultCmd.AddCommand(vaultImportCmd)
}

func resetVaultCommandState() {
	resetVaultInitCommandState()
	resetVaultInsertCommandState()
	resetVaultReencryptCommandState()
	resetVaultExportCommandState()
	resetVaultImportCommandState()
}
