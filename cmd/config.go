package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config.toml",
	Long: `Provides commands for writing and inspecting config.toml.

The config selects the relying party credentials are scoped to, where the
vault is stored, which authenticator runs ceremonies and how long an
unlocked key may be reused.

RP_ID and RP_NAME in the environment override the relying party without
touching the file.

Examples:
  # Write a config with the defaults
  prfvault config init

  # Store the vault in SQLite and reuse unlocked keys for a minute
  prfvault config init --force --backend sqlite --session-ttl 1m

  # Show the effective configuration
  prfvault config show`,
}

func init() {
	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

func resetConfigCommandState() {
	resetConfigInitState()
}
