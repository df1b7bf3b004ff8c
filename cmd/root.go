package cmd

import (
	logger "github.com/prfvault/prfvault/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// RootCmd is the prfvault command.
	RootCmd = &cobra.Command{
		Use:   "prfvault",
		Short: "Store secrets that only your security keys can decrypt",
		Long: `prfvault keeps secrets encrypted to every security key you register.

Each key derives its own unlock secret through the WebAuthn PRF extension,
so any one registered key can decrypt an entry and none of them has to be
present to add one.

Usage:
  prfvault <command> [flags]

Available Commands:
  vault      Create the vault and manage its entries
  key        Register, rename and remove security keys
  config     Manage config.toml
  log        View the audit log
  doctor     Check the installation for problems

Run 'prfvault help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(VaultCmd)
	RootCmd.AddCommand(KeyCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(doctorCmd)
}

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetVaultCommandState()
	resetKeyCommandState()
	resetConfigCommandState()
	resetLogCommandState()
	resetDoctorCommandState()
	resetFlagState(RootCmd)
}

// resetFlagState clears the Changed mark on every flag so a reused
// command tree parses the next arguments from scratch.
func resetFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlagState(sub)
	}
}
