package cmd

import (
	"github.com/spf13/cobra"
)

// KeyCmd groups the commands that manage registered security keys.
var KeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Register, rename and remove security keys",
	Long: `Manages the security keys registered with the vault.

Keys are referred to by nickname, by credential id, or by any prefix of
the id that matches one key.`,
}

func init() {
	KeyCmd.AddCommand(keyRegisterCmd)
	KeyCmd.AddCommand(keyListCmd)
	KeyCmd.AddCommand(keyRenameCmd)
	KeyCmd.AddCommand(keyRemoveCmd)
}

func resetKeyCommandState() {
	resetKeyRegisterCommandState()
	resetKeyRemoveCommandState()
}
