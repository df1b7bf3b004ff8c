package cmd

import (
	"os"

	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var vaultShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Decrypt an entry with a security key",
	Long: `Decrypts an entry and writes it to stdout. The security key is asked to
unlock it once.

A trailing newline is added only when stdout is a terminal, so the output
can be piped unchanged. Errors go to stderr and exit with status 1.

Examples:
  prfvault vault show github-token
  prfvault vault show db-password | psql-login`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting vault show command")
		spinner, cleanup := startSpinnerTo("Waiting for security key...", os.Stderr)
		defer cleanup()

		result, err := workflows.Show(cmd.Context(), workflows.ShowOptions{Name: args[0]})
		if err != nil {
			return handleWorkflowFailure(spinner, err)
		}
		defer zero(result.Content)

		spinner.Stop()
		out := cmd.OutOrStdout()
		if _, err := out.Write(result.Content); err != nil {
			return Logger.ErrorfAndReturn("failed to write entry: %v", err)
		}
		if out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
			_, _ = out.Write([]byte("\n"))
		}
		return nil
	},
}
