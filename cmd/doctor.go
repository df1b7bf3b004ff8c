package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
}

// SetDoctorExitFunc sets the exit function for testing purposes.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the prfvault installation",
	Long: `Runs a series of health checks and reports issues.

The doctor command checks:
  - config.toml validity
  - That the vault exists and decodes
  - Store and device file permissions
  - That keys are registered and present on the authenticator
  - Entries no registered key can decrypt
  - Entries not yet encrypted to every key

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner("Running health checks...")
	defer cleanup()

	result, err := workflows.Doctor(cmd.Context())
	if err != nil {
		spinner.FinalMSG = ui.ErrorLine("Failed to run health checks: %v", err)
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	spinner.Stop()
	if doctorJSONOutput {
		if err := outputDoctorJSON(result); err != nil {
			return err
		}
	} else {
		printDoctorResults(result)
		if result.Summary.Errors > 0 {
			spinner.FinalMSG = ui.ErrorLine("Health checks completed with errors")
		} else if result.Summary.Warnings > 0 {
			spinner.FinalMSG = ui.WarningLine("Health checks completed with warnings")
		} else {
			spinner.FinalMSG = ui.SuccessLine("Health checks completed")
		}
	}

	if result.Summary.Errors > 0 {
		cleanup()
		doctorExitFunc(2)
	} else if result.Summary.Warnings > 0 {
		cleanup()
		doctorExitFunc(1)
	}
	return nil
}

// outputDoctorJSON outputs the result as JSON.
func outputDoctorJSON(result *workflows.DoctorResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(result *workflows.DoctorResult) {
	fmt.Println("Running health checks...")
	fmt.Println()

	for _, check := range result.Checks {
		var line string
		switch check.Status {
		case workflows.CheckPass:
			line = ui.SuccessLine("%s", check.Message)
		case workflows.CheckWarning:
			line = ui.WarningLine("%s", check.Message)
		case workflows.CheckError:
			line = ui.ErrorLine("%s", check.Message)
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprintf("%d warning(s)", result.Summary.Warnings))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprintf("%d error(s)", result.Summary.Errors))
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Info.Sprint(ui.GlyphHint), suggestion)
		}
	}
}
