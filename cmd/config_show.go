package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/prfvault/prfvault/internal/configs"
	"github.com/prfvault/prfvault/internal/ui"

	"github.com/spf13/cobra"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Prints the configuration prfvault runs with as TOML: config.toml with
defaults filled in and RP_ID and RP_NAME applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		config, err := configs.Load()
		if err != nil {
			fmt.Println(ui.ErrorLine("%v", err))
			fmt.Println(ui.HintLine("Fix %s or rewrite it with %s",
				ui.Path.Sprint(configs.Paths.ConfigPath()), ui.Code.Sprint("prfvault config init --force")))
			return nil
		}

		if !configs.Exists() {
			fmt.Println("# " + configs.Paths.ConfigPath() + " does not exist, showing defaults")
		} else {
			fmt.Println("# " + configs.Paths.ConfigPath())
		}

		if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(config); err != nil {
			return Logger.ErrorfAndReturn("failed to encode config: %v", err)
		}
		return nil
	},
}
