package cmd

import (
	"fmt"
	"time"

	"github.com/prfvault/prfvault/internal/configs"
	"github.com/prfvault/prfvault/internal/ui"

	"github.com/spf13/cobra"
)

var (
	configInitForce      bool
	configInitRPID       string
	configInitRPName     string
	configInitBackend    string
	configInitStorePath  string
	configInitDevice     string
	configInitPresence   string
	configInitSessionTTL string
)

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config.toml")
	configInitCmd.Flags().StringVar(&configInitRPID, "rp-id", "", "relying party id (default: localhost)")
	configInitCmd.Flags().StringVar(&configInitRPName, "rp-name", "", "relying party display name (default: the id)")
	configInitCmd.Flags().StringVar(&configInitBackend, "backend", "", "vault store: file, sqlite or memory (default: file)")
	configInitCmd.Flags().StringVar(&configInitStorePath, "store-path", "", "vault store location (default: under the data directory)")
	configInitCmd.Flags().StringVar(&configInitDevice, "device", "", "softkey device file (default: under the data directory)")
	configInitCmd.Flags().StringVar(&configInitPresence, "presence", "", "presence confirmation: prompt or auto (default: prompt)")
	configInitCmd.Flags().StringVar(&configInitSessionTTL, "session-ttl", "", "reuse an unlocked key for this long, at most 5m (default: 0s)")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
	configInitRPID = ""
	configInitRPName = ""
	configInitBackend = ""
	configInitStorePath = ""
	configInitDevice = ""
	configInitPresence = ""
	configInitSessionTTL = ""
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.toml",
	Long: `Writes config.toml with the given settings. Settings left unset take
their defaults.

The installation id recorded in audit entries is kept when an existing
config is overwritten.

Examples:
  prfvault config init
  prfvault config init --force --rp-id example.com --rp-name "Example"
  prfvault config init --force --backend sqlite --store-path ~/vault.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")
		path := configs.Paths.ConfigPath()

		if configs.Exists() && !configInitForce {
			fmt.Println(ui.ErrorLine("%s already exists", ui.Path.Sprint(path)))
			fmt.Println(ui.HintLine("Use %s to overwrite it", ui.Flag.Sprint("--force")))
			return nil
		}

		config := configs.New()
		config.RelyingParty.ID = configInitRPID
		config.RelyingParty.Name = configInitRPName
		config.Store.Backend = configInitBackend
		config.Store.Path = configInitStorePath
		config.Authenticator.Device = configInitDevice
		config.Authenticator.Presence = configInitPresence
		if configInitSessionTTL != "" {
			config.Session.TTL = configInitSessionTTL
		}
		config.FillDefaults()

		if previous, err := configs.Load(); err == nil && previous.Installation.ID != "" {
			Logger.Debugf("Keeping installation id %s", previous.Installation.ID)
			config.Installation = previous.Installation
		} else {
			config.Installation = configs.Installation{
				ID:        configs.GenerateInstallationID(),
				CreatedAt: time.Now().UTC().Truncate(time.Second),
			}
		}

		if err := config.Validate(); err != nil {
			fmt.Println(ui.ErrorLine("%v", err))
			return nil
		}
		if err := configs.Save(config); err != nil {
			return Logger.ErrorfAndReturn("%v", err)
		}

		fmt.Println(ui.SuccessLine("Configuration saved to %s", ui.Path.Sprint(path)))
		fmt.Println()
		fmt.Println("  Relying party: " + ui.Highlight.Sprint(config.RelyingParty.ID))
		fmt.Println("  Store:         " + config.Store.Backend + " " + ui.Path.Sprint(config.Store.Path))
		fmt.Println("  Device:        " + ui.Path.Sprint(config.Authenticator.Device))
		fmt.Println("  Presence:      " + config.Authenticator.Presence)
		fmt.Println("  Session TTL:   " + config.Session.TTL)
		return nil
	},
}
