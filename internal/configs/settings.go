package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/prfvault/prfvault/internal/utils"
)

// PathSettings holds the directories prfvault reads and writes.
type PathSettings struct {
	// ConfigDir holds config.toml and the audit log.
	ConfigDir string

	// DataDir holds the vault store and the softkey device file.
	DataDir string

	// Username is the operating system user, used as the default vault owner.
	Username string
}

// Paths is initialized at startup.
var Paths *PathSettings

func init() {
	paths, err := DefaultPaths()
	if err != nil {
		log.Fatalf("error resolving prfvault directories: %s", err)
	}
	Paths = paths
}

// DefaultPaths resolves the directories from the environment.
//
// PRFVAULT_CONFIG_DIR and PRFVAULT_DATA_DIR take precedence. Otherwise the
// XDG base directories are used: $XDG_CONFIG_HOME/prfvault and
// $XDG_DATA_HOME/prfvault.
func DefaultPaths() (*PathSettings, error) {
	configDir := os.Getenv("PRFVAULT_CONFIG_DIR")
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(base, "prfvault")
	}

	dataDir := os.Getenv("PRFVAULT_DATA_DIR")
	if dataDir == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".local", "share")
		}
		dataDir = filepath.Join(base, "prfvault")
	}

	username, err := utils.GetUsername()
	if err != nil || username == "" {
		username = "prfvault"
	}

	return &PathSettings{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Username:  username,
	}, nil
}

// ConfigPath returns the path of config.toml.
func (p *PathSettings) ConfigPath() string {
	return filepath.Join(p.ConfigDir, "config.toml")
}

// AuditLogPath returns the path of the audit log.
func (p *PathSettings) AuditLogPath() string {
	return filepath.Join(p.ConfigDir, "audit.jsonl")
}
