package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/prfvault/prfvault/internal/keys"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Authenticator kinds.
const (
	AuthenticatorSoftkey = "softkey"
)

// Presence confirmation modes.
const (
	PresencePrompt = "prompt"
	PresenceAuto   = "auto"
)

// Config is the contents of config.toml.
type Config struct {
	Installation  Installation  `toml:"installation"`
	RelyingParty  RelyingParty  `toml:"relying_party"`
	Store         Store         `toml:"store"`
	Authenticator Authenticator `toml:"authenticator"`
	Session       Session       `toml:"session"`
}

// Installation identifies this prfvault installation in audit entries.
type Installation struct {
	ID        string    `toml:"id"`
	CreatedAt time.Time `toml:"created_at"`
}

// RelyingParty is the WebAuthn relying party credentials are scoped to.
type RelyingParty struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Store selects where the vault is persisted.
type Store struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Authenticator selects the authenticator used for ceremonies.
type Authenticator struct {
	Kind        string `toml:"kind"`
	Device      string `toml:"device"`
	PRFAtCreate bool   `toml:"prf_at_create"`
	Presence    string `toml:"presence"`
}

// Session controls reuse of unlocked keys between decryptions.
type Session struct {
	// TTL is a Go duration string. Empty or "0s" disables reuse.
	TTL string `toml:"ttl"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	config := New()
	config.FillDefaults()
	return config
}

// New returns a config with only the built-in switches set. Apply
// overrides, then call FillDefaults.
func New() *Config {
	return &Config{
		Authenticator: Authenticator{PRFAtCreate: true},
		Session:       Session{TTL: "0s"},
	}
}

// Load reads config.toml, filling unset fields with defaults and applying
// environment overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	config, err := loadFile()
	if err != nil {
		return nil, err
	}

	config.FillDefaults()
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadFile() (*Config, error) {
	config := New()

	path := Paths.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(path, config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// Save writes config.toml.
func Save(config *Config) error {
	if err := SaveTOML(Paths.ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Exists reports whether config.toml has been written.
func Exists() bool {
	_, err := os.Stat(Paths.ConfigPath())
	return err == nil
}

// GenerateInstallationID generates a new installation id.
func GenerateInstallationID() string {
	return uuid.New().String()
}

// Ensure loads the config and records an installation id in config.toml
// if it has none yet. Environment overrides are never written back.
func Ensure() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}
	if config.Installation.ID != "" {
		return config, nil
	}

	stored, err := loadFile()
	if err != nil {
		return nil, err
	}
	stored.FillDefaults()
	stored.Installation = Installation{
		ID:        GenerateInstallationID(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := Save(stored); err != nil {
		return nil, err
	}

	config.Installation = stored.Installation
	return config, nil
}

// ApplyEnv applies the RP_ID and RP_NAME environment overrides.
func (c *Config) ApplyEnv() {
	if id := os.Getenv("RP_ID"); id != "" {
		c.RelyingParty.ID = id
	}
	if name := os.Getenv("RP_NAME"); name != "" {
		c.RelyingParty.Name = name
	}
}

// Validate checks that every setting has a supported value.
func (c *Config) Validate() error {
	if c.RelyingParty.ID == "" {
		return fmt.Errorf("invalid config: relying_party.id is empty")
	}

	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("invalid config: store.path is required for the %s backend", c.Store.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid config: unknown store.backend %q (expected file, sqlite or memory)", c.Store.Backend)
	}

	if c.Authenticator.Kind != AuthenticatorSoftkey {
		return fmt.Errorf("invalid config: unknown authenticator.kind %q (only the softkey backend is built in)", c.Authenticator.Kind)
	}
	switch c.Authenticator.Presence {
	case PresencePrompt, PresenceAuto:
	default:
		return fmt.Errorf("invalid config: unknown authenticator.presence %q (expected prompt or auto)", c.Authenticator.Presence)
	}

	ttl, err := c.Session.Duration()
	if err != nil {
		return err
	}
	if ttl < 0 || ttl > keys.MaxSessionTTL {
		return fmt.Errorf("invalid config: session.ttl must be between 0s and %s", keys.MaxSessionTTL)
	}
	return nil
}

// Duration parses the session TTL.
func (s Session) Duration() (time.Duration, error) {
	if s.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid config: session.ttl: %w", err)
	}
	return ttl, nil
}

// FillDefaults sets every empty field to its default. Store and device
// paths are placed under Paths.DataDir.
func (c *Config) FillDefaults() {
	if c.RelyingParty.ID == "" {
		c.RelyingParty.ID = "localhost"
	}
	if c.RelyingParty.Name == "" {
		c.RelyingParty.Name = c.RelyingParty.ID
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case BackendSQLite:
			c.Store.Path = filepath.Join(Paths.DataDir, "vault.db")
		case BackendFile:
			c.Store.Path = filepath.Join(Paths.DataDir, "vault")
		}
	}
	if c.Authenticator.Kind == "" {
		c.Authenticator.Kind = AuthenticatorSoftkey
	}
	if c.Authenticator.Device == "" {
		c.Authenticator.Device = filepath.Join(Paths.DataDir, "softkey.cbor")
	}
	if c.Authenticator.Presence == "" {
		c.Authenticator.Presence = PresencePrompt
	}
}
