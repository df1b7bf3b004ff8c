// Package configs manages prfvault's configuration.
//
// Configuration is stored in TOML format at:
//
//	$XDG_CONFIG_HOME/prfvault/config.toml
//
// # Sections
//
// The config file has the following sections:
//   - installation: a UUID generated on first use, recorded in audit entries
//   - relying_party: the WebAuthn relying party id and display name
//   - store: the vault backend (file, sqlite or memory) and its path
//   - authenticator: the authenticator kind, its device file, whether PRF
//     results are returned at registration, and how presence is confirmed
//   - session: how long an unlocked key may be reused (0s disables reuse)
//
// Every key is optional. Missing keys fall back to defaults derived from the
// XDG base directories.
//
// # Environment
//
// RP_ID and RP_NAME override the relying party. PRFVAULT_CONFIG_DIR and
// PRFVAULT_DATA_DIR relocate the config and data directories, which is how
// tests and scripted environments isolate their state.
//
// # Settings
//
// Paths is initialized at startup with the resolved directories. Tests
// replace its fields to point at temporary directories.
package configs
