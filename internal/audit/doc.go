// Package audit records prfvault operations in a local audit trail.
//
// Every operation that touches the vault (insert, show, key register,
// remove, export, etc.) appends one line to the log. Secrets and key
// material are never recorded, only names and counts.
//
// # Log Format
//
// The log is JSON Lines stored next to config.toml:
//
//	$XDG_CONFIG_HOME/prfvault/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - OS user and installation ID
//   - Operation name, such as vault.insert or key.remove
//   - Operation-specific details (entry name, credential, counts)
//
// # Usage
//
//	entry := audit.LogWithUser("vault.insert", config)
//	entry.Entry = name
//	audit.Log(entry)
//
// # Failure Handling
//
// Logging is best-effort. If the log can't be written the operation still
// succeeds.
package audit
