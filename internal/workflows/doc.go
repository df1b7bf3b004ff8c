// Package workflows provides high-level orchestration for prfvault commands.
//
// Workflows coordinate the config, store, authenticator, key binding and
// envelope packages to implement complete user-facing features. Each
// workflow handles a single command's business logic, independent of CLI
// concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration and opening the store and authenticator
//   - Loading the vault snapshot and applying one operation to it
//   - Persisting the new snapshot only once the operation succeeded
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Init, Import, Export: create, replace and dump the vault
//   - Register, Rename, Remove, ListKeys: manage authenticators
//   - Insert, Show, Delete, Reencrypt, List: manage entries
//   - Status, Doctor, Log: inspect the installation
//
// Only Register, Show and Reencrypt run authenticator ceremonies.
//
// # Credential References
//
// Commands that take a credential accept its nickname, its full base64url
// id or an unambiguous prefix of the id.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Show(ctx, opts)
//	if kerrors.IsCancelled(err) {
//	    return nil
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it aborts a pending ceremony with ErrCancelled.
package workflows
