// Package errors provides typed error values for prfvault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Authenticator errors: the ceremony failed (ErrCancelled, ErrAlreadyRegistered,
//     ErrNotRegistered, ErrUnsupported, ErrNoMatch)
//   - Crypto errors: a primitive failed (ErrPrimitiveFailure, ErrAADMismatch,
//     ErrNoEligibleRecipient)
//   - Data errors: the vault model rejected a mutation (ErrCredentialNotFound,
//     ErrNameCollision, ErrNoKeypairs, ...)
//   - Serialization errors: ErrSerialization
//   - Vault state errors: ErrVaultNotInitialized, ErrVaultAlreadyInitialized
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("unwrapping private key: %w", errors.ErrAADMismatch)
//
// Handle errors in the CLI layer:
//
//	if kerrors.IsCancelled(err) {
//	    return nil // the user aborted, nothing to report
//	}
//	spinner.FinalMSG = ui.Error.Sprint("✗") + " " + kerrors.UserMessage(err)
//
// ErrAADMismatch and ErrPrimitiveFailure share one user-facing message.
package errors
