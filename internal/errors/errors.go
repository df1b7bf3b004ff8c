package errors

import (
	"errors"
	"strings"
)

// Authenticator errors indicate the ceremony with a security key did not
// produce a usable result.
var (
	// ErrCancelled indicates the user aborted or timed out the ceremony.
	ErrCancelled = errors.New("authenticator ceremony was cancelled")

	// ErrAlreadyRegistered indicates the authenticator already holds a
	// credential for this vault.
	ErrAlreadyRegistered = errors.New("authenticator is already registered")

	// ErrNotRegistered indicates none of the allowed credentials live on the
	// authenticator that answered.
	ErrNotRegistered = errors.New("authenticator is not registered with this vault")

	// ErrUnsupported indicates the authenticator cannot evaluate the PRF extension.
	ErrUnsupported = errors.New("authenticator does not support the PRF extension")

	// ErrNoMatch indicates the authenticator answered with a credential that
	// was not among the requested candidates.
	ErrNoMatch = errors.New("authenticator returned an unexpected credential")
)

// Cryptographic errors indicate failures of the underlying primitives.
var (
	// ErrPrimitiveFailure indicates a cryptographic primitive failed.
	ErrPrimitiveFailure = errors.New("cryptographic operation failed")

	// ErrAADMismatch indicates authenticated decryption rejected the
	// ciphertext or its associated data.
	ErrAADMismatch = errors.New("authenticated decryption failed")

	// ErrNoEligibleRecipient indicates none of the available keypairs is a
	// recipient of the entry.
	ErrNoEligibleRecipient = errors.New("no registered authenticator can decrypt this entry")
)

// Data errors indicate an operation on the vault model was rejected.
var (
	// ErrCredentialNotFound indicates the referenced credential is not in the vault.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrAmbiguousCredential indicates a credential reference matched more than one credential.
	ErrAmbiguousCredential = errors.New("credential reference is ambiguous")

	// ErrNameCollision indicates an entry with the same name already exists.
	ErrNameCollision = errors.New("an entry with this name already exists")

	// ErrEntryNotFound indicates the named entry is not in the vault.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidName indicates an entry or credential name is empty or malformed.
	ErrInvalidName = errors.New("invalid name")

	// ErrNoKeypairs indicates the vault has no registered authenticators to encrypt to.
	ErrNoKeypairs = errors.New("no authenticators are registered with this vault")
)

// ErrSerialization indicates a vault or keypair could not be encoded or decoded.
var ErrSerialization = errors.New("serialization failed")

// Vault state errors indicate the persisted vault is missing or already present.
var (
	// ErrVaultNotInitialized indicates no vault has been stored yet.
	ErrVaultNotInitialized = errors.New("vault has not been initialized")

	// ErrVaultAlreadyInitialized indicates a vault is already stored.
	ErrVaultAlreadyInitialized = errors.New("vault has already been initialized")
)

// ErrInvalidDateFormat indicates a log filter date is not YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("invalid date format")

var (
	authenticatorErrors = []error{ErrCancelled, ErrAlreadyRegistered, ErrNotRegistered, ErrUnsupported, ErrNoMatch}
	cryptoErrors        = []error{ErrPrimitiveFailure, ErrAADMismatch, ErrNoEligibleRecipient}
	dataErrors          = []error{ErrCredentialNotFound, ErrAmbiguousCredential, ErrNameCollision, ErrEntryNotFound, ErrInvalidName, ErrNoKeypairs}
)

// IsCancelled reports whether err is a user-initiated abort. Cancellations are
// recoverable and should not be surfaced as failures.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsAuthenticator reports whether err belongs to the authenticator category.
func IsAuthenticator(err error) bool {
	return isAny(err, authenticatorErrors)
}

// IsCrypto reports whether err belongs to the cryptographic category.
func IsCrypto(err error) bool {
	return isAny(err, cryptoErrors)
}

// IsData reports whether err belongs to the vault data category.
func IsData(err error) bool {
	return isAny(err, dataErrors)
}

// UserMessage returns a short human-readable message for err.
//
// Primitive and authentication failures share one message so the
// output never reveals why a decryption failed.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAADMismatch), errors.Is(err, ErrPrimitiveFailure):
		return "Cryptographic operation failed"
	case errors.Is(err, ErrNoEligibleRecipient):
		return "None of your registered authenticators can decrypt this entry"
	}

	for _, group := range [][]error{authenticatorErrors, cryptoErrors, dataErrors, {ErrSerialization, ErrVaultNotInitialized, ErrVaultAlreadyInitialized}} {
		for _, target := range group {
			if errors.Is(err, target) {
				msg := target.Error()
				return strings.ToUpper(msg[:1]) + msg[1:]
			}
		}
	}
	return err.Error()
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
