// Package authenticator defines the ceremony capability set the vault uses to
// talk to security keys.
//
// Only two single-shot, user-present operations exist: Create registers a
// new credential and Get asserts with one of a set of allowed credentials.
// Both may evaluate the WebAuthn PRF extension, which is the only output the
// vault consumes. Attestation and assertion signatures are not verified.
package authenticator

import (
	"context"

	"github.com/prfvault/prfvault/internal/codec"
)

// RelyingParty identifies the application credentials are scoped to.
type RelyingParty struct {
	ID   string
	Name string
}

// User is the account credentials are bound to.
type User struct {
	Name        string
	DisplayName string
	Handle      []byte
}

// CreateRequest asks the authenticator for a new credential.
type CreateRequest struct {
	Challenge []byte
	RP        RelyingParty
	User      User

	// ExcludeCredentials lists credential ids the authenticator must refuse
	// to register again.
	ExcludeCredentials [][]byte

	// PRFSalt is evaluated when the authenticator supports PRF at creation.
	PRFSalt []byte
}

// CreateResponse is the outcome of a Create ceremony.
type CreateResponse struct {
	CredentialID []byte

	// PublicKey is the credential's raw public key.
	PublicKey []byte

	// PRFOutput is nil when the authenticator only evaluates PRF during
	// assertions.
	PRFOutput []byte
}

// GetRequest asks the authenticator to assert with one of AllowCredentials.
type GetRequest struct {
	Challenge        []byte
	RPID             string
	AllowCredentials [][]byte

	// PRFSalts maps the base64url form of each credential id to the salt
	// evaluated for that credential.
	PRFSalts map[string][]byte
}

// GetResponse is the outcome of a Get ceremony.
type GetResponse struct {
	CredentialID []byte
	PRFOutput    []byte
}

// Authenticator performs WebAuthn-style ceremonies. Implementations return
// errors from internal/errors: ErrCancelled, ErrAlreadyRegistered,
// ErrNotRegistered or ErrUnsupported.
type Authenticator interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	Get(ctx context.Context, req GetRequest) (*GetResponse, error)
}

// SaltFor returns the PRF salt requested for credential id, if any.
func (r GetRequest) SaltFor(id []byte) ([]byte, bool) {
	salt, ok := r.PRFSalts[codec.URL(id)]
	return salt, ok
}

// EvalByCredential builds the per-credential PRF salt map for a Get request.
func EvalByCredential(salts map[string][]byte, id, salt []byte) map[string][]byte {
	if salts == nil {
		salts = make(map[string][]byte)
	}
	salts[codec.URL(id)] = salt
	return salts
}
