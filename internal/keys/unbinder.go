package keys

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"fmt"

	"github.com/prfvault/prfvault/internal/authenticator"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/provider"
)

// KeyUnlocker recovers the private key of one of a set of candidate
// keypairs.
type KeyUnlocker interface {
	Unbind(ctx context.Context, candidates []WrappedKeypair) ([]byte, *ecdh.PrivateKey, error)
}

// Unbinder recovers private keys with a single authenticator ceremony.
type Unbinder struct {
	Provider      provider.Provider
	Authenticator authenticator.Authenticator
	RPID          string
}

type candidate struct {
	keypair WrappedKeypair
	meta    *AdditionalData
}

// Unbind asks the authenticator to assert with any of the candidates and
// decrypts the private key of the one that answered. It returns the
// answering credential id alongside the key.
func (u *Unbinder) Unbind(ctx context.Context, candidates []WrappedKeypair) ([]byte, *ecdh.PrivateKey, error) {
	if len(candidates) == 0 {
		return nil, nil, kerrors.ErrNoEligibleRecipient
	}

	parsed := make([]candidate, 0, len(candidates))
	allow := make([][]byte, 0, len(candidates))
	var salts map[string][]byte
	for _, kp := range candidates {
		meta, err := kp.Metadata()
		if err != nil {
			return nil, nil, err
		}
		parsed = append(parsed, candidate{keypair: kp, meta: meta})
		allow = append(allow, meta.CredentialID)
		salts = authenticator.EvalByCredential(salts, meta.CredentialID, meta.PRFSalt)
	}

	challenge, err := u.Provider.Random(32)
	if err != nil {
		return nil, nil, err
	}

	resp, err := u.Authenticator.Get(ctx, authenticator.GetRequest{
		Challenge:        challenge,
		RPID:             u.RPID,
		AllowCredentials: allow,
		PRFSalts:         salts,
	})
	if err != nil {
		return nil, nil, err
	}

	var match *candidate
	for i := range parsed {
		if parsed[i].meta.CredentialID.Equal(resp.CredentialID) {
			match = &parsed[i]
			break
		}
	}
	if match == nil {
		return nil, nil, kerrors.ErrNoMatch
	}
	if len(resp.PRFOutput) < MinPRFOutput {
		return nil, nil, kerrors.ErrUnsupported
	}
	defer provider.Zero(resp.PRFOutput)

	key, err := u.unwrap(resp.PRFOutput, match)
	if err != nil {
		return nil, nil, err
	}
	return match.meta.CredentialID.Clone(), key, nil
}

func (u *Unbinder) unwrap(prfOutput []byte, c *candidate) (*ecdh.PrivateKey, error) {
	p := u.Provider

	wrappingKey, err := p.HKDF(prfOutput, c.meta.HKDFSalt, c.meta.HKDFInfo, provider.KeySize)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(wrappingKey)

	jwk, err := p.OpenGCM(wrappingKey, c.keypair.IV, c.keypair.WrappedPrivateKey, c.keypair.AdditionalData)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(jwk)

	key, err := p.ImportECDHPrivate(jwk)
	if err != nil {
		return nil, fmt.Errorf("importing unwrapped private key: %w", err)
	}
	if !bytes.Equal(key.PublicKey().Bytes(), c.meta.Pubkey) {
		return nil, kerrors.ErrAADMismatch
	}
	return key, nil
}

func equal(a, b []byte) bool {
	return len(a) > 0 && bytes.Equal(a, b)
}
