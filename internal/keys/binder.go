package keys

import (
	"context"
	"fmt"

	"github.com/prfvault/prfvault/internal/authenticator"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/provider"
)

// MinPRFOutput is the shortest PRF output accepted as key material.
const MinPRFOutput = 32

// Binder registers authenticators and binds a fresh keypair to each.
type Binder struct {
	Provider      provider.Provider
	Authenticator authenticator.Authenticator
	RP            authenticator.RelyingParty
}

// Bind registers a new credential for user and returns a keypair whose
// private half only that credential can unwrap. Credentials listed in
// exclude are refused by the authenticator with ErrAlreadyRegistered.
func (b *Binder) Bind(ctx context.Context, user authenticator.User, exclude [][]byte) (*WrappedKeypair, error) {
	p := b.Provider

	prfSalt, err := p.Random(provider.SaltSize)
	if err != nil {
		return nil, err
	}
	createChallenge, err := p.Random(32)
	if err != nil {
		return nil, err
	}
	getChallenge, err := p.Random(32)
	if err != nil {
		return nil, err
	}

	created, err := b.Authenticator.Create(ctx, authenticator.CreateRequest{
		Challenge:          createChallenge,
		RP:                 b.RP,
		User:               user,
		ExcludeCredentials: exclude,
		PRFSalt:            prfSalt,
	})
	if err != nil {
		return nil, err
	}

	prfOutput := created.PRFOutput
	if prfOutput == nil {
		// The authenticator only evaluates PRF during assertions.
		asserted, err := b.Authenticator.Get(ctx, authenticator.GetRequest{
			Challenge:        getChallenge,
			RPID:             b.RP.ID,
			AllowCredentials: [][]byte{created.CredentialID},
			PRFSalts:         authenticator.EvalByCredential(nil, created.CredentialID, prfSalt),
		})
		if err != nil {
			return nil, err
		}
		if !equal(asserted.CredentialID, created.CredentialID) {
			return nil, kerrors.ErrNoMatch
		}
		prfOutput = asserted.PRFOutput
	}
	if len(prfOutput) < MinPRFOutput {
		return nil, kerrors.ErrUnsupported
	}
	defer provider.Zero(prfOutput)

	hkdfSalt, err := p.Random(provider.SaltSize)
	if err != nil {
		return nil, err
	}
	hkdfInfo := []byte{}

	wrappingKey, err := p.HKDF(prfOutput, hkdfSalt, hkdfInfo, provider.KeySize)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(wrappingKey)

	keypair, err := p.GenerateECDH()
	if err != nil {
		return nil, err
	}

	aad, err := AdditionalData{
		CredentialID: created.CredentialID,
		Pubkey:       keypair.PublicKey().Bytes(),
		PRFSalt:      prfSalt,
		HKDFSalt:     hkdfSalt,
		HKDFInfo:     hkdfInfo,
	}.Marshal()
	if err != nil {
		return nil, err
	}

	jwk, err := p.ExportECDHPrivate(keypair)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(jwk)

	iv, err := p.Random(provider.IVSize)
	if err != nil {
		return nil, err
	}
	wrapped, err := p.SealGCM(wrappingKey, iv, jwk, aad)
	if err != nil {
		return nil, fmt.Errorf("wrapping private key: %w", err)
	}

	return &WrappedKeypair{
		WrappedPrivateKey: wrapped,
		IV:                iv,
		AdditionalData:    aad,
	}, nil
}
