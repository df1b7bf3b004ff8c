// Package envelope encrypts vault entries to several authenticators at once.
//
// Each entry is sealed with its own AES-256-GCM content key. For every
// recipient keypair a fresh ephemeral P-256 key is generated, the ECDH
// shared secret with the recipient's public key is used as an AES-256 key
// wrapping key, and the content key is wrapped with RFC 3394 AES-KW.
// Encrypting only needs public keys. Decrypting needs one recipient's
// private key, which is unlocked through an authenticator ceremony.
package envelope

import (
	"context"
	"fmt"

	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/keys"
	"github.com/prfvault/prfvault/internal/provider"
)

// Cipher encrypts and decrypts entries.
type Cipher struct {
	Provider provider.Provider
	Unlocker keys.KeyUnlocker
}

// Encrypt seals content to every recipient. No authenticator is involved.
func (c *Cipher) Encrypt(ctx context.Context, content []byte, recipients []keys.WrappedKeypair) (*EncryptedContent, error) {
	if len(recipients) == 0 {
		return nil, kerrors.ErrNoEligibleRecipient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := c.Provider

	contentKey, err := p.Random(provider.KeySize)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(contentKey)

	wrapped := make([]WrappedContentKey, 0, len(recipients))
	for _, recipient := range recipients {
		meta, err := recipient.Metadata()
		if err != nil {
			return nil, err
		}
		wck, err := c.wrapFor(meta, contentKey)
		if err != nil {
			return nil, err
		}
		wrapped = append(wrapped, *wck)
	}

	iv, err := p.Random(provider.IVSize)
	if err != nil {
		return nil, err
	}
	aad := []byte{}
	ciphertext, err := p.SealGCM(contentKey, iv, content, aad)
	if err != nil {
		return nil, fmt.Errorf("encrypting content: %w", err)
	}

	return &EncryptedContent{
		Ciphertext:     ciphertext,
		IV:             iv,
		AdditionalData: aad,
		Recipients:     wrapped,
	}, nil
}

func (c *Cipher) wrapFor(meta *keys.AdditionalData, contentKey []byte) (*WrappedContentKey, error) {
	p := c.Provider

	recipientPub, err := p.ImportECDHPublic(meta.Pubkey)
	if err != nil {
		return nil, err
	}
	ephemeral, err := p.GenerateECDH()
	if err != nil {
		return nil, err
	}
	kek, err := p.ECDH(ephemeral, recipientPub)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(kek)

	wrappedKey, err := p.WrapKW(kek, contentKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping content key: %w", err)
	}
	return &WrappedContentKey{
		CredentialID:           meta.CredentialID.Clone(),
		WrappingExchangePubkey: ephemeral.PublicKey().Bytes(),
		WrappedContentKey:      wrappedKey,
	}, nil
}

// Decrypt opens entry with one of the available keypairs. When no
// available keypair is a recipient it fails with ErrNoEligibleRecipient
// before any authenticator ceremony.
func (c *Cipher) Decrypt(ctx context.Context, entry EncryptedContent, available []keys.WrappedKeypair) ([]byte, error) {
	candidates := Eligible(entry, available)
	if len(candidates) == 0 {
		return nil, kerrors.ErrNoEligibleRecipient
	}

	id, priv, err := c.Unlocker.Unbind(ctx, candidates)
	if err != nil {
		return nil, err
	}

	recipient, ok := entry.Recipient(id)
	if !ok {
		return nil, kerrors.ErrNoMatch
	}

	p := c.Provider
	exchangePub, err := p.ImportECDHPublic(recipient.WrappingExchangePubkey)
	if err != nil {
		return nil, kerrors.ErrAADMismatch
	}
	kek, err := p.ECDH(priv, exchangePub)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(kek)

	contentKey, err := p.UnwrapKW(kek, recipient.WrappedContentKey)
	if err != nil {
		return nil, err
	}
	defer provider.Zero(contentKey)

	return p.OpenGCM(contentKey, entry.IV, entry.Ciphertext, entry.AdditionalData)
}

// Eligible returns the keypairs among available that entry is encrypted
// to, in the order they appear in available.
func Eligible(entry EncryptedContent, available []keys.WrappedKeypair) []keys.WrappedKeypair {
	var out []keys.WrappedKeypair
	for _, kp := range available {
		id := kp.CredentialID()
		if id == nil {
			continue
		}
		if _, ok := entry.Recipient(id); ok {
			out = append(out, kp)
		}
	}
	return out
}
