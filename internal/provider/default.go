package provider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"io"

	jose "github.com/go-jose/go-jose/v4"
	josecipher "github.com/go-jose/go-jose/v4/cipher"
	"golang.org/x/crypto/hkdf"

	kerrors "github.com/prfvault/prfvault/internal/errors"
)

// Default implements Provider with the Go standard library, x/crypto and
// go-jose.
type Default struct {
	// Rand is the entropy source. It defaults to crypto/rand.Reader.
	Rand io.Reader
}

// New returns a Default provider reading from crypto/rand.
func New() *Default {
	return &Default{}
}

func (d *Default) rand() io.Reader {
	if d.Rand != nil {
		return d.Rand
	}
	return rand.Reader
}

// Random returns n random bytes.
func (d *Default) Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.rand(), b); err != nil {
		return nil, fmt.Errorf("%w: reading random bytes: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return b, nil
}

// GenerateECDH creates a fresh P-256 keypair.
func (d *Default) GenerateECDH() (*ecdh.PrivateKey, error) {
	key, err := Curve().GenerateKey(d.rand())
	if err != nil {
		return nil, fmt.Errorf("%w: generating ECDH key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return key, nil
}

// ImportECDHPublic parses a raw uncompressed P-256 point.
func (d *Default) ImportECDHPublic(raw []byte) (*ecdh.PublicKey, error) {
	pub, err := Curve().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: importing ECDH public key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return pub, nil
}

// ExportECDHPrivate encodes key as a JSON Web Key ("kty":"EC","crv":"P-256").
func (d *Default) ExportECDHPrivate(key *ecdh.PrivateKey) ([]byte, error) {
	if key == nil || key.Curve() != Curve() {
		return nil, fmt.Errorf("%w: exporting private key: not a P-256 key", kerrors.ErrPrimitiveFailure)
	}

	// x509 is the only standard bridge from crypto/ecdh to crypto/ecdsa,
	// which is what the JWK encoder understands.
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting private key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	defer Zero(der)

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting private key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: exporting private key: unexpected key type %T", kerrors.ErrPrimitiveFailure, parsed)
	}

	jwk, err := jose.JSONWebKey{Key: ecKey}.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encoding JWK: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return jwk, nil
}

// ImportECDHPrivate parses a private JSON Web Key on P-256.
func (d *Default) ImportECDHPrivate(data []byte) (*ecdh.PrivateKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: decoding JWK: %v", kerrors.ErrPrimitiveFailure, err)
	}
	if jwk.IsPublic() || !jwk.Valid() {
		return nil, fmt.Errorf("%w: decoding JWK: not a valid private key", kerrors.ErrPrimitiveFailure)
	}

	ecKey, ok := jwk.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: decoding JWK: unexpected key type %T", kerrors.ErrPrimitiveFailure, jwk.Key)
	}
	key, err := ecKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: converting JWK: %v", kerrors.ErrPrimitiveFailure, err)
	}
	if key.Curve() != Curve() {
		return nil, fmt.Errorf("%w: decoding JWK: not a P-256 key", kerrors.ErrPrimitiveFailure)
	}
	return key, nil
}

// ECDH derives the shared secret (the 32-byte x coordinate on P-256).
func (d *Default) ECDH(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: ECDH: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return secret, nil
}

// HKDF derives size bytes with HKDF-SHA256. The secret is used directly as
// input keying material.
func (d *Default) HKDF(secret, salt, info []byte, size int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: HKDF: empty input keying material", kerrors.ErrPrimitiveFailure)
	}
	out := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("%w: HKDF: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return out, nil
}

// SealGCM encrypts plaintext under key with AES-GCM. The tag is appended to
// the ciphertext.
func (d *Default) SealGCM(key, iv, plaintext, aad []byte) ([]byte, error) {
	aead, err := newGCM(key, iv)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, iv, plaintext, aad), nil
}

// OpenGCM decrypts ciphertext under key with AES-GCM. Any authentication
// failure, including mismatched associated data, yields ErrAADMismatch.
func (d *Default) OpenGCM(key, iv, ciphertext, aad []byte) ([]byte, error) {
	aead, err := newGCM(key, iv)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, kerrors.ErrAADMismatch
	}
	return plaintext, nil
}

// WrapKW wraps key under kek with RFC 3394 AES key wrap.
func (d *Default) WrapKW(kek, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-KW: %v", kerrors.ErrPrimitiveFailure, err)
	}
	wrapped, err := josecipher.KeyWrap(block, key)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-KW: %v", kerrors.ErrPrimitiveFailure, err)
	}
	return wrapped, nil
}

// UnwrapKW unwraps a key produced by WrapKW. An integrity check failure
// yields ErrAADMismatch.
func (d *Default) UnwrapKW(kek, wrapped []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-KW: %v", kerrors.ErrPrimitiveFailure, err)
	}
	key, err := josecipher.KeyUnwrap(block, wrapped)
	if err != nil {
		return nil, kerrors.ErrAADMismatch
	}
	return key, nil
}

func newGCM(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: AES-GCM: key must be %d bytes, got %d", kerrors.ErrPrimitiveFailure, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-GCM: %v", kerrors.ErrPrimitiveFailure, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-GCM: %v", kerrors.ErrPrimitiveFailure, err)
	}
	if len(iv) != aead.NonceSize() {
		// A wrong-length IV means the stored record was altered.
		return nil, kerrors.ErrAADMismatch
	}
	return aead, nil
}
