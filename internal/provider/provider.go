// Package provider defines the cryptographic capability set used by the key
// binding and envelope layers, together with its default implementation.
//
// The capability set mirrors what a platform cryptographic provider offers:
// random bytes, ECDH on P-256 with raw and JWK interchange formats,
// HKDF-SHA256, AES-GCM with associated data, and AES key wrapping. Callers
// never reach for a concrete implementation directly; one is passed in.
package provider

import "crypto/ecdh"

const (
	// KeySize is the size of every symmetric key, in bytes (AES-256).
	KeySize = 32

	// IVSize is the AES-GCM nonce size, in bytes (96 bits).
	IVSize = 12

	// SaltSize is the size of PRF and HKDF salts, in bytes.
	SaltSize = 32
)

// Provider is the cryptographic capability set.
type Provider interface {
	// Random returns n bytes from a cryptographically secure source.
	Random(n int) ([]byte, error)

	// GenerateECDH creates a fresh P-256 keypair.
	GenerateECDH() (*ecdh.PrivateKey, error)

	// ImportECDHPublic parses a raw uncompressed P-256 point.
	ImportECDHPublic(raw []byte) (*ecdh.PublicKey, error)

	// ExportECDHPrivate encodes a private key as a JSON Web Key.
	ExportECDHPrivate(key *ecdh.PrivateKey) ([]byte, error)

	// ImportECDHPrivate parses a JSON Web Key produced by ExportECDHPrivate.
	ImportECDHPrivate(jwk []byte) (*ecdh.PrivateKey, error)

	// ECDH derives the shared secret between priv and pub.
	ECDH(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error)

	// HKDF derives size bytes with HKDF-SHA256.
	HKDF(secret, salt, info []byte, size int) ([]byte, error)

	// SealGCM encrypts plaintext with AES-GCM.
	SealGCM(key, iv, plaintext, aad []byte) ([]byte, error)

	// OpenGCM decrypts and authenticates ciphertext with AES-GCM.
	OpenGCM(key, iv, ciphertext, aad []byte) ([]byte, error)

	// WrapKW wraps key under kek with AES key wrap (RFC 3394).
	WrapKW(kek, key []byte) ([]byte, error)

	// UnwrapKW reverses WrapKW.
	UnwrapKW(kek, wrapped []byte) ([]byte, error)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Curve is the only curve the vault uses.
func Curve() ecdh.Curve {
	return ecdh.P256()
}
