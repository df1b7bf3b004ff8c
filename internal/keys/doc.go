// Package keys binds ECDH keypairs to authenticators.
//
// # Binding
//
// Registering an authenticator produces a WrappedKeypair:
//
//  1. The authenticator evaluates its PRF at a random 32-byte salt
//  2. HKDF-SHA256 over the PRF output and a random salt yields an AES-256 key
//  3. A fresh P-256 private key, encoded as a JWK, is sealed with AES-GCM
//     under that key
//
// The credential id, the raw public key and every salt are serialized as
// AdditionalData and bound as the AES-GCM associated data, so none of them
// can be swapped without invalidating the wrapped key.
//
// # Unbinding
//
// Unbinder runs one assertion over a set of candidates, each evaluated at
// its own PRF salt, and decrypts the private key of the credential that
// answered. Every call performs a fresh ceremony. CachingUnbinder can be
// layered on top to reuse an unlocked key for a bounded TTL.
package keys
