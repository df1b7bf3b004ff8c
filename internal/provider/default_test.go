package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	kerrors "github.com/prfvault/prfvault/internal/errors"
)

func TestRandomLength(t *testing.T) {
	p := New()
	for _, n := range []int{0, 12, 32, 64} {
		b, err := p.Random(n)
		if err != nil {
			t.Fatalf("Random(%d) failed: %v", n, err)
		}
		if len(b) != n {
			t.Errorf("Random(%d) returned %d bytes", n, len(b))
		}
	}
}

func TestRandomFailureIsPrimitiveFailure(t *testing.T) {
	p := &Default{Rand: bytes.NewReader(nil)}
	if _, err := p.Random(32); !errors.Is(err, kerrors.ErrPrimitiveFailure) {
		t.Errorf("expected ErrPrimitiveFailure, got %v", err)
	}
}

func TestJWKRoundTrip(t *testing.T) {
	p := New()
	key, err := p.GenerateECDH()
	if err != nil {
		t.Fatalf("GenerateECDH failed: %v", err)
	}

	jwk, err := p.ExportECDHPrivate(key)
	if err != nil {
		t.Fatalf("ExportECDHPrivate failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(jwk, &fields); err != nil {
		t.Fatalf("JWK is not JSON: %v", err)
	}
	if fields["kty"] != "EC" || fields["crv"] != "P-256" {
		t.Errorf("unexpected JWK header: kty=%v crv=%v", fields["kty"], fields["crv"])
	}
	if _, ok := fields["d"]; !ok {
		t.Errorf("JWK is missing the private scalar")
	}

	imported, err := p.ImportECDHPrivate(jwk)
	if err != nil {
		t.Fatalf("ImportECDHPrivate failed: %v", err)
	}
	if !imported.Equal(key) {
		t.Errorf("imported key does not match the original")
	}
}

func TestImportECDHPrivateRejectsPublicJWK(t *testing.T) {
	p := New()
	key, err := p.GenerateECDH()
	if err != nil {
		t.Fatalf("GenerateECDH failed: %v", err)
	}
	jwk, err := p.ExportECDHPrivate(key)
	if err != nil {
		t.Fatalf("ExportECDHPrivate failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(jwk, &fields); err != nil {
		t.Fatalf("JWK is not JSON: %v", err)
	}
	delete(fields, "d")
	public, _ := json.Marshal(fields)

	if _, err := p.ImportECDHPrivate(public); !errors.Is(err, kerrors.ErrPrimitiveFailure) {
		t.Errorf("expected ErrPrimitiveFailure for a public JWK, got %v", err)
	}
}

func TestECDHAgreement(t *testing.T) {
	p := New()
	a, _ := p.GenerateECDH()
	b, _ := p.GenerateECDH()

	pubB, err := p.ImportECDHPublic(b.PublicKey().Bytes())
	if err != nil {
		t.Fatalf("ImportECDHPublic failed: %v", err)
	}
	s1, err := p.ECDH(a, pubB)
	if err != nil {
		t.Fatalf("ECDH failed: %v", err)
	}
	s2, err := p.ECDH(b, a.PublicKey())
	if err != nil {
		t.Fatalf("ECDH failed: %v", err)
	}
	if !bytes.Equal(s1, s2) || len(s1) != KeySize {
		t.Errorf("shared secrets differ or have the wrong size (%d)", len(s1))
	}
}

func TestImportECDHPublicRejectsGarbage(t *testing.T) {
	if _, err := New().ImportECDHPublic([]byte{0x04, 0x01}); !errors.Is(err, kerrors.ErrPrimitiveFailure) {
		t.Errorf("expected ErrPrimitiveFailure, got %v", err)
	}
}

func TestHKDFIsDeterministic(t *testing.T) {
	p := New()
	secret := bytes.Repeat([]byte{7}, 32)
	salt := bytes.Repeat([]byte{9}, 32)

	k1, err := p.HKDF(secret, salt, nil, KeySize)
	if err != nil {
		t.Fatalf("HKDF failed: %v", err)
	}
	k2, _ := p.HKDF(secret, salt, nil, KeySize)
	if !bytes.Equal(k1, k2) {
		t.Errorf("HKDF returned different keys for the same input")
	}

	k3, _ := p.HKDF(secret, bytes.Repeat([]byte{8}, 32), nil, KeySize)
	if bytes.Equal(k1, k3) {
		t.Errorf("HKDF ignored the salt")
	}

	if _, err := p.HKDF(nil, salt, nil, KeySize); !errors.Is(err, kerrors.ErrPrimitiveFailure) {
		t.Errorf("expected ErrPrimitiveFailure for empty secret, got %v", err)
	}
}

func TestGCMRoundTripAndTamper(t *testing.T) {
	p := New()
	key, _ := p.Random(KeySize)
	iv, _ := p.Random(IVSize)
	aad := []byte("associated")

	ct, err := p.SealGCM(key, iv, []byte("hello"), aad)
	if err != nil {
		t.Fatalf("SealGCM failed: %v", err)
	}
	pt, err := p.OpenGCM(key, iv, ct, aad)
	if err != nil {
		t.Fatalf("OpenGCM failed: %v", err)
	}
	if string(pt) != "hello" {
		t.Errorf("OpenGCM = %q, want %q", pt, "hello")
	}

	tests := []struct {
		name string
		iv   []byte
		ct   []byte
		aad  []byte
	}{
		{"flipped ciphertext", iv, flip(ct, 0), aad},
		{"flipped tag", iv, flip(ct, len(ct)-1), aad},
		{"flipped iv", flip(iv, 3), ct, aad},
		{"altered aad", iv, ct, []byte("associatee")},
		{"short iv", iv[:8], ct, aad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.OpenGCM(key, tt.iv, tt.ct, tt.aad); !errors.Is(err, kerrors.ErrAADMismatch) {
				t.Errorf("expected ErrAADMismatch, got %v", err)
			}
		})
	}
}

func TestGCMRejectsShortKey(t *testing.T) {
	p := New()
	iv, _ := p.Random(IVSize)
	if _, err := p.SealGCM(make([]byte, 16), iv, []byte("x"), nil); !errors.Is(err, kerrors.ErrPrimitiveFailure) {
		t.Errorf("expected ErrPrimitiveFailure, got %v", err)
	}
}

func TestKeyWrapRoundTripAndTamper(t *testing.T) {
	p := New()
	kek, _ := p.Random(KeySize)
	key, _ := p.Random(KeySize)

	wrapped, err := p.WrapKW(kek, key)
	if err != nil {
		t.Fatalf("WrapKW failed: %v", err)
	}
	if len(wrapped) != KeySize+8 {
		t.Errorf("wrapped key length = %d, want %d", len(wrapped), KeySize+8)
	}

	unwrapped, err := p.UnwrapKW(kek, wrapped)
	if err != nil {
		t.Fatalf("UnwrapKW failed: %v", err)
	}
	if !bytes.Equal(unwrapped, key) {
		t.Errorf("unwrapped key mismatch")
	}

	if _, err := p.UnwrapKW(kek, flip(wrapped, 5)); !errors.Is(err, kerrors.ErrAADMismatch) {
		t.Errorf("expected ErrAADMismatch for tampered wrap, got %v", err)
	}

	otherKEK, _ := p.Random(KeySize)
	if _, err := p.UnwrapKW(otherKEK, wrapped); !errors.Is(err, kerrors.ErrAADMismatch) {
		t.Errorf("expected ErrAADMismatch for wrong KEK, got %v", err)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Errorf("Zero left %v", b)
	}
}

func flip(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	out[i] ^= 0x01
	return out
}
