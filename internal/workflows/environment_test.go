package workflows

import (
	"errors"
	"testing"

	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/keys"
	"github.com/prfvault/prfvault/internal/vault"
)

func testKeypair(t *testing.T, id []byte, nickname string) keys.WrappedKeypair {
	t.Helper()
	data, err := keys.AdditionalData{CredentialID: id, Pubkey: []byte{4, 1, 2}}.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	kp := keys.WrappedKeypair{AdditionalData: data}
	if nickname != "" {
		kp = kp.WithNickname(nickname)
	}
	return kp
}

func TestResolveCredential(t *testing.T) {
	// Ids encode to "qgE", "qgI" and "_wM" in base64url.
	v := &vault.VaultConfig{User: vault.UserConfig{Keypairs: []keys.WrappedKeypair{
		testKeypair(t, []byte{0xaa, 0x01}, "work"),
		testKeypair(t, []byte{0xaa, 0x02}, "twin"),
		testKeypair(t, []byte{0xff, 0x03}, "twin"),
	}}}

	tests := []struct {
		name     string
		ref      string
		wantNick string
		wantErr  error
	}{
		{"nickname", "work", "work", nil},
		{"full id", "qgI", "twin", nil},
		{"unique prefix", "_w", "twin", nil},
		{"ambiguous prefix", "qg", "", kerrors.ErrAmbiguousCredential},
		{"ambiguous nickname", "twin", "", kerrors.ErrAmbiguousCredential},
		{"unknown", "nope", "", kerrors.ErrCredentialNotFound},
		{"empty", "  ", "", kerrors.ErrCredentialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := resolveCredential(v, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveCredential(%q) failed: %v", tt.ref, err)
			}
			if got := kp.DisplayName(); got != tt.wantNick {
				t.Errorf("Expected %q, got %q", tt.wantNick, got)
			}
		})
	}
}

func TestNicknames(t *testing.T) {
	v := &vault.VaultConfig{User: vault.UserConfig{Keypairs: []keys.WrappedKeypair{
		testKeypair(t, []byte{1}, "a"),
		testKeypair(t, []byte{2}, ""),
		testKeypair(t, []byte{3}, "c"),
	}}}

	got := nicknames(v)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Expected [a c], got %v", got)
	}
}
