package softkey

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prfvault/prfvault/internal/authenticator"
	kerrors "github.com/prfvault/prfvault/internal/errors"
)

var testRP = authenticator.RelyingParty{ID: "localhost", Name: "prfvault"}

func register(t *testing.T, d *Device, salt []byte, exclude ...[]byte) *authenticator.CreateResponse {
	t.Helper()
	resp, err := d.Create(context.Background(), authenticator.CreateRequest{
		Challenge:          []byte("challenge"),
		RP:                 testRP,
		User:               authenticator.User{Name: "alice", DisplayName: "alice", Handle: []byte("handle")},
		ExcludeCredentials: exclude,
		PRFSalt:            salt,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return resp
}

func TestCreateReturnsPRFOutputMatchingGet(t *testing.T) {
	d := New()
	salt := bytes.Repeat([]byte{1}, 32)
	created := register(t, d, salt)

	if len(created.CredentialID) != credentialIDSize {
		t.Errorf("credential id length = %d, want %d", len(created.CredentialID), credentialIDSize)
	}
	if len(created.PublicKey) != 65 {
		t.Errorf("raw public key length = %d, want 65", len(created.PublicKey))
	}
	if len(created.PRFOutput) != 32 {
		t.Fatalf("PRF output length = %d, want 32", len(created.PRFOutput))
	}

	got, err := d.Get(context.Background(), authenticator.GetRequest{
		RPID:             testRP.ID,
		AllowCredentials: [][]byte{created.CredentialID},
		PRFSalts:         authenticator.EvalByCredential(nil, created.CredentialID, salt),
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got.CredentialID, created.CredentialID) {
		t.Errorf("Get returned a different credential")
	}
	if !bytes.Equal(got.PRFOutput, created.PRFOutput) {
		t.Errorf("PRF output is not stable between create and get")
	}
}

func TestPRFDependsOnSaltAndCredential(t *testing.T) {
	d := New()
	a := register(t, d, []byte("salt-a"))
	b := register(t, d, []byte("salt-a"))

	if bytes.Equal(a.PRFOutput, b.PRFOutput) {
		t.Errorf("two credentials produced the same PRF output")
	}

	other, err := d.Get(context.Background(), authenticator.GetRequest{
		RPID:             testRP.ID,
		AllowCredentials: [][]byte{a.CredentialID},
		PRFSalts:         authenticator.EvalByCredential(nil, a.CredentialID, []byte("salt-b")),
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if bytes.Equal(other.PRFOutput, a.PRFOutput) {
		t.Errorf("different salts produced the same PRF output")
	}
}

func TestCreateRejectsExcludedCredential(t *testing.T) {
	d := New()
	first := register(t, d, nil)

	_, err := d.Create(context.Background(), authenticator.CreateRequest{
		RP:                 testRP,
		ExcludeCredentials: [][]byte{first.CredentialID},
	})
	if !errors.Is(err, kerrors.ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
	if d.Count(testRP.ID) != 1 {
		t.Errorf("rejected registration must not add a credential")
	}
}

func TestGetWithUnknownCredentials(t *testing.T) {
	d := New()
	register(t, d, nil)

	_, err := d.Get(context.Background(), authenticator.GetRequest{
		RPID:             testRP.ID,
		AllowCredentials: [][]byte{[]byte("not-on-this-device")},
	})
	if !errors.Is(err, kerrors.ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}

func TestGetIsScopedToRelyingParty(t *testing.T) {
	d := New()
	created := register(t, d, nil)

	_, err := d.Get(context.Background(), authenticator.GetRequest{
		RPID:             "example.org",
		AllowCredentials: [][]byte{created.CredentialID},
	})
	if !errors.Is(err, kerrors.ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered for another relying party, got %v", err)
	}
}

func TestPresenceCancellation(t *testing.T) {
	d := New(WithPresence(func(ctx context.Context, prompt string) error {
		return errors.New("user pressed Ctrl-D")
	}))

	_, err := d.Create(context.Background(), authenticator.CreateRequest{RP: testRP})
	if !errors.Is(err, kerrors.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
	if d.Count(testRP.ID) != 0 {
		t.Errorf("cancelled registration must not add a credential")
	}
}

func TestContextCancellation(t *testing.T) {
	d := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Get(ctx, authenticator.GetRequest{RPID: testRP.ID}); !errors.Is(err, kerrors.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestWithoutPRF(t *testing.T) {
	d := New(WithPRF(false))
	created := register(t, d, []byte("salt"))
	if created.PRFOutput != nil {
		t.Errorf("device without PRF returned a PRF output at create")
	}

	got, err := d.Get(context.Background(), authenticator.GetRequest{
		RPID:             testRP.ID,
		AllowCredentials: [][]byte{created.CredentialID},
		PRFSalts:         authenticator.EvalByCredential(nil, created.CredentialID, []byte("salt")),
	})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PRFOutput != nil {
		t.Errorf("device without PRF returned a PRF output at get")
	}
}

func TestWithoutPRFAtCreate(t *testing.T) {
	d := New(WithPRFAtCreate(false))
	created := register(t, d, []byte("salt"))
	if created.PRFOutput != nil {
		t.Errorf("expected no PRF output during registration")
	}
}

func TestDevicePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "softkey.cbor")

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	salt := []byte("persisted-salt")
	created := register(t, d, salt)

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.AAGUID() != d.AAGUID() {
		t.Errorf("AAGUID changed across reopen")
	}
	if reopened.Count(testRP.ID) != 1 {
		t.Fatalf("expected 1 credential after reopen, got %d", reopened.Count(testRP.ID))
	}

	got, err := reopened.Get(context.Background(), authenticator.GetRequest{
		RPID:             testRP.ID,
		AllowCredentials: [][]byte{created.CredentialID},
		PRFSalts:         authenticator.EvalByCredential(nil, created.CredentialID, salt),
	})
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !bytes.Equal(got.PRFOutput, created.PRFOutput) {
		t.Errorf("PRF output changed across reopen")
	}
}
