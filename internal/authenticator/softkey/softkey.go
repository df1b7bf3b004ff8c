// Package softkey implements a software authenticator.
//
// A Device behaves like a CTAP2 security key supporting the hmac-secret/PRF
// extension: credentials are scoped to a relying party id, excluded
// credentials cannot be registered twice, and the PRF output for a salt is
// HMAC-SHA256(credential secret, SHA-256("WebAuthn PRF" || 0x00 || salt)),
// the same salt mapping browsers apply before handing a salt to a key.
//
// The device state is kept in a CBOR file. The file holds the credential
// secrets in the clear: a softkey exists for development, tests and
// scripted environments, not as a replacement for a hardware authenticator.
package softkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/prfvault/prfvault/internal/authenticator"
	kerrors "github.com/prfvault/prfvault/internal/errors"
)

const (
	fileVersion      = 1
	credentialIDSize = 32
	prfSecretSize    = 32
	prfContext       = "WebAuthn PRF\x00"
)

// Presence is asked to confirm user presence before every ceremony. It
// returns an error to cancel the ceremony.
type Presence func(ctx context.Context, prompt string) error

// Credential is a credential resident on the device.
type Credential struct {
	ID          []byte `cbor:"id"`
	RPID        string `cbor:"rp_id"`
	UserHandle  []byte `cbor:"user_handle"`
	UserName    string `cbor:"user_name"`
	PRFSecret   []byte `cbor:"prf_secret"`
	PrivateKey  []byte `cbor:"private_key"`
	SignCount   uint32 `cbor:"sign_count"`
	CreatedUnix int64  `cbor:"created_at"`
}

type deviceFile struct {
	Version     int          `cbor:"v"`
	AAGUID      string       `cbor:"aaguid"`
	Credentials []Credential `cbor:"credentials"`
}

// Device is a software authenticator. It is safe for concurrent use,
// although callers are expected to run one ceremony at a time.
type Device struct {
	mu          sync.Mutex
	path        string
	aaguid      uuid.UUID
	credentials []Credential

	presence    Presence
	prf         bool
	prfAtCreate bool
	rand        io.Reader
	now         func() time.Time
}

// Option configures a Device.
type Option func(*Device)

// WithPresence sets the user-presence hook. The default accepts immediately.
func WithPresence(p Presence) Option {
	return func(d *Device) { d.presence = p }
}

// WithPRF toggles PRF support. A device without PRF models an authenticator
// the vault cannot use.
func WithPRF(enabled bool) Option {
	return func(d *Device) { d.prf = enabled }
}

// WithPRFAtCreate toggles whether PRF results are returned during
// registration. Many hardware keys only evaluate PRF during assertions.
func WithPRFAtCreate(enabled bool) Option {
	return func(d *Device) { d.prfAtCreate = enabled }
}

// WithRand sets the entropy source.
func WithRand(r io.Reader) Option {
	return func(d *Device) { d.rand = r }
}

// New returns an in-memory device.
func New(opts ...Option) *Device {
	d := &Device{
		aaguid:      uuid.New(),
		prf:         true,
		prfAtCreate: true,
		rand:        rand.Reader,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open loads the device stored at path, or prepares a new one that will be
// written there on first registration.
func Open(path string, opts ...Option) (*Device, error) {
	d := New(opts...)
	d.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading softkey device %s: %w", path, err)
	}

	var file deviceFile
	if err := cbor.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding softkey device %s: %w", path, err)
	}
	if file.Version != fileVersion {
		return nil, fmt.Errorf("softkey device %s: unsupported version %d", path, file.Version)
	}
	if id, err := uuid.Parse(file.AAGUID); err == nil {
		d.aaguid = id
	}
	d.credentials = file.Credentials
	return d, nil
}

// AAGUID returns the device identifier.
func (d *Device) AAGUID() uuid.UUID {
	return d.aaguid
}

// Count returns the number of credentials resident for rpID.
func (d *Device) Count(rpID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.credentials {
		if c.RPID == rpID {
			n++
		}
	}
	return n
}

// Has reports whether the device holds credential id for rpID.
func (d *Device) Has(rpID string, id []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.find(rpID, id) >= 0
}

// Create registers a new credential.
func (d *Device) Create(ctx context.Context, req authenticator.CreateRequest) (*authenticator.CreateResponse, error) {
	if req.RP.ID == "" {
		return nil, fmt.Errorf("%w: relying party id is required", kerrors.ErrUnsupported)
	}
	if err := d.confirm(ctx, fmt.Sprintf("Touch your security key to register it with %s", rpLabel(req.RP))); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, excluded := range req.ExcludeCredentials {
		if d.find(req.RP.ID, excluded) >= 0 {
			return nil, kerrors.ErrAlreadyRegistered
		}
	}

	id := make([]byte, credentialIDSize)
	secret := make([]byte, prfSecretSize)
	if _, err := io.ReadFull(d.rand, id); err != nil {
		return nil, fmt.Errorf("%w: generating credential id: %v", kerrors.ErrPrimitiveFailure, err)
	}
	if _, err := io.ReadFull(d.rand, secret); err != nil {
		return nil, fmt.Errorf("%w: generating credential secret: %v", kerrors.ErrPrimitiveFailure, err)
	}

	signer, err := ecdsa.GenerateKey(elliptic.P256(), d.rand)
	if err != nil {
		return nil, fmt.Errorf("%w: generating credential key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding credential key: %v", kerrors.ErrPrimitiveFailure, err)
	}
	pub, err := signer.PublicKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: encoding credential public key: %v", kerrors.ErrPrimitiveFailure, err)
	}

	cred := Credential{
		ID:          id,
		RPID:        req.RP.ID,
		UserHandle:  append([]byte(nil), req.User.Handle...),
		UserName:    req.User.Name,
		PRFSecret:   secret,
		PrivateKey:  der,
		CreatedUnix: d.now().Unix(),
	}
	d.credentials = append(d.credentials, cred)
	if err := d.save(); err != nil {
		d.credentials = d.credentials[:len(d.credentials)-1]
		return nil, err
	}

	resp := &authenticator.CreateResponse{
		CredentialID: append([]byte(nil), id...),
		PublicKey:    pub.Bytes(),
	}
	if d.prf && d.prfAtCreate && len(req.PRFSalt) > 0 {
		resp.PRFOutput = evaluate(secret, req.PRFSalt)
	}
	return resp, nil
}

// Get asserts with the first resident credential that is allowed.
func (d *Device) Get(ctx context.Context, req authenticator.GetRequest) (*authenticator.GetResponse, error) {
	if err := d.confirm(ctx, "Touch your security key to unlock the vault"); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	if len(req.AllowCredentials) == 0 {
		for i, c := range d.credentials {
			if c.RPID == req.RPID {
				idx = i
				break
			}
		}
	} else {
		for i, c := range d.credentials {
			if c.RPID == req.RPID && allowed(req.AllowCredentials, c.ID) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, kerrors.ErrNotRegistered
	}

	cred := &d.credentials[idx]
	cred.SignCount++
	if err := d.save(); err != nil {
		cred.SignCount--
		return nil, err
	}

	resp := &authenticator.GetResponse{CredentialID: append([]byte(nil), cred.ID...)}
	if salt, ok := req.SaltFor(cred.ID); ok && d.prf {
		resp.PRFOutput = evaluate(cred.PRFSecret, salt)
	}
	return resp, nil
}

func (d *Device) confirm(ctx context.Context, prompt string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrCancelled, err)
	}
	if d.presence != nil {
		if err := d.presence(ctx, prompt); err != nil {
			if kerrors.IsAuthenticator(err) {
				return err
			}
			return fmt.Errorf("%w: %v", kerrors.ErrCancelled, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrCancelled, err)
	}
	return nil
}

// find returns the index of the credential id for rpID, or -1.
func (d *Device) find(rpID string, id []byte) int {
	for i, c := range d.credentials {
		if c.RPID == rpID && hmac.Equal(c.ID, id) {
			return i
		}
	}
	return -1
}

func (d *Device) save() error {
	if d.path == "" {
		return nil
	}

	data, err := cbor.Marshal(deviceFile{
		Version:     fileVersion,
		AAGUID:      d.aaguid.String(),
		Credentials: d.credentials,
	})
	if err != nil {
		return fmt.Errorf("encoding softkey device: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0700); err != nil {
		return fmt.Errorf("creating softkey directory: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing softkey device: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("writing softkey device: %w", err)
	}
	return nil
}

func allowed(list [][]byte, id []byte) bool {
	for _, candidate := range list {
		if hmac.Equal(candidate, id) {
			return true
		}
	}
	return false
}

func evaluate(secret, salt []byte) []byte {
	h := sha256.New()
	h.Write([]byte(prfContext))
	h.Write(salt)

	mac := hmac.New(sha256.New, secret)
	mac.Write(h.Sum(nil))
	return mac.Sum(nil)
}

func rpLabel(rp authenticator.RelyingParty) string {
	if rp.Name != "" {
		return rp.Name
	}
	return rp.ID
}
