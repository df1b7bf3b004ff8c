// Package vault holds the persisted vault aggregate: the user, their
// registered authenticator keypairs and the encrypted entries.
//
// A VaultConfig is a snapshot. Every operation returns a new VaultConfig and
// leaves the receiver untouched, so a failed operation never leaves a
// half-applied change behind. Persisting the returned snapshot is the
// caller's job.
package vault

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prfvault/prfvault/internal/codec"
	"github.com/prfvault/prfvault/internal/envelope"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/keys"
	"github.com/prfvault/prfvault/internal/provider"
)

const (
	// Version is the only vault format version understood.
	Version = 2

	// UserHandleSize is the size of the random user handle, in bytes.
	UserHandleSize = 64
)

// UserConfig is the vault owner and their registered keypairs.
type UserConfig struct {
	Version    int                   `json:"v"`
	Username   string                `json:"username"`
	UserHandle codec.Bytes           `json:"user_handle"`
	Keypairs   []keys.WrappedKeypair `json:"keypairs"`
}

// VaultConfig is the single persisted aggregate.
type VaultConfig struct {
	Version  int                                  `json:"v"`
	User     UserConfig                           `json:"user"`
	Contents map[string]envelope.EncryptedContent `json:"contents"`
}

// Encrypter seals content to a set of recipients.
type Encrypter interface {
	Encrypt(ctx context.Context, content []byte, recipients []keys.WrappedKeypair) (*envelope.EncryptedContent, error)
}

// New returns an empty vault for username with a fresh user handle.
func New(p provider.Provider, username string) (*VaultConfig, error) {
	handle, err := p.Random(UserHandleSize)
	if err != nil {
		return nil, fmt.Errorf("generating user handle: %w", err)
	}
	return &VaultConfig{
		Version: Version,
		User: UserConfig{
			Version:    Version,
			Username:   username,
			UserHandle: handle,
			Keypairs:   []keys.WrappedKeypair{},
		},
		Contents: map[string]envelope.EncryptedContent{},
	}, nil
}

// Clone returns a deep copy of v.
func (v *VaultConfig) Clone() *VaultConfig {
	out := &VaultConfig{
		Version: v.Version,
		User: UserConfig{
			Version:    v.User.Version,
			Username:   v.User.Username,
			UserHandle: v.User.UserHandle.Clone(),
			Keypairs:   make([]keys.WrappedKeypair, len(v.User.Keypairs)),
		},
		Contents: make(map[string]envelope.EncryptedContent, len(v.Contents)),
	}
	for i, kp := range v.User.Keypairs {
		out.User.Keypairs[i] = kp.Clone()
	}
	for name, entry := range v.Contents {
		out.Contents[name] = entry.Clone()
	}
	return out
}

// AddKeypair returns a vault with kp appended to the registered keypairs.
func (v *VaultConfig) AddKeypair(kp keys.WrappedKeypair) (*VaultConfig, error) {
	meta, err := kp.Metadata()
	if err != nil {
		return nil, err
	}
	if v.indexOf(meta.CredentialID) >= 0 {
		return nil, kerrors.ErrAlreadyRegistered
	}
	out := v.Clone()
	out.User.Keypairs = append(out.User.Keypairs, kp.Clone())
	return out, nil
}

// RenameCredential returns a vault where credential id carries name.
func (v *VaultConfig) RenameCredential(id []byte, name string) (*VaultConfig, error) {
	i := v.indexOf(id)
	if i < 0 {
		return nil, kerrors.ErrCredentialNotFound
	}
	out := v.Clone()
	out.User.Keypairs[i] = out.User.Keypairs[i].WithNickname(name)
	return out, nil
}

// DeleteCredential returns a vault without credential id. Every wrapped
// content key addressed to it is removed as well, so entries only that
// credential could open become undecryptable.
func (v *VaultConfig) DeleteCredential(id []byte) (*VaultConfig, error) {
	i := v.indexOf(id)
	if i < 0 {
		return nil, kerrors.ErrCredentialNotFound
	}
	out := v.Clone()
	out.User.Keypairs = append(out.User.Keypairs[:i], out.User.Keypairs[i+1:]...)
	for name, entry := range out.Contents {
		if stripped, removed := entry.WithoutRecipient(id); removed {
			out.Contents[name] = stripped
		}
	}
	return out, nil
}

// InsertContent encrypts plaintext to every registered keypair and stores
// it under name.
func (v *VaultConfig) InsertContent(ctx context.Context, enc Encrypter, name string, plaintext []byte) (*VaultConfig, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, exists := v.Contents[name]; exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNameCollision, name)
	}
	if len(v.User.Keypairs) == 0 {
		return nil, kerrors.ErrNoKeypairs
	}

	entry, err := enc.Encrypt(ctx, plaintext, v.User.Keypairs)
	if err != nil {
		return nil, err
	}
	out := v.Clone()
	out.Contents[name] = *entry
	return out, nil
}

// ReplaceContent returns a vault where the existing entry name is
// replaced wholesale by entry.
func (v *VaultConfig) ReplaceContent(name string, entry envelope.EncryptedContent) (*VaultConfig, error) {
	if _, exists := v.Contents[name]; !exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrEntryNotFound, name)
	}
	out := v.Clone()
	out.Contents[name] = entry.Clone()
	return out, nil
}

// DeleteContent returns a vault without the entry name.
func (v *VaultConfig) DeleteContent(name string) (*VaultConfig, error) {
	if _, exists := v.Contents[name]; !exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrEntryNotFound, name)
	}
	out := v.Clone()
	delete(out.Contents, name)
	return out, nil
}

// Content returns the entry stored under name.
func (v *VaultConfig) Content(name string) (envelope.EncryptedContent, error) {
	entry, ok := v.Contents[name]
	if !ok {
		return envelope.EncryptedContent{}, fmt.Errorf("%w: %s", kerrors.ErrEntryNotFound, name)
	}
	return entry, nil
}

// Names returns the entry names in sorted order.
func (v *VaultConfig) Names() []string {
	names := make([]string, 0, len(v.Contents))
	for name := range v.Contents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keypair returns the keypair bound to credential id.
func (v *VaultConfig) Keypair(id []byte) (keys.WrappedKeypair, bool) {
	i := v.indexOf(id)
	if i < 0 {
		return keys.WrappedKeypair{}, false
	}
	return v.User.Keypairs[i], true
}

// CredentialIDs returns the registered credential ids in registration
// order.
func (v *VaultConfig) CredentialIDs() [][]byte {
	ids := make([][]byte, 0, len(v.User.Keypairs))
	for _, kp := range v.User.Keypairs {
		if id := kp.CredentialID(); id != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Recipients returns the registered keypairs entry name is encrypted to.
// Recipients whose credential was deleted are not included.
func (v *VaultConfig) Recipients(name string) ([]keys.WrappedKeypair, error) {
	entry, err := v.Content(name)
	if err != nil {
		return nil, err
	}
	return envelope.Eligible(entry, v.User.Keypairs), nil
}

// ValidateName rejects empty entry names and names with surrounding
// whitespace or control characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", kerrors.ErrInvalidName)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has leading or trailing whitespace", kerrors.ErrInvalidName, name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains control characters", kerrors.ErrInvalidName, name)
		}
	}
	return nil
}

func (v *VaultConfig) indexOf(id []byte) int {
	if len(id) == 0 {
		return -1
	}
	for i, kp := range v.User.Keypairs {
		if codec.Bytes(kp.CredentialID()).Equal(id) {
			return i
		}
	}
	return -1
}
