package vault

import (
	"encoding/json"
	"fmt"

	"github.com/prfvault/prfvault/internal/codec"
	"github.com/prfvault/prfvault/internal/envelope"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/keys"
)

// Marshal serializes v as JSON.
func Marshal(v *VaultConfig) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding vault: %v", kerrors.ErrSerialization, err)
	}
	return data, nil
}

// MarshalIndent serializes v as indented JSON for export.
func MarshalIndent(v *VaultConfig) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding vault: %v", kerrors.ErrSerialization, err)
	}
	return data, nil
}

// Unmarshal parses and validates a serialized vault.
func Unmarshal(data []byte) (*VaultConfig, error) {
	var v VaultConfig
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: decoding vault: %v", kerrors.ErrSerialization, err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if v.User.Keypairs == nil {
		v.User.Keypairs = []keys.WrappedKeypair{}
	}
	if v.Contents == nil {
		v.Contents = map[string]envelope.EncryptedContent{}
	}
	return &v, nil
}

// Validate checks the structural invariants of v.
func (v *VaultConfig) Validate() error {
	if v.Version != Version {
		return fmt.Errorf("%w: unsupported vault version %d", kerrors.ErrSerialization, v.Version)
	}
	if v.User.Version != Version {
		return fmt.Errorf("%w: unsupported user version %d", kerrors.ErrSerialization, v.User.Version)
	}
	if len(v.User.UserHandle) == 0 {
		return fmt.Errorf("%w: vault has no user handle", kerrors.ErrSerialization)
	}

	seen := make(map[string]bool, len(v.User.Keypairs))
	for i, kp := range v.User.Keypairs {
		meta, err := kp.Metadata()
		if err != nil {
			return fmt.Errorf("keypair %d: %w", i, err)
		}
		id := codec.URL(meta.CredentialID)
		if seen[id] {
			return fmt.Errorf("%w: credential %s is registered twice", kerrors.ErrSerialization, codec.Abbrev(meta.CredentialID, 12))
		}
		seen[id] = true
	}

	for name, entry := range v.Contents {
		if name == "" {
			return fmt.Errorf("%w: entry with an empty name", kerrors.ErrSerialization)
		}
		for _, r := range entry.Recipients {
			if len(r.CredentialID) == 0 {
				return fmt.Errorf("%w: entry %q has a recipient without credential id", kerrors.ErrSerialization, name)
			}
		}
	}
	return nil
}
