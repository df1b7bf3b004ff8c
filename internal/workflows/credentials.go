package workflows

import (
	"context"
	"fmt"

	"github.com/prfvault/prfvault/internal/audit"
	"github.com/prfvault/prfvault/internal/codec"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/vault"
)

// RenameOptions configures the rename workflow.
type RenameOptions struct {
	// Credential is a nickname, credential id or unambiguous id prefix.
	Credential string

	// Nickname is the new label.
	Nickname string
}

// RenameResult contains the outcome of a rename operation.
type RenameResult struct {
	CredentialID []byte
	OldNickname  string
	Nickname     string
}

// Rename changes the nickname stored with a keypair. No ceremony is
// needed.
//
// Returns ErrCredentialNotFound or ErrAmbiguousCredential if the
// reference does not name exactly one keypair.
func Rename(ctx context.Context, opts RenameOptions) (*RenameResult, error) {
	if !utils.IsValidNickname(opts.Nickname) {
		return nil, fmt.Errorf("%w: nickname %q", kerrors.ErrInvalidName, opts.Nickname)
	}

	var result *RenameResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		kp, err := resolveCredential(v, opts.Credential)
		if err != nil {
			return err
		}
		id := kp.CredentialID()

		next, err := v.RenameCredential(id, opts.Nickname)
		if err != nil {
			return err
		}
		if err := env.saveVault(ctx, next); err != nil {
			return err
		}

		entry := audit.LogWithUser("key.rename", env.config)
		entry.Credential = codec.URL(id)
		audit.Log(entry)

		result = &RenameResult{
			CredentialID: id,
			OldNickname:  kp.DisplayName(),
			Nickname:     opts.Nickname,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	// Credential is a nickname, credential id or unambiguous id prefix.
	Credential string
}

// RemoveResult contains the outcome of a remove operation.
type RemoveResult struct {
	CredentialID []byte
	Nickname     string

	// Affected lists entries the credential could decrypt.
	Affected []string

	// Orphaned lists entries no remaining credential can decrypt.
	Orphaned []string
}

// Remove deletes a keypair and strips its wrapped content keys from every
// entry. Entries it was the only recipient of become undecryptable and are
// reported in Orphaned.
func Remove(ctx context.Context, opts RemoveOptions) (*RemoveResult, error) {
	var result *RemoveResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		kp, err := resolveCredential(v, opts.Credential)
		if err != nil {
			return err
		}
		id := kp.CredentialID()

		next, err := v.DeleteCredential(id)
		if err != nil {
			return err
		}

		result = &RemoveResult{CredentialID: id, Nickname: kp.DisplayName()}
		for _, name := range v.Names() {
			if _, ok := v.Contents[name].Recipient(id); !ok {
				continue
			}
			result.Affected = append(result.Affected, name)
			if remaining, _ := next.Recipients(name); len(remaining) == 0 {
				result.Orphaned = append(result.Orphaned, name)
			}
		}

		if err := env.saveVault(ctx, next); err != nil {
			return err
		}

		entry := audit.LogWithUser("key.remove", env.config)
		entry.Credential = codec.URL(id)
		entry.Count = len(result.Affected)
		audit.Log(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// KeyInfo describes one registered keypair.
type KeyInfo struct {
	CredentialID []byte
	Nickname     string

	// Entries is the number of entries the keypair can decrypt.
	Entries int

	// OnDevice is false when the configured authenticator no longer holds
	// the credential.
	OnDevice bool
}

// ListKeysResult contains the registered keypairs in vault order.
type ListKeysResult struct {
	Keys []KeyInfo
}

// ListKeys lists the registered keypairs.
func ListKeys(ctx context.Context) (*ListKeysResult, error) {
	var result *ListKeysResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		result = &ListKeysResult{Keys: make([]KeyInfo, 0, len(v.User.Keypairs))}
		for _, kp := range v.User.Keypairs {
			id := kp.CredentialID()
			info := KeyInfo{
				CredentialID: id,
				Nickname:     kp.DisplayName(),
				OnDevice:     env.device.Has(env.config.RelyingParty.ID, id),
			}
			for _, entry := range v.Contents {
				if _, ok := entry.Recipient(id); ok {
					info.Entries++
				}
			}
			result.Keys = append(result.Keys, info)
		}

		audit.Log(audit.LogWithUser("key.list", env.config))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
