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

// RegisterOptions configures the register workflow.
type RegisterOptions struct {
	// Nickname labels the new credential. If empty, one is derived from
	// the hostname.
	Nickname string
}

// RegisterResult contains the outcome of a register operation.
type RegisterResult struct {
	// CredentialID is the id of the newly registered credential.
	CredentialID []byte

	// Nickname is the label stored with the keypair.
	Nickname string

	// Keypairs is the number of keypairs in the vault afterwards.
	Keypairs int
}

// Register creates a credential on the authenticator and binds a new
// keypair to it.
//
// Existing entries are not re-encrypted; run Reencrypt to give the new
// credential access to them.
//
// Returns ErrInvalidName if the nickname is not usable.
// Returns ErrAlreadyRegistered if the authenticator already holds one of
// the vault's credentials.
func Register(ctx context.Context, opts RegisterOptions) (*RegisterResult, error) {
	var result *RegisterResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		nickname := opts.Nickname
		if nickname == "" {
			nickname = utils.GenerateNickname(env.config.Authenticator.Kind, nicknames(v))
		}
		if !utils.IsValidNickname(nickname) {
			return fmt.Errorf("%w: nickname %q", kerrors.ErrInvalidName, nickname)
		}

		kp, err := env.binder.Bind(ctx, userOf(v), v.CredentialIDs())
		if err != nil {
			return err
		}

		next, err := v.AddKeypair(kp.WithNickname(nickname))
		if err != nil {
			return err
		}
		if err := env.saveVault(ctx, next); err != nil {
			return err
		}

		id := kp.CredentialID()
		entry := audit.LogWithUser("key.register", env.config)
		entry.Credential = codec.URL(id)
		audit.Log(entry)

		result = &RegisterResult{
			CredentialID: id,
			Nickname:     nickname,
			Keypairs:     len(next.User.Keypairs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
