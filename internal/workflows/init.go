package workflows

import (
	"context"

	"github.com/prfvault/prfvault/internal/audit"
	"github.com/prfvault/prfvault/internal/configs"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/vault"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Username names the vault owner. Defaults to the OS user.
	Username string

	// Force replaces an existing vault. Its entries become unreachable.
	Force bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// Username is the vault owner.
	Username string

	// Backend and StorePath describe where the vault was written.
	Backend   string
	StorePath string

	// Replaced is true when an existing vault was overwritten.
	Replaced bool
}

// Init creates an empty vault with a fresh user handle.
//
// Returns ErrVaultAlreadyInitialized if a vault exists and Force is false.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	env, err := openEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	exists, err := env.vaultExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists && !opts.Force {
		return nil, kerrors.ErrVaultAlreadyInitialized
	}

	username := opts.Username
	if username == "" {
		username = configs.Paths.Username
	}

	v, err := vault.New(env.provider, username)
	if err != nil {
		return nil, err
	}
	if err := env.saveVault(ctx, v); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser("vault.init", env.config)
	entry.Backend = env.config.Store.Backend
	audit.Log(entry)

	return &InitResult{
		Username:  username,
		Backend:   env.config.Store.Backend,
		StorePath: env.config.Store.Path,
		Replaced:  exists,
	}, nil
}
