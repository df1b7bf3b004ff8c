package workflows

import (
	"context"

	"github.com/prfvault/prfvault/internal/audit"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/vault"
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	// Data is a vault previously written by Export.
	Data []byte

	// Force replaces an existing vault.
	Force bool
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	Username string
	Keypairs int
	Entries  int

	// Replaced is true when an existing vault was overwritten.
	Replaced bool
}

// Import validates a serialized vault and persists it as the current one.
//
// Returns ErrSerialization if the data is not a valid vault.
// Returns ErrVaultAlreadyInitialized if a vault exists and Force is false.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	v, err := vault.Unmarshal(opts.Data)
	if err != nil {
		return nil, err
	}

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

	if err := env.saveVault(ctx, v); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser("vault.import", env.config)
	entry.Count = len(v.Contents)
	entry.Backend = env.config.Store.Backend
	audit.Log(entry)

	return &ImportResult{
		Username: v.User.Username,
		Keypairs: len(v.User.Keypairs),
		Entries:  len(v.Contents),
		Replaced: exists,
	}, nil
}
