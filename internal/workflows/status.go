package workflows

import (
	"context"
	"errors"
	"time"

	kerrors "github.com/prfvault/prfvault/internal/errors"
)

// StatusResult describes the configured vault.
type StatusResult struct {
	// Initialized is false when no vault has been persisted yet. The
	// vault fields are zero in that case.
	Initialized bool

	Username     string
	RelyingParty string
	Backend      string
	StorePath    string
	DevicePath   string
	SessionTTL   time.Duration

	// Keypairs and Entries count the vault contents.
	Keypairs int
	Entries  int

	// DeviceCredentials counts credentials the authenticator holds for
	// the relying party.
	DeviceCredentials int

	// Undecryptable lists entries no registered keypair can decrypt.
	Undecryptable []string
}

// Status reports on the configured vault without any ceremony.
func Status(ctx context.Context) (*StatusResult, error) {
	env, err := openEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	ttl, _ := env.config.Session.Duration()
	result := &StatusResult{
		RelyingParty:      env.config.RelyingParty.ID,
		Backend:           env.config.Store.Backend,
		StorePath:         env.config.Store.Path,
		DevicePath:        env.config.Authenticator.Device,
		SessionTTL:        ttl,
		DeviceCredentials: env.device.Count(env.config.RelyingParty.ID),
	}

	v, err := env.loadVault(ctx)
	if errors.Is(err, kerrors.ErrVaultNotInitialized) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Initialized = true
	result.Username = v.User.Username
	result.Keypairs = len(v.User.Keypairs)
	result.Entries = len(v.Contents)
	for _, name := range v.Names() {
		if recipients, _ := v.Recipients(name); len(recipients) == 0 {
			result.Undecryptable = append(result.Undecryptable, name)
		}
	}
	return result, nil
}
