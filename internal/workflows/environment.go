package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prfvault/prfvault/internal/authenticator"
	"github.com/prfvault/prfvault/internal/authenticator/softkey"
	"github.com/prfvault/prfvault/internal/codec"
	"github.com/prfvault/prfvault/internal/configs"
	"github.com/prfvault/prfvault/internal/envelope"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/keys"
	"github.com/prfvault/prfvault/internal/provider"
	"github.com/prfvault/prfvault/internal/store"
	"github.com/prfvault/prfvault/internal/utils"
	"github.com/prfvault/prfvault/internal/vault"
)

// Presence confirms user presence before every ceremony when
// authenticator.presence is "prompt". The CLI may replace it.
var Presence softkey.Presence = PromptPresence

// PromptPresence asks the user to press Enter on the terminal. Ctrl-D
// cancels the ceremony.
func PromptPresence(ctx context.Context, prompt string) error {
	if err := utils.WriteToTTY(prompt + " (Enter to continue, Ctrl-D to cancel) "); err != nil {
		return err
	}
	err := utils.WaitForEnterFromTTY(ctx)
	if errors.Is(err, utils.ErrInputClosed) {
		return kerrors.ErrCancelled
	}
	return err
}

// memoryStore backs the memory backend for the life of the process.
var memoryStore = store.NewMemoryStore()

// environment is everything a workflow needs to act on the vault.
type environment struct {
	config   *configs.Config
	provider provider.Provider
	store    store.Store
	closer   io.Closer
	device   *softkey.Device
	binder   *keys.Binder
	unlocker keys.KeyUnlocker
	cipher   *envelope.Cipher
}

// openEnvironment loads the config and wires the store, authenticator and
// cipher it selects.
func openEnvironment(ctx context.Context) (*environment, error) {
	config, err := configs.Ensure()
	if err != nil {
		return nil, err
	}

	env := &environment{config: config, provider: provider.New()}

	if err := env.openStore(ctx); err != nil {
		return nil, err
	}
	if err := env.openAuthenticator(); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *environment) openStore(ctx context.Context) error {
	switch e.config.Store.Backend {
	case configs.BackendMemory:
		e.store = memoryStore
	case configs.BackendFile:
		fs, err := store.NewFileStore(e.config.Store.Path)
		if err != nil {
			return fmt.Errorf("opening file store: %w", err)
		}
		e.store = fs
	case configs.BackendSQLite:
		s, err := store.OpenSQLite(ctx, e.config.Store.Path)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		e.store = s
		e.closer = s
	default:
		return fmt.Errorf("unknown store backend %q", e.config.Store.Backend)
	}
	return nil
}

func (e *environment) openAuthenticator() error {
	opts := []softkey.Option{softkey.WithPRFAtCreate(e.config.Authenticator.PRFAtCreate)}
	if e.config.Authenticator.Presence == configs.PresencePrompt {
		opts = append(opts, softkey.WithPresence(Presence))
	}

	device, err := softkey.Open(e.config.Authenticator.Device, opts...)
	if err != nil {
		return err
	}
	e.device = device

	rp := authenticator.RelyingParty{ID: e.config.RelyingParty.ID, Name: e.config.RelyingParty.Name}
	e.binder = &keys.Binder{Provider: e.provider, Authenticator: device, RP: rp}

	var unlocker keys.KeyUnlocker = &keys.Unbinder{Provider: e.provider, Authenticator: device, RPID: rp.ID}
	ttl, err := e.config.Session.Duration()
	if err != nil {
		return err
	}
	if ttl > 0 {
		unlocker = keys.NewCachingUnbinder(unlocker, ttl)
	}
	e.unlocker = unlocker
	e.cipher = &envelope.Cipher{Provider: e.provider, Unlocker: unlocker}
	return nil
}

// Close releases the store and forgets any cached keys.
func (e *environment) Close() error {
	if c, ok := e.unlocker.(*keys.CachingUnbinder); ok {
		c.Forget()
	}
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// loadVault reads the persisted vault. A missing vault is
// ErrVaultNotInitialized.
func (e *environment) loadVault(ctx context.Context) (*vault.VaultConfig, error) {
	data, err := e.store.Get(ctx, store.VaultKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, kerrors.ErrVaultNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault: %w", err)
	}
	return vault.Unmarshal(data)
}

// vaultExists reports whether a vault has been persisted.
func (e *environment) vaultExists(ctx context.Context) (bool, error) {
	_, err := e.store.Get(ctx, store.VaultKey)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading vault: %w", err)
	}
	return true, nil
}

// saveVault persists v, replacing the previous snapshot.
func (e *environment) saveVault(ctx context.Context, v *vault.VaultConfig) error {
	data, err := vault.Marshal(v)
	if err != nil {
		return err
	}
	if err := e.store.Put(ctx, store.VaultKey, data); err != nil {
		return fmt.Errorf("writing vault: %w", err)
	}
	return nil
}

// withVault opens the environment and loads the vault for fn.
func withVault(ctx context.Context, fn func(env *environment, v *vault.VaultConfig) error) error {
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	v, err := env.loadVault(ctx)
	if err != nil {
		return err
	}
	return fn(env, v)
}

func userOf(v *vault.VaultConfig) authenticator.User {
	return authenticator.User{
		Name:        v.User.Username,
		DisplayName: v.User.Username,
		Handle:      v.User.UserHandle,
	}
}

// resolveCredential finds the keypair ref names: a nickname, a full
// base64url credential id or an unambiguous prefix of one.
func resolveCredential(v *vault.VaultConfig, ref string) (keys.WrappedKeypair, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return keys.WrappedKeypair{}, fmt.Errorf("%w: empty credential reference", kerrors.ErrCredentialNotFound)
	}

	var byName, byPrefix []keys.WrappedKeypair
	for _, kp := range v.User.Keypairs {
		id := codec.URL(kp.CredentialID())
		if id == ref {
			return kp, nil
		}
		if kp.Nickname != nil && *kp.Nickname == ref {
			byName = append(byName, kp)
		}
		if strings.HasPrefix(id, ref) {
			byPrefix = append(byPrefix, kp)
		}
	}

	switch {
	case len(byName) == 1:
		return byName[0], nil
	case len(byName) > 1:
		return keys.WrappedKeypair{}, fmt.Errorf("%w: %d credentials are named %q", kerrors.ErrAmbiguousCredential, len(byName), ref)
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return keys.WrappedKeypair{}, fmt.Errorf("%w: %q matches %d credential ids", kerrors.ErrAmbiguousCredential, ref, len(byPrefix))
	}
	return keys.WrappedKeypair{}, fmt.Errorf("%w: %q", kerrors.ErrCredentialNotFound, ref)
}

func nicknames(v *vault.VaultConfig) []string {
	var names []string
	for _, kp := range v.User.Keypairs {
		if kp.Nickname != nil {
			names = append(names, *kp.Nickname)
		}
	}
	return names
}

func displayNames(kps []keys.WrappedKeypair) []string {
	names := make([]string, len(kps))
	for i, kp := range kps {
		names[i] = kp.DisplayName()
	}
	return names
}
