package workflows

import (
	"context"
	"fmt"

	"github.com/prfvault/prfvault/internal/audit"
	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/provider"
	"github.com/prfvault/prfvault/internal/vault"
)

// InsertOptions configures the insert workflow.
type InsertOptions struct {
	// Name is the entry name.
	Name string

	// Content is the plaintext to encrypt.
	Content []byte

	// Replace overwrites an existing entry instead of failing with
	// ErrNameCollision.
	Replace bool
}

// InsertResult contains the outcome of an insert operation.
type InsertResult struct {
	Name string

	// Recipients lists the keypairs the entry was encrypted to.
	Recipients []string

	// Replaced is true when an existing entry was overwritten.
	Replaced bool
}

// Insert encrypts content to every registered keypair and stores it.
// No ceremony is needed.
//
// Returns ErrInvalidName, ErrNameCollision or ErrNoKeypairs.
func Insert(ctx context.Context, opts InsertOptions) (*InsertResult, error) {
	var result *InsertResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		_, exists := v.Contents[opts.Name]

		var next *vault.VaultConfig
		var err error
		if exists && opts.Replace {
			if len(v.User.Keypairs) == 0 {
				return kerrors.ErrNoKeypairs
			}
			entry, encErr := env.cipher.Encrypt(ctx, opts.Content, v.User.Keypairs)
			if encErr != nil {
				return encErr
			}
			next, err = v.ReplaceContent(opts.Name, *entry)
		} else {
			next, err = v.InsertContent(ctx, env.cipher, opts.Name, opts.Content)
		}
		if err != nil {
			return err
		}
		if err := env.saveVault(ctx, next); err != nil {
			return err
		}

		recipients, _ := next.Recipients(opts.Name)
		entry := audit.LogWithUser("vault.insert", env.config)
		entry.Entry = opts.Name
		entry.RecipientsCount = len(recipients)
		audit.Log(entry)

		result = &InsertResult{
			Name:       opts.Name,
			Recipients: displayNames(recipients),
			Replaced:   exists,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ShowOptions configures the show workflow.
type ShowOptions struct {
	Name string
}

// ShowResult contains a decrypted entry.
type ShowResult struct {
	Name    string
	Content []byte
}

// Show decrypts an entry with one authenticator ceremony.
//
// Returns ErrEntryNotFound if there is no such entry.
// Returns ErrNoEligibleRecipient without a ceremony if no registered
// keypair is a recipient.
func Show(ctx context.Context, opts ShowOptions) (*ShowResult, error) {
	var result *ShowResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		entry, err := v.Content(opts.Name)
		if err != nil {
			return err
		}

		content, err := env.cipher.Decrypt(ctx, entry, v.User.Keypairs)
		if err != nil {
			return err
		}

		audited := audit.LogWithUser("vault.show", env.config)
		audited.Entry = opts.Name
		audit.Log(audited)

		result = &ShowResult{Name: opts.Name, Content: content}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	Name string
}

// DeleteResult contains the outcome of a delete operation.
type DeleteResult struct {
	Name string
}

// Delete removes an entry. No ceremony is needed.
func Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		next, err := v.DeleteContent(opts.Name)
		if err != nil {
			return err
		}
		if err := env.saveVault(ctx, next); err != nil {
			return err
		}

		entry := audit.LogWithUser("vault.delete", env.config)
		entry.Entry = opts.Name
		audit.Log(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Name: opts.Name}, nil
}

// ReencryptOptions configures the reencrypt workflow.
type ReencryptOptions struct {
	// Names lists the entries to re-encrypt.
	Names []string

	// All re-encrypts every entry. Names is ignored.
	All bool
}

// ReencryptedEntry describes one re-encrypted entry.
type ReencryptedEntry struct {
	Name   string
	Before int
	After  int
}

// ReencryptResult contains the outcome of a reencrypt operation.
type ReencryptResult struct {
	Entries []ReencryptedEntry

	// Skipped lists entries no registered keypair can decrypt.
	Skipped []string
}

// Reencrypt decrypts entries and encrypts them again to every registered
// keypair, giving newly registered authenticators access. Each entry costs
// one ceremony unless session.ttl lets the unlocked key be reused.
//
// With All, entries no keypair can decrypt are skipped and reported. A
// named entry that can't be decrypted fails the whole operation and
// nothing is written.
func Reencrypt(ctx context.Context, opts ReencryptOptions) (*ReencryptResult, error) {
	var result *ReencryptResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		if len(v.User.Keypairs) == 0 {
			return kerrors.ErrNoKeypairs
		}

		names := opts.Names
		if opts.All {
			names = v.Names()
		}
		if !opts.All && len(names) == 0 {
			return fmt.Errorf("%w: no entries selected", kerrors.ErrEntryNotFound)
		}

		result = &ReencryptResult{}
		next := v
		for _, name := range names {
			entry, err := v.Content(name)
			if err != nil {
				return err
			}
			before, _ := v.Recipients(name)
			if opts.All && len(before) == 0 {
				result.Skipped = append(result.Skipped, name)
				continue
			}

			plaintext, err := env.cipher.Decrypt(ctx, entry, v.User.Keypairs)
			if err != nil {
				return fmt.Errorf("decrypting %s: %w", name, err)
			}
			sealed, err := env.cipher.Encrypt(ctx, plaintext, v.User.Keypairs)
			provider.Zero(plaintext)
			if err != nil {
				return fmt.Errorf("encrypting %s: %w", name, err)
			}

			next, err = next.ReplaceContent(name, *sealed)
			if err != nil {
				return err
			}
			result.Entries = append(result.Entries, ReencryptedEntry{
				Name:   name,
				Before: len(before),
				After:  len(sealed.Recipients),
			})
		}

		if len(result.Entries) > 0 {
			if err := env.saveVault(ctx, next); err != nil {
				return err
			}
		}

		for _, e := range result.Entries {
			entry := audit.LogWithUser("vault.reencrypt", env.config)
			entry.Entry = e.Name
			entry.RecipientsCount = e.After
			audit.Log(entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EntryInfo describes one stored entry.
type EntryInfo struct {
	Name string

	// Recipients lists the registered keypairs that can decrypt the entry.
	Recipients []string
}

// Undecryptable reports whether no registered keypair can decrypt the
// entry.
func (e EntryInfo) Undecryptable() bool {
	return len(e.Recipients) == 0
}

// ListResult contains the stored entries in name order.
type ListResult struct {
	Entries []EntryInfo
}

// List lists the stored entries and who can decrypt them. No ceremony is
// needed.
func List(ctx context.Context) (*ListResult, error) {
	var result *ListResult
	err := withVault(ctx, func(env *environment, v *vault.VaultConfig) error {
		result = &ListResult{Entries: make([]EntryInfo, 0, len(v.Contents))}
		for _, name := range v.Names() {
			recipients, _ := v.Recipients(name)
			result.Entries = append(result.Entries, EntryInfo{
				Name:       name,
				Recipients: displayNames(recipients),
			})
		}

		entry := audit.LogWithUser("vault.list", env.config)
		entry.Count = len(result.Entries)
		audit.Log(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
