// Package store persists the serialized vault.
//
// A Store is a byte-string key-value store. The vault is kept under a
// single fixed key, VaultKey, so backends only need Get, Put and Delete.
// Three backends exist:
//
//   - MemoryStore keeps values in process memory
//   - FileStore writes one file per key in a directory
//   - SQLStore keeps a kv table in a SQLite database
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// VaultKey is the key the vault configuration is stored under.
const VaultKey = "vault_config"

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("value not found")

// Store is a byte-string key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a Store held in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("store key is empty")
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Errorf("store key %q contains invalid character %q", key, r)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("store key %q is reserved", key)
	}
	return nil
}
