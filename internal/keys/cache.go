package keys

import (
	"context"
	"crypto/ecdh"
	"sync"
	"time"

	"github.com/prfvault/prfvault/internal/codec"
)

// MaxSessionTTL bounds how long an unlocked private key may be reused.
const MaxSessionTTL = 5 * time.Minute

// CachingUnbinder remembers unlocked private keys for a short TTL so that
// several entries can be decrypted with one authenticator touch. A zero TTL
// disables caching.
type CachingUnbinder struct {
	Next KeyUnlocker
	TTL  time.Duration

	mu      sync.Mutex
	entries map[string]cachedKey
	now     func() time.Time
}

type cachedKey struct {
	id      []byte
	key     *ecdh.PrivateKey
	expires time.Time
}

// NewCachingUnbinder wraps next. The TTL is clamped to MaxSessionTTL.
func NewCachingUnbinder(next KeyUnlocker, ttl time.Duration) *CachingUnbinder {
	if ttl > MaxSessionTTL {
		ttl = MaxSessionTTL
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachingUnbinder{Next: next, TTL: ttl, now: time.Now}
}

// Unbind returns a cached key for any candidate that is still fresh, and
// otherwise delegates to the wrapped unlocker.
func (c *CachingUnbinder) Unbind(ctx context.Context, candidates []WrappedKeypair) ([]byte, *ecdh.PrivateKey, error) {
	if c.TTL <= 0 {
		return c.Next.Unbind(ctx, candidates)
	}

	c.mu.Lock()
	now := c.clock()
	for k, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, k)
		}
	}
	for _, kp := range candidates {
		if entry, ok := c.entries[codec.URL(kp.CredentialID())]; ok {
			c.mu.Unlock()
			return append([]byte(nil), entry.id...), entry.key, nil
		}
	}
	c.mu.Unlock()

	id, key, err := c.Next.Unbind(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cachedKey)
	}
	c.entries[codec.URL(id)] = cachedKey{
		id:      append([]byte(nil), id...),
		key:     key,
		expires: c.clock().Add(c.TTL),
	}
	return id, key, nil
}

// Forget drops every cached key.
func (c *CachingUnbinder) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

func (c *CachingUnbinder) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
