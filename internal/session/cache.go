package session

import (
	"sync"
	"time"

	"github.com/wecare-dev/wecare/internal/user"
)

// userCache is a small read-through cache in front of the user store. The
// resolver re-fetches the user on every request so role changes take effect
// immediately; the cache bounds that load without giving up much freshness.
// Writes that change authorization (role updates, deactivation) must call
// Invalidate.
type userCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	u       *user.User
	staleAt time.Time
}

func newUserCache(ttl time.Duration) *userCache {
	return &userCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *userCache) get(publicID string) (*user.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[publicID]
	if !ok || time.Now().After(e.staleAt) {
		return nil, false
	}
	return e.u, true
}

func (c *userCache) put(u *user.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[u.PublicID] = cacheEntry{u: u, staleAt: time.Now().Add(c.ttl)}
}

func (c *userCache) invalidate(publicID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, publicID)
}
