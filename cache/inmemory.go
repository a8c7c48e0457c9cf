package cache

import (
	"context"
	"sync"
	"time"

	"splitledger-backend/ledger"
)

type entry struct {
	dashboard ledger.Dashboard
	expires   time.Time
}

// InMemoryCache is a process-local DashboardCache used when no redis address
// is configured.
type InMemoryCache struct {
	mu          sync.Mutex
	entries     map[string]entry
	generations map[string]uint64
	ttl         time.Duration
	now         func() time.Time
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries:     make(map[string]entry),
		generations: make(map[string]uint64),
		ttl:         ttl,
		now:         time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, userID string) (ledger.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key(userID)]
	if !ok {
		return ledger.Dashboard{}, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key(userID))
		return ledger.Dashboard{}, false, nil
	}
	return e.dashboard, true, nil
}

func (c *InMemoryCache) Generation(_ context.Context, userID string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID], nil
}

func (c *InMemoryCache) Set(_ context.Context, userID string, generation uint64, dashboard ledger.Dashboard) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != generation {
		return false, nil
	}
	c.entries[key(userID)] = entry{dashboard: dashboard, expires: c.now().Add(c.ttl)}
	return true, nil
}

func (c *InMemoryCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		c.generations[id]++
		delete(c.entries, key(id))
	}
	return nil
}
