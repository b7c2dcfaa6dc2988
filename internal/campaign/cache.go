package campaign

import (
	"sync"
	"time"
)

// viewCache holds assembled campaign views for a short time. Entries are
// dropped early when a campaign.invalidated event names them. Expired
// entries are evicted on read and swept from put at most once per ttl.
type viewCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]cachedView
	now       func() time.Time
	lastSweep time.Time
}

type cachedView struct {
	view      CampaignResponse
	expiresAt time.Time
}

func newViewCache(ttl time.Duration) *viewCache {
	return &viewCache{
		ttl:     ttl,
		entries: make(map[string]cachedView),
		now:     time.Now,
	}
}

func (c *viewCache) get(id string) (CampaignResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return CampaignResponse{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, id)
		return CampaignResponse{}, false
	}
	return e.view, true
}

func (c *viewCache) put(view CampaignResponse) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweep(now)
	}
	c.entries[view.ID] = cachedView{view: view, expiresAt: now.Add(c.ttl)}
}

// sweep must be called with mu held.
func (c *viewCache) sweep(now time.Time) {
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
	c.lastSweep = now
}

func (c *viewCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *viewCache) drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
