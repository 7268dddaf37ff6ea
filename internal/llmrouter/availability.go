package llmrouter

import (
	"context"
	"sync"
	"time"
)

const (
	availabilityTTL = 5 * time.Minute
	checkCmdCeiling = 10 * time.Second
)

// availabilityCache memoizes per-backend availability with a TTL and
// deduplicates concurrent refreshes, the same pattern
// internal/toolrunner.availabilityCache uses, duplicated here rather than
// shared because the two packages' probe functions and ceilings differ and
// neither should import the other for a ten-line cache.
type availabilityCache struct {
	mu        sync.RWMutex
	results   map[string]bool
	expiresAt time.Time
	inFlight  chan struct{}
}

func (c *availabilityCache) refresh(ctx context.Context, refreshFn func(context.Context) map[string]bool) map[string]bool {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) && c.results != nil {
		out := cloneBoolMap(c.results)
		c.mu.RUnlock()
		return out
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if time.Now().Before(c.expiresAt) && c.results != nil {
		defer c.mu.Unlock()
		return cloneBoolMap(c.results)
	}
	if c.inFlight != nil {
		inFlight := c.inFlight
		c.mu.Unlock()
		select {
		case <-inFlight:
			c.mu.RLock()
			defer c.mu.RUnlock()
			return cloneBoolMap(c.results)
		case <-ctx.Done():
			return nil
		}
	}
	c.inFlight = make(chan struct{})
	c.mu.Unlock()

	results := refreshFn(ctx)

	c.mu.Lock()
	c.results = results
	c.expiresAt = time.Now().Add(availabilityTTL)
	close(c.inFlight)
	c.inFlight = nil
	c.mu.Unlock()

	return results
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
