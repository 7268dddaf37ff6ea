package toolrunner

import (
	"context"
	"sync"
	"time"
)

const (
	availabilityTTL     = 5 * time.Minute
	checkCmdCeiling     = 15 * time.Second
)

// availabilityCache memoizes per-tool availability with a TTL, deduplicating
// concurrent refreshes the way internal/providers/bedrock/discovery.go's
// package-level cache does — except this one lives on the Runner instance,
// not a package global, so two Runners in the same process never share state.
type availabilityCache struct {
	mu        sync.RWMutex
	results   map[string]bool
	expiresAt time.Time
	inFlight  chan struct{}
}

func (c *availabilityCache) snapshot() (map[string]bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Now().Before(c.expiresAt) && c.results != nil {
		out := make(map[string]bool, len(c.results))
		for k, v := range c.results {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

// refresh runs refreshFn at most once per TTL window; concurrent callers
// during an in-flight refresh wait on it instead of triggering another.
func (c *availabilityCache) refresh(ctx context.Context, refreshFn func(context.Context) map[string]bool) map[string]bool {
	if cached, ok := c.snapshot(); ok {
		return cached
	}

	c.mu.Lock()
	if time.Now().Before(c.expiresAt) && c.results != nil {
		defer c.mu.Unlock()
		out := make(map[string]bool, len(c.results))
		for k, v := range c.results {
			out[k] = v
		}
		return out
	}
	if c.inFlight != nil {
		inFlight := c.inFlight
		c.mu.Unlock()
		select {
		case <-inFlight:
			cached, _ := c.snapshot()
			return cached
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
