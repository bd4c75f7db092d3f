package audio

import (
	"sync"
	"time"

	"go-siren/types"
)

// SignalCache holds the latest on-chain signal set for proximity lookups.
// A cron job refreshes it so audio alerts never block on a chain view call.
type SignalCache struct {
	mu        sync.RWMutex
	signals   []types.Signal
	updatedAt time.Time
}

func NewSignalCache() *SignalCache {
	return &SignalCache{}
}

func (c *SignalCache) Set(signals []types.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = signals
	c.updatedAt = time.Now()
}

func (c *SignalCache) Signals() []types.Signal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Signal, len(c.signals))
	copy(out, c.signals)
	return out
}

func (c *SignalCache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
