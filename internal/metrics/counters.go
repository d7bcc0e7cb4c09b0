package metrics

import "sync"

// Counters keeps per-worker-process totals for the admin stats endpoint
// and for tests.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCounters() *Counters {
	return &Counters{counts: map[string]int64{
		EventProcessed:   0,
		ShopFound:        0,
		MessageGenerated: 0,
		CacheHit:         0,
		CacheMiss:        0,
		CacheEviction:    0,
		VisitSimulated:   0,
		Error:            0,
	}}
}

func (c *Counters) Record(event string, _ map[string]any) {
	switch event {
	case ProcessingStart, ProcessingEnd:
		return // timing events, handled by the Latency sink
	}
	c.mu.Lock()
	c.counts[event]++
	c.mu.Unlock()
}

// Get returns the current total for one event name.
func (c *Counters) Get(event string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[event]
}

// Snapshot returns a copy of all totals.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
