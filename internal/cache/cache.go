// Package cache keeps fetched payloads per stamp until their TTL runs out.
// Staleness is swept lazily on lookup; there is no background timer.
package cache

import (
	"sync"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

// Entry is one stored payload. Stale once now > StoredAt+TTL.
type Entry struct {
	Stamp    string
	StoredAt time.Time
	TTL      time.Duration
	Payload  domain.Payload
}

func (e Entry) stale(now time.Time) bool {
	return now.After(e.StoredAt.Add(e.TTL))
}

// Cache holds at most one entry per stamp. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]Entry
}

func New(clk clock.Clock) *Cache {
	return &Cache{
		clock:   clk,
		entries: make(map[string]Entry),
	}
}

// Store inserts or replaces the entry for stamp, restarting its TTL.
func (c *Cache) Store(stamp string, ttl time.Duration, payload domain.Payload) {
	if payload == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[stamp] = Entry{
		Stamp:    stamp,
		StoredAt: c.clock.Now(),
		TTL:      ttl,
		Payload:  payload.Clone(),
	}
}

// Has sweeps stale entries and reports whether stamp is still live.
func (c *Cache) Has(stamp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(c.clock.Now())
	_, ok := c.entries[stamp]
	return ok
}

// Get returns a copy of the payload for stamp. It does not sweep; call Has
// first or use Lookup. A missing stamp is ErrCacheMiss.
func (c *Cache) Get(stamp string) (domain.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[stamp]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return e.Payload.Clone(), nil
}

// Lookup sweeps and reads in one step.
func (c *Cache) Lookup(stamp string) (domain.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(c.clock.Now())
	e, ok := c.entries[stamp]
	if !ok {
		return nil, false
	}
	return e.Payload.Clone(), true
}

// EvictStale drops every entry stale at now and returns how many went.
func (c *Cache) EvictStale(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked(now)
}

func (c *Cache) evictLocked(now time.Time) int {
	removed := 0
	for stamp, e := range c.entries {
		if e.stale(now) {
			delete(c.entries, stamp)
			removed++
		}
	}
	return removed
}

// Len counts entries, stale ones included until the next sweep.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
