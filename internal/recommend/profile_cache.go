// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"sync"
	"time"

	"github.com/tomtom215/sprout/internal/cache"
)

// generationStripes is the number of invalidation counters. Viewers that
// share a stripe only cost each other a skipped cache fill.
const generationStripes = 64

// ProfileCache holds derived profiles keyed by viewer id. Entries expire
// after the configured TTL and must be invalidated when the viewer records
// a new watch event or quiz outcome.
//
// Every invalidation bumps a generation counter for the viewer. A profile
// aggregated before an invalidation is stale, and PutIfCurrent refuses it.
type ProfileCache struct {
	lru *cache.LRU[int64, *Profile]

	mu   sync.Mutex
	gens [generationStripes]uint64
}

// NewProfileCache creates a profile cache from cfg.
func NewProfileCache(cfg CacheConfig) *ProfileCache {
	return &ProfileCache{lru: cache.NewLRU[int64, *Profile](cfg.MaxEntries, cfg.TTL)}
}

// Get returns the cached profile for viewerID. Cached profiles are shared
// and must not be modified.
func (c *ProfileCache) Get(viewerID int64) (*Profile, bool) {
	return c.lru.Get(viewerID)
}

// Put stores a profile. Degraded profiles are never cached.
func (c *ProfileCache) Put(p *Profile) {
	if p == nil || p.Degraded {
		return
	}
	c.lru.Add(p.ViewerID, p)
}

// Generation returns the invalidation generation for viewerID. Read it
// before aggregating and hand it to PutIfCurrent.
func (c *ProfileCache) Generation(viewerID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[stripe(viewerID)]
}

// PutIfCurrent stores p unless the viewer was invalidated after gen was
// read. It reports whether the profile was cached.
func (c *ProfileCache) PutIfCurrent(p *Profile, gen uint64) bool {
	if p == nil || p.Degraded {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[stripe(p.ViewerID)] != gen {
		return false
	}
	c.lru.Add(p.ViewerID, p)
	return true
}

// Invalidate drops the cached profile for viewerID and advances its
// generation, even when nothing was cached.
func (c *ProfileCache) Invalidate(viewerID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[stripe(viewerID)]++
	return c.lru.Remove(viewerID)
}

func stripe(viewerID int64) uint64 {
	return uint64(viewerID) % generationStripes
}

// PurgeExpired removes every expired profile and returns how many were dropped.
func (c *ProfileCache) PurgeExpired() int {
	return c.lru.CleanupExpired()
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	return c.lru.Len()
}

// setClock overrides the expiry clock.
func (c *ProfileCache) setClock(now func() time.Time) {
	c.lru.SetClock(now)
}
