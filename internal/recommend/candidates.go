// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// CandidateGenerator fetches the eligible content pool and applies the
// hard eligibility filters before scoring.
type CandidateGenerator struct {
	store  Store
	config CandidateConfig

	// rng shuffles the pool. Protected by rngMu for concurrent access.
	rng   *rand.Rand
	rngMu *sync.Mutex
}

// NewCandidateGenerator creates a generator. rng and mu are shared with the
// owning engine so a single seed governs every shuffle.
func NewCandidateGenerator(store Store, cfg CandidateConfig, rng *rand.Rand, mu *sync.Mutex) *CandidateGenerator {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &CandidateGenerator{store: store, config: cfg, rng: rng, rngMu: mu}
}

// Generate returns a shuffled pool of at most PoolSize items passing every
// eligibility filter. Store failures are returned as *StoreError.
//
//nolint:gocritic // hugeParam: viewer passed by value for immutability
func (g *CandidateGenerator) Generate(ctx context.Context, viewer Viewer, mode Mode, now time.Time) ([]ContentItem, error) {
	since := now.Add(-g.config.RecentWatchWindow)
	items, err := g.store.EligibleContent(ctx, CandidateQuery{
		MinSafety:    g.config.MinSafety,
		AgeBand:      viewer.AgeBand,
		ContentType:  mode.ContentType(),
		ViewerID:     viewer.ID,
		WatchedSince: since,
		Limit:        g.config.FetchLimit,
		Seed:         g.sampleSeed(),
	})
	if err != nil {
		return nil, storeError("candidates", err)
	}

	// The store already excludes recent watches; the lookup here keeps the
	// rule enforced for stores that ignore the exclusion fields.
	watchedIDs, err := g.store.WatchedSince(ctx, viewer.ID, since)
	if err != nil {
		return nil, storeError("recent_watches", err)
	}
	watched := make(map[int64]struct{}, len(watchedIDs))
	for _, id := range watchedIDs {
		watched[id] = struct{}{}
	}

	pool := g.filter(items, viewer, mode, watched)
	g.shuffle(pool)
	if len(pool) > g.config.PoolSize {
		pool = pool[:g.config.PoolSize]
	}
	return pool, nil
}

// filter applies the eligibility rules in order: safety and approval,
// age band, mode, recent watches. The input slice is not modified.
//
//nolint:gocritic // hugeParam: viewer passed by value for immutability
func (g *CandidateGenerator) filter(items []ContentItem, viewer Viewer, mode Mode, watched map[int64]struct{}) []ContentItem {
	want := mode.ContentType()
	out := make([]ContentItem, 0, len(items))
	for i := range items {
		item := &items[i]
		if !item.Approved || item.SafetyScore < g.config.MinSafety {
			continue
		}
		if viewer.AgeBand.IsSet() && item.AgeBand.IsSet() && item.AgeBand != viewer.AgeBand {
			continue
		}
		if want != ContentTypeUnset && item.ContentType != want {
			continue
		}
		if _, seen := watched[item.ID]; seen {
			continue
		}
		out = append(out, *item)
	}
	return out
}

// sampleSeed draws the seed for the store-side sample from the shared rng.
func (g *CandidateGenerator) sampleSeed() int64 {
	if g.rng == nil {
		return 0
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.rng.Int63()
}

func (g *CandidateGenerator) shuffle(items []ContentItem) {
	if g.rng == nil {
		return
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	g.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
