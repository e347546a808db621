// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package memstore

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/sprout/internal/recommend"
)

// largeCatalog holds n eligible educational items with ids 1..n.
func largeCatalog(t *testing.T, n int64) *Store {
	t.Helper()
	ctx := context.Background()
	s := New()
	if err := s.AddViewer(ctx, recommend.Viewer{ID: 1, AgeBand: recommend.AgeBandChild}); err != nil {
		t.Fatalf("AddViewer() error = %v", err)
	}
	for id := int64(1); id <= n; id++ {
		it := recommend.ContentItem{ID: id, Category: "science", ContentType: recommend.ContentTypeEducational, SafetyScore: 90, Approved: true}
		if err := s.AddContent(ctx, it); err != nil {
			t.Fatalf("AddContent(%d) error = %v", id, err)
		}
	}
	return s
}

func TestStore_EligibleContentSampling(t *testing.T) {
	s := largeCatalog(t, 30)
	ctx := context.Background()

	for id := int64(1); id <= 20; id++ {
		if _, err := s.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: id, WatchedAt: base.Add(-time.Hour)}); err != nil {
			t.Fatalf("RecordWatch(%d) error = %v", id, err)
		}
	}

	q := recommend.CandidateQuery{MinSafety: 70, ViewerID: 1, WatchedSince: base.Add(-7 * 24 * time.Hour), Limit: 5, Seed: 3}
	got, err := s.EligibleContent(ctx, q)
	if err != nil {
		t.Fatalf("EligibleContent() error = %v", err)
	}
	ids := contentIDs(got)
	if len(ids) != 5 {
		t.Fatalf("EligibleContent() = %v, want 5 items", ids)
	}
	for i, id := range ids {
		if id <= 20 {
			t.Errorf("recently watched item %d returned", id)
		}
		if i > 0 && ids[i-1] >= id {
			t.Errorf("ids not ascending: %v", ids)
		}
	}

	again, _ := s.EligibleContent(ctx, q)
	if !reflect.DeepEqual(contentIDs(again), ids) {
		t.Errorf("same seed returned %v, then %v", ids, contentIDs(again))
	}

	// Across seeds every unwatched item is reachable.
	seen := make(map[int64]bool)
	for seed := int64(0); seed < 200; seed++ {
		q.Seed = seed
		items, _ := s.EligibleContent(ctx, q)
		for _, it := range items {
			seen[it.ID] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("reachable unwatched items = %d, want 10", len(seen))
	}
}

func TestCandidateGenerator_LargeCatalog(t *testing.T) {
	const catalog = 1100
	s := largeCatalog(t, catalog)
	ctx := context.Background()
	now := base

	cfg := recommend.DefaultConfig().Candidates
	if cfg.FetchLimit >= catalog {
		t.Fatalf("catalog must exceed the fetch limit %d", cfg.FetchLimit)
	}

	t.Run("fresh viewer reaches ids past the fetch limit", func(t *testing.T) {
		maxID := int64(0)
		for seed := int64(1); seed <= 20; seed++ {
			g := recommend.NewCandidateGenerator(s, cfg, rand.New(rand.NewSource(seed)), nil)
			pool, err := g.Generate(ctx, recommend.Viewer{ID: 1, AgeBand: recommend.AgeBandChild}, recommend.ModeMixed, now)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			for _, it := range pool {
				maxID = max(maxID, it.ID)
			}
		}
		if maxID <= int64(cfg.FetchLimit) {
			t.Errorf("highest candidate id = %d, want one above %d", maxID, cfg.FetchLimit)
		}
	})

	t.Run("recent watches of low ids leave the rest eligible", func(t *testing.T) {
		for id := int64(1); id <= 1000; id++ {
			if _, err := s.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: id, WatchedAt: now.Add(-time.Hour)}); err != nil {
				t.Fatalf("RecordWatch(%d) error = %v", id, err)
			}
		}

		g := recommend.NewCandidateGenerator(s, cfg, rand.New(rand.NewSource(1)), nil)
		pool, err := g.Generate(ctx, recommend.Viewer{ID: 1, AgeBand: recommend.AgeBandChild}, recommend.ModeMixed, now)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(pool) != 100 {
			t.Fatalf("pool size = %d, want the 100 unwatched items", len(pool))
		}
		for _, it := range pool {
			if it.ID <= 1000 {
				t.Errorf("recently watched item %d in pool", it.ID)
			}
		}
	})
}
