// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

// Package memstore provides an in-memory implementation of the
// recommendation store. It backs the server when no database is
// configured and is used by API and event tests.
package memstore

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/sprout/internal/recommend"
)

// Store is a thread-safe in-memory catalog and history store.
type Store struct {
	mu sync.RWMutex

	viewers map[int64]recommend.Viewer
	content map[int64]recommend.ContentItem

	// Histories are kept in insertion order and sorted on read.
	watches map[int64][]recommend.WatchEvent
	quizzes map[int64][]recommend.QuizOutcome
}

var (
	_ recommend.Store    = (*Store)(nil)
	_ recommend.Recorder = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		viewers: make(map[int64]recommend.Viewer),
		content: make(map[int64]recommend.ContentItem),
		watches: make(map[int64][]recommend.WatchEvent),
		quizzes: make(map[int64][]recommend.QuizOutcome),
	}
}

// AddViewer inserts or replaces a viewer.
func (s *Store) AddViewer(_ context.Context, v recommend.Viewer) error {
	if v.ID <= 0 {
		return fmt.Errorf("viewer id must be positive, got %d", v.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[v.ID] = v
	return nil
}

// AddContent inserts or replaces a catalog item.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (s *Store) AddContent(_ context.Context, item recommend.ContentItem) error {
	if item.ID <= 0 {
		return fmt.Errorf("content id must be positive, got %d", item.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[item.ID] = item
	return nil
}

// GetViewer implements recommend.Store.
func (s *Store) GetViewer(_ context.Context, viewerID int64) (*recommend.Viewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewers[viewerID]
	if !ok {
		return nil, recommend.ErrViewerNotFound
	}
	return &v, nil
}

// RecentWatchEvents implements recommend.Store.
func (s *Store) RecentWatchEvents(_ context.Context, viewerID int64, limit int) ([]recommend.WatchEvent, error) {
	s.mu.RLock()
	events := append([]recommend.WatchEvent(nil), s.watches[viewerID]...)
	s.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].WatchedAt.After(events[j].WatchedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// RecentQuizOutcomes implements recommend.Store.
func (s *Store) RecentQuizOutcomes(_ context.Context, viewerID int64, limit int) ([]recommend.QuizOutcome, error) {
	s.mu.RLock()
	outcomes := append([]recommend.QuizOutcome(nil), s.quizzes[viewerID]...)
	s.mu.RUnlock()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].AnsweredAt.After(outcomes[j].AnsweredAt)
	})
	if limit > 0 && len(outcomes) > limit {
		outcomes = outcomes[:limit]
	}
	return outcomes, nil
}

// WatchedSince implements recommend.Store.
func (s *Store) WatchedSince(_ context.Context, viewerID int64, since time.Time) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchedSinceLocked(viewerID, since), nil
}

// watchedSinceLocked must be called with mu held.
func (s *Store) watchedSinceLocked(viewerID int64, since time.Time) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for i := range s.watches[viewerID] {
		ev := &s.watches[viewerID][i]
		if ev.WatchedAt.Before(since) {
			continue
		}
		if _, dup := seen[ev.ContentID]; dup {
			continue
		}
		seen[ev.ContentID] = struct{}{}
		ids = append(ids, ev.ContentID)
	}
	return ids
}

// EligibleContent implements recommend.Store. Items are returned in
// ascending id order. When more than q.Limit items qualify, a sample keyed
// by q.Seed is drawn from all of them.
func (s *Store) EligibleContent(_ context.Context, q recommend.CandidateQuery) ([]recommend.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[int64]struct{})
	if q.ViewerID > 0 && !q.WatchedSince.IsZero() {
		for _, id := range s.watchedSinceLocked(q.ViewerID, q.WatchedSince) {
			excluded[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(s.content))
	for id := range s.content {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]recommend.ContentItem, 0, len(ids))
	for _, id := range ids {
		item := s.content[id]
		if !item.Approved || item.SafetyScore < q.MinSafety {
			continue
		}
		if q.AgeBand.IsSet() && item.AgeBand.IsSet() && item.AgeBand != q.AgeBand {
			continue
		}
		if q.ContentType != recommend.ContentTypeUnset && item.ContentType != q.ContentType {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		out = append(out, item)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		rng := rand.New(rand.NewSource(q.Seed)) //nolint:gosec // sampling, not security
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		out = out[:q.Limit]
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out, nil
}

// RecordWatch implements recommend.Recorder. The item's view count is
// incremented.
//
//nolint:gocritic // hugeParam: ev passed by value for immutability
func (s *Store) RecordWatch(_ context.Context, ev recommend.WatchEvent) (recommend.WatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.viewers[ev.ViewerID]; !ok {
		return ev, recommend.ErrViewerNotFound
	}
	item, ok := s.content[ev.ContentID]
	if !ok {
		return ev, recommend.ErrContentNotFound
	}
	if ev.WatchedAt.IsZero() {
		ev.WatchedAt = time.Now().UTC()
	}
	ev.Category = item.Category
	ev.ContentType = item.ContentType
	ev.ContentDuration = item.DurationSeconds

	item.ViewCount++
	s.content[item.ID] = item
	s.watches[ev.ViewerID] = append(s.watches[ev.ViewerID], ev)
	return ev, nil
}

// RecordQuiz implements recommend.Recorder.
func (s *Store) RecordQuiz(_ context.Context, q recommend.QuizOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.viewers[q.ViewerID]; !ok {
		return recommend.ErrViewerNotFound
	}
	if q.AnsweredAt.IsZero() {
		q.AnsweredAt = time.Now().UTC()
	}
	s.quizzes[q.ViewerID] = append(s.quizzes[q.ViewerID], q)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
