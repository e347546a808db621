// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"sync"
	"time"
)

// testNow is a Tuesday morning; hour 9 falls in the morning period.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// mockStore implements Store for testing.
type mockStore struct {
	mu sync.Mutex

	viewers map[int64]Viewer
	items   []ContentItem
	events  map[int64][]WatchEvent // newest first
	quizzes map[int64][]QuizOutcome

	viewerErr  error
	eventsErr  error
	quizErr    error
	watchedErr error
	contentErr error

	// blockEvents makes RecentWatchEvents wait for ctx to be cancelled.
	blockEvents bool
	// onEvents runs inside RecentWatchEvents before it returns.
	onEvents func()

	eventsCalls  int
	contentCalls int
	lastQuery    CandidateQuery
}

func newMockStore() *mockStore {
	return &mockStore{
		viewers: make(map[int64]Viewer),
		events:  make(map[int64][]WatchEvent),
		quizzes: make(map[int64][]QuizOutcome),
	}
}

func (m *mockStore) GetViewer(_ context.Context, viewerID int64) (*Viewer, error) {
	if m.viewerErr != nil {
		return nil, m.viewerErr
	}
	v, ok := m.viewers[viewerID]
	if !ok {
		return nil, ErrViewerNotFound
	}
	return &v, nil
}

func (m *mockStore) RecentWatchEvents(ctx context.Context, viewerID int64, limit int) ([]WatchEvent, error) {
	m.mu.Lock()
	m.eventsCalls++
	hook := m.onEvents
	m.mu.Unlock()
	if m.blockEvents {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if hook != nil {
		hook()
	}
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	events := m.events[viewerID]
	if len(events) > limit {
		events = events[:limit]
	}
	return append([]WatchEvent(nil), events...), nil
}

func (m *mockStore) RecentQuizOutcomes(_ context.Context, viewerID int64, limit int) ([]QuizOutcome, error) {
	if m.quizErr != nil {
		return nil, m.quizErr
	}
	quizzes := m.quizzes[viewerID]
	if len(quizzes) > limit {
		quizzes = quizzes[:limit]
	}
	return append([]QuizOutcome(nil), quizzes...), nil
}

func (m *mockStore) WatchedSince(_ context.Context, viewerID int64, since time.Time) ([]int64, error) {
	if m.watchedErr != nil {
		return nil, m.watchedErr
	}
	var ids []int64
	for _, ev := range m.events[viewerID] {
		if !ev.WatchedAt.Before(since) {
			ids = append(ids, ev.ContentID)
		}
	}
	return ids, nil
}

// EligibleContent returns every item unfiltered so the generator's own
// filters are exercised.
func (m *mockStore) EligibleContent(_ context.Context, q CandidateQuery) ([]ContentItem, error) {
	m.mu.Lock()
	m.contentCalls++
	m.lastQuery = q
	m.mu.Unlock()
	if m.contentErr != nil {
		return nil, m.contentErr
	}
	items := m.items
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return append([]ContentItem(nil), items...), nil
}

func (m *mockStore) calls() (events, content int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsCalls, m.contentCalls
}

// item builds an approved content item.
func item(id int64, category string, ct ContentType, band AgeBand, safety float64) ContentItem {
	return ContentItem{
		ID:              id,
		Title:           "item",
		Category:        category,
		ContentType:     ct,
		AgeBand:         band,
		SafetyScore:     safety,
		Approved:        true,
		DurationSeconds: 300,
	}
}

// watch builds a watch event at the given offset before testNow.
func watch(contentID int64, category string, ct ContentType, ago time.Duration, watched, duration int) WatchEvent {
	return WatchEvent{
		ContentID:       contentID,
		WatchedAt:       testNow.Add(-ago),
		WatchedSeconds:  watched,
		Category:        category,
		ContentType:     ct,
		ContentDuration: duration,
	}
}
