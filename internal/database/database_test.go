// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/recommend"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections from
// parallel tests are slow under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := &config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "256MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	}
	db, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func setupTestDBWithData(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.AddViewer(ctx, recommend.Viewer{ID: 1, Name: "Ada", AgeBand: recommend.AgeBandChild}); err != nil {
		t.Fatalf("AddViewer() error = %v", err)
	}
	items := []recommend.ContentItem{
		{ID: 3, Title: "Volcanoes", Category: "science", ContentType: recommend.ContentTypeEducational, AgeBand: recommend.AgeBandChild, SafetyScore: 95, Approved: true, DurationSeconds: 300},
		{ID: 1, Title: "Songs", Category: "songs", ContentType: recommend.ContentTypeMusic, AgeBand: recommend.AgeBandUnset, SafetyScore: 80, Approved: true, DurationSeconds: 120},
		{ID: 2, Title: "Cartoon", Category: "cartoons", ContentType: recommend.ContentTypeEntertainment, AgeBand: recommend.AgeBandTeen, SafetyScore: 90, Approved: true, DurationSeconds: 900},
		{ID: 4, Title: "Unsafe", Category: "science", ContentType: recommend.ContentTypeEducational, AgeBand: recommend.AgeBandChild, SafetyScore: 50, Approved: true},
		{ID: 5, Title: "Pending", Category: "science", ContentType: recommend.ContentTypeEducational, AgeBand: recommend.AgeBandChild, SafetyScore: 99, Approved: false},
	}
	for _, it := range items {
		if err := db.AddContent(ctx, it); err != nil {
			t.Fatalf("AddContent() error = %v", err)
		}
	}
	return db
}

func contentIDs(items []recommend.ContentItem) []int64 {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func TestNew_SchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.createSchema(); err != nil {
		t.Errorf("second createSchema() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if db.Path() != ":memory:" {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestDB_GetViewer(t *testing.T) {
	db := setupTestDBWithData(t)
	ctx := context.Background()

	v, err := db.GetViewer(ctx, 1)
	if err != nil {
		t.Fatalf("GetViewer() error = %v", err)
	}
	if v.Name != "Ada" || v.AgeBand != recommend.AgeBandChild {
		t.Errorf("GetViewer() = %+v", v)
	}

	if _, err := db.GetViewer(ctx, 99); !errors.Is(err, recommend.ErrViewerNotFound) {
		t.Errorf("GetViewer(99) error = %v, want ErrViewerNotFound", err)
	}
}

func TestDB_AddValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.AddViewer(ctx, recommend.Viewer{ID: 0}); err == nil {
		t.Error("AddViewer(id=0) should fail")
	}
	if err := db.AddContent(ctx, recommend.ContentItem{ID: -1}); err == nil {
		t.Error("AddContent(id=-1) should fail")
	}
}

func TestDB_EligibleContent(t *testing.T) {
	db := setupTestDBWithData(t)

	tests := []struct {
		name  string
		query recommend.CandidateQuery
		want  []int64
	}{
		{"all approved and safe", recommend.CandidateQuery{MinSafety: 70}, []int64{1, 2, 3}},
		{"child band keeps unset", recommend.CandidateQuery{MinSafety: 70, AgeBand: recommend.AgeBandChild}, []int64{1, 3}},
		{"educational", recommend.CandidateQuery{MinSafety: 70, ContentType: recommend.ContentTypeEducational}, []int64{3}},
		{"inclusive floor", recommend.CandidateQuery{MinSafety: 95}, []int64{3}},
		{"low floor", recommend.CandidateQuery{MinSafety: 0}, []int64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.EligibleContent(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("EligibleContent() error = %v", err)
			}
			if ids := contentIDs(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("EligibleContent() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestDB_EligibleContentSamplesPastRecentWatches(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.AddViewer(ctx, recommend.Viewer{ID: 1, AgeBand: recommend.AgeBandChild}); err != nil {
		t.Fatalf("AddViewer() error = %v", err)
	}
	for id := int64(1); id <= 30; id++ {
		it := recommend.ContentItem{ID: id, Category: "science", ContentType: recommend.ContentTypeEducational, SafetyScore: 90, Approved: true}
		if err := db.AddContent(ctx, it); err != nil {
			t.Fatalf("AddContent(%d) error = %v", id, err)
		}
	}
	// The twenty lowest ids were watched an hour ago; one old watch is outside the window.
	for id := int64(1); id <= 20; id++ {
		if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: id, WatchedAt: base.Add(-time.Hour)}); err != nil {
			t.Fatalf("RecordWatch(%d) error = %v", id, err)
		}
	}
	if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: 25, WatchedAt: base.Add(-30 * 24 * time.Hour)}); err != nil {
		t.Fatalf("RecordWatch(25) error = %v", err)
	}

	q := recommend.CandidateQuery{
		MinSafety:    70,
		ViewerID:     1,
		WatchedSince: base.Add(-7 * 24 * time.Hour),
		Limit:        5,
		Seed:         7,
	}
	got, err := db.EligibleContent(ctx, q)
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

	again, err := db.EligibleContent(ctx, q)
	if err != nil {
		t.Fatalf("EligibleContent() error = %v", err)
	}
	if !reflect.DeepEqual(contentIDs(again), ids) {
		t.Errorf("same seed returned %v, then %v", ids, contentIDs(again))
	}

	q.Limit = 0
	all, err := db.EligibleContent(ctx, q)
	if err != nil {
		t.Fatalf("EligibleContent() error = %v", err)
	}
	if len(all) != 10 {
		t.Errorf("unlimited unwatched count = %d, want 10", len(all))
	}
}

func TestDB_GetContent(t *testing.T) {
	db := setupTestDBWithData(t)
	ctx := context.Background()

	item, err := db.GetContent(ctx, 3)
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	want := recommend.ContentItem{ID: 3, Title: "Volcanoes", Category: "science", ContentType: recommend.ContentTypeEducational,
		AgeBand: recommend.AgeBandChild, SafetyScore: 95, Approved: true, DurationSeconds: 300}
	if !reflect.DeepEqual(item, want) {
		t.Errorf("GetContent() = %+v, want %+v", item, want)
	}

	if _, err := db.GetContent(ctx, 404); !errors.Is(err, recommend.ErrContentNotFound) {
		t.Errorf("GetContent(404) error = %v, want ErrContentNotFound", err)
	}
}

func TestDB_RecordWatch(t *testing.T) {
	db := setupTestDBWithData(t)
	ctx := context.Background()

	stored, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: 3, WatchedAt: base, WatchedSeconds: 200})
	if err != nil {
		t.Fatalf("RecordWatch() error = %v", err)
	}
	if stored.Category != "science" || stored.ContentType != recommend.ContentTypeEducational || stored.ContentDuration != 300 {
		t.Errorf("RecordWatch() did not copy item attributes: %+v", stored)
	}

	item, err := db.GetContent(ctx, 3)
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if item.ViewCount != 1 {
		t.Errorf("ViewCount = %d, want 1", item.ViewCount)
	}

	if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 2, ContentID: 3}); !errors.Is(err, recommend.ErrViewerNotFound) {
		t.Errorf("unknown viewer error = %v", err)
	}
	if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: 42}); !errors.Is(err, recommend.ErrContentNotFound) {
		t.Errorf("unknown content error = %v", err)
	}

	events, err := db.RecentWatchEvents(ctx, 1, 10)
	if err != nil {
		t.Fatalf("RecentWatchEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("failed writes must not leave rows: len = %d", len(events))
	}
	if !events[0].WatchedAt.Equal(base) || events[0].WatchedSeconds != 200 {
		t.Errorf("stored event = %+v", events[0])
	}
}

func TestDB_HistoryOrdering(t *testing.T) {
	db := setupTestDBWithData(t)
	ctx := context.Background()

	for i, offset := range []time.Duration{48 * time.Hour, time.Hour, 200 * time.Hour} {
		if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: int64(i + 1), WatchedAt: base.Add(-offset)}); err != nil {
			t.Fatalf("RecordWatch() error = %v", err)
		}
	}

	events, err := db.RecentWatchEvents(ctx, 1, 10)
	if err != nil {
		t.Fatalf("RecentWatchEvents() error = %v", err)
	}
	var order []int64
	for _, ev := range events {
		order = append(order, ev.ContentID)
	}
	if !reflect.DeepEqual(order, []int64{2, 1, 3}) {
		t.Errorf("RecentWatchEvents() order = %v, want [2 1 3]", order)
	}
	if events[0].Category != "songs" || events[0].ContentType != recommend.ContentTypeMusic {
		t.Errorf("history rows should carry item attributes: %+v", events[0])
	}

	limited, err := db.RecentWatchEvents(ctx, 1, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("limit not applied: len = %d, err = %v", len(limited), err)
	}

	// Watching item 2 again must not duplicate it.
	if _, err := db.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: 2, WatchedAt: base}); err != nil {
		t.Fatalf("RecordWatch() error = %v", err)
	}
	since, err := db.WatchedSince(ctx, 1, base.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("WatchedSince() error = %v", err)
	}
	if !reflect.DeepEqual(since, []int64{1, 2}) {
		t.Errorf("WatchedSince() = %v, want [1 2]", since)
	}

	none, err := db.RecentWatchEvents(ctx, 99, 10)
	if err != nil || len(none) != 0 {
		t.Errorf("unknown viewer history = %v, %v", none, err)
	}
}

func TestDB_RecordQuiz(t *testing.T) {
	db := setupTestDBWithData(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q := recommend.QuizOutcome{ViewerID: 1, QuestionID: int64(i), Correct: i%2 == 0, AnsweredAt: base.Add(time.Duration(i) * time.Minute)}
		if err := db.RecordQuiz(ctx, q); err != nil {
			t.Fatalf("RecordQuiz() error = %v", err)
		}
	}

	outcomes, err := db.RecentQuizOutcomes(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RecentQuizOutcomes() error = %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].QuestionID != 2 || outcomes[1].QuestionID != 1 {
		t.Errorf("RecentQuizOutcomes() = %+v, want newest two", outcomes)
	}
	if !outcomes[0].Correct || outcomes[1].Correct {
		t.Errorf("correct flags = %v/%v, want true/false", outcomes[0].Correct, outcomes[1].Correct)
	}

	if err := db.RecordQuiz(ctx, recommend.QuizOutcome{ViewerID: 9}); !errors.Is(err, recommend.ErrViewerNotFound) {
		t.Errorf("unknown viewer error = %v", err)
	}
}

func TestBuildEligibleQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    recommend.CandidateQuery
		wantArgs int
		contains []string
	}{
		{"floor only", recommend.CandidateQuery{MinSafety: 70}, 1, []string{"approved AND safety_score >= ?", "ORDER BY id"}},
		{"band", recommend.CandidateQuery{MinSafety: 70, AgeBand: recommend.AgeBandTeen}, 2, []string{"(age_band = ? OR age_band = 0)"}},
		{"type and limit", recommend.CandidateQuery{MinSafety: 70, ContentType: recommend.ContentTypeMusic, Limit: 5}, 4, []string{"content_type = ?", "ORDER BY hash(", "LIMIT ?", "AS sampled ORDER BY id"}},
		{"recent watch exclusion", recommend.CandidateQuery{MinSafety: 70, ViewerID: 1, WatchedSince: base}, 3, []string{"id NOT IN (SELECT content_id FROM watch_events WHERE viewer_id = ? AND watched_at >= ?)"}},
		{"exclusion needs a viewer", recommend.CandidateQuery{MinSafety: 70, WatchedSince: base}, 1, []string{"ORDER BY id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildEligibleQuery(tt.query)
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("query %q missing %q", query, want)
				}
			}
		})
	}
}
