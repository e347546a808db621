// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/memstore"
	"github.com/tomtom215/sprout/internal/recommend"
)

// flakyBackend fails every read while failing is set.
type flakyBackend struct {
	*memstore.Store
	failing atomic.Bool
	calls   atomic.Int64
}

var errDisk = errors.New("disk I/O error")

func (f *flakyBackend) check() error {
	f.calls.Add(1)
	if f.failing.Load() {
		return errDisk
	}
	return nil
}

func (f *flakyBackend) GetViewer(ctx context.Context, id int64) (*recommend.Viewer, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.Store.GetViewer(ctx, id)
}

//nolint:gocritic // hugeParam: matches the interface
func (f *flakyBackend) EligibleContent(ctx context.Context, q recommend.CandidateQuery) ([]recommend.ContentItem, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.Store.EligibleContent(ctx, q)
}

func newTestBreaker(t *testing.T, threshold uint32) (*BreakerStore, *flakyBackend) {
	t.Helper()
	inner := &flakyBackend{Store: memstore.New()}
	if err := inner.AddViewer(context.Background(), recommend.Viewer{ID: 1, AgeBand: recommend.AgeBandChild}); err != nil {
		t.Fatalf("AddViewer() error = %v", err)
	}
	cfg := config.BreakerConfig{
		Enabled:             true,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Hour,
		ConsecutiveFailures: threshold,
	}
	return NewBreakerStore(inner, "test-"+t.Name(), cfg, zerolog.Nop()), inner
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	t.Parallel()

	bs, _ := newTestBreaker(t, 3)
	ctx := context.Background()

	v, err := bs.GetViewer(ctx, 1)
	if err != nil || v.ID != 1 {
		t.Fatalf("GetViewer() = %+v, %v", v, err)
	}
	if _, err := bs.RecordWatch(ctx, recommend.WatchEvent{ViewerID: 1, ContentID: 5}); !errors.Is(err, recommend.ErrContentNotFound) {
		t.Errorf("RecordWatch() error = %v, want ErrContentNotFound", err)
	}
	if err := bs.RecordQuiz(ctx, recommend.QuizOutcome{ViewerID: 1, QuestionID: 1}); err != nil {
		t.Errorf("RecordQuiz() error = %v", err)
	}
	if err := bs.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestBreakerStore_FailuresAreStoreUnavailable(t *testing.T) {
	t.Parallel()

	bs, inner := newTestBreaker(t, 3)
	inner.failing.Store(true)

	_, err := bs.EligibleContent(context.Background(), recommend.CandidateQuery{MinSafety: 70})
	if !errors.Is(err, recommend.ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
	if !errors.Is(err, errDisk) {
		t.Errorf("error = %v, want the cause preserved", err)
	}
}

func TestBreakerStore_OpensAndFailsFast(t *testing.T) {
	t.Parallel()

	bs, inner := newTestBreaker(t, 3)
	inner.failing.Store(true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = bs.EligibleContent(ctx, recommend.CandidateQuery{})
	}
	if bs.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", bs.State())
	}

	callsBefore := inner.calls.Load()
	_, err := bs.GetViewer(ctx, 1)
	if !errors.Is(err, recommend.ErrStoreUnavailable) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v", err)
	}
	if inner.calls.Load() != callsBefore {
		t.Error("open breaker must not call the store")
	}
}

func TestBreakerStore_NotFoundDoesNotTrip(t *testing.T) {
	t.Parallel()

	bs, _ := newTestBreaker(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := bs.GetViewer(ctx, 404); !errors.Is(err, recommend.ErrViewerNotFound) {
			t.Fatalf("GetViewer(404) error = %v, want ErrViewerNotFound", err)
		}
	}
	if bs.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", bs.State())
	}
}

func TestBreakerStore_SuccessResetsRun(t *testing.T) {
	t.Parallel()

	bs, inner := newTestBreaker(t, 3)
	ctx := context.Background()

	inner.failing.Store(true)
	_, _ = bs.GetViewer(ctx, 1)
	_, _ = bs.GetViewer(ctx, 1)
	inner.failing.Store(false)
	if _, err := bs.GetViewer(ctx, 1); err != nil {
		t.Fatalf("GetViewer() error = %v", err)
	}
	inner.failing.Store(true)
	_, _ = bs.GetViewer(ctx, 1)
	_, _ = bs.GetViewer(ctx, 1)

	if bs.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed after non-consecutive failures", bs.State())
	}
}

func TestIsBreakerSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{recommend.ErrViewerNotFound, true},
		{recommend.ErrContentNotFound, true},
		{context.Canceled, true},
		{context.DeadlineExceeded, false},
		{errDisk, false},
	}
	for _, tt := range tests {
		if got := isBreakerSuccess(tt.err); got != tt.want {
			t.Errorf("isBreakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
