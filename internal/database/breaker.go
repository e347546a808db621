// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/metrics"
	"github.com/tomtom215/sprout/internal/recommend"
)

// Backend is a complete store: reads, writes and a health check.
type Backend interface {
	recommend.Store
	recommend.Recorder
	Ping(ctx context.Context) error
}

// BreakerStore guards a Backend with a circuit breaker. There is no retry:
// a failed call fails the request, and an open breaker fails fast.
type BreakerStore struct {
	inner  Backend
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

var _ Backend = (*BreakerStore)(nil)

// NewBreakerStore wraps inner. name labels the breaker metrics.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreakerStore(inner Backend, name string, cfg config.BreakerConfig, logger zerolog.Logger) *BreakerStore {
	bs := &BreakerStore{
		inner:  inner,
		name:   name,
		logger: logger.With().Str("component", "store-breaker").Str("breaker", name).Logger(),
	}

	metrics.RecordBreakerState(name, int(gobreaker.StateClosed))

	threshold := cfg.ConsecutiveFailures
	bs.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				bs.logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening store circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			bs.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Store circuit state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
		IsSuccessful: isBreakerSuccess,
	})
	return bs
}

// isBreakerSuccess keeps caller-side outcomes from tripping the breaker.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrViewerNotFound) ||
		errors.Is(err, recommend.ErrContentNotFound) ||
		errors.Is(err, context.Canceled)
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// execute runs fn through the breaker. Rejections and store failures are
// reported as ErrStoreUnavailable; not-found and cancellation pass through.
func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit %s: %w", recommend.ErrStoreUnavailable, b.name, err)
	}
	if isBreakerSuccess(err) || errors.Is(err, recommend.ErrStoreUnavailable) {
		return result, err
	}
	return result, fmt.Errorf("%w: %w", recommend.ErrStoreUnavailable, err)
}

// GetViewer implements recommend.Store.
func (b *BreakerStore) GetViewer(ctx context.Context, viewerID int64) (*recommend.Viewer, error) {
	res, err := b.execute(func() (any, error) { return b.inner.GetViewer(ctx, viewerID) })
	if err != nil {
		return nil, err
	}
	return res.(*recommend.Viewer), nil
}

// RecentWatchEvents implements recommend.Store.
func (b *BreakerStore) RecentWatchEvents(ctx context.Context, viewerID int64, limit int) ([]recommend.WatchEvent, error) {
	res, err := b.execute(func() (any, error) { return b.inner.RecentWatchEvents(ctx, viewerID, limit) })
	if err != nil {
		return nil, err
	}
	return res.([]recommend.WatchEvent), nil
}

// RecentQuizOutcomes implements recommend.Store.
func (b *BreakerStore) RecentQuizOutcomes(ctx context.Context, viewerID int64, limit int) ([]recommend.QuizOutcome, error) {
	res, err := b.execute(func() (any, error) { return b.inner.RecentQuizOutcomes(ctx, viewerID, limit) })
	if err != nil {
		return nil, err
	}
	return res.([]recommend.QuizOutcome), nil
}

// WatchedSince implements recommend.Store.
func (b *BreakerStore) WatchedSince(ctx context.Context, viewerID int64, since time.Time) ([]int64, error) {
	res, err := b.execute(func() (any, error) { return b.inner.WatchedSince(ctx, viewerID, since) })
	if err != nil {
		return nil, err
	}
	return res.([]int64), nil
}

// EligibleContent implements recommend.Store.
//
//nolint:gocritic // hugeParam: query passed by value to match the interface
func (b *BreakerStore) EligibleContent(ctx context.Context, q recommend.CandidateQuery) ([]recommend.ContentItem, error) {
	res, err := b.execute(func() (any, error) { return b.inner.EligibleContent(ctx, q) })
	if err != nil {
		return nil, err
	}
	return res.([]recommend.ContentItem), nil
}

// RecordWatch implements recommend.Recorder.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func (b *BreakerStore) RecordWatch(ctx context.Context, ev recommend.WatchEvent) (recommend.WatchEvent, error) {
	res, err := b.execute(func() (any, error) { return b.inner.RecordWatch(ctx, ev) })
	if err != nil {
		return ev, err
	}
	return res.(recommend.WatchEvent), nil
}

// RecordQuiz implements recommend.Recorder.
//
//nolint:gocritic // hugeParam: outcome passed by value for immutability
func (b *BreakerStore) RecordQuiz(ctx context.Context, q recommend.QuizOutcome) error {
	_, err := b.execute(func() (any, error) { return nil, b.inner.RecordQuiz(ctx, q) })
	return err
}

// Ping checks the inner store without going through the breaker so health
// checks keep working while it is open.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}
