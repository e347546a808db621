// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/recommend"
)

// DefaultHandlerTimeout bounds each handler when none is configured.
const DefaultHandlerTimeout = 10 * time.Second

// Recommender is the engine surface the handlers use.
// *recommend.Engine satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Profile(ctx context.Context, viewerID int64) (*recommend.Profile, error)
}

// EventPublisher announces stored history. *events.Publisher satisfies it.
type EventPublisher interface {
	PublishWatch(ctx context.Context, ev recommend.WatchEvent) error
	PublishQuiz(ctx context.Context, q recommend.QuizOutcome) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators of a Handler.
type Dependencies struct {
	Engine    Recommender
	Recorder  recommend.Recorder
	Publisher EventPublisher // optional
	Health    Pinger         // optional
	Timeout   time.Duration
	MaxLimit  int // largest accepted limit, zero uses the engine default
	Logger    zerolog.Logger
	Now       func() time.Time // optional, for tests
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	recorder  recommend.Recorder
	publisher EventPublisher
	health    Pinger
	timeout   time.Duration
	maxLimit  int
	logger    zerolog.Logger
	now       func() time.Time
	startTime time.Time
}

// NewHandler creates a Handler.
//
//nolint:gocritic // hugeParam: deps is built once at startup
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if deps.Recorder == nil {
		return nil, errors.New("api: recorder is required")
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultHandlerTimeout
	}
	if deps.MaxLimit <= 0 {
		deps.MaxLimit = recommend.DefaultConfig().Limits.MaxLimit
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handler{
		engine:    deps.Engine,
		recorder:  deps.Recorder,
		publisher: deps.Publisher,
		health:    deps.Health,
		timeout:   deps.Timeout,
		maxLimit:  deps.MaxLimit,
		logger:    deps.Logger.With().Str("component", "api").Logger(),
		now:       deps.Now,
		startTime: deps.Now(),
	}, nil
}

// withTimeout derives the per-handler context.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.timeout)
}
