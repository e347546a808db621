// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline stages, used in logs and failure metrics.
const (
	StageViewer     = "viewer"
	StageProfile    = "profile"
	StageCandidates = "candidates"
)

// Request outcomes reported to the Observer.
const (
	OutcomeOK             = "ok"
	OutcomeViewerNotFound = "viewer_not_found"
	OutcomeEmptyPool      = "empty_pool"
	OutcomeStoreError     = "store_error"
)

// Observer receives engine measurements. The metrics package provides the
// Prometheus implementation; the zero Engine uses a no-op.
type Observer interface {
	ObserveRequest(mode, outcome string, duration time.Duration, candidates int)
	ObserveStageFailure(stage string)
	ObserveProfileCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration, int) {}
func (nopObserver) ObserveStageFailure(string)                        {}
func (nopObserver) ObserveProfileCache(bool)                          {}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Requests         int64 `json:"requests"`
	Errors           int64 `json:"errors"`
	DegradedProfiles int64 `json:"degraded_profiles"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
}

// Engine produces ranked, diversified and explained recommendations.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	store  Store

	aggregator *Aggregator
	generator  *CandidateGenerator
	scorer     *Scorer
	selector   Reranker
	explainer  *Explainer

	// profiles is nil unless the profile cache is enabled.
	profiles *ProfileCache

	observer Observer
	now      func() time.Time

	// Random source for the candidate shuffle (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	requestCount  atomic.Int64
	errorCount    atomic.Int64
	degradedCount atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for recency windows and time of day.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRand sets the random source used to shuffle candidates.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithObserver sets the measurement sink.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithReranker replaces the diversity selector.
func WithReranker(r Reranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.selector = r
		}
	}
}

// NewEngine creates a new recommendation engine reading from store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if store == nil {
		return nil, errors.New("recommend: store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		store:    store,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for candidate shuffling
	}

	e.aggregator = NewAggregator(store, cfg.Profile)
	e.generator = NewCandidateGenerator(store, cfg.Candidates, e.rng, &e.rngMu)
	e.scorer = NewScorer(cfg.Scoring)
	e.explainer = NewExplainer(cfg.Explain)
	if e.selector == nil {
		e.selector = NewDiversitySelector(cfg.Diversity)
	}
	if cfg.Cache.Enabled {
		e.profiles = NewProfileCache(cfg.Cache)
		e.profiles.setClock(e.now)
	}

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend generates the ranked list for one viewer.
//
// An unknown viewer and an empty candidate pool both yield an empty response
// with a nil error. A failing store yields an error matching ErrStoreUnavailable.
// Profile aggregation failures degrade to the minimal profile.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	logger := e.createRequestLogger(req)
	logger.Debug().Int("limit", req.Limit).Msg("processing recommendation request")

	now := e.now()

	viewer, err := e.store.GetViewer(ctx, req.ViewerID)
	if err != nil {
		if errors.Is(err, ErrViewerNotFound) {
			logger.Debug().Msg("viewer not found")
			e.observer.ObserveRequest(string(req.Mode), OutcomeViewerNotFound, time.Since(start), 0)
			return e.emptyResponse(req, start, false, false), nil
		}
		return nil, e.fail(logger, req, start, StageViewer, storeError(StageViewer, err))
	}

	var (
		profile    *Profile
		candidates []ContentItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile = e.profileFor(gctx, *viewer, now, logger)
		return nil
	})
	g.Go(func() error {
		var genErr error
		candidates, genErr = e.generator.Generate(gctx, *viewer, req.Mode, now)
		return genErr
	})
	if err := g.Wait(); err != nil {
		return nil, e.fail(logger, req, start, StageCandidates, err)
	}

	if len(candidates) == 0 {
		logger.Debug().Msg("no eligible candidates")
		e.observer.ObserveRequest(string(req.Mode), OutcomeEmptyPool, time.Since(start), 0)
		return e.emptyResponse(req, start, true, profile.Degraded), nil
	}

	scored := e.scoreAll(candidates, *viewer, profile, now)
	selected := e.selector.Rerank(ctx, scored, req.Limit)

	items := make([]Recommendation, len(selected))
	for i := range selected {
		items[i] = Recommendation{
			Item:      selected[i].Item,
			Score:     selected[i].Score,
			Reason:    e.explainer.Explain(selected[i].Item, *viewer, profile),
			Breakdown: selected[i].Breakdown,
		}
	}

	resp := &Response{
		ViewerID: req.ViewerID,
		Mode:     req.Mode,
		Items:    items,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			CandidateCount:  len(candidates),
			ProfileDegraded: profile.Degraded,
			ViewerFound:     true,
			LatencyMS:       time.Since(start).Milliseconds(),
			GeneratedAt:     now,
		},
	}

	e.observer.ObserveRequest(string(req.Mode), OutcomeOK, time.Since(start), len(candidates))
	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Bool("profile_degraded", profile.Degraded).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// Profile returns the derived profile for a viewer, using the cache when enabled.
// Unknown viewers yield ErrViewerNotFound.
func (e *Engine) Profile(ctx context.Context, viewerID int64) (*Profile, error) {
	logger := e.logger.With().Int64("viewer_id", viewerID).Logger()

	viewer, err := e.store.GetViewer(ctx, viewerID)
	if err != nil {
		if errors.Is(err, ErrViewerNotFound) {
			return nil, err
		}
		e.observer.ObserveStageFailure(StageViewer)
		return nil, storeError(StageViewer, err)
	}
	return e.profileFor(ctx, *viewer, e.now(), logger), nil
}

// InvalidateProfile drops any cached profile for viewerID.
// It reports whether an entry was removed.
func (e *Engine) InvalidateProfile(viewerID int64) bool {
	if e.profiles == nil {
		return false
	}
	removed := e.profiles.Invalidate(viewerID)
	if removed {
		e.logger.Debug().Int64("viewer_id", viewerID).Msg("profile cache invalidated")
	}
	return removed
}

// PurgeExpiredProfiles sweeps expired entries from the profile cache.
// It returns 0 when the cache is disabled.
func (e *Engine) PurgeExpiredProfiles() int {
	if e.profiles == nil {
		return 0
	}
	return e.profiles.PurgeExpired()
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:         e.requestCount.Load(),
		Errors:           e.errorCount.Load(),
		DegradedProfiles: e.degradedCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
	}
}

// prepareRequest applies defaults, bounds the limit and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return req, err
	}
	req.Mode = mode

	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}
	if req.Limit > e.config.Limits.MaxLimit {
		req.Limit = e.config.Limits.MaxLimit
	}
	return req, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("viewer_id", req.ViewerID).
		Str("mode", string(req.Mode)).
		Logger()
}

// profileFor returns a cached or freshly aggregated profile. It never fails.
//
//nolint:gocritic // hugeParam: viewer and logger passed by value
func (e *Engine) profileFor(ctx context.Context, viewer Viewer, now time.Time, logger zerolog.Logger) *Profile {
	var gen uint64
	if e.profiles != nil {
		if p, ok := e.profiles.Get(viewer.ID); ok {
			e.cacheHits.Add(1)
			e.observer.ObserveProfileCache(true)
			return p
		}
		e.cacheMisses.Add(1)
		e.observer.ObserveProfileCache(false)
		gen = e.profiles.Generation(viewer.ID)
	}

	p, err := e.aggregator.Aggregate(ctx, viewer, now)
	if err != nil {
		// A cancelled context means the request is already failing
		// elsewhere. That is not a profile failure.
		if ctx.Err() != nil {
			logger.Debug().Err(err).Str("stage", StageProfile).Msg("profile aggregation cancelled")
			return MinimalProfile(viewer.ID)
		}
		e.degradedCount.Add(1)
		e.observer.ObserveStageFailure(StageProfile)
		logger.Warn().Err(err).Str("stage", StageProfile).Msg("profile aggregation failed, using neutral profile")
		return MinimalProfile(viewer.ID)
	}

	if e.profiles != nil && !e.profiles.PutIfCurrent(p, gen) {
		logger.Debug().Msg("profile invalidated during aggregation, not cached")
	}
	return p
}

// scoreAll scores every candidate and sorts by score descending. The sort
// is stable so equal scores keep candidate order.
//
//nolint:gocritic // hugeParam: viewer passed by value for immutability
func (e *Engine) scoreAll(candidates []ContentItem, viewer Viewer, profile *Profile, now time.Time) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i := range candidates {
		b := e.scorer.Score(candidates[i], viewer, profile, now)
		scored[i] = ScoredCandidate{Item: candidates[i], Score: b.Final, Breakdown: b}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// fail records a stage failure and returns err for the caller.
//
//nolint:gocritic // hugeParam: logger and req passed by value
func (e *Engine) fail(logger zerolog.Logger, req Request, start time.Time, stage string, err error) error {
	e.errorCount.Add(1)
	var se *StoreError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	e.observer.ObserveStageFailure(stage)
	e.observer.ObserveRequest(string(req.Mode), OutcomeStoreError, time.Since(start), 0)
	logger.Error().Err(err).Str("stage", stage).Msg("recommendation failed")
	return err
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, start time.Time, viewerFound, degraded bool) *Response {
	return &Response{
		ViewerID: req.ViewerID,
		Mode:     req.Mode,
		Items:    []Recommendation{},
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			ProfileDegraded: degraded,
			ViewerFound:     viewerFound,
			LatencyMS:       time.Since(start).Milliseconds(),
			GeneratedAt:     e.now(),
		},
	}
}
