// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/sprout/internal/validation"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks struct tags first, then the cross-field constraints
// tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, verr.Error())
	}

	if c.Database.Backend == BackendDuckDB && c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required for the duckdb backend", ErrInvalidConfig)
	}

	w := c.Recommend.Scoring.Weights
	if sum := w.AgeMatch + w.ContentType + w.Category + w.TimeOfDay + w.Educational; math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("%w: recommend.scoring.weights must sum to 1.0, got %f", ErrInvalidConfig, sum)
	}

	cand := c.Recommend.Candidates
	if cand.FetchLimit < cand.PoolSize {
		return fmt.Errorf("%w: recommend.candidates.fetch_limit (%d) must be >= pool_size (%d)",
			ErrInvalidConfig, cand.FetchLimit, cand.PoolSize)
	}

	lim := c.Recommend.Limits
	if lim.MaxLimit < lim.DefaultLimit {
		return fmt.Errorf("%w: recommend.limits.max_limit (%d) must be >= default_limit (%d)",
			ErrInvalidConfig, lim.MaxLimit, lim.DefaultLimit)
	}

	if !c.Server.RateLimitDisabled && c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("%w: server.rate_limit_requests must be positive", ErrInvalidConfig)
	}

	return nil
}
