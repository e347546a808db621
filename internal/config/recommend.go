// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package config

import "github.com/tomtom215/sprout/internal/recommend"

// ToRecommendConfig overlays the configured values on the engine defaults.
func (c *Config) ToRecommendConfig() *recommend.Config {
	rc := recommend.DefaultConfig()
	src := c.Recommend

	rc.Seed = src.Seed

	rc.Scoring.Weights = recommend.ScoringWeights{
		AgeMatch:    src.Scoring.Weights.AgeMatch,
		ContentType: src.Scoring.Weights.ContentType,
		Category:    src.Scoring.Weights.Category,
		TimeOfDay:   src.Scoring.Weights.TimeOfDay,
		Educational: src.Scoring.Weights.Educational,
	}
	rc.Scoring.SafetyBoost = src.Scoring.SafetyBoost
	rc.Scoring.PopularityBoost = src.Scoring.PopularityBoost

	rc.Candidates.MinSafety = src.Candidates.MinSafety
	rc.Candidates.PoolSize = src.Candidates.PoolSize
	rc.Candidates.FetchLimit = src.Candidates.FetchLimit
	rc.Candidates.RecentWatchWindow = src.Candidates.RecentWatchWindow

	rc.Profile.WatchHistoryLimit = src.Profile.WatchHistoryLimit
	rc.Profile.QuizHistoryLimit = src.Profile.QuizHistoryLimit
	rc.Profile.RecentWindow = src.Profile.RecentWindow

	rc.Diversity.RelaxFirstHalf = src.Diversity.RelaxFirstHalf

	rc.Limits.DefaultLimit = src.Limits.DefaultLimit
	rc.Limits.MaxLimit = src.Limits.MaxLimit

	rc.Cache = recommend.CacheConfig{
		Enabled:    src.ProfileCache.Enabled,
		TTL:        src.ProfileCache.TTL,
		MaxEntries: src.ProfileCache.MaxEntries,
	}

	return rc
}
