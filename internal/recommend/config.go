// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Scoring holds the weights and thresholds of the scoring model.
	Scoring ScoringConfig `json:"scoring"`

	// Candidates holds the eligibility filter and pool parameters.
	Candidates CandidateConfig `json:"candidates"`

	// Profile holds the history windows and behavioral thresholds.
	Profile ProfileConfig `json:"profile"`

	// Diversity holds the saturation cap parameters.
	Diversity DiversityConfig `json:"diversity"`

	// Explain holds the explainer thresholds.
	Explain ExplainConfig `json:"explain"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains the optional profile cache parameters.
	Cache CacheConfig `json:"cache"`

	// Seed seeds the candidate shuffle. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// ScoringWeights are the per-term weights of the relevance score. They must sum to 1.
type ScoringWeights struct {
	AgeMatch    float64 `json:"age_match"`
	ContentType float64 `json:"content_type"`
	Category    float64 `json:"category"`
	TimeOfDay   float64 `json:"time_of_day"`
	Educational float64 `json:"educational"`
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.AgeMatch + w.ContentType + w.Category + w.TimeOfDay + w.Educational
}

// TimeOfDayConfig maps day periods to their preferred content types.
type TimeOfDayConfig struct {
	// MorningEndHour is the first hour that is no longer morning.
	MorningEndHour int `json:"morning_end_hour"`

	// AfternoonEndHour is the first hour of the evening.
	AfternoonEndHour int `json:"afternoon_end_hour"`

	Morning   []ContentType `json:"morning"`
	Afternoon []ContentType `json:"afternoon"`
	Evening   []ContentType `json:"evening"`
}

// ScoringConfig contains the scoring model constants.
type ScoringConfig struct {
	// Weights are the per-term weights.
	Weights ScoringWeights `json:"weights"`

	// Neutral is the contribution of a term with no signal.
	// Default: 0.5.
	Neutral float64 `json:"neutral"`

	// AdjacentBand is the age term for a one-band gap.
	// Default: 0.6.
	AdjacentBand float64 `json:"adjacent_band"`

	// TimeMatch and TimeMiss are the time-of-day term values.
	TimeMatch float64 `json:"time_match"`
	TimeMiss  float64 `json:"time_miss"`

	// HighAccuracy is the quiz accuracy above which educational items score HighAccuracyScore.
	HighAccuracy      float64 `json:"high_accuracy"`
	HighAccuracyScore float64 `json:"high_accuracy_score"`

	// MidAccuracy is the quiz accuracy above which educational items score MidAccuracyScore.
	MidAccuracy      float64 `json:"mid_accuracy"`
	MidAccuracyScore float64 `json:"mid_accuracy_score"`

	// LowAccuracyScore applies at or below MidAccuracy.
	LowAccuracyScore float64 `json:"low_accuracy_score"`

	// SafetyBoostAbove and SafetyBoost apply the high-quality multiplier.
	SafetyBoostAbove float64 `json:"safety_boost_above"`
	SafetyBoost      float64 `json:"safety_boost"`

	// PopularityBoostAbove and PopularityBoost apply the popularity multiplier.
	PopularityBoostAbove int64   `json:"popularity_boost_above"`
	PopularityBoost      float64 `json:"popularity_boost"`

	// TimeOfDay holds the period boundaries and preferred types.
	TimeOfDay TimeOfDayConfig `json:"time_of_day"`
}

// CandidateConfig contains the candidate generation parameters.
type CandidateConfig struct {
	// MinSafety is the inclusive safety-score floor.
	// Default: 70.
	MinSafety float64 `json:"min_safety"`

	// PoolSize caps the sampled candidate pool.
	// Default: 200.
	PoolSize int `json:"pool_size"`

	// FetchLimit caps the rows read from the store. Larger eligible sets are
	// sampled by the store so every item stays reachable.
	// Default: 1000.
	FetchLimit int `json:"fetch_limit"`

	// RecentWatchWindow excludes items watched within this window.
	// Default: 7 days.
	RecentWatchWindow time.Duration `json:"recent_watch_window"`
}

// ProfileConfig contains the profile aggregation parameters.
type ProfileConfig struct {
	WatchHistoryLimit int           `json:"watch_history_limit"`
	QuizHistoryLimit  int           `json:"quiz_history_limit"`
	TopBuckets        int           `json:"top_buckets"`
	PeakHours         int           `json:"peak_hours"`
	RecentWindow      time.Duration `json:"recent_window"`
	RecentInterests   int           `json:"recent_interests"`

	// ShortFormSample is how many recent events feed the short-form flag.
	ShortFormSample int `json:"short_form_sample"`

	// ShortFormSeconds is the mean duration below which short form is preferred.
	ShortFormSeconds float64 `json:"short_form_seconds"`

	// EducationShare is the educational share above which the viewer is education-leaning.
	EducationShare float64 `json:"education_share"`

	// SameDayEvents is the event count above which today counts as high frequency.
	SameDayEvents int `json:"same_day_events"`
}

// DiversityConfig contains the saturation cap parameters.
// The category cap is max(CategoryMin, L/CategoryDivisor) and the
// type cap is max(TypeMin, L/TypeDivisor).
type DiversityConfig struct {
	CategoryMin     int `json:"category_min"`
	CategoryDivisor int `json:"category_divisor"`
	TypeMin         int `json:"type_min"`
	TypeDivisor     int `json:"type_divisor"`

	// RelaxFirstHalf admits over-cap items while the list is less than half full.
	RelaxFirstHalf bool `json:"relax_first_half"`
}

// ExplainConfig contains the explainer thresholds.
type ExplainConfig struct {
	HighSafetyAbove  float64 `json:"high_safety_above"`
	LearningAccuracy float64 `json:"learning_accuracy"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the list length when a request does not set one.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit bounds the requested list length.
	MaxLimit int `json:"max_limit"`
}

// CacheConfig contains the profile cache parameters.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns the production scoring model and limits.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				AgeMatch:    0.30,
				ContentType: 0.25,
				Category:    0.20,
				TimeOfDay:   0.10,
				Educational: 0.15,
			},
			Neutral:              0.5,
			AdjacentBand:         0.6,
			TimeMatch:            1.0,
			TimeMiss:             0.3,
			HighAccuracy:         0.8,
			HighAccuracyScore:    1.0,
			MidAccuracy:          0.6,
			MidAccuracyScore:     0.8,
			LowAccuracyScore:     0.9,
			SafetyBoostAbove:     90,
			SafetyBoost:          1.10,
			PopularityBoostAbove: 1000,
			PopularityBoost:      1.05,
			TimeOfDay: TimeOfDayConfig{
				MorningEndHour:   12,
				AfternoonEndHour: 18,
				Morning:          []ContentType{ContentTypeEducational, ContentTypeMusic, ContentTypeArts},
				Afternoon:        []ContentType{ContentTypeEntertainment, ContentTypeSports, ContentTypeEducational},
				Evening:          []ContentType{ContentTypeMusic, ContentTypeEntertainment, ContentTypeArts},
			},
		},
		Candidates: CandidateConfig{
			MinSafety:         70,
			PoolSize:          200,
			FetchLimit:        1000,
			RecentWatchWindow: 7 * 24 * time.Hour,
		},
		Profile: ProfileConfig{
			WatchHistoryLimit: 100,
			QuizHistoryLimit:  50,
			TopBuckets:        10,
			PeakHours:         3,
			RecentWindow:      14 * 24 * time.Hour,
			RecentInterests:   5,
			ShortFormSample:   20,
			ShortFormSeconds:  600,
			EducationShare:    0.30,
			SameDayEvents:     5,
		},
		Diversity: DiversityConfig{
			CategoryMin:     2,
			CategoryDivisor: 5,
			TypeMin:         3,
			TypeDivisor:     3,
			RelaxFirstHalf:  true,
		},
		Explain: ExplainConfig{
			HighSafetyAbove:  90,
			LearningAccuracy: 0.7,
		},
		Limits: LimitsConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	w := c.Scoring.Weights
	for name, v := range map[string]float64{
		"age_match": w.AgeMatch, "content_type": w.ContentType, "category": w.Category,
		"time_of_day": w.TimeOfDay, "educational": w.Educational,
	} {
		if v < 0 {
			return fmt.Errorf("%w: scoring.weights.%s must be non-negative, got %f", ErrInvalidConfig, name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("%w: scoring weights must sum to 1.0, got %f", ErrInvalidConfig, w.Sum())
	}
	if c.Scoring.SafetyBoost < 1 || c.Scoring.PopularityBoost < 1 {
		return fmt.Errorf("%w: score multipliers must be >= 1", ErrInvalidConfig)
	}
	tod := c.Scoring.TimeOfDay
	if tod.MorningEndHour < 0 || tod.MorningEndHour > tod.AfternoonEndHour || tod.AfternoonEndHour > 24 {
		return fmt.Errorf("%w: time_of_day hours must satisfy 0 <= morning_end <= afternoon_end <= 24, got %d/%d",
			ErrInvalidConfig, tod.MorningEndHour, tod.AfternoonEndHour)
	}

	if c.Candidates.MinSafety < 0 || c.Candidates.MinSafety > 100 {
		return fmt.Errorf("%w: candidates.min_safety must be in [0, 100], got %f", ErrInvalidConfig, c.Candidates.MinSafety)
	}
	if c.Candidates.PoolSize < 1 {
		return fmt.Errorf("%w: candidates.pool_size must be positive, got %d", ErrInvalidConfig, c.Candidates.PoolSize)
	}
	if c.Candidates.FetchLimit < c.Candidates.PoolSize {
		return fmt.Errorf("%w: candidates.fetch_limit must be >= pool_size, got %d < %d",
			ErrInvalidConfig, c.Candidates.FetchLimit, c.Candidates.PoolSize)
	}
	if c.Candidates.RecentWatchWindow < 0 {
		return fmt.Errorf("%w: candidates.recent_watch_window must be non-negative", ErrInvalidConfig)
	}

	p := c.Profile
	if p.WatchHistoryLimit < 1 || p.QuizHistoryLimit < 1 {
		return fmt.Errorf("%w: profile history limits must be positive", ErrInvalidConfig)
	}
	if p.TopBuckets < 1 || p.PeakHours < 1 || p.RecentInterests < 1 || p.ShortFormSample < 1 {
		return fmt.Errorf("%w: profile bucket counts must be positive", ErrInvalidConfig)
	}

	d := c.Diversity
	if d.CategoryDivisor < 1 || d.TypeDivisor < 1 {
		return fmt.Errorf("%w: diversity divisors must be positive", ErrInvalidConfig)
	}
	if d.CategoryMin < 1 || d.TypeMin < 1 {
		return fmt.Errorf("%w: diversity minimum caps must be positive", ErrInvalidConfig)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("%w: limits.default_limit must be positive, got %d", ErrInvalidConfig, c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("%w: limits.max_limit must be >= limits.default_limit, got %d < %d",
			ErrInvalidConfig, c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxEntries < 1) {
		return fmt.Errorf("%w: cache.ttl and cache.max_entries must be positive when the cache is enabled", ErrInvalidConfig)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	tod := &out.Scoring.TimeOfDay
	tod.Morning = append([]ContentType(nil), c.Scoring.TimeOfDay.Morning...)
	tod.Afternoon = append([]ContentType(nil), c.Scoring.TimeOfDay.Afternoon...)
	tod.Evening = append([]ContentType(nil), c.Scoring.TimeOfDay.Evening...)
	return &out
}
