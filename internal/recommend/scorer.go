// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"time"
)

// Scorer computes the weighted relevance of a candidate against a profile.
// It is pure and safe for concurrent use.
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a scorer bound to an immutable copy of cfg.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewScorer(cfg ScoringConfig) *Scorer {
	tod := &cfg.TimeOfDay
	tod.Morning = append([]ContentType(nil), tod.Morning...)
	tod.Afternoon = append([]ContentType(nil), tod.Afternoon...)
	tod.Evening = append([]ContentType(nil), tod.Evening...)
	return &Scorer{config: cfg}
}

// Score returns the per-term breakdown and final score of item for viewer.
// A nil profile is treated as the minimal profile.
//
//nolint:gocritic // hugeParam: item and viewer passed by value for immutability
func (s *Scorer) Score(item ContentItem, viewer Viewer, profile *Profile, now time.Time) ScoreBreakdown {
	if profile == nil {
		profile = MinimalProfile(viewer.ID)
	}
	w := s.config.Weights

	b := ScoreBreakdown{
		AgeMatch:    s.ageTerm(viewer.AgeBand, item.AgeBand),
		ContentType: affinity(s.config.Neutral, profile.ContentTypeCounts, item.ContentType),
		Category:    affinity(s.config.Neutral, profile.CategoryCounts, item.Category),
		TimeOfDay:   s.timeTerm(item.ContentType, now.Hour()),
		Educational: s.educationalTerm(item.ContentType, profile),
	}
	b.Weighted = b.AgeMatch*w.AgeMatch +
		b.ContentType*w.ContentType +
		b.Category*w.Category +
		b.TimeOfDay*w.TimeOfDay +
		b.Educational*w.Educational

	b.Multiplier = 1.0
	if item.SafetyScore > s.config.SafetyBoostAbove {
		b.Multiplier *= s.config.SafetyBoost
	}
	if item.ViewCount > s.config.PopularityBoostAbove {
		b.Multiplier *= s.config.PopularityBoost
	}

	b.Final = clamp01(b.Weighted * b.Multiplier)
	return b
}

func (s *Scorer) ageTerm(viewer, item AgeBand) float64 {
	switch Distance(viewer, item) {
	case -1:
		return s.config.Neutral
	case 0:
		return 1.0
	case 1:
		return s.config.AdjacentBand
	default:
		return 0.0
	}
}

// affinity is the candidate bucket's share of the retained counts.
func affinity[K ~string](neutral float64, counts map[K]int, bucket K) float64 {
	if bucket == "" {
		return neutral
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return neutral
	}
	return float64(counts[bucket]) / float64(total)
}

// preferredTypes returns the content types favored at the given hour.
func (s *Scorer) preferredTypes(hour int) []ContentType {
	tod := s.config.TimeOfDay
	switch {
	case hour < tod.MorningEndHour:
		return tod.Morning
	case hour < tod.AfternoonEndHour:
		return tod.Afternoon
	default:
		return tod.Evening
	}
}

func (s *Scorer) timeTerm(ct ContentType, hour int) float64 {
	if ct == ContentTypeUnset {
		return s.config.TimeMiss
	}
	for _, preferred := range s.preferredTypes(hour) {
		if preferred == ct {
			return s.config.TimeMatch
		}
	}
	return s.config.TimeMiss
}

// educationalTerm is neutral for non-educational items and for viewers
// with no quiz outcomes.
func (s *Scorer) educationalTerm(ct ContentType, profile *Profile) float64 {
	if ct != ContentTypeEducational || profile.QuizCount == 0 {
		return s.config.Neutral
	}
	switch acc := profile.QuizAccuracy; {
	case acc > s.config.HighAccuracy:
		return s.config.HighAccuracyScore
	case acc > s.config.MidAccuracy:
		return s.config.MidAccuracyScore
	default:
		return s.config.LowAccuracyScore
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
