// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Aggregator reduces a viewer's raw history into a Profile.
type Aggregator struct {
	store  Store
	config ProfileConfig
}

// NewAggregator creates a profile aggregator reading from store.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewAggregator(store Store, cfg ProfileConfig) *Aggregator {
	return &Aggregator{store: store, config: cfg}
}

// Aggregate builds the viewer's profile as of now. Any store error is
// returned alongside nil; callers degrade to MinimalProfile.
//
//nolint:gocritic // hugeParam: viewer passed by value for immutability
func (a *Aggregator) Aggregate(ctx context.Context, viewer Viewer, now time.Time) (*Profile, error) {
	events, err := a.store.RecentWatchEvents(ctx, viewer.ID, a.config.WatchHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch watch events: %w", err)
	}
	if len(events) > a.config.WatchHistoryLimit {
		events = events[:a.config.WatchHistoryLimit]
	}

	quizzes, err := a.store.RecentQuizOutcomes(ctx, viewer.ID, a.config.QuizHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch quiz outcomes: %w", err)
	}
	if len(quizzes) > a.config.QuizHistoryLimit {
		quizzes = quizzes[:a.config.QuizHistoryLimit]
	}

	return a.build(viewer, events, quizzes, now), nil
}

// build is the pure part of aggregation. events must be newest first.
//
//nolint:gocritic // hugeParam: viewer passed by value for immutability
func (a *Aggregator) build(viewer Viewer, events []WatchEvent, quizzes []QuizOutcome, now time.Time) *Profile {
	categories := make(map[string]int)
	types := make(map[ContentType]int)
	recent := make(map[string]int)
	hours := make(map[int]int)

	recentSince := now.Add(-a.config.RecentWindow)
	todayY, todayM, todayD := now.Date()

	var (
		watchedSeconds int
		completionSum  float64
		completionN    int
		sameDay        int
	)

	for i := range events {
		ev := &events[i]

		if ev.Category != "" {
			categories[ev.Category]++
			if !ev.WatchedAt.Before(recentSince) {
				recent[ev.Category]++
			}
		}
		if ev.ContentType != ContentTypeUnset {
			types[ev.ContentType]++
		}

		watchedSeconds += ev.WatchedSeconds
		if ev.ContentDuration > 0 {
			ratio := float64(ev.WatchedSeconds) / float64(ev.ContentDuration)
			if ratio > 1 {
				ratio = 1
			}
			completionSum += ratio
			completionN++
		}

		hours[ev.WatchedAt.In(now.Location()).Hour()]++

		y, m, d := ev.WatchedAt.In(now.Location()).Date()
		if y == todayY && m == todayM && d == todayD {
			sameDay++
		}
	}

	p := &Profile{
		ViewerID:          viewer.ID,
		AgeBand:           viewer.AgeBand,
		CategoryCounts:    topN(categories, a.config.TopBuckets),
		ContentTypeCounts: topN(types, a.config.TopBuckets),
		RecentInterests:   topN(recent, a.config.RecentInterests),
		PeakHours:         peakHours(hours, a.config.PeakHours),
		TotalWatchHours:   float64(watchedSeconds) / 3600,
		EventCount:        len(events),
	}
	if completionN > 0 {
		p.CompletionRate = completionSum / float64(completionN)
	}

	if len(quizzes) > 0 {
		correct := 0
		for _, q := range quizzes {
			if q.Correct {
				correct++
			}
		}
		p.QuizAccuracy = float64(correct) / float64(len(quizzes))
		p.QuizCount = len(quizzes)
	}

	p.Flags = a.flags(events, types[ContentTypeEducational], sameDay)
	return p
}

func (a *Aggregator) flags(events []WatchEvent, educational, sameDay int) BehaviorFlags {
	var f BehaviorFlags
	if len(events) == 0 {
		return f
	}

	sample := events
	if len(sample) > a.config.ShortFormSample {
		sample = sample[:a.config.ShortFormSample]
	}
	total := 0
	for i := range sample {
		total += sample[i].ContentDuration
	}
	f.PrefersShortForm = float64(total)/float64(len(sample)) < a.config.ShortFormSeconds

	// The educational share is computed against every event in the window,
	// including those whose type is unset.
	f.EducationLeaning = float64(educational) > float64(len(events))*a.config.EducationShare
	f.HighFrequencySameDay = sameDay > a.config.SameDayEvents
	return f
}

// topN keeps the n most frequent buckets. Ties are broken by key so the
// retained set is deterministic.
func topN[K ~string](counts map[K]int, n int) map[K]int {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make(map[K]int, len(keys))
	for _, k := range keys {
		out[k] = counts[k]
	}
	return out
}

// peakHours returns the n most frequent hours, earliest hour first on ties.
func peakHours(hours map[int]int, n int) []int {
	out := make([]int, 0, len(hours))
	for h := range hours {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if hours[out[i]] != hours[out[j]] {
			return hours[out[i]] > hours[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
