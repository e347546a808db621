// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package metrics

import (
	"time"

	"github.com/tomtom215/sprout/internal/recommend"
)

// RecommendObserver reports engine events to the recommend_* collectors.
type RecommendObserver struct{}

var _ recommend.Observer = RecommendObserver{}

// ObserveRequest records one finished request.
func (RecommendObserver) ObserveRequest(mode, outcome string, d time.Duration, candidates int) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(d.Seconds())
	RecommendCandidates.Observe(float64(candidates))
}

// ObserveStageFailure records a failed pipeline stage.
func (RecommendObserver) ObserveStageFailure(stage string) {
	RecommendStageFailures.WithLabelValues(stage).Inc()
}

// ObserveProfileCache records a profile cache lookup.
func (RecommendObserver) ObserveProfileCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	RecommendProfileCache.WithLabelValues(result).Inc()
}
