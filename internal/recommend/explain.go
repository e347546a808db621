// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import "fmt"

// Reason strings emitted by the Explainer.
const (
	ReasonAgeMatch       = "Perfect for your age group"
	ReasonHighQuality    = "High quality content"
	ReasonContinueLearn  = "Continue your learning journey"
	ReasonLearnNewThings = "Great for learning new things"
	ReasonDefault        = "Recommended for you"
)

// Explainer derives one human-readable reason per recommended item.
type Explainer struct {
	config ExplainConfig
}

// NewExplainer creates an explainer with the given thresholds.
func NewExplainer(cfg ExplainConfig) *Explainer {
	return &Explainer{config: cfg}
}

// Explain returns the reason of the first matching rule, in priority order:
// exact age band, known category, known content type, high safety,
// educational progress, then the generic fallback.
//
//nolint:gocritic // hugeParam: item and viewer passed by value for immutability
func (e *Explainer) Explain(item ContentItem, viewer Viewer, profile *Profile) string {
	if profile == nil {
		profile = MinimalProfile(viewer.ID)
	}

	if viewer.AgeBand.IsSet() && item.AgeBand == viewer.AgeBand {
		return ReasonAgeMatch
	}
	if item.Category != "" {
		if _, ok := profile.CategoryCounts[item.Category]; ok {
			return fmt.Sprintf("You love %s videos", item.Category)
		}
	}
	if item.ContentType != ContentTypeUnset {
		if _, ok := profile.ContentTypeCounts[item.ContentType]; ok {
			return fmt.Sprintf("Based on your %s interests", item.ContentType)
		}
	}
	if item.SafetyScore > e.config.HighSafetyAbove {
		return ReasonHighQuality
	}
	if item.ContentType == ContentTypeEducational {
		if profile.QuizAccuracy > e.config.LearningAccuracy {
			return ReasonContinueLearn
		}
		return ReasonLearnNewThings
	}
	return ReasonDefault
}
