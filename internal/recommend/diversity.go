// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
)

// Bucket names used when an item has no category or content type.
const (
	uncategorized = "uncategorized"
	generalType   = "general"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// DiversitySelector is a greedy saturation-cap reranker. It walks the
// score-ordered list and admits an item only while its category and
// content type are under their caps:
//
//	categoryCap = max(CategoryMin, k/CategoryDivisor)
//	typeCap     = max(TypeMin, k/TypeDivisor)
//
// With RelaxFirstHalf, an over-cap item is still admitted while fewer
// than k/2 items have been selected.
type DiversitySelector struct {
	config DiversityConfig
}

var _ Reranker = (*DiversitySelector)(nil)

// NewDiversitySelector creates a selector with the given caps.
func NewDiversitySelector(cfg DiversityConfig) *DiversitySelector {
	return &DiversitySelector{config: cfg}
}

// Name returns the reranker identifier.
func (d *DiversitySelector) Name() string {
	return "saturation"
}

// Caps returns the category and content-type caps for a list of length k.
func (d *DiversitySelector) Caps(k int) (categoryCap, typeCap int) {
	return max(d.config.CategoryMin, k/d.config.CategoryDivisor),
		max(d.config.TypeMin, k/d.config.TypeDivisor)
}

// Rerank selects up to k items preserving score order. When len(items) <= k
// every item is returned unchanged. The input slice is not modified.
//
//nolint:gocritic // rangeValCopy: ScoredCandidate passed by value in range, acceptable for clarity
func (d *DiversitySelector) Rerank(_ context.Context, items []ScoredCandidate, k int) []ScoredCandidate {
	if k <= 0 || len(items) == 0 {
		return []ScoredCandidate{}
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if len(items) <= k {
		out := make([]ScoredCandidate, len(items))
		copy(out, items)
		return out
	}

	categoryCap, typeCap := d.Caps(k)
	relaxedUntil := 0
	if d.config.RelaxFirstHalf {
		relaxedUntil = k / 2
	}

	selected := make([]ScoredCandidate, 0, k)
	categories := make(map[string]int)
	types := make(map[string]int)

	for _, item := range items {
		if len(selected) >= k {
			break
		}

		category, ct := bucketsOf(&item.Item)
		underCap := categories[category] < categoryCap && types[ct] < typeCap
		if !underCap && len(selected) >= relaxedUntil {
			continue
		}

		selected = append(selected, item)
		categories[category]++
		types[ct]++
	}

	return selected
}

func bucketsOf(item *ContentItem) (category, contentType string) {
	category = item.Category
	if category == "" {
		category = uncategorized
	}
	contentType = string(item.ContentType)
	if contentType == "" {
		contentType = generalType
	}
	return category, contentType
}
