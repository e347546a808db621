// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"net/http"
	"sort"

	"github.com/tomtom215/sprout/internal/recommend"
)

// topInterestCount is how many recent interests the profile route lists.
const topInterestCount = 5

// Interest is one category with its recent watch count.
type Interest struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ProfilePayload is the data of a profile response.
type ProfilePayload struct {
	ViewerID          int64                         `json:"viewer_id"`
	AgeGroup          string                        `json:"age_group"`
	Degraded          bool                          `json:"degraded"`
	EventCount        int                           `json:"event_count"`
	TotalWatchHours   float64                       `json:"total_watch_hours"`
	CompletionRate    float64                       `json:"completion_rate"`
	QuizAccuracy      float64                       `json:"quiz_accuracy"`
	QuizCount         int                           `json:"quiz_count"`
	PeakHours         []int                         `json:"peak_hours"`
	TopInterests      []Interest                    `json:"top_interests"`
	CategoryCounts    map[string]int                `json:"category_counts"`
	ContentTypeCounts map[recommend.ContentType]int `json:"content_type_counts"`
	Flags             recommend.BehaviorFlags       `json:"flags"`
}

// topInterests returns up to n categories by count descending, then name.
func topInterests(counts map[string]int, n int) []Interest {
	out := make([]Interest, 0, len(counts))
	for category, count := range counts {
		out = append(out, Interest{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func toProfilePayload(p *recommend.Profile) ProfilePayload {
	peaks := p.PeakHours
	if peaks == nil {
		peaks = []int{}
	}
	return ProfilePayload{
		ViewerID:          p.ViewerID,
		AgeGroup:          ageGroup(p.AgeBand),
		Degraded:          p.Degraded,
		EventCount:        p.EventCount,
		TotalWatchHours:   round2(p.TotalWatchHours),
		CompletionRate:    round2(p.CompletionRate),
		QuizAccuracy:      round2(p.QuizAccuracy),
		QuizCount:         p.QuizCount,
		PeakHours:         peaks,
		TopInterests:      topInterests(p.RecentInterests, topInterestCount),
		CategoryCounts:    p.CategoryCounts,
		ContentTypeCounts: p.ContentTypeCounts,
		Flags:             p.Flags,
	}
}

// Profile handles GET /api/v1/viewers/{viewerID}/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	viewerID, err := viewerIDParam(r)
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "viewerID"})
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	profile, err := h.engine.Profile(ctx, viewerID)
	if err != nil {
		h.writeStoreError(rw, r, "profile", err)
		return
	}
	rw.Success(toProfilePayload(profile))
}
