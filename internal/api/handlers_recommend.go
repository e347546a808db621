// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/recommend"
)

// RecommendationsQuery holds the validated query string of the recommendations route.
// The upper bound on Limit is configured, so the handler checks it.
type RecommendationsQuery struct {
	Limit   *int   `json:"limit" validate:"omitempty,min=1"`
	Mode    string `json:"mode" validate:"omitempty,oneof=mixed educational entertainment"`
	Explain bool   `json:"explain"`
}

// RecommendationItem is one entry of the recommendations payload.
type RecommendationItem struct {
	ContentID            int64                     `json:"content_id"`
	Title                string                    `json:"title"`
	Description          string                    `json:"description"`
	Duration             int                       `json:"duration"`
	ThumbnailPath        string                    `json:"thumbnail_path"`
	Category             string                    `json:"category"`
	AgeGroup             string                    `json:"age_group"`
	ContentType          recommend.ContentType     `json:"content_type"`
	SafetyScore          float64                   `json:"safety_score"`
	RecommendationScore  float64                   `json:"recommendation_score"`
	RecommendationReason string                    `json:"recommendation_reason"`
	ScoreBreakdown       *recommend.ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// RecommendationsPayload is the data of a recommendations response.
type RecommendationsPayload struct {
	ViewerID        int64                `json:"viewer_id"`
	Mode            recommend.Mode       `json:"mode"`
	Count           int                  `json:"count"`
	Recommendations []RecommendationItem `json:"recommendations"`
	CandidateCount  int                  `json:"candidate_count"`
	ViewerFound     bool                 `json:"viewer_found"`
	ProfileDegraded bool                 `json:"profile_degraded"`
	GeneratedAt     time.Time            `json:"generated_at"`
	LatencyMS       int64                `json:"latency_ms"`
}

// ageGroup is the display label of an item's band.
func ageGroup(b recommend.AgeBand) string {
	if label := b.Label(); label != "" {
		return label
	}
	return "general"
}

func parseRecommendationsQuery(r *http.Request) (RecommendationsQuery, string) {
	q := r.URL.Query()
	out := RecommendationsQuery{Mode: q.Get("mode")}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return out, "limit must be an integer"
		}
		out.Limit = &n
	}
	if raw := q.Get("explain"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, "explain must be a boolean"
		}
		out.Explain = b
	}
	return out, ""
}

// toRecommendationsPayload flattens an engine response for the wire.
//
//nolint:gocritic // hugeParam: query passed by value, read-only
func toRecommendationsPayload(resp *recommend.Response, query RecommendationsQuery) RecommendationsPayload {
	items := make([]RecommendationItem, len(resp.Items))
	for i := range resp.Items {
		rec := &resp.Items[i]
		items[i] = RecommendationItem{
			ContentID:            rec.Item.ID,
			Title:                rec.Item.Title,
			Description:          rec.Item.Description,
			Duration:             rec.Item.DurationSeconds,
			ThumbnailPath:        rec.Item.ThumbnailPath,
			Category:             rec.Item.Category,
			AgeGroup:             ageGroup(rec.Item.AgeBand),
			ContentType:          rec.Item.ContentType,
			SafetyScore:          rec.Item.SafetyScore,
			RecommendationScore:  round2(rec.Score),
			RecommendationReason: rec.Reason,
		}
		if query.Explain {
			bd := rec.Breakdown
			items[i].ScoreBreakdown = &bd
		}
	}
	return RecommendationsPayload{
		ViewerID:        resp.ViewerID,
		Mode:            resp.Mode,
		Count:           len(items),
		Recommendations: items,
		CandidateCount:  resp.Metadata.CandidateCount,
		ViewerFound:     resp.Metadata.ViewerFound,
		ProfileDegraded: resp.Metadata.ProfileDegraded,
		GeneratedAt:     resp.Metadata.GeneratedAt,
		LatencyMS:       resp.Metadata.LatencyMS,
	}
}

// Recommendations handles GET /api/v1/viewers/{viewerID}/recommendations.
// An unknown viewer yields 200 with an empty list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	viewerID, err := viewerIDParam(r)
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "viewerID"})
		return
	}

	query, problem := parseRecommendationsQuery(r)
	if problem != "" {
		rw.ValidationError(problem, nil)
		return
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		writeValidation(rw, apiErr)
		return
	}
	if query.Limit != nil && *query.Limit > h.maxLimit {
		rw.ValidationError(fmt.Sprintf("limit must be at most %d", h.maxLimit),
			map[string]interface{}{"field": "limit", "tag": "max", "value": *query.Limit})
		return
	}

	req := recommend.Request{
		ViewerID:  viewerID,
		Mode:      recommend.Mode(query.Mode),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if query.Limit != nil {
		req.Limit = *query.Limit
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		h.writeStoreError(rw, r, "recommend", err)
		return
	}
	rw.Success(toRecommendationsPayload(resp, query))
}
