// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the data of a health response.
type HealthStatus struct {
	Status         string  `json:"status"`
	StoreConnected bool    `json:"store_connected"`
	Uptime         float64 `json:"uptime_seconds"`
	CheckedAt      string  `json:"checked_at"`
}

// Health handles GET /health. It answers 503 when the store does not respond.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	connected := h.health == nil || h.health.Ping(ctx) == nil
	now := h.now()
	status := HealthStatus{
		Status:         "healthy",
		StoreConnected: connected,
		Uptime:         now.Sub(h.startTime).Seconds(),
		CheckedAt:      now.UTC().Format(time.RFC3339),
	}
	if !connected {
		status.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta()})
		return
	}
	rw.Success(status)
}
