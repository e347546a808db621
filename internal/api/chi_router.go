// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/middleware"
)

// NewRouter wires the handler into a chi router.
//
//nolint:gocritic // hugeParam: mwCfg passed by value, read once at startup
func NewRouter(h *Handler, mwCfg MiddlewareConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(CORS(mwCfg))
		r.Use(RateLimit(mwCfg))

		r.Route("/viewers/{viewerID}", func(r chi.Router) {
			r.Get("/recommendations", h.Recommendations)
			r.Get("/profile", h.Profile)
			r.Post("/watch-events", h.RecordWatch)
			r.Post("/quiz-outcomes", h.RecordQuiz)
		})
	})

	return r
}
