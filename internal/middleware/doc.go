// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package middleware provides the HTTP middleware used by the API router.

  - RequestID: reads or generates X-Request-ID and stores it, with a fresh
    correlation id, in the request context for logging.Ctx.
  - PrometheusMetrics: records api_requests_total and
    api_request_duration_seconds labelled by the chi route pattern.
  - AccessLog: one zerolog line per request.

All middleware has the func(http.Handler) http.Handler shape so it can be
passed straight to chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(logger))
*/
package middleware
