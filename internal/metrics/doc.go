// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package metrics registers the Prometheus collectors for the service.

Collectors are package-level and registered with promauto on the default
registry. They are exposed at /metrics by the API router.

# Recommendation Engine

  - recommend_requests_total{mode,outcome}
  - recommend_duration_seconds{mode}
  - recommend_candidates
  - recommend_stage_failures_total{stage}
  - recommend_profile_cache_total{result}

RecommendObserver implements recommend.Observer and feeds these.

# Store

  - duckdb_query_duration_seconds{operation}
  - duckdb_query_errors_total{operation}
  - store_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - store_circuit_breaker_transitions_total{name,from_state,to_state}

# HTTP and Events

  - api_requests_total{method,route,status}
  - api_request_duration_seconds{method,route}
  - api_active_requests
  - events_published_total{topic}
  - events_handled_total{topic,result}
*/
package metrics
