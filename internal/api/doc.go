// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package api exposes the recommendation engine over HTTP.

Routes are served by a chi router:

	GET  /health
	GET  /metrics
	GET  /api/v1/viewers/{viewerID}/recommendations?limit=20&mode=mixed&explain=false
	GET  /api/v1/viewers/{viewerID}/profile
	POST /api/v1/viewers/{viewerID}/watch-events
	POST /api/v1/viewers/{viewerID}/quiz-outcomes

Every JSON response uses the [APIResponse] envelope. Errors map as follows:

	invalid path, query or body     400 VALIDATION_ERROR / BAD_REQUEST
	unknown viewer or content       404 NOT_FOUND (profile and writes only)
	store unavailable               503 SERVICE_UNAVAILABLE
	anything else                   500 INTERNAL_ERROR

An unknown viewer on the recommendations route is not an error: the engine
answers with an empty list and viewer_found=false.

Each handler runs under its own context timeout (server.handler_timeout).
*/
package api
