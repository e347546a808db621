// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package services adapts Sprout's long-running components to suture.Service.

	HTTPServerService   serves the API; lives in the api layer
	PeriodicService     runs a housekeeping task on a ticker; lives in the data layer

The event router implements suture.Service itself (events.RouterService) and
is added to the messaging layer directly.

Every service returns ctx.Err() when its context is canceled, which suture
treats as a clean stop.
*/
package services
