// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package events carries history-changed notifications over an in-process
Watermill bus.

The API publishes a message after every successful write to the store:

	watch.recorded   WatchRecorded
	quiz.recorded    QuizRecorded

An [Invalidator] subscribes to both topics through a Watermill router and
drops the viewer's cached profile, so the next recommendation request
re-aggregates history. Delivery is best-effort: the bus is a
[gochannel.GoChannel] without persistence, and a lost message only means a
cached profile lives until its TTL.

The router runs under the supervisor as a [RouterService].
*/
package events
