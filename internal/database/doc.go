// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package database provides the DuckDB implementation of the recommendation store.

DB implements recommend.Store and recommend.Recorder over four tables:

  - viewers: id, name, age_band
  - content: catalog entries with moderation fields and view_count
  - watch_events: one row per viewing session
  - quiz_outcomes: one row per answered question

Age bands are stored as their ordinal (0 = unset) and content types as
their name ("" = unset). Eligibility filters are pushed into SQL:

	WHERE approved AND safety_score >= ?
	  AND (age_band = ? OR age_band = 0)
	  AND content_type = ?
	ORDER BY id
	LIMIT ?

Watch history reads join content so each event carries the item's
category, type and duration.

# Circuit Breaker

BreakerStore wraps any Backend with a sony/gobreaker circuit breaker.
Failures trip the breaker after a configured run of consecutive errors;
while open, every call fails immediately with recommend.ErrStoreUnavailable.
Lookups of unknown viewers or content are not failures.

# Demo Data

SeedDemo inserts a small catalog, three viewers and some history into any
Seeder. It is idempotent: an already-seeded store is left untouched.

# Testing

Tests open an in-memory database with Path ":memory:".
*/
package database
