// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package main is the entry point for the Sprout recommendation server.

Sprout serves ranked, explained content recommendations for young viewers
from a curated catalog. Every list is filtered for safety and age
appropriateness before it is scored, diversified and explained.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("sprout")
	├── DataSupervisor ("data-layer")
	│   ├── profile-cache-sweep (when the profile cache is enabled)
	│   └── duckdb-checkpoint   (duckdb backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-router (watch/quiz events -> profile invalidation)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: DuckDB behind a circuit breaker, or the in-memory store
 4. Demo data (optional, SEED_DEMO_DATA=true)
 5. Recommendation engine
 6. Event bus: Watermill GoChannel with publisher and invalidation router
 7. HTTP API: Chi router with middleware stack
 8. Supervisor tree

# Configuration

Configuration is loaded via Koanf v2 (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Common environment variables:

	HTTP_PORT=8080
	STORE_BACKEND=duckdb          # duckdb or memory
	DUCKDB_PATH=/data/sprout.duckdb
	SEED_DEMO_DATA=false
	RECOMMEND_SEED=0              # 0 seeds the candidate shuffle from the clock
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service within its shutdown timeout. The event publisher, the bus and the
database are closed afterwards, in that order.

# Example Usage

In-memory store with demo data:

	export STORE_BACKEND=memory
	export SEED_DEMO_DATA=true
	./sprout
	curl localhost:8080/api/v1/viewers/1/recommendations?explain=true
*/
package main
