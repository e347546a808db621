// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

/*
Package supervisor runs Sprout's long-lived services under a suture v4 tree.

	root ("sprout")
	├── data-layer        profile cache sweeps, DuckDB checkpoints
	├── messaging-layer   watermill event router (profile invalidation)
	└── api-layer         HTTP server

Each layer is its own supervisor, so a crash-looping event router backs off
without taking the HTTP server down with it. Supervisor events are logged
through sutureslog on top of the zerolog-backed slog handler.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddMessagingService(routerSvc)
	tree.AddAPIService(httpSvc)
	err = tree.Serve(ctx) // returns when ctx is canceled
*/
package supervisor
