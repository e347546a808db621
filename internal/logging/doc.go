// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

// Package logging provides the service-wide zerolog logger.
//
// Call Init once from main; before that a JSON logger at info level
// writes to stderr.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("addr", addr).Msg("server starting")
//
// Components receive a zerolog.Logger by value and tag it:
//
//	logger := logging.Component("events")
//
// Request-scoped logging picks up ids stored in the context:
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Warn().Err(err).Msg("profile degraded")
//
// SlogHandler bridges to libraries that expect *slog.Logger, such as
// sutureslog and watermill.
package logging
