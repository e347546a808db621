// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/logging"
)

// NewBus creates the in-process pub/sub. The returned GoChannel is both the
// publisher and the subscriber side; Close it after the router has stopped.
func NewBus(cfg config.EventsConfig, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, logger)
}

// NewLogger adapts a zerolog logger to Watermill's LoggerAdapter via slog.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger(logger))
}
