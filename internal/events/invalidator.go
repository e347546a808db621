// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/metrics"
)

// ProfileInvalidator drops a viewer's cached profile.
// *recommend.Engine satisfies it.
type ProfileInvalidator interface {
	InvalidateProfile(viewerID int64) bool
}

// Invalidator consumes history-changed messages and invalidates cached profiles.
type Invalidator struct {
	target ProfileInvalidator
	logger zerolog.Logger
}

// NewInvalidator creates an Invalidator for target.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewInvalidator(target ProfileInvalidator, logger zerolog.Logger) *Invalidator {
	return &Invalidator{
		target: target,
		logger: logger.With().Str("component", "profile_invalidator").Logger(),
	}
}

// Topics lists the topics the Invalidator subscribes to.
func (i *Invalidator) Topics() []string {
	return []string{TopicWatchRecorded, TopicQuizRecorded}
}

// HandlerFor returns the consumer function for one topic.
//
// Malformed payloads are acked: redelivering them cannot succeed, and the
// cached profile still expires on its TTL.
func (i *Invalidator) HandlerFor(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		viewerID, err := ViewerIDFromMessage(msg)
		metrics.RecordEventHandled(topic, err)
		if err != nil {
			i.logger.Warn().Err(err).
				Str("topic", topic).
				Str("message_uuid", msg.UUID).
				Msg("dropping malformed event")
			return nil
		}

		removed := i.target.InvalidateProfile(viewerID)
		i.logger.Debug().
			Str("topic", topic).
			Str("message_uuid", msg.UUID).
			Str("correlation_id", msg.Metadata.Get(MetadataCorrelationID)).
			Int64("viewer_id", viewerID).
			Bool("removed", removed).
			Msg("profile invalidation handled")
		return nil
	}
}
