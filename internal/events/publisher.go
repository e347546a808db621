// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/metrics"
	"github.com/tomtom215/sprout/internal/recommend"
)

// ErrPublisherClosed is returned by Publish* after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

// Publisher turns store writes into bus messages.
type Publisher struct {
	pub    message.Publisher
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a Watermill publisher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	return &Publisher{
		pub:    pub,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// PublishWatch announces a stored watch event.
//
//nolint:gocritic // hugeParam: ev passed by value, mirrors the store's return value
func (p *Publisher) PublishWatch(ctx context.Context, ev recommend.WatchEvent) error {
	return p.publish(ctx, TopicWatchRecorded, ev.ViewerID, WatchRecorded{
		ViewerID:       ev.ViewerID,
		ContentID:      ev.ContentID,
		WatchedAt:      ev.WatchedAt,
		WatchedSeconds: ev.WatchedSeconds,
		Completed:      ev.Completed,
	})
}

// PublishQuiz announces a stored quiz outcome.
func (p *Publisher) PublishQuiz(ctx context.Context, q recommend.QuizOutcome) error {
	return p.publish(ctx, TopicQuizRecorded, q.ViewerID, QuizRecorded(q))
}

func (p *Publisher) publish(ctx context.Context, topic string, viewerID int64, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg, err := newMessage(payload)
	if err != nil {
		return err
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataRequestID, id)
	}
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)

	p.logger.Debug().
		Str("topic", topic).
		Str("message_uuid", msg.UUID).
		Int64("viewer_id", viewerID).
		Msg("event published")
	return nil
}

// Close stops further publishing. The underlying publisher is not closed;
// it is shared with the subscriber side of the bus.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
