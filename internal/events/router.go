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
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RouterService runs a Watermill router under a suture supervisor.
// Each Serve call builds a fresh router, because a closed router cannot be
// restarted.
type RouterService struct {
	subscriber   message.Subscriber
	invalidator  *Invalidator
	closeTimeout time.Duration
	logger       watermill.LoggerAdapter

	runningOnce sync.Once
	running     chan struct{}
}

// NewRouterService creates the service. It does not subscribe until Serve.
func NewRouterService(
	subscriber message.Subscriber,
	invalidator *Invalidator,
	closeTimeout time.Duration,
	logger watermill.LoggerAdapter,
) (*RouterService, error) {
	if subscriber == nil {
		return nil, errors.New("events: nil subscriber")
	}
	if invalidator == nil {
		return nil, errors.New("events: nil invalidator")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &RouterService{
		subscriber:   subscriber,
		invalidator:  invalidator,
		closeTimeout: closeTimeout,
		logger:       logger,
		running:      make(chan struct{}),
	}, nil
}

func (s *RouterService) newRouter() (*message.Router, error) {
	r, err := message.NewRouter(message.RouterConfig{CloseTimeout: s.closeTimeout}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	r.AddMiddleware(middleware.Recoverer)

	for _, topic := range s.invalidator.Topics() {
		r.AddConsumerHandler(
			"invalidate_profile_"+topic,
			topic,
			s.subscriber,
			s.invalidator.HandlerFor(topic),
		)
	}
	return r, nil
}

// Serve implements suture.Service.
func (s *RouterService) Serve(ctx context.Context) error {
	r, err := s.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-r.Running():
			s.runningOnce.Do(func() { close(s.running) })
		case <-ctx.Done():
		}
	}()

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("event router stopped unexpectedly")
}

// Running is closed once the first router has subscribed to its topics.
func (s *RouterService) Running() <-chan struct{} {
	return s.running
}

// String implements fmt.Stringer for suture logging.
func (s *RouterService) String() string {
	return "event-router"
}
