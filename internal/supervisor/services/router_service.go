// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MessageRouter is the lifecycle of *events.Router.
type MessageRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the watermill router that invalidates caches on
// interaction events.
type EventRouterService struct {
	router MessageRouter
	logger zerolog.Logger
}

// NewEventRouterService wraps router.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(router MessageRouter, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		router: router,
		logger: logger.With().Str("service", "event-router").Logger(),
	}
}

// Serve implements suture.Service. A router that exits while ctx is live is
// reported as a failure so suture restarts it.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		if cerr := s.router.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("Event router close failed")
		}
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	return fmt.Errorf("event router stopped unexpectedly")
}

func (s *EventRouterService) String() string {
	return "event-router"
}
