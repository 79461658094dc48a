// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

// CacheInvalidator drops a user's cached recommendations.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) (int, error)
}

// Invalidator clears cached bundles when a user acts on a recommendation.
type Invalidator struct {
	cache  CacheInvalidator
	logger zerolog.Logger
}

// NewInvalidator creates the cache invalidation handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInvalidator(cache CacheInvalidator, logger zerolog.Logger) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: logger.With().Str("component", "cache_invalidator").Logger(),
	}
}

// Handle processes one event message. Undecodable messages are dropped;
// invalidation errors are returned so the router retries.
func (i *Invalidator) Handle(msg *message.Message) error {
	ev, err := DecodeEvent(msg)
	if err != nil {
		i.logger.Warn().Err(err).Msg("Dropping malformed event")
		return nil
	}
	if ev.Action == recommend.ActionShown || ev.UserID == "" {
		return nil
	}

	ctx := msg.Context()
	if cid := middleware.MessageCorrelationID(msg); cid != "" {
		ctx = logging.ContextWithCorrelationID(ctx, cid)
	}

	n, err := i.cache.InvalidateUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("invalidate cache for %s: %w", ev.UserID, err)
	}
	logging.Ctx(ctx, i.logger).Debug().
		Str("user_id", ev.UserID).
		Str("action", string(ev.Action)).
		Int("removed", n).
		Msg("Invalidated cached recommendations")
	return nil
}

// RouterConfig configures the consumer router.
type RouterConfig struct {
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
	}
}

// Router runs event consumers.
type Router struct {
	router *message.Router
	logger zerolog.Logger
}

// NewRouter creates a router consuming the bus topic with inv.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg RouterConfig, bus *Bus, inv *Invalidator, logger zerolog.Logger) (*Router, error) {
	wmLog := WatermillLogger(logger)
	r, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLog)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2,
			Logger:          wmLog,
		}.Middleware,
	)
	r.AddConsumerHandler("cache_invalidation", bus.Topic(), bus.Subscriber(), inv.Handle)

	return &Router{router: r, logger: logger.With().Str("component", "event_router").Logger()}, nil
}

// Run blocks until ctx is cancelled or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info().Msg("Event router starting")
	return r.router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
