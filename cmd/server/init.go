// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/api"
	"github.com/Wetende/mind-digest-sub001/internal/auth"
	"github.com/Wetende/mind-digest-sub001/internal/cache"
	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/events"
	"github.com/Wetende/mind-digest-sub001/internal/history"
	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/peers"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/storage"
	"github.com/Wetende/mind-digest-sub001/internal/suggest"
)

// warmBatch is how many logged events are folded into the counters at once.
const warmBatch = 1000

type namedCloser struct {
	name  string
	close func() error
}

type closerStack struct {
	items []namedCloser
}

func (s *closerStack) push(c ...namedCloser) {
	s.items = append(s.items, c...)
}

// closeAll closes in reverse order. It is safe to call twice.
func (s *closerStack) closeAll() {
	for i := len(s.items) - 1; i >= 0; i-- {
		if err := s.items[i].close(); err != nil {
			logging.Error().Err(err).Str("component", s.items[i].name).Msg("Error during shutdown")
		}
	}
	s.items = nil
}

// pingFunc adapts a ping function to api.HealthChecker.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// stores are the persistent backends the engine reads and writes.
type stores struct {
	history      history.Store
	interactions *storage.BadgerLog
	cache        cache.Cacher
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	s := &stores{}

	h, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	s.history = h

	ilog, err := storage.OpenBadgerLog(storage.Options{
		Path:     cfg.Interactions.Path,
		InMemory: cfg.Interactions.InMemory,
	}, logger)
	if err != nil {
		_ = h.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("interaction log: %w", err)
	}
	s.interactions = ilog

	c, err := openCache(ctx, &cfg.Cache, logger)
	if err != nil {
		_ = ilog.Close() //nolint:errcheck // already failing
		_ = h.Close()    //nolint:errcheck // already failing
		return nil, fmt.Errorf("cache: %w", err)
	}
	s.cache = c
	return s, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func openCache(ctx context.Context, cfg *config.CacheConfig, logger zerolog.Logger) (cache.Cacher, error) {
	if cfg.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			MaxAge:   cfg.MaxAge,
		}, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return cache.New(cfg.MaxAge), nil
}

func (s *stores) closers() []namedCloser {
	return []namedCloser{
		{"history", s.history.Close},
		{"interaction-log", s.interactions.Close},
		{"cache", s.cache.Close},
	}
}

func (s *stores) healthChecks() map[string]api.HealthChecker {
	return map[string]api.HealthChecker{
		"history": s.history,
		"interaction_log": pingFunc(func(ctx context.Context) error {
			_, err := s.interactions.Recent(ctx, "health-check", 1)
			return err
		}),
	}
}

// warmFeedback replays the interaction log into the feedback counters so
// acceptance rates survive restarts.
func warmFeedback(ctx context.Context, log *storage.BadgerLog, loop *recommend.FeedbackLoop) (int, error) {
	batch := make([]recommend.Event, 0, warmBatch)
	n, err := log.ForEach(ctx, func(e recommend.Event) error {
		batch = append(batch, e)
		if len(batch) == warmBatch {
			loop.Warm(batch)
			batch = batch[:0]
		}
		return nil
	})
	loop.Warm(batch)
	return n, err
}

// buildEngineConfig maps application config onto the engine's config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	if cfg.Recommend.MaxRecommendations > 0 {
		ec.Limits.MaxRecommendations = cfg.Recommend.MaxRecommendations
	}
	if cfg.Recommend.SourceTimeout > 0 {
		ec.Limits.SourceTimeout = cfg.Recommend.SourceTimeout
	}
	if cfg.Recommend.HistoryLimit > 0 {
		ec.History.MoodLimit = cfg.Recommend.HistoryLimit
	}
	if cfg.Recommend.JournalLimit > 0 {
		ec.History.JournalLimit = cfg.Recommend.JournalLimit
	}
	ec.TrackShown = cfg.Recommend.TrackShown
	return ec
}

// buildBusConfig returns nil when events are disabled.
func buildBusConfig(cfg *config.EventsConfig) *events.Config {
	if cfg.Backend == "none" {
		return nil
	}
	return &events.Config{
		Backend:       cfg.Backend,
		NATSURL:       cfg.NATSURL,
		Topic:         cfg.Topic,
		ConsumerGroup: cfg.ConsumerGroup,
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEventBus(cfg *config.Config, logger zerolog.Logger) (*events.Bus, error) {
	bc := buildBusConfig(&cfg.Events)
	if bc == nil {
		logger.Info().Msg("Event bus disabled (EVENTS_BACKEND=none)")
		return nil, nil
	}
	return events.NewBus(*bc, logger)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEventRouter(bus *events.Bus, engine *recommend.Engine, logger zerolog.Logger) (*events.Router, error) {
	return events.NewRouter(events.DefaultRouterConfig(), bus, events.NewInvalidator(engine, logger), logger)
}

// collaborators are the optional remote services. Unset fields stay nil
// interfaces so the engine treats them as absent.
type collaborators struct {
	peers    recommend.PeerDirectory
	profiles api.ProfileStore
	provider recommend.SuggestionProvider
	closers  []namedCloser
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initCollaborators(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*collaborators, error) {
	c := &collaborators{}

	if cfg.Peers.Enabled {
		dir, err := peers.NewQdrantDirectory(ctx, peers.Options{
			Host:       cfg.Peers.Host,
			Port:       cfg.Peers.Port,
			APIKey:     cfg.Peers.APIKey,
			UseTLS:     cfg.Peers.UseTLS,
			Collection: cfg.Peers.Collection,
			MinScore:   cfg.Peers.MinScore,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("qdrant: %w", err)
		}
		c.peers, c.profiles = dir, dir
		c.closers = append(c.closers, namedCloser{"qdrant", dir.Close})
	} else {
		logger.Info().Msg("Peer directory disabled; peer suggestions use the AI provider only")
	}

	if cfg.AI.Enabled {
		p, err := suggest.NewOpenAIProvider(suggest.OptionsFromConfig(&cfg.AI), logger)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		c.provider = p
	} else {
		logger.Info().Msg("AI provider disabled; recommendations are rule-based")
	}
	return c, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initAuth(cfg *config.Config, logger zerolog.Logger) (*auth.Middleware, error) {
	if cfg.Security.AuthMode == auth.ModeNone {
		logger.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); any caller can read any user's data")
		return auth.NewMiddleware(auth.ModeNone, nil, logger), nil
	}
	manager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, err
	}
	return auth.NewMiddleware(auth.ModeJWT, manager, logger), nil
}
