// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Wetende/mind-digest-sub001/internal/api"
	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/metrics"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
	"github.com/Wetende/mind-digest-sub001/internal/supervisor"
	"github.com/Wetende/mind-digest-sub001/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("history_driver", cfg.History.Driver).
		Str("cache_backend", cfg.Cache.Backend).
		Str("events_backend", cfg.Events.Backend).
		Bool("peers_enabled", cfg.Peers.Enabled).
		Bool("ai_enabled", cfg.AI.Enabled).
		Msg("Starting Mind Digest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Closers run in reverse order once the tree has stopped.
	var closers closerStack
	defer closers.closeAll()
	fatal := func(err error, msg string) {
		logging.Error().Err(err).Msg(msg)
		cancel()
		closers.closeAll()
		os.Exit(1)
	}

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		fatal(err, "Failed to open stores")
	}
	closers.push(stores.closers()...)

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		fatal(err, "Failed to start event bus")
	}
	if bus != nil {
		closers.push(namedCloser{"event-bus", bus.Close})
	}

	collab, err := initCollaborators(ctx, cfg, logger)
	if err != nil {
		fatal(err, "Failed to initialize peer directory or AI provider")
	}
	closers.push(collab.closers...)

	deps := recommend.Deps{
		History:      stores.history,
		Interactions: stores.interactions,
		Cache:        stores.cache,
		Provider:     collab.provider,
		Peers:        collab.peers,
	}
	if bus != nil {
		deps.Publisher = bus
	}
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), deps, logger)
	if err != nil {
		fatal(err, "Failed to create recommendation engine")
	}

	n, err := warmFeedback(ctx, stores.interactions, engine.Feedback())
	if err != nil {
		logging.Warn().Err(err).Int("events", n).Msg("Feedback counters start incomplete")
	} else {
		logging.Info().Int("events", n).Msg("Feedback counters restored from interaction log")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		fatal(err, "Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewCacheSweeper(stores.cache, cfg.Cache.SweepInterval, logger))
	tree.AddDataService(services.NewBadgerGC(stores.interactions, cfg.Interactions.GCInterval, logger))

	if bus != nil {
		router, err := newEventRouter(bus, engine, logger)
		if err != nil {
			fatal(err, "Failed to create event router")
		}
		tree.AddMessagingService(services.NewEventRouterService(router, logger))
	}

	authMW, err := initAuth(cfg, logger)
	if err != nil {
		fatal(err, "Failed to initialize authentication")
	}

	handler := api.NewHandler(engine, api.HandlerOptions{
		Profiles: collab.profiles,
		Checks:   stores.healthChecks(),
		Version:  version,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(handler, api.NewChiMiddleware(api.MiddlewareConfigFromSecurity(&cfg.Security)), authMW),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
	}
	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Some services did not stop within the shutdown timeout")
	}
	logging.Info().Msg("Mind Digest stopped")
}
