// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Wetende/mind-digest-sub001/internal/models"
	"github.com/Wetende/mind-digest-sub001/internal/peers"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

const (
	defaultHandlerTimeout = 10 * time.Second
	maxUserIDLength       = 128
)

// HealthChecker is a dependency reported by the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ProfileStore stores peer-matching profiles.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, p peers.Profile) error
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Profiles is nil when peer matching is disabled.
	Profiles ProfileStore

	// Checks are pinged by the health endpoint, keyed by component name.
	Checks map[string]HealthChecker

	Version string

	// Timeout bounds each request. Default: 10s
	Timeout time.Duration
}

// Handler serves the recommendation API.
type Handler struct {
	engine    *recommend.Engine
	profiles  ProfileStore
	checks    map[string]HealthChecker
	version   string
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates a Handler for engine.
func NewHandler(engine *recommend.Engine, opts HandlerOptions) *Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHandlerTimeout
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		profiles:  opts.Profiles,
		checks:    opts.Checks,
		version:   opts.Version,
		timeout:   opts.Timeout,
		startTime: time.Now(),
	}
}

// userID reads and checks the {userID} path parameter. On failure the error
// response has already been written.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "userID")
	if id == "" || len(id) > maxUserIDLength {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID", nil)
		return "", false
	}
	return id, true
}

// Health reports component connectivity. It always answers 200; a failing
// component marks the service degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			components[name] = "unavailable"
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: components,
	}, models.Metadata{})
}
