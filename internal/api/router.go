// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wetende/mind-digest-sub001/internal/auth"
)

// NewRouter wires the handler behind the middleware stack.
func NewRouter(h *Handler, mw *ChiMiddleware, authMW *auth.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.With(mw.RateLimitHealth()).Get("/api/v1/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireSelf)

			r.Post("/recommendations", h.Recommendations)
			r.Get("/peers", h.Peers)
			r.Post("/tasks", h.Tasks)
			r.Post("/adaptive", h.Adaptive)
			r.Post("/feedback", h.Feedback)
			r.Get("/patterns", h.Patterns)
			r.Put("/profile", h.Profile)
		})

		r.With(authMW.Authenticate).Get("/feedback/stats", h.FeedbackStats)
	})

	return r
}
