// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/models"
)

// Auth modes.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

type contextKey string

// ClaimsContextKey holds *Claims for authenticated requests.
const ClaimsContextKey contextKey = "claims"

// Middleware enforces the configured auth mode.
type Middleware struct {
	mode   string
	jwt    *JWTManager
	logger zerolog.Logger
}

// NewMiddleware creates the middleware. jwtManager may be nil in none mode.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(mode string, jwtManager *JWTManager, logger zerolog.Logger) *Middleware {
	return &Middleware{
		mode:   mode,
		jwt:    jwtManager,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Authenticate validates the bearer token and stores its claims and subject
// in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Missing bearer token")
			return
		}

		claims, err := m.jwt.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			m.logger.Debug().Err(err).Msg("Token rejected")
			writeError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = logging.ContextWithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSelf rejects requests whose token subject differs from the
// {userID} path parameter.
func (m *Middleware) RequireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next.ServeHTTP(w, r)
			return
		}

		claims := GetClaims(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required")
			return
		}
		if claims.Subject != chi.URLParam(r, "userID") {
			m.logger.Warn().
				Str("subject", claims.Subject).
				Str("path", r.URL.Path).
				Msg("Cross-user access denied")
			writeError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "Access to another user's data is not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims returns the claims stored by Authenticate, or nil.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	json.NewEncoder(w).Encode(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}
