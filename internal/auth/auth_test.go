// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/logging"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

func newTestManager(t *testing.T, issuer string) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, JWTIssuer: issuer})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("NewJWTManager() error = nil, want empty secret error")
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager(t, "mind-digest")

	token, err := m.GenerateToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newTestManager(t, "mind-digest")

	expired, _ := m.GenerateToken("user-1", -time.Hour)
	otherIssuer, _ := newTestManager(t, "someone-else").GenerateToken("user-1", time.Hour)
	otherSecret, _ := (&JWTManager{secret: []byte(strings.Repeat("x", 40)), issuer: "mind-digest"}).GenerateToken("user-1", time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "mind-digest",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong issuer", otherIssuer},
		{"wrong secret", otherSecret},
		{"alg none", noneAlg},
		{"no subject", noSubject},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() error = nil, want rejection")
			}
		})
	}
}

func newTestRouter(mw *Middleware) http.Handler {
	r := chi.NewRouter()
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Use(mw.RequireSelf)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-User", logging.UserIDFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t, "")
	token, err := m.GenerateToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		mode       string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "none mode passes", mode: ModeNone, path: "/users/anyone/", wantStatus: http.StatusOK},
		{name: "missing token", mode: ModeJWT, path: "/users/user-1/", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", mode: ModeJWT, path: "/users/user-1/", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "bad token", mode: ModeJWT, path: "/users/user-1/", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "own data", mode: ModeJWT, path: "/users/user-1/", header: "Bearer " + token, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "other user", mode: ModeJWT, path: "/users/user-2/", header: "Bearer " + token, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(NewMiddleware(tt.mode, m, zerolog.Nop()))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("X-User"); got != tt.wantUser {
				t.Errorf("user in context = %q, want %q", got, tt.wantUser)
			}
			if rec.Code != http.StatusOK && !strings.Contains(rec.Body.String(), `"status":"error"`) {
				t.Errorf("error body = %s, want APIResponse envelope", rec.Body.String())
			}
		})
	}
}
