// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Wetende/mind-digest-sub001/internal/models"
	"github.com/Wetende/mind-digest-sub001/internal/peers"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

const defaultPeerLimit = 5

func bundleMeta(start time.Time, source recommend.Source, fallback bool) models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      source == recommend.SourceCached,
		Fallback:    fallback,
	}
}

// decodeContext reads an optional recommend.Context body.
func decodeContext(w http.ResponseWriter, r *http.Request) (recommend.Context, bool) {
	var rc recommend.Context
	if err := decodeBody(w, r, &rc); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return rc, false
	}
	if apiErr := validateRequest(&rc); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return rc, false
	}
	return rc, true
}

// Recommendations handles POST /api/v1/users/{userID}/recommendations.
//
// Query parameters: max (bundle size override), skip_cache.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}

	maxRecs, ok := getIntParam(r, "max", 0)
	if !ok || maxRecs < 0 || maxRecs > 50 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "max must be an integer between 0 and 50", nil)
		return
	}

	rc, ok := decodeContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	bundle := h.engine.GenerateContextualRecommendations(ctx, id, rc, recommend.Options{
		MaxRecommendations: maxRecs,
		SkipCache:          getBoolParam(r, "skip_cache"),
	})
	respondSuccess(w, http.StatusOK, bundle, bundleMeta(start, bundle.Source, bundle.Fallback))
}

// Peers handles GET /api/v1/users/{userID}/peers.
//
// Query parameters: limit (default 5, max 50), interests (comma-separated),
// skip_cache.
func (h *Handler) Peers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}

	limit, ok := getIntParam(r, "limit", defaultPeerLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	opts := recommend.PeerOptions{
		Limit:     limit,
		Interests: getListParam(r, "interests"),
		SkipCache: getBoolParam(r, "skip_cache"),
	}
	if apiErr := validateRequest(&opts); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	bundle := h.engine.GeneratePeerRecommendations(ctx, id, opts)
	respondSuccess(w, http.StatusOK, bundle, bundleMeta(start, bundle.Source, bundle.Fallback))
}

// Tasks handles POST /api/v1/users/{userID}/tasks.
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}
	rc, ok := decodeContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	bundle := h.engine.GenerateWellnessTaskRecommendations(ctx, id, rc)
	respondSuccess(w, http.StatusOK, bundle, bundleMeta(start, bundle.Source, bundle.Fallback))
}

// Adaptive handles POST /api/v1/users/{userID}/adaptive.
func (h *Handler) Adaptive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var eng recommend.Engagement
	if err := decodeBody(w, r, &eng); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&eng); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result := h.engine.GetAdaptiveRecommendations(ctx, id, eng)
	fallback := result.Bundle != nil && result.Bundle.Fallback
	respondSuccess(w, http.StatusOK, result, bundleMeta(start, result.Source, fallback))
}

// Feedback handles POST /api/v1/users/{userID}/feedback. The path user
// overrides any user_id in the body.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var event recommend.Event
	if err := decodeBody(w, r, &event); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	event.UserID = id
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.engine.Feedback().Record(ctx, event); err != nil {
		var invalid *recommend.InvalidEventError
		if errors.As(err, &invalid) {
			respondAPIError(w, http.StatusBadRequest, fromValidation(invalid.Validation))
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record feedback", err)
		return
	}

	respondSuccess(w, http.StatusCreated, event, models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// Patterns handles GET /api/v1/users/{userID}/patterns.
func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	analysis := h.engine.AnalyzeUser(ctx, id)
	respondSuccess(w, http.StatusOK, analysis, models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// FeedbackStatsResponse is the body of GET /api/v1/feedback/stats.
type FeedbackStatsResponse struct {
	Feedback recommend.FeedbackSummary `json:"feedback"`
	Engine   recommend.EngineStats     `json:"engine"`
}

// FeedbackStats handles GET /api/v1/feedback/stats.
func (h *Handler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, FeedbackStatsResponse{
		Feedback: h.engine.Feedback().Summary(),
		Engine:   h.engine.Stats(),
	}, models.Metadata{})
}

// ProfileRequest is the body of PUT /api/v1/users/{userID}/profile.
type ProfileRequest struct {
	DisplayName string   `json:"display_name" validate:"required,max=64"`
	Interests   []string `json:"interests" validate:"max=20,dive,required,max=32"`
}

// ProfileResponse echoes the stored profile.
type ProfileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Interests   []string  `json:"interests"`
	Vector      []float32 `json:"vector"`
}

// Profile handles PUT /api/v1/users/{userID}/profile. The behavior vector
// is computed from the user's current mood patterns.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Peer matching is disabled", nil)
		return
	}

	var req ProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	analysis := h.engine.AnalyzeUser(ctx, id)
	profile := peers.Profile{
		UserID:      id,
		DisplayName: req.DisplayName,
		Interests:   req.Interests,
		Vector:      peers.BehaviorVector(&analysis),
	}
	if err := h.profiles.UpsertProfile(ctx, profile); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Failed to store profile", err)
		return
	}

	// Cached peer bundles were computed against the old profile.
	if _, err := h.engine.InvalidateUser(ctx, id); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to invalidate cache", err)
		return
	}

	respondSuccess(w, http.StatusOK, ProfileResponse{
		UserID:      id,
		DisplayName: profile.DisplayName,
		Interests:   profile.Interests,
		Vector:      profile.Vector,
	}, models.Metadata{})
}
