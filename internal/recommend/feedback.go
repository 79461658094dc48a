// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/metrics"
	"github.com/Wetende/mind-digest-sub001/internal/validation"
)

// Learning rate constants.
// The floor applies to the decayed product before the clamp, so it always
// dominates learningRateMin: no rating or age yields less than 0.1, and a
// 48h-old rating of 1 gives e^-2 (about 0.135) rather than a value near 0.01.
const (
	effectiveRating     = 0.7
	defaultRating       = 0.5
	learningDecayPeriod = 24 * time.Hour
	learningRateFloor   = 0.1
	learningRateMin     = 0.01
	learningRateMax     = 0.5
)

// FeedbackStats summarizes recorded interactions.
type FeedbackStats struct {
	Shown             int64   `json:"shown"`
	Accepted          int64   `json:"accepted"`
	Effective         int64   `json:"effective"`
	AcceptanceRate    float64 `json:"acceptance_rate"`
	EffectivenessRate float64 `json:"effectiveness_rate"`
}

// CategoryStats is FeedbackStats for one category.
type CategoryStats struct {
	Category Category `json:"category"`
	FeedbackStats
}

// FeedbackSummary is the full counter snapshot.
type FeedbackSummary struct {
	FeedbackStats
	Categories []CategoryStats `json:"categories"`
}

type counters struct {
	shown, accepted, effective int64
}

func (c *counters) apply(e *Event) {
	switch e.Action {
	case ActionShown:
		c.shown++
	case ActionAccepted, ActionCompleted:
		c.accepted++
	}
	if e.Rating != nil && *e.Rating >= effectiveRating {
		c.effective++
	}
}

func (c counters) stats() FeedbackStats {
	s := FeedbackStats{Shown: c.shown, Accepted: c.accepted, Effective: c.effective}
	if c.shown > 0 {
		s.AcceptanceRate = float64(c.accepted) / float64(c.shown)
		s.EffectivenessRate = float64(c.effective) / float64(c.shown)
	}
	return s
}

// FeedbackLoop records interaction events and keeps acceptance and
// effectiveness counters. It is safe for concurrent use.
type FeedbackLoop struct {
	log       InteractionLog
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	mu         sync.Mutex
	totals     counters
	byCategory map[Category]*counters
}

// NewFeedbackLoop creates a feedback loop. publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedbackLoop(log InteractionLog, publisher EventPublisher, logger zerolog.Logger) *FeedbackLoop {
	return &FeedbackLoop{
		log:        log,
		publisher:  publisher,
		logger:     logger.With().Str("component", "feedback").Logger(),
		now:        time.Now,
		byCategory: make(map[Category]*counters),
	}
}

// Record validates, stores and publishes an event, then updates counters.
// A missing ID or timestamp is filled in. Invalid events are rejected with
// an *InvalidEventError.
//
//nolint:gocritic // hugeParam: event passed by value, events are immutable once recorded
func (f *FeedbackLoop) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = f.now().UTC()
	}

	logger := logging.Ctx(ctx, f.logger)

	if verr := validation.ValidateStruct(&event); verr != nil {
		logger.Warn().
			Str("recommendation_id", event.RecommendationID).
			Str("action", string(event.Action)).
			Str("error", verr.Error()).
			Msg("Rejected malformed interaction event")
		return &InvalidEventError{Validation: verr}
	}

	if f.log != nil {
		if err := f.log.Record(ctx, event); err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
	}

	f.count(&event)
	metrics.FeedbackEvents.WithLabelValues(string(event.Action)).Inc()

	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, event); err != nil {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish interaction event")
		} else {
			metrics.EventsPublished.WithLabelValues("success").Inc()
		}
	}
	return nil
}

// RecordShown records a shown event for each item. Failures are logged and
// do not stop the remaining items.
func (f *FeedbackLoop) RecordShown(ctx context.Context, userID string, items []Item) {
	now := f.now().UTC()
	for i := range items {
		err := f.Record(ctx, Event{
			UserID:           userID,
			Type:             items[i].Type,
			RecommendationID: items[i].ID,
			Action:           ActionShown,
			Category:         items[i].Category,
			Timestamp:        now,
		})
		if err != nil {
			f.logger.Debug().Err(err).Str("item_id", items[i].ID).Msg("Failed to record shown event")
		}
	}
}

// Warm replays stored events into the counters without re-recording them.
func (f *FeedbackLoop) Warm(events []Event) {
	for i := range events {
		f.count(&events[i])
	}
}

func (f *FeedbackLoop) count(e *Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.totals.apply(e)
	if e.Category != "" {
		c, ok := f.byCategory[e.Category]
		if !ok {
			c = &counters{}
			f.byCategory[e.Category] = c
		}
		c.apply(e)
	}
}

// Stats returns the overall counters and rates.
func (f *FeedbackLoop) Stats() FeedbackStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals.stats()
}

// CategoryStats returns the counters for one category.
func (f *FeedbackLoop) CategoryStats(category Category) FeedbackStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byCategory[category]; ok {
		return c.stats()
	}
	return FeedbackStats{}
}

// Summary returns overall and per-category counters, categories sorted by name.
func (f *FeedbackLoop) Summary() FeedbackSummary {
	f.mu.Lock()
	defer f.mu.Unlock()

	summary := FeedbackSummary{
		FeedbackStats: f.totals.stats(),
		Categories:    make([]CategoryStats, 0, len(f.byCategory)),
	}
	for cat, c := range f.byCategory {
		summary.Categories = append(summary.Categories, CategoryStats{Category: cat, FeedbackStats: c.stats()})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	return summary
}

// CalculateLearningRate derives a weighting hint from a rating and its age:
// rating (default 0.5) times exp(-age/24h), floored at 0.1, then clamped to
// [0.01, 0.5].
//
//nolint:gocritic // hugeParam: fb passed by value for immutability
func CalculateLearningRate(fb Feedback, now time.Time) float64 {
	base := defaultRating
	if fb.Rating != nil {
		base = *fb.Rating
	}

	age := now.Sub(fb.Timestamp)
	if age < 0 || fb.Timestamp.IsZero() {
		age = 0
	}

	rate := base * math.Exp(-float64(age)/float64(learningDecayPeriod))
	rate = math.Max(rate, learningRateFloor)
	return math.Max(learningRateMin, math.Min(learningRateMax, rate))
}

// latestFeedback picks the most recent feedback. ok is false for an empty slice.
func latestFeedback(fbs []Feedback) (Feedback, bool) {
	if len(fbs) == 0 {
		return Feedback{}, false
	}
	latest := fbs[0]
	for _, fb := range fbs[1:] {
		if fb.Timestamp.After(latest.Timestamp) {
			latest = fb
		}
	}
	return latest, true
}

// feedbackFromEvents returns the newest rated event as feedback.
func feedbackFromEvents(events []Event) (Feedback, bool) {
	var best *Event
	for i := range events {
		e := &events[i]
		if e.Rating == nil {
			continue
		}
		if best == nil || e.Timestamp.After(best.Timestamp) {
			best = e
		}
	}
	if best == nil {
		return Feedback{}, false
	}
	return Feedback{
		RecommendationID: best.RecommendationID,
		Category:         best.Category,
		Rating:           best.Rating,
		Timestamp:        best.Timestamp,
	}, true
}
