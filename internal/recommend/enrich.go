// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/metrics"
)

// Social activity thresholds over the recent event window.
const (
	peerContactThreshold = 2 // more than this many social events
	activityMediumFrom   = 2
	activityHighFrom     = 5
)

// Enricher adds temporal and social fields to a request context.
type Enricher struct {
	log          InteractionLog
	recentEvents int
	logger       zerolog.Logger
}

// NewEnricher creates an enricher reading social activity from log. A nil
// log skips social enrichment.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEnricher(log InteractionLog, recentEvents int, logger zerolog.Logger) *Enricher {
	if recentEvents <= 0 {
		recentEvents = 10
	}
	return &Enricher{
		log:          log,
		recentEvents: recentEvents,
		logger:       logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich returns base with Season, IsWeekend, QuarterHour, WeekOfMonth,
// TimeOfDay (when unset) and Social filled in. If the interaction log
// cannot be read, base is returned unchanged.
//
//nolint:gocritic // hugeParam: base passed by value for immutability
func (e *Enricher) Enrich(ctx context.Context, userID string, base Context) Context {
	if base.Enriched {
		return base
	}

	out := base
	ts := base.Timestamp
	if ts.IsZero() {
		ts = time.Now()
		out.Timestamp = ts
	}

	out.Season = Season(ts.Month())
	out.IsWeekend = IsWeekend(ts.Weekday())
	out.QuarterHour = ts.Minute() / 15
	out.WeekOfMonth = WeekOfMonth(ts.Day())
	if out.TimeOfDay == "" {
		out.TimeOfDay = TimeOfDay(ts.Hour())
	}

	if e.log != nil {
		events, err := e.log.Recent(ctx, userID, e.recentEvents, ActionShown)
		if err != nil {
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("Social enrichment failed, using base context")
			metrics.EnrichmentFailures.WithLabelValues("social").Inc()
			return base
		}
		out.Social = SocialFromEvents(events)
	}

	out.Enriched = true
	return out
}

// Season maps a month to its northern-hemisphere season.
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// IsWeekend reports whether d is Saturday or Sunday.
func IsWeekend(d time.Weekday) bool {
	return d == time.Sunday || d == time.Saturday
}

// WeekOfMonth returns ceil(day/7).
func WeekOfMonth(day int) int {
	return (day + 6) / 7
}

// TimeOfDay buckets an hour: 5-11 morning, 12-16 afternoon, 17-20 evening,
// otherwise night.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// SocialFromEvents summarizes social activity in a window of events.
func SocialFromEvents(events []Event) *SocialContext {
	social := 0
	for i := range events {
		if events[i].IsSocial() {
			social++
		}
	}

	level := ActivityHigh
	switch {
	case social < activityMediumFrom:
		level = ActivityLow
	case social < activityHighFrom:
		level = ActivityMedium
	}

	return &SocialContext{
		HasRecentPeerContact: social > peerContactThreshold,
		ActivityLevel:        level,
	}
}
