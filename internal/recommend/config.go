// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// History controls how much history feeds pattern analysis.
	History HistoryConfig `json:"history"`

	// TrackShown records a "shown" event for every returned item.
	TrackShown bool `json:"track_shown"`

	// CacheEnabled turns bundle caching on.
	CacheEnabled bool `json:"cache_enabled"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxRecommendations is the default bundle size.
	MaxRecommendations int `json:"max_recommendations"`

	// SourceTimeout bounds each source fetch and each AI call.
	SourceTimeout time.Duration `json:"source_timeout"`

	// DefaultPeerLimit is used when PeerOptions.Limit is zero.
	DefaultPeerLimit int `json:"default_peer_limit"`

	// RecentEvents is how many recent events the enricher inspects.
	RecentEvents int `json:"recent_events"`
}

// HistoryConfig controls history reads.
type HistoryConfig struct {
	MoodLimit    int `json:"mood_limit"`
	JournalLimit int `json:"journal_limit"`
}

// Share of MaxRecommendations given to content and peers, in tenths.
const (
	contentTenths = 4
	peerTenths    = 3
)

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxRecommendations: 10,
			SourceTimeout:      8 * time.Second,
			DefaultPeerLimit:   5,
			RecentEvents:       10,
		},
		History: HistoryConfig{
			MoodLimit:    50,
			JournalLimit: 20,
		},
		TrackShown:   true,
		CacheEnabled: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Limits.MaxRecommendations < 1 {
		return fmt.Errorf("limits.max_recommendations must be positive, got %d", c.Limits.MaxRecommendations)
	}
	if c.Limits.SourceTimeout <= 0 {
		return fmt.Errorf("limits.source_timeout must be positive, got %v", c.Limits.SourceTimeout)
	}
	if c.Limits.DefaultPeerLimit < 1 {
		return fmt.Errorf("limits.default_peer_limit must be positive, got %d", c.Limits.DefaultPeerLimit)
	}
	if c.Limits.RecentEvents < 1 {
		return fmt.Errorf("limits.recent_events must be positive, got %d", c.Limits.RecentEvents)
	}
	if c.History.MoodLimit < 14 {
		return fmt.Errorf("history.mood_limit must be at least 14, got %d", c.History.MoodLimit)
	}
	if c.History.JournalLimit < 1 {
		return fmt.Errorf("history.journal_limit must be positive, got %d", c.History.JournalLimit)
	}
	return nil
}

// ContentLimit returns ceil(max*0.4).
func ContentLimit(maxItems int) int {
	return ceilTenths(maxItems, contentTenths)
}

// PeerLimit returns ceil(max*0.3).
func PeerLimit(maxItems int) int {
	return ceilTenths(maxItems, peerTenths)
}

// ceilTenths computes ceil(n*tenths/10) in integers to avoid float drift.
func ceilTenths(n, tenths int) int {
	if n <= 0 {
		return 0
	}
	return (n*tenths + 9) / 10
}
