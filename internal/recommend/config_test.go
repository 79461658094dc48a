// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "zero max", modify: func(c *Config) { c.Limits.MaxRecommendations = 0 }, wantErr: "max_recommendations"},
		{name: "zero timeout", modify: func(c *Config) { c.Limits.SourceTimeout = 0 }, wantErr: "source_timeout"},
		{name: "zero peer limit", modify: func(c *Config) { c.Limits.DefaultPeerLimit = 0 }, wantErr: "default_peer_limit"},
		{name: "zero recent events", modify: func(c *Config) { c.Limits.RecentEvents = 0 }, wantErr: "recent_events"},
		{name: "mood window too short", modify: func(c *Config) { c.History.MoodLimit = 13 }, wantErr: "mood_limit"},
		{name: "zero journal limit", modify: func(c *Config) { c.History.JournalLimit = 0 }, wantErr: "journal_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryLimits(t *testing.T) {
	tests := []struct {
		max, content, peers int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{3, 2, 1},
		{5, 2, 2},
		{10, 4, 3},
		{20, 8, 6},
		{25, 10, 8},
	}
	for _, tt := range tests {
		if got := ContentLimit(tt.max); got != tt.content {
			t.Errorf("ContentLimit(%d) = %d, want %d", tt.max, got, tt.content)
		}
		if got := PeerLimit(tt.max); got != tt.peers {
			t.Errorf("PeerLimit(%d) = %d, want %d", tt.max, got, tt.peers)
		}
	}
}
