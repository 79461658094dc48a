// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/storage"
)

func TestBuildEngineConfig(t *testing.T) {
	cfg := &config.Config{Recommend: config.RecommendConfig{
		MaxRecommendations: 12,
		SourceTimeout:      3 * time.Second,
		HistoryLimit:       30,
		JournalLimit:       5,
		TrackShown:         false,
	}}

	ec := buildEngineConfig(cfg)
	if ec.Limits.MaxRecommendations != 12 || ec.Limits.SourceTimeout != 3*time.Second {
		t.Errorf("limits = %+v", ec.Limits)
	}
	if ec.History.MoodLimit != 30 || ec.History.JournalLimit != 5 {
		t.Errorf("history = %+v", ec.History)
	}
	if ec.TrackShown {
		t.Error("TrackShown = true, want false")
	}
	if err := ec.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	zero := buildEngineConfig(&config.Config{})
	if zero.Limits.MaxRecommendations != recommend.DefaultConfig().Limits.MaxRecommendations {
		t.Errorf("zero config should keep engine defaults, got %+v", zero.Limits)
	}
}

func TestBuildBusConfig(t *testing.T) {
	if bc := buildBusConfig(&config.EventsConfig{Backend: "none"}); bc != nil {
		t.Errorf("buildBusConfig(none) = %+v, want nil", bc)
	}
	bc := buildBusConfig(&config.EventsConfig{Backend: "nats", NATSURL: "nats://n:4222", Topic: "t", ConsumerGroup: "g"})
	if bc == nil || bc.Backend != "nats" || bc.NATSURL != "nats://n:4222" || bc.Topic != "t" || bc.ConsumerGroup != "g" {
		t.Errorf("buildBusConfig(nats) = %+v", bc)
	}
}

func TestWarmFeedback(t *testing.T) {
	log, err := storage.OpenBadgerLog(storage.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBadgerLog() error = %v", err)
	}
	defer log.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour).UTC()
	actions := []recommend.Action{recommend.ActionShown, recommend.ActionShown, recommend.ActionAccepted}
	for i, action := range actions {
		err := log.Record(ctx, recommend.Event{
			ID:               fmt.Sprintf("e%d", i),
			UserID:           "u1",
			RecommendationID: "r1",
			Action:           action,
			Category:         recommend.CategoryContent,
			Timestamp:        base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	loop := recommend.NewFeedbackLoop(nil, nil, zerolog.Nop())
	n, err := warmFeedback(ctx, log, loop)
	if err != nil {
		t.Fatalf("warmFeedback() error = %v", err)
	}
	if n != 3 {
		t.Errorf("warmed %d events, want 3", n)
	}
	stats := loop.Stats()
	if stats.Shown != 2 || stats.Accepted != 1 {
		t.Errorf("stats = %+v, want 2 shown 1 accepted", stats)
	}
}

func TestCloserStack(t *testing.T) {
	var order []string
	var s closerStack
	for _, name := range []string{"history", "cache", "bus"} {
		name := name
		s.push(namedCloser{name, func() error {
			order = append(order, name)
			return nil
		}})
	}
	s.closeAll()
	s.closeAll()

	if got := strings.Join(order, ","); got != "bus,cache,history" {
		t.Errorf("close order = %s, want bus,cache,history once", got)
	}
}

func TestInitCollaborators_Disabled(t *testing.T) {
	c, err := initCollaborators(context.Background(), &config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("initCollaborators() error = %v", err)
	}
	if c.peers != nil || c.profiles != nil || c.provider != nil {
		t.Errorf("collaborators = %+v, want nil interfaces", c)
	}
}

func TestInitAuth(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{AuthMode: "none"}}
	if _, err := initAuth(cfg, zerolog.Nop()); err != nil {
		t.Errorf("initAuth(none) error = %v", err)
	}

	cfg.Security.AuthMode = "jwt"
	if _, err := initAuth(cfg, zerolog.Nop()); err == nil {
		t.Error("initAuth(jwt) without secret should fail")
	}

	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	if _, err := initAuth(cfg, zerolog.Nop()); err != nil {
		t.Errorf("initAuth(jwt) error = %v", err)
	}
}
