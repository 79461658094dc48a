// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestEnrich_TemporalFields(t *testing.T) {
	e := NewEnricher(nil, 10, zerolog.Nop())
	// Saturday 2026-01-17 18:40 UTC.
	ts := time.Date(2026, time.January, 17, 18, 40, 0, 0, time.UTC)

	got := e.Enrich(context.Background(), "u1", Context{Timestamp: ts})

	if got.Season != "winter" {
		t.Errorf("Season = %q, want winter", got.Season)
	}
	if !got.IsWeekend {
		t.Error("IsWeekend = false, want true")
	}
	if got.QuarterHour != 2 {
		t.Errorf("QuarterHour = %d, want 2", got.QuarterHour)
	}
	if got.WeekOfMonth != 3 {
		t.Errorf("WeekOfMonth = %d, want 3", got.WeekOfMonth)
	}
	if got.TimeOfDay != Evening {
		t.Errorf("TimeOfDay = %q, want evening", got.TimeOfDay)
	}
	if !got.Enriched {
		t.Error("Enriched = false, want true")
	}
	if got.Social != nil {
		t.Errorf("Social = %+v, want nil without a log", got.Social)
	}
}

func TestEnrich_KeepsExplicitTimeOfDay(t *testing.T) {
	e := NewEnricher(nil, 10, zerolog.Nop())
	ts := time.Date(2026, time.July, 1, 23, 0, 0, 0, time.UTC)

	got := e.Enrich(context.Background(), "u1", Context{Timestamp: ts, TimeOfDay: Morning})
	if got.TimeOfDay != Morning {
		t.Errorf("TimeOfDay = %q, want morning", got.TimeOfDay)
	}
	if got.Season != "summer" || got.IsWeekend {
		t.Errorf("Season/IsWeekend = %q/%v, want summer/false", got.Season, got.IsWeekend)
	}
}

func TestEnrich_LogFailureReturnsBase(t *testing.T) {
	log := &memLog{recentErr: errors.New("unavailable")}
	e := NewEnricher(log, 10, zerolog.Nop())
	base := Context{Timestamp: time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)}

	got := e.Enrich(context.Background(), "u1", base)
	if got.Season != "" || got.Enriched || got.Social != nil {
		t.Errorf("Enrich() = %+v, want base unchanged", got)
	}
}

func TestEnrich_PeerContactSurvivesServedBundles(t *testing.T) {
	log := &memLog{}
	for i := 0; i < 3; i++ {
		log.events = append(log.events, Event{
			ID: fmt.Sprintf("peer-%d", i), UserID: "u1", RecommendationID: fmt.Sprintf("p%d", i),
			Action: ActionAccepted, Category: CategoryPeer, Timestamp: testNow.Add(-time.Hour),
		})
	}
	eng := newTestEngine(t, Deps{Interactions: log})
	enricher := NewEnricher(log, 10, zerolog.Nop())

	before := enricher.Enrich(context.Background(), "u1", lowMoodContext())
	if before.Social == nil || !before.Social.HasRecentPeerContact {
		t.Fatalf("Social = %+v, want recent peer contact", before.Social)
	}

	b := eng.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})
	if got := log.count(ActionShown); got == 0 || got != b.Len() {
		t.Fatalf("shown events = %d, want %d", got, b.Len())
	}
	// A second serving guarantees shown events alone would fill the window.
	filler := make([]Item, 12)
	for i := range filler {
		filler[i] = Item{ID: fmt.Sprintf("filler-%d", i), Category: CategoryContent, Type: TypeArticle}
	}
	eng.Feedback().RecordShown(context.Background(), "u1", filler)

	after := enricher.Enrich(context.Background(), "u1", lowMoodContext())
	if after.Social == nil || !after.Social.HasRecentPeerContact {
		t.Fatalf("Social = %+v after serving bundles, want recent peer contact", after.Social)
	}
	if after.Social.ActivityLevel != ActivityMedium {
		t.Errorf("ActivityLevel = %q, want medium", after.Social.ActivityLevel)
	}
}

func TestSocialFromEvents(t *testing.T) {
	social := Event{Category: CategoryPeer, Action: ActionAccepted}
	typed := Event{Type: "social", Action: ActionCompleted}
	other := Event{Category: CategoryContent, Action: ActionAccepted}
	shownPeer := Event{Category: CategoryPeer, Action: ActionShown}

	tests := []struct {
		name        string
		events      []Event
		wantContact bool
		wantLevel   string
	}{
		{name: "none", events: nil, wantLevel: ActivityLow},
		{name: "one", events: []Event{social, other}, wantLevel: ActivityLow},
		{name: "two", events: []Event{social, typed}, wantLevel: ActivityMedium},
		{name: "three", events: []Event{social, typed, social}, wantContact: true, wantLevel: ActivityMedium},
		{name: "five", events: []Event{social, social, typed, typed, social}, wantContact: true, wantLevel: ActivityHigh},
		{name: "shown peers are not activity", events: []Event{shownPeer, shownPeer, shownPeer}, wantLevel: ActivityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SocialFromEvents(tt.events)
			if got.HasRecentPeerContact != tt.wantContact {
				t.Errorf("HasRecentPeerContact = %v, want %v", got.HasRecentPeerContact, tt.wantContact)
			}
			if got.ActivityLevel != tt.wantLevel {
				t.Errorf("ActivityLevel = %q, want %q", got.ActivityLevel, tt.wantLevel)
			}
		})
	}
}

func TestTimeBuckets(t *testing.T) {
	hours := map[int]string{0: Night, 4: Night, 5: Morning, 11: Morning, 12: Afternoon, 16: Afternoon, 17: Evening, 20: Evening, 21: Night}
	for h, want := range hours {
		if got := TimeOfDay(h); got != want {
			t.Errorf("TimeOfDay(%d) = %q, want %q", h, got, want)
		}
	}

	weeks := map[int]int{1: 1, 7: 1, 8: 2, 28: 4, 29: 5, 31: 5}
	for d, want := range weeks {
		if got := WeekOfMonth(d); got != want {
			t.Errorf("WeekOfMonth(%d) = %d, want %d", d, got, want)
		}
	}

	if Season(time.March) != "spring" || Season(time.October) != "autumn" {
		t.Error("Season mapping wrong for March/October")
	}
}
