// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/cache"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// Wednesday morning in spring.
var testNow = time.Date(2026, time.March, 11, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T, deps Deps, modify ...func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Limits.SourceTimeout = 2 * time.Second
	for _, m := range modify {
		m(cfg)
	}
	e, err := NewEngine(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.now = func() time.Time { return testNow }
	return e
}

func lowMoodContext() Context {
	return Context{Timestamp: testNow, Mood: &MoodSnapshot{Rating: 2}}
}

func assertSorted(t *testing.T, items []Item) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("items not sorted: %v before %v", items[i-1].Score, items[i].Score)
		}
	}
	for _, it := range items {
		if it.Score < 0 || it.Score > 1 {
			t.Errorf("item %s score %v outside [0,1]", it.ID, it.Score)
		}
	}
}

func containsItem(items []Item, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History.MoodLimit = 5
	if _, err := NewEngine(cfg, Deps{}, zerolog.Nop()); err == nil {
		t.Error("NewEngine() error = nil, want invalid config")
	}
}

func TestContextual_RuleSourcesOnly(t *testing.T) {
	e := newTestEngine(t, Deps{})

	b := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})

	if b.Fallback || b.Source != SourceGenerated {
		t.Fatalf("Source = %q Fallback = %v, want generated bundle", b.Source, b.Fallback)
	}
	if len(b.Content) == 0 || len(b.Content) > ContentLimit(10) {
		t.Errorf("len(Content) = %d, want 1..%d", len(b.Content), ContentLimit(10))
	}
	assertSorted(t, b.Content)

	if !containsItem(b.Exercises.Immediate, "ex-478-breathing") {
		t.Errorf("Immediate = %+v, want 4-7-8 breathing for low mood", b.Exercises.Immediate)
	}
	for _, it := range b.Exercises.Immediate {
		if it.Priority != PriorityHigh {
			t.Errorf("immediate exercise %s has priority %s", it.ID, it.Priority)
		}
	}
	if !containsItem(b.Exercises.Preventive, "ex-mindful-walk") {
		t.Errorf("Preventive = %+v, want mindful walk in the morning", b.Exercises.Preventive)
	}
	if !containsItem(b.Activities, "act-morning-light") {
		t.Errorf("Activities = %+v, want morning light", b.Activities)
	}
	if b.Peers == nil || len(b.Peers) != 0 {
		t.Errorf("Peers = %v, want empty non-nil list without a directory", b.Peers)
	}
	if !b.Context.Enriched || b.Context.Season != "spring" || b.Context.Patterns == nil {
		t.Errorf("Context = %+v, want enriched with patterns", b.Context)
	}
	if len(b.Insights) == 0 {
		t.Error("Insights should not be empty")
	}
}

func TestContextual_MergesAISuggestions(t *testing.T) {
	provider := &stubProvider{contextual: &Bundle{
		Content: []Item{
			{ID: "art-grounding-basics", Type: TypeArticle, Category: CategoryContent, Score: 0.99, Reason: "AI pick"},
			{ID: "ai-1", Type: TypeVideo, Category: CategoryContent, Score: 0.95},
		},
		Peers: []PeerCandidate{{ID: "p9", CompatibilityScore: 0.7}},
	}}
	e := newTestEngine(t, Deps{Provider: provider})

	b := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})

	if b.Source != SourceAI {
		t.Fatalf("Source = %q, want ai", b.Source)
	}
	if len(b.Content) != ContentLimit(10) {
		t.Fatalf("len(Content) = %d, want %d", len(b.Content), ContentLimit(10))
	}
	first := b.Content[0]
	if first.ID != "art-grounding-basics" || first.Score != 0.99 || !first.AIEnhanced {
		t.Errorf("Content[0] = %+v, want merged AI-enhanced grounding article at 0.99", first)
	}
	if b.Content[1].ID != "ai-1" || !b.Content[1].AIEnhanced {
		t.Errorf("Content[1] = %+v, want appended ai-1", b.Content[1])
	}
	assertSorted(t, b.Content)
	if len(b.Peers) != 1 || b.Peers[0].ID != "p9" {
		t.Errorf("Peers = %+v, want p9 from AI", b.Peers)
	}

	payload, _ := provider.lastPayload.Load().(ContextualPayload)
	if payload.MaxItems != 10 || payload.Context.Mood == nil || payload.Analysis == nil {
		t.Errorf("payload = %+v, want max 10 with mood and analysis", payload)
	}
}

func TestContextual_AllSourcesFailReturnsFallback(t *testing.T) {
	c := cache.New(time.Hour)
	e := newTestEngine(t, Deps{Cache: c, Provider: &stubProvider{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{})

	if !b.Fallback || b.Source != SourceFallback {
		t.Fatalf("Source = %q Fallback = %v, want fallback", b.Source, b.Fallback)
	}
	if len(b.Exercises.Immediate) != 1 || b.Exercises.Immediate[0].ID != "fallback-breathing" {
		t.Errorf("Immediate = %+v, want fallback breathing", b.Exercises.Immediate)
	}
	if len(b.Activities) != 1 || b.Activities[0].ID != "fallback-journal" {
		t.Errorf("Activities = %+v, want fallback journal", b.Activities)
	}
	if b.Exercises.Immediate[0].Priority != PriorityLow || b.Activities[0].Priority != PriorityLow {
		t.Error("fallback items should be low priority")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if c.Len() != 0 {
		t.Error("fallback bundle must not be cached")
	}
	if e.Stats().Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", e.Stats().Fallbacks)
	}
}

func TestContextual_CachesWithinBucket(t *testing.T) {
	provider := &stubProvider{contextual: &Bundle{Content: []Item{{ID: "ai-1", Type: TypeVideo, Score: 0.9}}}}
	e := newTestEngine(t, Deps{Cache: cache.New(time.Hour), Provider: provider})
	ctx := context.Background()

	first := e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{})
	second := e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{})

	if first.Source != SourceAI {
		t.Errorf("first Source = %q, want ai", first.Source)
	}
	if second.Source != SourceCached {
		t.Errorf("second Source = %q, want cached", second.Source)
	}
	if len(second.Content) != len(first.Content) || second.Content[0].ID != first.Content[0].ID {
		t.Error("cached bundle differs from generated bundle")
	}
	if provider.calls.Load() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls.Load())
	}

	e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{SkipCache: true})
	e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{MaxRecommendations: 5})
	if provider.calls.Load() != 3 {
		t.Errorf("provider calls = %d, want 3 after bypassing the cache", provider.calls.Load())
	}

	other := e.GenerateContextualRecommendations(ctx, "u2", lowMoodContext(), Options{})
	if other.Source == SourceCached {
		t.Error("another user must not be served u1's bundle")
	}

	stats := e.Stats()
	if stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", stats.CacheHits)
	}
}

func TestContextual_SlowProviderTimesOut(t *testing.T) {
	provider := &stubProvider{delay: 5 * time.Second, contextual: &Bundle{Content: []Item{{ID: "late"}}}}
	e := newTestEngine(t, Deps{Provider: provider}, func(c *Config) {
		c.Limits.SourceTimeout = 50 * time.Millisecond
	})

	start := time.Now()
	b := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("generation took %v, want the provider cut off by the source timeout", elapsed)
	}
	if b.Source != SourceGenerated || b.Fallback {
		t.Errorf("Source = %q Fallback = %v, want rule-based bundle", b.Source, b.Fallback)
	}
	if containsItem(b.Content, "late") {
		t.Error("timed-out provider output must not be merged")
	}
}

func TestContextual_ProviderPanicIsContained(t *testing.T) {
	e := newTestEngine(t, Deps{Provider: &stubProvider{panicMsg: "provider exploded"}})

	b := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})
	if b.Fallback || b.Source != SourceGenerated {
		t.Errorf("Source = %q Fallback = %v, want rule-based bundle", b.Source, b.Fallback)
	}
}

func TestContextual_TracksShownItems(t *testing.T) {
	log := &memLog{}
	e := newTestEngine(t, Deps{Interactions: log, Peers: &stubPeers{matches: []PeerCandidate{{ID: "p1", CompatibilityScore: 0.8}}}})

	b := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{})
	if got := log.count(ActionShown); got != b.Len() {
		t.Errorf("shown events = %d, want %d", got, b.Len())
	}
	if b.Context.Social == nil || b.Context.Social.HasRecentPeerContact {
		t.Errorf("Social = %+v, want no recent contact", b.Context.Social)
	}

	before := log.count(ActionShown)
	again := e.GenerateContextualRecommendations(context.Background(), "u1", lowMoodContext(), Options{SkipShownTracking: true})
	if log.count(ActionShown) != before {
		t.Error("SkipShownTracking should not record events")
	}
	if again.Context.Social.HasRecentPeerContact {
		t.Error("shown peer events must not count as social contact")
	}
}

func TestContextual_UsesHistory(t *testing.T) {
	moods := make([]patterns.MoodEntry, 14)
	for i := range moods {
		moods[i] = patterns.MoodEntry{Mood: 2, Timestamp: testNow.Add(time.Duration(i-14) * 24 * time.Hour)}
	}
	history := &stubHistory{
		moods: moods,
		journal: []patterns.JournalEntry{
			{Content: "work stress again", Mood: 2, CreatedAt: testNow.Add(-48 * time.Hour)},
			{Content: "another work deadline", Mood: 3, CreatedAt: testNow.Add(-24 * time.Hour)},
		},
	}
	e := newTestEngine(t, Deps{History: history})

	b := e.GenerateContextualRecommendations(context.Background(), "u1", Context{Timestamp: testNow}, Options{})

	if b.Context.Mood == nil || b.Context.Mood.Rating != 2 {
		t.Fatalf("Mood = %+v, want latest history rating 2", b.Context.Mood)
	}
	if len(b.Context.Triggers) == 0 || b.Context.Triggers[0] != "work" {
		t.Errorf("Triggers = %v, want work first", b.Context.Triggers)
	}
	if !containsItem(b.Exercises.Preventive, "ex-trigger-journal") {
		t.Errorf("Preventive = %+v, want trigger reflection for work trigger", b.Exercises.Preventive)
	}
}

func TestPeers(t *testing.T) {
	directory := &stubPeers{matches: []PeerCandidate{
		{ID: "p1", CompatibilityScore: 0.6},
		{ID: "p2", CompatibilityScore: 0.4},
	}}
	ai := &stubProvider{peers: &PeerBundle{Peers: []PeerCandidate{
		{ID: "p1", CompatibilityScore: 0.8},
		{ID: "p3", CompatibilityScore: 0.5},
	}}}

	t.Run("directory and ai merged", func(t *testing.T) {
		e := newTestEngine(t, Deps{Peers: directory, Provider: ai})
		b := e.GeneratePeerRecommendations(context.Background(), "u1", PeerOptions{})

		want := []string{"p1", "p3", "p2"}
		if len(b.Peers) != len(want) {
			t.Fatalf("Peers = %+v, want %v", b.Peers, want)
		}
		for i, id := range want {
			if b.Peers[i].ID != id {
				t.Errorf("Peers[%d] = %s, want %s", i, b.Peers[i].ID, id)
			}
		}
		if b.Peers[0].CompatibilityScore != 0.8 || !b.Peers[0].AIEnhanced {
			t.Errorf("Peers[0] = %+v, want merged p1", b.Peers[0])
		}
		if b.Source != SourceAI {
			t.Errorf("Source = %q, want ai", b.Source)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		e := newTestEngine(t, Deps{Peers: directory, Provider: ai})
		b := e.GeneratePeerRecommendations(context.Background(), "u1", PeerOptions{Limit: 2})
		if len(b.Peers) != 2 {
			t.Errorf("len(Peers) = %d, want 2", len(b.Peers))
		}
	})

	t.Run("directory only", func(t *testing.T) {
		e := newTestEngine(t, Deps{Peers: directory})
		b := e.GeneratePeerRecommendations(context.Background(), "u1", PeerOptions{})
		if b.Source != SourceGenerated || len(b.Peers) != 2 {
			t.Errorf("bundle = %+v, want two generated peers", b)
		}
	})

	t.Run("both unavailable", func(t *testing.T) {
		e := newTestEngine(t, Deps{Peers: &stubPeers{err: ErrProviderUnavailable}})
		b := e.GeneratePeerRecommendations(context.Background(), "u1", PeerOptions{})
		if !b.Fallback || b.Peers == nil || len(b.Peers) != 0 {
			t.Errorf("bundle = %+v, want empty fallback", b)
		}
	})
}

func TestWellnessTasks(t *testing.T) {
	t.Run("rule tasks triaged", func(t *testing.T) {
		e := newTestEngine(t, Deps{})
		b := e.GenerateWellnessTaskRecommendations(context.Background(), "u1", lowMoodContext())

		if b.Fallback {
			t.Fatal("unexpected fallback")
		}
		if !containsItem(b.Immediate, "task-breathe-now") || !containsItem(b.Immediate, "task-peer-support") {
			t.Errorf("Immediate = %+v", b.Immediate)
		}
		if !containsItem(b.Preventive, "task-walk") {
			t.Errorf("Preventive = %+v", b.Preventive)
		}
		if !containsItem(b.Maintenance, "task-log-mood") {
			t.Errorf("Maintenance = %+v", b.Maintenance)
		}
	})

	t.Run("ai tasks merged and filtered", func(t *testing.T) {
		provider := &stubProvider{tasks: []Item{
			{ID: "ai-task", Type: TypeIntervention, Priority: PriorityHigh, Score: 0.95},
			{ID: "mismatched", Type: TypePreventive, Priority: PriorityHigh, Score: 0.9},
		}}
		e := newTestEngine(t, Deps{Provider: provider})
		b := e.GenerateWellnessTaskRecommendations(context.Background(), "u1", lowMoodContext())

		if b.Source != SourceAI || len(b.Immediate) == 0 || b.Immediate[0].ID != "ai-task" {
			t.Errorf("bundle = %+v, want ai-task first in Immediate", b)
		}
		all := append(append(append([]Item{}, b.Immediate...), b.Preventive...), b.Maintenance...)
		if containsItem(all, "mismatched") {
			t.Error("high-priority preventive task should be dropped by triage")
		}
	})

	t.Run("fallback", func(t *testing.T) {
		e := newTestEngine(t, Deps{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := e.GenerateWellnessTaskRecommendations(ctx, "u1", lowMoodContext())
		if !b.Fallback || len(b.Maintenance) != 2 || len(b.Immediate) != 0 {
			t.Errorf("bundle = %+v, want fallback with two maintenance items", b)
		}
	})
}

func TestTriageTasks(t *testing.T) {
	breathing, journal := FallbackItems()

	tests := []struct {
		name     string
		item     Item
		wantInto string
	}{
		{name: "high intervention", item: Item{ID: "a", Priority: PriorityHigh, Type: TypeIntervention}, wantInto: "immediate"},
		{name: "medium preventive", item: Item{ID: "b", Priority: PriorityMedium, Type: TypePreventive}, wantInto: "preventive"},
		{name: "low maintenance", item: Item{ID: "c", Priority: PriorityLow, Type: TypeMaintenance}, wantInto: "maintenance"},
		{name: "low article", item: Item{ID: "e", Priority: PriorityLow, Type: TypeArticle}, wantInto: "maintenance"},
		{name: "low breathing", item: breathing, wantInto: "maintenance"},
		{name: "low journaling", item: journal, wantInto: "maintenance"},
		{name: "medium intervention", item: Item{ID: "d", Priority: PriorityMedium, Type: TypeIntervention}, wantInto: ""},
		{name: "high preventive", item: Item{ID: "f", Priority: PriorityHigh, Type: TypePreventive}, wantInto: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := TriageTasks([]Item{tt.item}, zerolog.Nop())
			got := ""
			switch {
			case containsItem(b.Immediate, tt.item.ID):
				got = "immediate"
			case containsItem(b.Preventive, tt.item.ID):
				got = "preventive"
			case containsItem(b.Maintenance, tt.item.ID):
				got = "maintenance"
			}
			if got != tt.wantInto {
				t.Errorf("item %s triaged into %q, want %q", tt.item.ID, got, tt.wantInto)
			}
			if n := len(b.Immediate) + len(b.Preventive) + len(b.Maintenance); tt.wantInto != "" && n != 1 {
				t.Errorf("item landed in %d buckets, want 1", n)
			}
		})
	}
}

func TestAdaptive(t *testing.T) {
	aiBundle := &Bundle{Content: []Item{{ID: "ai-1", Type: TypeArticle, Score: 0.9}}}

	t.Run("ai bundle with default rate", func(t *testing.T) {
		provider := &stubProvider{contextual: aiBundle}
		e := newTestEngine(t, Deps{Provider: provider})

		got := e.GetAdaptiveRecommendations(context.Background(), "u1", Engagement{Context: lowMoodContext()})
		if got.Source != SourceAI || got.Bundle == nil || got.Bundle.Source != SourceAI {
			t.Fatalf("result = %+v, want ai", got)
		}
		if got.LearningRate != 0.5 {
			t.Errorf("LearningRate = %v, want 0.5", got.LearningRate)
		}
		payload, _ := provider.lastPayload.Load().(ContextualPayload)
		if payload.LearningRate != 0.5 {
			t.Errorf("payload LearningRate = %v, want 0.5", payload.LearningRate)
		}
	})

	t.Run("explicit feedback decays", func(t *testing.T) {
		e := newTestEngine(t, Deps{Provider: &stubProvider{contextual: aiBundle}})
		got := e.GetAdaptiveRecommendations(context.Background(), "u1", Engagement{
			Context:  lowMoodContext(),
			Feedback: []Feedback{{Rating: floatPtr(1), Timestamp: testNow.Add(-48 * time.Hour)}},
		})
		if math.Abs(got.LearningRate-math.Exp(-2)) > 1e-9 {
			t.Errorf("LearningRate = %v, want %v", got.LearningRate, math.Exp(-2))
		}
	})

	t.Run("feedback read from interaction log", func(t *testing.T) {
		log := &memLog{events: []Event{{
			ID: "e1", UserID: "u1", RecommendationID: "r1", Action: ActionFeedback,
			Rating: floatPtr(1), Timestamp: testNow.Add(-24 * time.Hour),
		}}}
		e := newTestEngine(t, Deps{Provider: &stubProvider{contextual: aiBundle}, Interactions: log})
		got := e.GetAdaptiveRecommendations(context.Background(), "u1", Engagement{Context: lowMoodContext()})
		if math.Abs(got.LearningRate-math.Exp(-1)) > 1e-9 {
			t.Errorf("LearningRate = %v, want %v", got.LearningRate, math.Exp(-1))
		}
	})

	t.Run("falls back to contextual generation", func(t *testing.T) {
		e := newTestEngine(t, Deps{Provider: &stubProvider{contextual: &Bundle{}}})
		got := e.GetAdaptiveRecommendations(context.Background(), "u1", Engagement{Context: lowMoodContext()})
		if got.Bundle == nil || got.Bundle.Fallback || got.Source != SourceGenerated {
			t.Errorf("result = %+v, want contextual generated bundle", got)
		}
	})
}

func TestInvalidateUser(t *testing.T) {
	c := cache.New(time.Hour)
	e := newTestEngine(t, Deps{Cache: c})
	ctx := context.Background()

	e.GenerateContextualRecommendations(ctx, "u1", lowMoodContext(), Options{})
	e.GenerateWellnessTaskRecommendations(ctx, "u1", lowMoodContext())
	e.GenerateContextualRecommendations(ctx, "u2", lowMoodContext(), Options{})
	if c.Len() != 3 {
		t.Fatalf("cache entries = %d, want 3", c.Len())
	}

	n, err := e.InvalidateUser(ctx, "u1")
	if err != nil {
		t.Fatalf("InvalidateUser() error = %v", err)
	}
	if n != 2 || c.Len() != 1 {
		t.Errorf("removed %d, remaining %d; want 2 and 1", n, c.Len())
	}
}
