// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"math"
	"time"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// Category groups recommendation items.
type Category string

// Categories.
const (
	CategoryContent  Category = "content"
	CategoryExercise Category = "exercise"
	CategoryPeer     Category = "peer"
	CategoryActivity Category = "activity"
)

// Priority orders items for display and triage.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Item types. Content items are articles or videos; exercise types describe
// the practice; intervention, preventive and maintenance drive task triage.
const (
	TypeArticle      = "article"
	TypeVideo        = "video"
	TypeBreathing    = "breathing"
	TypeGrounding    = "grounding"
	TypeJournaling   = "journaling"
	TypeMovement     = "movement"
	TypeActivity     = "activity"
	TypeIntervention = "intervention"
	TypePreventive   = "preventive"
	TypeMaintenance  = "maintenance"
)

// Action is what a user did with a recommendation.
type Action string

// Actions.
const (
	ActionShown     Action = "shown"
	ActionAccepted  Action = "accepted"
	ActionCompleted Action = "completed"
	ActionDismissed Action = "dismissed"
	ActionFeedback  Action = "feedback"
	ActionSaved     Action = "saved"
)

// Source records where a bundle came from.
type Source string

// Sources.
const (
	SourceGenerated Source = "generated"
	SourceCached    Source = "cached"
	SourceAI        Source = "ai"
	SourceFallback  Source = "fallback"
)

// Time of day buckets.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
	Night     = "night"
)

// Social activity levels.
const (
	ActivityLow    = "low"
	ActivityMedium = "medium"
	ActivityHigh   = "high"
)

// MoodSnapshot is the mood reported with a request.
type MoodSnapshot struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=10"`
	Emotion string `json:"emotion,omitempty" validate:"max=32"`
}

// SocialContext summarizes recent peer interaction.
type SocialContext struct {
	HasRecentPeerContact bool   `json:"has_recent_peer_contact"`
	ActivityLevel        string `json:"activity_level"`
}

// Context is the per-request snapshot that conditions generation.
type Context struct {
	Timestamp time.Time     `json:"timestamp"`
	Mood      *MoodSnapshot `json:"mood,omitempty" validate:"omitempty"`
	TimeOfDay string        `json:"time_of_day,omitempty" validate:"omitempty,oneof=morning afternoon evening night"`

	// Fields below are filled by the Enricher and the Engine.
	Season      string             `json:"season,omitempty"`
	IsWeekend   bool               `json:"is_weekend"`
	QuarterHour int                `json:"quarter_hour"`
	WeekOfMonth int                `json:"week_of_month,omitempty"`
	Social      *SocialContext     `json:"social,omitempty"`
	Triggers    []string           `json:"triggers,omitempty"`
	Patterns    *patterns.Analysis `json:"patterns,omitempty"`
	Enriched    bool               `json:"enriched"`
}

// Item is a single recommendation.
type Item struct {
	ID              string   `json:"id"`
	Category        Category `json:"category"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	Priority        Priority `json:"priority"`
	Score           float64  `json:"score"`
	ExpectedOutcome *string  `json:"expected_outcome,omitempty"`
	AIEnhanced      bool     `json:"ai_enhanced"`
	Duration        string   `json:"duration,omitempty"`
}

// PeerCandidate is a suggested peer.
type PeerCandidate struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"display_name"`
	CompatibilityScore   float64  `json:"compatibility_score"`
	BehavioralSimilarity float64  `json:"behavioral_similarity"`
	SharedInterests      []string `json:"shared_interests,omitempty"`
	SuggestedInteraction string   `json:"suggested_interaction,omitempty"`
	Reason               string   `json:"reason,omitempty"`
	AIEnhanced           bool     `json:"ai_enhanced"`
}

// Event is one recorded interaction. Events are append-only.
type Event struct {
	ID               string    `json:"id" validate:"required"`
	UserID           string    `json:"user_id" validate:"required,max=128"`
	Type             string    `json:"type,omitempty" validate:"max=64"`
	RecommendationID string    `json:"recommendation_id" validate:"required,max=128"`
	Action           Action    `json:"action" validate:"required,oneof=shown accepted completed dismissed feedback saved"`
	Category         Category  `json:"category,omitempty" validate:"omitempty,oneof=content exercise peer activity"`
	Rating           *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=1"`
	Timestamp        time.Time `json:"timestamp" validate:"required"`
}

// IsSocial reports whether the event counts as social activity. Shown
// events are impressions, not activity, and never count.
func (e *Event) IsSocial() bool {
	if e.Action == ActionShown {
		return false
	}
	return e.Category == CategoryPeer || e.Type == "social"
}

// ExerciseSet splits exercises by urgency.
type ExerciseSet struct {
	Immediate  []Item `json:"immediate"`
	Preventive []Item `json:"preventive"`
}

// Bundle is the contextual recommendation result.
type Bundle struct {
	UserID      string          `json:"user_id"`
	Content     []Item          `json:"content"`
	Exercises   ExerciseSet     `json:"exercises"`
	Peers       []PeerCandidate `json:"peers"`
	Activities  []Item          `json:"activities"`
	Insights    []string        `json:"insights,omitempty"`
	Context     Context         `json:"context"`
	GeneratedAt time.Time       `json:"generated_at"`
	Source      Source          `json:"source"`
	Fallback    bool            `json:"fallback"`
}

// Len returns the number of recommendations in the bundle.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Content) + len(b.Exercises.Immediate) + len(b.Exercises.Preventive) +
		len(b.Peers) + len(b.Activities)
}

// PeerBundle is the result of peer recommendation.
type PeerBundle struct {
	UserID      string          `json:"user_id"`
	Peers       []PeerCandidate `json:"peers"`
	GeneratedAt time.Time       `json:"generated_at"`
	Source      Source          `json:"source"`
	Fallback    bool            `json:"fallback"`
}

// TaskBundle is the triaged wellness task result.
type TaskBundle struct {
	UserID      string    `json:"user_id"`
	Immediate   []Item    `json:"immediate"`
	Preventive  []Item    `json:"preventive"`
	Maintenance []Item    `json:"maintenance"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      Source    `json:"source"`
	Fallback    bool      `json:"fallback"`
}

// AdaptiveBundle is a contextual bundle generated with a learning rate.
type AdaptiveBundle struct {
	UserID       string    `json:"user_id"`
	LearningRate float64   `json:"learning_rate"`
	Bundle       *Bundle   `json:"bundle"`
	Source       Source    `json:"source"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Feedback is a rated reaction used to derive a learning rate.
type Feedback struct {
	RecommendationID string    `json:"recommendation_id,omitempty"`
	Category         Category  `json:"category,omitempty"`
	Rating           *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=1"`
	Timestamp        time.Time `json:"timestamp"`
}

// Engagement is the input to adaptive recommendation.
type Engagement struct {
	Context  Context    `json:"context"`
	Feedback []Feedback `json:"feedback,omitempty" validate:"dive"`
}

// Options tunes a contextual generation call.
type Options struct {
	// MaxRecommendations overrides the configured bundle size when positive.
	MaxRecommendations int
	SkipCache          bool
	SkipShownTracking  bool
}

// PeerOptions tunes peer recommendation.
type PeerOptions struct {
	Limit     int      `json:"limit" validate:"gte=0,lte=50"`
	Interests []string `json:"interests,omitempty"`
	SkipCache bool     `json:"-"`
}

// ContextualPayload is sent to the suggestion provider.
type ContextualPayload struct {
	UserID       string             `json:"user_id"`
	Context      Context            `json:"context"`
	Analysis     *patterns.Analysis `json:"analysis,omitempty"`
	MaxItems     int                `json:"max_items"`
	LearningRate float64            `json:"learning_rate,omitempty"`
}

// PeerPayload is sent to the suggestion provider for peer matching.
type PeerPayload struct {
	UserID    string   `json:"user_id"`
	Limit     int      `json:"limit"`
	Interests []string `json:"interests,omitempty"`
}

// TaskPayload is sent to the suggestion provider for wellness tasks.
type TaskPayload struct {
	UserID   string             `json:"user_id"`
	Context  Context            `json:"context"`
	Analysis *patterns.Analysis `json:"analysis,omitempty"`
}

// ClampScore limits a score to [0,1]. NaN becomes 0.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(0, math.Min(1, s))
}

// NewItem builds an item with a clamped score.
func NewItem(id string, category Category, itemType, title string, priority Priority, score float64) Item {
	return Item{
		ID:       id,
		Category: category,
		Type:     itemType,
		Title:    title,
		Priority: priority,
		Score:    ClampScore(score),
	}
}
