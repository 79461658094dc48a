// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import "time"

// MoodEntry is one mood check-in. Mood is on a 1..10 scale.
type MoodEntry struct {
	Mood      int       `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// JournalEntry is a free-text journal entry with the mood recorded alongside it.
type JournalEntry struct {
	Content   string    `json:"content"`
	Mood      int       `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}

// Direction is the qualitative direction of a mood series.
type Direction string

// Direction values.
const (
	Improving        Direction = "improving"
	Declining        Direction = "declining"
	Stable           Direction = "stable"
	InsufficientData Direction = "insufficient_data"
)

// Window basis reported by IdentifyMoodTrends.
const (
	BasisWeekOverWeek = "week_over_week"
	BasisSplitWindow  = "split_window"
)

// TrendResult compares the most recent week of moods with the week before.
type TrendResult struct {
	Trend           Direction `json:"trend"`
	RecentAverage   float64   `json:"recent_average"`
	PreviousAverage float64   `json:"previous_average"`
	Delta           float64   `json:"delta"`

	// Basis is BasisWeekOverWeek when an older window existed and
	// BasisSplitWindow when the recent window was compared against itself.
	Basis string `json:"basis,omitempty"`
}

// Trigger is a keyword seen in low-mood journal entries.
type Trigger struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

// DayAverage is the mean mood for one weekday.
type DayAverage struct {
	Day     time.Weekday `json:"day"`
	Average float64      `json:"average"`
	Count   int          `json:"count"`
}

// CycleResult reports the best and worst weekday by average mood.
type CycleResult struct {
	Status       Direction    `json:"status,omitempty"` // InsufficientData or empty
	BestDay      time.Weekday `json:"best_day"`
	BestAverage  float64      `json:"best_average"`
	WorstDay     time.Weekday `json:"worst_day"`
	WorstAverage float64      `json:"worst_average"`
	Days         []DayAverage `json:"days,omitempty"`
}

// Sufficient reports whether enough data existed to detect a cycle.
func (c CycleResult) Sufficient() bool { return c.Status != InsufficientData }

// Forecast is a linear projection of the next mood.
type Forecast struct {
	// Prediction is "available" or "insufficient_data".
	Prediction       string    `json:"prediction"`
	Trend            Direction `json:"trend"`
	Slope            float64   `json:"slope"`
	Intercept        float64   `json:"intercept"`
	NextMoodEstimate int       `json:"next_mood_estimate"`
	Confidence       float64   `json:"confidence"`
}

// Forecast prediction values.
const (
	PredictionAvailable    = "available"
	PredictionInsufficient = "insufficient_data"
)

// EmotionCount is how many journal entries mention an emotion.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// EmotionSummary is the result of AnalyzeEmotions.
type EmotionSummary struct {
	Dominant string         `json:"dominant,omitempty"`
	Counts   []EmotionCount `json:"counts,omitempty"`
}

// Analysis aggregates every pattern analysis for one user.
type Analysis struct {
	Trend    TrendResult    `json:"trend"`
	Triggers []Trigger      `json:"triggers"`
	Cycle    CycleResult    `json:"weekly_cycle"`
	Forecast Forecast       `json:"forecast"`
	Emotions EmotionSummary `json:"emotions"`
	Insights []string       `json:"insights"`

	// Degraded is set when analysis failed and defaults were returned.
	Degraded bool `json:"degraded,omitempty"`
}
