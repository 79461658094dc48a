// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import "fmt"

// Instructional insights used when there is nothing personal to say yet.
const (
	InsightKeepTracking = "Keep logging your mood daily to unlock personalized insights."
	InsightJournal      = "Write a short journal entry on difficult days so we can spot what affects you."
)

// DefaultAnalysis is the safe result returned when analysis cannot run.
func DefaultAnalysis() Analysis {
	return Analysis{
		Trend:    TrendResult{Trend: InsufficientData},
		Triggers: []Trigger{},
		Cycle:    CycleResult{Status: InsufficientData},
		Forecast: Forecast{Prediction: PredictionInsufficient, Trend: InsufficientData},
		Insights: []string{InsightKeepTracking},
		Degraded: true,
	}
}

// AnalyzeMoodPatterns runs every analysis over a user's history. It never
// panics; an internal failure yields DefaultAnalysis.
func AnalyzeMoodPatterns(history []MoodEntry, journal []JournalEntry) (analysis Analysis) {
	defer func() {
		if r := recover(); r != nil {
			analysis = DefaultAnalysis()
		}
	}()

	analysis = Analysis{
		Trend:    IdentifyMoodTrends(history),
		Triggers: IdentifyCommonTriggers(journal),
		Cycle:    DetectWeeklyCycle(history),
		Forecast: PredictMoodTrends(history),
		Emotions: AnalyzeEmotions(journal),
	}
	analysis.Insights = insightsFunc(&analysis)
	return analysis
}

// insightsFunc is swapped in tests to exercise panic recovery.
var insightsFunc = deriveInsights

func deriveInsights(a *Analysis) []string {
	insights := make([]string, 0, 4)

	switch a.Trend.Trend {
	case Improving:
		insights = append(insights, fmt.Sprintf(
			"Your mood has been improving lately (average %.1f, up from %.1f).",
			a.Trend.RecentAverage, a.Trend.PreviousAverage))
	case Declining:
		insights = append(insights, fmt.Sprintf(
			"Your mood has dipped recently (average %.1f, down from %.1f). A grounding exercise or a peer check-in may help.",
			a.Trend.RecentAverage, a.Trend.PreviousAverage))
	case Stable:
		insights = append(insights, fmt.Sprintf("Your mood has been steady around %.1f.", a.Trend.RecentAverage))
	}

	if len(a.Triggers) > 0 {
		insights = append(insights, fmt.Sprintf(
			"On low days your journal most often mentions %q.", a.Triggers[0].Keyword))
	}

	if a.Cycle.Sufficient() && a.Cycle.BestDay != a.Cycle.WorstDay {
		insights = append(insights, fmt.Sprintf(
			"You tend to feel best on %s and lowest on %s.", a.Cycle.BestDay, a.Cycle.WorstDay))
	}

	if a.Forecast.Prediction == PredictionAvailable && a.Forecast.Trend != Stable {
		insights = append(insights, fmt.Sprintf(
			"If the current pattern holds, your next mood is likely around %d.", a.Forecast.NextMoodEstimate))
	}

	if len(insights) == 0 {
		insights = append(insights, InsightKeepTracking)
		if len(a.Triggers) == 0 {
			insights = append(insights, InsightJournal)
		}
	}
	return insights
}
