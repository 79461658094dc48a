// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

// TrendWindow is the number of entries in one comparison window.
const TrendWindow = 7

// TrendThreshold is the minimum change in average mood that counts as a
// direction change.
const TrendThreshold = 0.5

// splitHead is how many of the recent entries form the baseline when no
// older window exists.
const splitHead = 3

// IdentifyMoodTrends compares the mean of the most recent seven entries with
// the mean of up to seven entries before them. history is ordered oldest to
// newest.
//
// When nothing precedes the recent window, its first three entries are
// compared with its last four. RecentAverage is always the mean of the whole
// recent window.
func IdentifyMoodTrends(history []MoodEntry) TrendResult {
	if len(history) < TrendWindow {
		return TrendResult{Trend: InsufficientData}
	}

	recent := history[len(history)-TrendWindow:]
	older := history[:len(history)-TrendWindow]
	if len(older) > TrendWindow {
		older = older[len(older)-TrendWindow:]
	}

	result := TrendResult{RecentAverage: meanMood(recent)}

	if len(older) > 0 {
		result.Basis = BasisWeekOverWeek
		result.PreviousAverage = meanMood(older)
		result.Delta = result.RecentAverage - result.PreviousAverage
	} else {
		result.Basis = BasisSplitWindow
		result.PreviousAverage = meanMood(recent[:splitHead])
		result.Delta = meanMood(recent[splitHead:]) - result.PreviousAverage
	}

	result.Trend = classify(result.Delta, TrendThreshold)
	return result
}

func meanMood(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Mood
	}
	return float64(sum) / float64(len(entries))
}

func classify(v, threshold float64) Direction {
	switch {
	case v > threshold:
		return Improving
	case v < -threshold:
		return Declining
	default:
		return Stable
	}
}
