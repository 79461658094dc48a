// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import "time"

// CycleMinPoints is the minimum history needed for weekly cycle detection.
const CycleMinPoints = 14

// DetectWeeklyCycle groups moods by weekday and reports the weekdays with the
// highest and lowest averages. Ties go to the earlier weekday (Sunday first).
func DetectWeeklyCycle(history []MoodEntry) CycleResult {
	if len(history) < CycleMinPoints {
		return CycleResult{Status: InsufficientData}
	}

	var sums [7]int
	var counts [7]int
	for _, e := range history {
		d := e.Timestamp.Weekday()
		sums[d] += e.Mood
		counts[d]++
	}

	result := CycleResult{Days: make([]DayAverage, 0, 7)}
	first := true
	for d := time.Sunday; d <= time.Saturday; d++ {
		if counts[d] == 0 {
			continue
		}
		avg := float64(sums[d]) / float64(counts[d])
		result.Days = append(result.Days, DayAverage{Day: d, Average: avg, Count: counts[d]})

		if first || avg > result.BestAverage {
			result.BestDay, result.BestAverage = d, avg
		}
		if first || avg < result.WorstAverage {
			result.WorstDay, result.WorstAverage = d, avg
		}
		first = false
	}
	return result
}
