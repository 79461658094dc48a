// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

/*
Package patterns learns simple behavioral patterns from mood and journal
history.

Every function is pure and takes literal slices ordered oldest to newest:

  - IdentifyMoodTrends: week-over-week mean comparison, threshold 0.5
  - IdentifyCommonTriggers: keyword counts over low-mood journal entries
  - DetectWeeklyCycle: best and worst weekday by average mood
  - PredictMoodTrends: least squares over the last 14 points, slope threshold 0.1
  - AnalyzeEmotions: dominant emotion from journal vocabulary
  - AnalyzeMoodPatterns: all of the above plus human-readable insights

Short histories produce an explicit insufficient_data result instead of an
error. AnalyzeMoodPatterns never panics.
*/
package patterns
