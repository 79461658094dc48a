// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import "math"

// Forecast tuning constants.
const (
	ForecastWindow    = 14
	SlopeThreshold    = 0.1
	MaxConfidence     = 0.8
	confidencePerStep = 2.0
	minMood           = 1
	maxMood           = 10
)

// PredictMoodTrends fits an ordinary least squares line of mood against
// index over the most recent ForecastWindow entries and projects the next
// point.
func PredictMoodTrends(history []MoodEntry) Forecast {
	if len(history) < ForecastWindow {
		return Forecast{Prediction: PredictionInsufficient, Trend: InsufficientData}
	}

	window := history[len(history)-ForecastWindow:]
	ys := make([]float64, len(window))
	for i, e := range window {
		ys[i] = float64(e.Mood)
	}

	slope, intercept := leastSquares(ys)
	next := intercept + slope*float64(len(ys))

	return Forecast{
		Prediction:       PredictionAvailable,
		Trend:            classify(slope, SlopeThreshold),
		Slope:            slope,
		Intercept:        intercept,
		NextMoodEstimate: int(math.Round(clamp(next, minMood, maxMood))),
		Confidence:       math.Min(MaxConfidence, math.Abs(slope)*confidencePerStep),
	}
}

// leastSquares fits y = intercept + slope*x for x = 0..len(ys)-1.
func leastSquares(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
