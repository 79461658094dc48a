// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package peers

import (
	"math"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// VectorSize is the dimension of BehaviorVector.
const VectorSize = 6

// BehaviorVector embeds a mood analysis into [0,1]^VectorSize:
//
//	0 recent average mood
//	1 week-over-week delta
//	2 forecast slope
//	3 forecast confidence
//	4 best weekday
//	5 worst weekday
//
// Missing components sit at the midpoint so sparse users stay comparable.
func BehaviorVector(a *patterns.Analysis) []float32 {
	v := []float64{0.5, 0.5, 0.5, 0, 0.5, 0.5}

	if a.Trend.Trend != patterns.InsufficientData {
		v[0] = unit(a.Trend.RecentAverage, 1, 10)
		v[1] = unit(a.Trend.Delta, -9, 9)
	}
	if a.Forecast.Prediction == patterns.PredictionAvailable {
		v[2] = unit(a.Forecast.Slope, -1, 1)
		v[3] = unit(a.Forecast.Confidence, 0, 1)
	}
	if a.Cycle.Sufficient() {
		v[4] = float64(a.Cycle.BestDay) / 6
		v[5] = float64(a.Cycle.WorstDay) / 6
	}

	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func unit(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return 0.5
	}
	return math.Max(0, math.Min(1, (x-lo)/(hi-lo)))
}

// sharedInterests returns the interests of b that also appear in a, in b's
// order, compared case-insensitively.
func sharedInterests(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[normalize(s)] = struct{}{}
	}
	var out []string
	for _, s := range b {
		if _, ok := set[normalize(s)]; ok {
			out = append(out, s)
		}
	}
	return out
}

// jaccard is |a∩b| / |a∪b| over normalized interests.
func jaccard(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	seenA := make(map[string]struct{}, len(a))
	for _, s := range a {
		n := normalize(s)
		union[n] = struct{}{}
		seenA[n] = struct{}{}
	}
	inter := 0
	counted := make(map[string]struct{}, len(b))
	for _, s := range b {
		n := normalize(s)
		union[n] = struct{}{}
		if _, ok := seenA[n]; ok {
			if _, dup := counted[n]; !dup {
				inter++
				counted[n] = struct{}{}
			}
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}
