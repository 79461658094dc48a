// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"sort"
	"strings"
)

// reasonSeparator joins reasons from merged items.
const reasonSeparator = "; "

type itemKey struct {
	itemType string
	id       string
}

// MergeContentLists merges b into a and returns a new list sorted by score,
// highest first. Items are matched on (Type, ID). A match keeps the higher
// score and the union of both reasons; unmatched items from b are appended
// as AI-enhanced. Ties keep the order of first appearance. Neither input is
// modified.
//
// An existing item is marked AI-enhanced when the incoming copy is
// AI-enhanced or contributes a higher score or a new reason, so merging a
// list with itself changes nothing.
func MergeContentLists(a, b []Item) []Item {
	out := make([]Item, 0, len(a)+len(b))
	index := make(map[itemKey]int, len(a)+len(b))

	for _, it := range a {
		it.Score = ClampScore(it.Score)
		k := itemKey{it.Type, it.ID}
		if i, ok := index[k]; ok {
			mergeItemInto(&out[i], it)
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}

	for _, it := range b {
		it.Score = ClampScore(it.Score)
		k := itemKey{it.Type, it.ID}
		if i, ok := index[k]; ok {
			mergeItemInto(&out[i], it)
			continue
		}
		it.AIEnhanced = true
		index[k] = len(out)
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func mergeItemInto(dst *Item, src Item) {
	contributed := src.AIEnhanced
	if src.Score > dst.Score {
		dst.Score = src.Score
		contributed = true
	}
	if reason, changed := joinReasons(dst.Reason, src.Reason); changed {
		dst.Reason = reason
		contributed = true
	}
	if contributed {
		dst.AIEnhanced = true
	}
	if dst.ExpectedOutcome == nil && src.ExpectedOutcome != nil {
		outcome := *src.ExpectedOutcome
		dst.ExpectedOutcome = &outcome
	}
}

// MergePeerLists merges b into a keyed by peer ID, keeping the higher
// compatibility and similarity scores and the union of shared interests.
// The result is sorted by compatibility, highest first, with ties in order
// of first appearance.
func MergePeerLists(a, b []PeerCandidate) []PeerCandidate {
	out := make([]PeerCandidate, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))

	add := func(p PeerCandidate, fromB bool) {
		p.CompatibilityScore = ClampScore(p.CompatibilityScore)
		p.BehavioralSimilarity = ClampScore(p.BehavioralSimilarity)
		if i, ok := index[p.ID]; ok {
			mergePeerInto(&out[i], p)
			return
		}
		if fromB {
			p.AIEnhanced = true
		}
		p.SharedInterests = cloneStrings(p.SharedInterests)
		index[p.ID] = len(out)
		out = append(out, p)
	}

	for _, p := range a {
		add(p, false)
	}
	for _, p := range b {
		add(p, true)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompatibilityScore > out[j].CompatibilityScore
	})
	return out
}

func mergePeerInto(dst *PeerCandidate, src PeerCandidate) {
	contributed := src.AIEnhanced
	if src.CompatibilityScore > dst.CompatibilityScore {
		dst.CompatibilityScore = src.CompatibilityScore
		contributed = true
	}
	if src.BehavioralSimilarity > dst.BehavioralSimilarity {
		dst.BehavioralSimilarity = src.BehavioralSimilarity
		contributed = true
	}
	if interests, changed := unionStrings(dst.SharedInterests, src.SharedInterests); changed {
		dst.SharedInterests = interests
		contributed = true
	}
	if reason, changed := joinReasons(dst.Reason, src.Reason); changed {
		dst.Reason = reason
		contributed = true
	}
	if dst.SuggestedInteraction == "" {
		dst.SuggestedInteraction = src.SuggestedInteraction
	}
	if contributed {
		dst.AIEnhanced = true
	}
}

// joinReasons appends the parts of add that are not already in base.
func joinReasons(base, add string) (string, bool) {
	if add == "" || add == base {
		return base, false
	}
	if base == "" {
		return add, true
	}

	parts := strings.Split(base, reasonSeparator)
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		seen[p] = struct{}{}
	}

	changed := false
	for _, p := range strings.Split(add, reasonSeparator) {
		if _, ok := seen[p]; ok || p == "" {
			continue
		}
		seen[p] = struct{}{}
		parts = append(parts, p)
		changed = true
	}
	if !changed {
		return base, false
	}
	return strings.Join(parts, reasonSeparator), true
}

func unionStrings(base, add []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}

	var out []string
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		if out == nil {
			out = cloneStrings(base)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if out == nil {
		return base, false
	}
	return out, true
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
