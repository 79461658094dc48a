// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import (
	"sort"
	"strings"
)

// LowMoodThreshold is the mood below which a journal entry is scanned for
// triggers.
const LowMoodThreshold = 4

// MaxTriggers is how many triggers IdentifyCommonTriggers returns.
const MaxTriggers = 5

// TriggerKeywords is the fixed trigger vocabulary, in tie-break order.
var TriggerKeywords = []string{
	"work", "stress", "family", "relationship", "money", "health",
	"social", "anxiety", "pressure", "deadline", "conflict", "change",
}

// IdentifyCommonTriggers counts trigger keywords in journal entries with a
// mood below LowMoodThreshold. A keyword counts once per entry. The result
// holds at most MaxTriggers keywords, most frequent first; ties keep the
// order of TriggerKeywords.
func IdentifyCommonTriggers(entries []JournalEntry) []Trigger {
	counts := make([]int, len(TriggerKeywords))

	for _, entry := range entries {
		if entry.Mood >= LowMoodThreshold {
			continue
		}
		text := strings.ToLower(entry.Content)
		for i, kw := range TriggerKeywords {
			if strings.Contains(text, kw) {
				counts[i]++
			}
		}
	}

	triggers := make([]Trigger, 0, len(TriggerKeywords))
	for i, kw := range TriggerKeywords {
		if counts[i] > 0 {
			triggers = append(triggers, Trigger{Keyword: kw, Frequency: counts[i]})
		}
	}

	sort.SliceStable(triggers, func(i, j int) bool {
		return triggers[i].Frequency > triggers[j].Frequency
	})

	if len(triggers) > MaxTriggers {
		triggers = triggers[:MaxTriggers]
	}
	return triggers
}
