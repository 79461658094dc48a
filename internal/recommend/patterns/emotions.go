// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package patterns

import (
	"strings"
	"unicode"
)

type emotionLexicon struct {
	emotion string
	words   []string
}

// emotionLexicons is checked in order; earlier emotions win ties.
var emotionLexicons = []emotionLexicon{
	{"anxious", []string{"anxious", "worried", "nervous", "panic", "overwhelmed"}},
	{"sad", []string{"sad", "down", "lonely", "crying", "hopeless"}},
	{"angry", []string{"angry", "mad", "furious", "frustrated", "irritated"}},
	{"tired", []string{"tired", "exhausted", "drained", "sleepy"}},
	{"happy", []string{"happy", "joy", "glad", "excited", "great"}},
	{"calm", []string{"calm", "relaxed", "peaceful", "content"}},
	{"hopeful", []string{"hopeful", "optimistic", "motivated"}},
}

// AnalyzeEmotions counts how many journal entries mention each emotion and
// picks the most frequent one. Words are matched whole, case-insensitively.
func AnalyzeEmotions(entries []JournalEntry) EmotionSummary {
	counts := make([]int, len(emotionLexicons))

	for _, entry := range entries {
		words := tokenize(entry.Content)
		for i, lex := range emotionLexicons {
			for _, w := range lex.words {
				if _, ok := words[w]; ok {
					counts[i]++
					break
				}
			}
		}
	}

	var summary EmotionSummary
	best := 0
	for i, lex := range emotionLexicons {
		if counts[i] == 0 {
			continue
		}
		summary.Counts = append(summary.Counts, EmotionCount{Emotion: lex.emotion, Count: counts[i]})
		if counts[i] > best {
			best = counts[i]
			summary.Dominant = lex.emotion
		}
	}
	return summary
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
