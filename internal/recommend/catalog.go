// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"fmt"
	"slices"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// Mood bands used by the rule catalogs.
const (
	bandLow      = "low"      // 1-3
	bandModerate = "moderate" // 4-6
	bandGood     = "good"     // 7-10
)

// Score adjustments applied on top of a catalog entry's base score.
const (
	triggerBonus = 0.15
	timeBonus    = 0.05
	trendBonus   = 0.1
)

type catalogEntry struct {
	item     Item
	bands    []string // empty matches every band
	triggers []string
	times    []string
	outcome  string
}

func (c *catalogEntry) build(score float64, reason string) Item {
	it := c.item
	it.Score = ClampScore(score)
	it.Reason = reason
	if c.outcome != "" {
		outcome := c.outcome
		it.ExpectedOutcome = &outcome
	}
	return it
}

var contentCatalog = []catalogEntry{
	{
		item:     Item{ID: "art-grounding-basics", Category: CategoryContent, Type: TypeArticle, Title: "Grounding When Everything Feels Like Too Much", Description: "Simple techniques to come back to the present moment.", Priority: PriorityHigh, Score: 0.8, Duration: "5 min"},
		bands:    []string{bandLow},
		triggers: []string{"anxiety", "stress", "pressure"},
		outcome:  "Lower acute distress",
	},
	{
		item:     Item{ID: "vid-box-breathing", Category: CategoryContent, Type: TypeVideo, Title: "Box Breathing in Four Minutes", Description: "A guided video for slowing your breath.", Priority: PriorityHigh, Score: 0.75, Duration: "4 min"},
		bands:    []string{bandLow, bandModerate},
		triggers: []string{"anxiety", "pressure", "deadline"},
	},
	{
		item:     Item{ID: "vid-self-compassion", Category: CategoryContent, Type: TypeVideo, Title: "A Short Guide to Self-Compassion", Description: "How to talk to yourself like you would a friend.", Priority: PriorityMedium, Score: 0.7, Duration: "8 min"},
		bands:    []string{bandLow},
		outcome:  "Reduce self-criticism",
	},
	{
		item:     Item{ID: "art-work-boundaries", Category: CategoryContent, Type: TypeArticle, Title: "Setting Boundaries at Work", Description: "Protect your energy when work keeps spilling over.", Priority: PriorityMedium, Score: 0.65, Duration: "6 min"},
		bands:    []string{bandLow, bandModerate},
		triggers: []string{"work", "deadline", "pressure"},
	},
	{
		item:     Item{ID: "art-money-worry", Category: CategoryContent, Type: TypeArticle, Title: "Taking the Edge off Money Worries", Description: "Practical steps when finances weigh on you.", Priority: PriorityMedium, Score: 0.6, Duration: "7 min"},
		triggers: []string{"money"},
	},
	{
		item:     Item{ID: "art-relationship-conflict", Category: CategoryContent, Type: TypeArticle, Title: "Talking Through Conflict with People You Care About", Description: "Conversation tools for tense moments.", Priority: PriorityMedium, Score: 0.6, Duration: "8 min"},
		triggers: []string{"relationship", "family", "conflict"},
	},
	{
		item:     Item{ID: "art-coping-change", Category: CategoryContent, Type: TypeArticle, Title: "Coping with Big Changes", Description: "Finding footing when life shifts.", Priority: PriorityMedium, Score: 0.55, Duration: "6 min"},
		triggers: []string{"change"},
	},
	{
		item:     Item{ID: "art-reconnecting", Category: CategoryContent, Type: TypeArticle, Title: "Reconnecting When You Feel Isolated", Description: "Small ways to rebuild social contact.", Priority: PriorityMedium, Score: 0.55, Duration: "5 min"},
		triggers: []string{"social"},
	},
	{
		item:    Item{ID: "art-sleep-winddown", Category: CategoryContent, Type: TypeArticle, Title: "Wind-Down Habits for Better Sleep", Description: "An evening routine that helps your mind settle.", Priority: PriorityLow, Score: 0.5, Duration: "5 min"},
		times:   []string{Evening, Night},
		outcome: "Better sleep quality",
	},
	{
		item:  Item{ID: "vid-gratitude", Category: CategoryContent, Type: TypeVideo, Title: "Gratitude Practice Walkthrough", Description: "Notice what is going right.", Priority: PriorityLow, Score: 0.5, Duration: "6 min"},
		bands: []string{bandModerate, bandGood},
	},
	{
		item:  Item{ID: "art-momentum", Category: CategoryContent, Type: TypeArticle, Title: "Keeping Momentum on Good Days", Description: "Build on what is working.", Priority: PriorityLow, Score: 0.5, Duration: "4 min"},
		bands: []string{bandGood},
	},
}

var exerciseCatalog = []catalogEntry{
	{
		item:    Item{ID: "ex-478-breathing", Category: CategoryExercise, Type: TypeBreathing, Title: "4-7-8 Breathing", Description: "Inhale for 4, hold for 7, exhale for 8.", Priority: PriorityHigh, Score: 0.85, Duration: "3 min"},
		bands:   []string{bandLow},
		outcome: "Calmer body within minutes",
	},
	{
		item:     Item{ID: "ex-54321-grounding", Category: CategoryExercise, Type: TypeGrounding, Title: "5-4-3-2-1 Grounding", Description: "Name five things you see, four you feel, three you hear, two you smell and one you taste.", Priority: PriorityHigh, Score: 0.8, Duration: "5 min"},
		bands:    []string{bandLow},
		triggers: []string{"anxiety", "stress"},
	},
	{
		item:     Item{ID: "ex-trigger-journal", Category: CategoryExercise, Type: TypeJournaling, Title: "Trigger Reflection", Description: "Write about what set off a hard moment and how you responded.", Priority: PriorityMedium, Score: 0.65, Duration: "10 min"},
		triggers: []string{"work", "stress", "family", "relationship", "money", "conflict"},
	},
	{
		item:  Item{ID: "ex-mindful-walk", Category: CategoryExercise, Type: TypeMovement, Title: "Mindful Walk", Description: "A slow walk paying attention to each step.", Priority: PriorityMedium, Score: 0.6, Duration: "15 min"},
		times: []string{Morning, Afternoon},
	},
	{
		item:  Item{ID: "ex-body-scan", Category: CategoryExercise, Type: TypeBreathing, Title: "Body Scan", Description: "Release tension from head to toe.", Priority: PriorityMedium, Score: 0.55, Duration: "10 min"},
		times: []string{Evening, Night},
	},
	{
		item:  Item{ID: "ex-gratitude-journal", Category: CategoryExercise, Type: TypeJournaling, Title: "Three Good Things", Description: "Write down three things that went well today.", Priority: PriorityMedium, Score: 0.5, Duration: "5 min"},
		bands: []string{bandModerate, bandGood},
	},
}

var activityCatalog = []catalogEntry{
	{item: Item{ID: "act-morning-light", Category: CategoryActivity, Type: TypeActivity, Title: "Step Into Morning Light", Description: "Ten minutes outside soon after waking.", Priority: PriorityMedium, Score: 0.6, Duration: "10 min"}, times: []string{Morning}},
	{item: Item{ID: "act-stretch-break", Category: CategoryActivity, Type: TypeActivity, Title: "Two-Minute Stretch Break", Description: "Stand up, roll your shoulders, stretch your back.", Priority: PriorityLow, Score: 0.55, Duration: "2 min"}, times: []string{Afternoon}},
	{item: Item{ID: "act-screen-free", Category: CategoryActivity, Type: TypeActivity, Title: "Screen-Free Wind Down", Description: "Put devices away for the last half hour of your evening.", Priority: PriorityMedium, Score: 0.6, Duration: "30 min"}, times: []string{Evening}},
	{item: Item{ID: "act-sleep-story", Category: CategoryActivity, Type: TypeActivity, Title: "Listen to a Sleep Story", Description: "Let a calm narration carry you to sleep.", Priority: PriorityLow, Score: 0.55, Duration: "20 min"}, times: []string{Night}},
}

var (
	activityWeekend = catalogEntry{item: Item{ID: "act-weekend-plan", Category: CategoryActivity, Type: TypeActivity, Title: "Plan Something You Enjoy", Description: "Block time this weekend for something just for you.", Priority: PriorityLow, Score: 0.5}}
	activityReachOut = catalogEntry{item: Item{ID: "act-reach-out", Category: CategoryActivity, Type: TypeActivity, Title: "Message Someone You Trust", Description: "A short check-in with a friend or peer.", Priority: PriorityMedium, Score: 0.65}, outcome: "Feel more connected"}
	activityWinter   = catalogEntry{item: Item{ID: "act-winter-light", Category: CategoryActivity, Type: TypeActivity, Title: "Daylight Break", Description: "Get outside while the sun is up.", Priority: PriorityLow, Score: 0.5, Duration: "15 min"}}
	activitySummer   = catalogEntry{item: Item{ID: "act-summer-shade", Category: CategoryActivity, Type: TypeActivity, Title: "Time Outdoors in the Shade", Description: "Enjoy the long days while staying cool.", Priority: PriorityLow, Score: 0.45, Duration: "20 min"}}
)

var taskCatalog = []catalogEntry{
	{item: Item{ID: "task-breathe-now", Category: CategoryExercise, Type: TypeIntervention, Title: "Take Five Slow Breaths Now", Priority: PriorityHigh, Score: 0.9, Duration: "1 min"}, bands: []string{bandLow}},
	{item: Item{ID: "task-peer-support", Category: CategoryPeer, Type: TypeIntervention, Title: "Reach Out to a Peer Supporter", Priority: PriorityHigh, Score: 0.8}, bands: []string{bandLow}},
	{item: Item{ID: "task-walk", Category: CategoryExercise, Type: TypePreventive, Title: "Schedule a Ten-Minute Walk", Priority: PriorityMedium, Score: 0.65, Duration: "10 min"}},
	{item: Item{ID: "task-trigger-plan", Category: CategoryExercise, Type: TypePreventive, Title: "Plan Ahead for a Known Trigger", Priority: PriorityMedium, Score: 0.6}, triggers: patterns.TriggerKeywords},
	{item: Item{ID: "task-bedtime", Category: CategoryActivity, Type: TypePreventive, Title: "Keep a Consistent Bedtime", Priority: PriorityMedium, Score: 0.55}, times: []string{Evening, Night}},
	{item: Item{ID: "task-log-mood", Category: CategoryActivity, Type: TypeMaintenance, Title: "Log Today's Mood", Priority: PriorityLow, Score: 0.5, Duration: "1 min"}},
	{item: Item{ID: "task-good-thing", Category: CategoryExercise, Type: TypeMaintenance, Title: "Note One Thing That Went Well", Priority: PriorityLow, Score: 0.45, Duration: "2 min"}},
}

// FallbackItems returns the minimal recommendations used when generation
// fails: a breathing exercise and a journal reflection, both low priority.
func FallbackItems() (breathing, journal Item) {
	breathing = Item{
		ID: "fallback-breathing", Category: CategoryExercise, Type: TypeBreathing,
		Title:       "Take a Breathing Break",
		Description: "Breathe in for four counts and out for six, for two minutes.",
		Reason:      "A reliable way to reset at any time",
		Priority:    PriorityLow, Score: 0.5, Duration: "2 min",
	}
	journal = Item{
		ID: "fallback-journal", Category: CategoryActivity, Type: TypeJournaling,
		Title:       "Journal Reflection",
		Description: "Write a few lines about how today is going.",
		Reason:      "Reflection helps you notice patterns over time",
		Priority:    PriorityLow, Score: 0.5, Duration: "5 min",
	}
	return breathing, journal
}

// moodBand places the request mood in a band; unknown mood is moderate.
func moodBand(c *Context) string {
	if c.Mood == nil {
		return bandModerate
	}
	switch {
	case c.Mood.Rating <= 3:
		return bandLow
	case c.Mood.Rating <= 6:
		return bandModerate
	default:
		return bandGood
	}
}

// ruleMatch scores a catalog entry against the context. ok is false when
// neither the mood band nor a trigger matches.
func ruleMatch(e *catalogEntry, c *Context) (score float64, reason string, ok bool) {
	band := moodBand(c)
	bandOK := len(e.bands) == 0 || slices.Contains(e.bands, band)

	var matched string
	for _, t := range c.Triggers {
		if slices.Contains(e.triggers, t) {
			matched = t
			break
		}
	}

	if !bandOK && matched == "" {
		return 0, "", false
	}
	if len(e.bands) == 0 && len(e.triggers) > 0 && matched == "" && len(e.times) == 0 {
		// Trigger-only entries need a trigger.
		return 0, "", false
	}
	if len(e.times) > 0 && !slices.Contains(e.times, c.TimeOfDay) && matched == "" {
		return 0, "", false
	}

	score = e.item.Score
	switch {
	case matched != "":
		score += triggerBonus
		reason = fmt.Sprintf("Related to %q, which comes up on harder days", matched)
	case len(e.times) > 0:
		score += timeBonus
		reason = fmt.Sprintf("Suited to the %s", c.TimeOfDay)
	case len(e.bands) > 0:
		reason = fmt.Sprintf("Matches your current mood (%s)", band)
	default:
		reason = "Recommended for general wellbeing"
	}

	if c.Patterns != nil && c.Patterns.Trend.Trend == patterns.Declining && e.item.Priority == PriorityHigh {
		score += trendBonus
	}
	return ClampScore(score), reason, true
}

func selectFromCatalog(catalog []catalogEntry, c *Context) []Item {
	out := make([]Item, 0, len(catalog))
	for i := range catalog {
		if score, reason, ok := ruleMatch(&catalog[i], c); ok {
			out = append(out, catalog[i].build(score, reason))
		}
	}
	return out
}

// ruleContent returns catalog content for the context, best first.
func ruleContent(c *Context) []Item {
	return MergeContentLists(selectFromCatalog(contentCatalog, c), nil)
}

// ruleExercises splits matching exercises: high priority goes to
// Immediate, everything else to Preventive.
func ruleExercises(c *Context) ExerciseSet {
	var set ExerciseSet
	for _, it := range MergeContentLists(selectFromCatalog(exerciseCatalog, c), nil) {
		if it.Priority == PriorityHigh {
			set.Immediate = append(set.Immediate, it)
		} else {
			set.Preventive = append(set.Preventive, it)
		}
	}
	return set
}

// ruleActivities returns activities for the time of day, weekend, season
// and social context.
func ruleActivities(c *Context) []Item {
	out := selectFromCatalog(activityCatalog, c)

	if c.IsWeekend {
		out = append(out, activityWeekend.build(activityWeekend.item.Score, "It's the weekend"))
	}
	if c.Social != nil && !c.Social.HasRecentPeerContact {
		out = append(out, activityReachOut.build(activityReachOut.item.Score+timeBonus, "You haven't connected with anyone recently"))
	}
	switch c.Season {
	case "winter":
		out = append(out, activityWinter.build(activityWinter.item.Score, "Short winter days affect mood"))
	case "summer":
		out = append(out, activitySummer.build(activitySummer.item.Score, "Make the most of long days"))
	}
	return MergeContentLists(out, nil)
}

// ruleTasks returns untriaged wellness tasks.
func ruleTasks(c *Context) []Item {
	out := make([]Item, 0, len(taskCatalog))
	for i := range taskCatalog {
		e := &taskCatalog[i]
		if len(e.bands) == 0 && len(e.triggers) == 0 && len(e.times) == 0 {
			out = append(out, e.build(e.item.Score, "Part of a steady routine"))
			continue
		}
		if score, reason, ok := ruleMatch(e, c); ok {
			out = append(out, e.build(score, reason))
		}
	}
	return MergeContentLists(out, nil)
}
