// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

/*
Package recommend generates wellness recommendations and learns from how
users react to them.

# Overview

The Engine turns a per-request Context into a Bundle of four categories:
content, exercises (immediate and preventive), peer matches and activities.
Each request flows through the same stages:

  - Enricher adds season, weekend, quarter hour, week of month and social
    activity read from the InteractionLog.
  - Mood and journal history is read from the HistoryStore and analyzed by
    the patterns package (trend, triggers, weekly cycle, forecast).
  - Rule catalogs and the SuggestionProvider run in parallel, each under its
    own timeout.
  - MergeContentLists and MergePeerLists combine rule and AI candidates.
  - The result is cached for the user's five-minute bucket.

# Failure Handling

Sources report a Result: OK, a soft failure with a Reason, or an
unexpected error. A failed source never blocks the others. The public entry
points never return an error; when nothing succeeds they return a fallback
bundle holding a breathing exercise and a journal reflection.

# Feedback

FeedbackLoop records interaction events, keeps acceptance and effectiveness
counters per category and publishes events through an EventPublisher.
CalculateLearningRate turns the most recent rating into a decayed weight
that GetAdaptiveRecommendations passes to the SuggestionProvider.

# Thread Safety

Engine, Enricher and FeedbackLoop are safe for concurrent use.
*/
package recommend
