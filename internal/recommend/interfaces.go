// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// HistoryStore reads a user's mood and journal history. Results are ordered
// oldest to newest and may be empty.
type HistoryStore interface {
	GetMoodHistory(ctx context.Context, userID string, limit int) ([]patterns.MoodEntry, error)
	GetJournalEntries(ctx context.Context, userID string, limit int) ([]patterns.JournalEntry, error)
}

// InteractionLog is the append-only interaction event log.
type InteractionLog interface {
	Record(ctx context.Context, event Event) error

	// Recent returns up to n of the user's latest events, newest first.
	// Events whose action is in skip are passed over and do not count
	// toward n.
	Recent(ctx context.Context, userID string, n int, skip ...Action) ([]Event, error)
}

// SuggestionProvider produces AI-augmented suggestions. A nil result and an
// error are treated the same way by callers.
type SuggestionProvider interface {
	SuggestContextual(ctx context.Context, payload ContextualPayload) (*Bundle, error)
	SuggestPeers(ctx context.Context, payload PeerPayload) (*PeerBundle, error)
	SuggestTasks(ctx context.Context, payload TaskPayload) ([]Item, error)
}

// PeerDirectory finds compatible peers.
type PeerDirectory interface {
	FindMatches(ctx context.Context, userID string, limit int) ([]PeerCandidate, error)
}

// EventPublisher fans recorded events out to other consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
