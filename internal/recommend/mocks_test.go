// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// memLog is an in-memory InteractionLog.
type memLog struct {
	mu        sync.Mutex
	events    []Event
	recordErr error
	recentErr error
}

func (m *memLog) Record(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memLog) Recent(_ context.Context, userID string, n int, skip ...Action) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []Event
	for i := len(m.events) - 1; i >= 0 && len(out) < n; i-- {
		if m.events[i].UserID == userID && !slices.Contains(skip, m.events[i].Action) {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *memLog) count(action Action) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.events {
		if m.events[i].Action == action {
			n++
		}
	}
	return n
}

type stubHistory struct {
	moods      []patterns.MoodEntry
	journal    []patterns.JournalEntry
	moodErr    error
	journalErr error
}

func (s *stubHistory) GetMoodHistory(context.Context, string, int) ([]patterns.MoodEntry, error) {
	return s.moods, s.moodErr
}

func (s *stubHistory) GetJournalEntries(context.Context, string, int) ([]patterns.JournalEntry, error) {
	return s.journal, s.journalErr
}

type stubProvider struct {
	contextual *Bundle
	peers      *PeerBundle
	tasks      []Item
	err        error
	delay      time.Duration
	panicMsg   string

	calls       atomic.Int32
	lastPayload atomic.Value // ContextualPayload
}

func (s *stubProvider) wait(ctx context.Context) error {
	s.calls.Add(1)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *stubProvider) SuggestContextual(ctx context.Context, p ContextualPayload) (*Bundle, error) {
	s.lastPayload.Store(p)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.contextual, nil
}

func (s *stubProvider) SuggestPeers(ctx context.Context, _ PeerPayload) (*PeerBundle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.peers, nil
}

func (s *stubProvider) SuggestTasks(ctx context.Context, _ TaskPayload) ([]Item, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.tasks, nil
}

type stubPeers struct {
	matches []PeerCandidate
	err     error
}

func (s *stubPeers) FindMatches(_ context.Context, _ string, limit int) ([]PeerCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.matches) > limit {
		return s.matches[:limit], nil
	}
	return s.matches, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func floatPtr(f float64) *float64 { return &f }
