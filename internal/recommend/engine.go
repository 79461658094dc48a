// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Wetende/mind-digest-sub001/internal/cache"
	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/metrics"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// Cache categories.
const (
	CacheContextual = "contextual"
	CachePeers      = "peers"
	CacheTasks      = "tasks"
)

// CacheCategories lists every category the engine caches under.
var CacheCategories = []string{CacheContextual, CachePeers, CacheTasks}

var errSourcePanic = errors.New("source panicked")

// Deps are the engine's collaborators. Any of them may be nil; the engine
// degrades to rule-based output without them.
type Deps struct {
	History      HistoryStore
	Interactions InteractionLog
	Provider     SuggestionProvider
	Peers        PeerDirectory
	Publisher    EventPublisher
	Cache        cache.Cacher
}

// Engine generates wellness recommendations. It is safe for concurrent use.
type Engine struct {
	cfg    *Config
	logger zerolog.Logger
	now    func() time.Time

	history      HistoryStore
	interactions InteractionLog
	provider     SuggestionProvider
	peers        PeerDirectory
	cache        cache.Cacher

	enricher *Enricher
	feedback *FeedbackLoop

	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	fallbackCount atomic.Int64
}

// EngineStats is a snapshot of engine counters.
type EngineStats struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	Fallbacks   int64 `json:"fallbacks"`
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		logger:       logger.With().Str("component", "recommend").Logger(),
		now:          time.Now,
		history:      deps.History,
		interactions: deps.Interactions,
		provider:     deps.Provider,
		peers:        deps.Peers,
		cache:        deps.Cache,
	}
	e.enricher = NewEnricher(deps.Interactions, cfg.Limits.RecentEvents, logger)
	e.feedback = NewFeedbackLoop(deps.Interactions, deps.Publisher, logger)
	return e, nil
}

// Feedback returns the engine's feedback loop.
func (e *Engine) Feedback() *FeedbackLoop {
	return e.feedback
}

// Stats returns engine counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Fallbacks:   e.fallbackCount.Load(),
	}
}

// InvalidateUser drops every cached bundle for a user.
func (e *Engine) InvalidateUser(ctx context.Context, userID string) (int, error) {
	if e.cache == nil {
		return 0, nil
	}
	total := 0
	for _, category := range CacheCategories {
		n, err := e.cache.DeletePrefix(ctx, cache.UserPrefix(category, userID))
		total += n
		if err != nil {
			return total, fmt.Errorf("invalidate %s cache: %w", category, err)
		}
	}
	return total, nil
}

// AnalyzeUser loads a user's history and runs pattern analysis.
func (e *Engine) AnalyzeUser(ctx context.Context, userID string) patterns.Analysis {
	h := e.loadHistory(ctx, userID)
	return patterns.AnalyzeMoodPatterns(h.moods, h.journal)
}

func (e *Engine) requestLogger(ctx context.Context, userID, kind string) zerolog.Logger {
	return logging.Ctx(ctx, e.logger).With().
		Str("user_id", userID).
		Str("kind", kind).
		Logger()
}

type userHistory struct {
	moods   []patterns.MoodEntry
	journal []patterns.JournalEntry
}

// loadHistory reads mood and journal history concurrently. A failure of
// one read does not cancel the other; whatever loaded is returned.
func (e *Engine) loadHistory(ctx context.Context, userID string) userHistory {
	var h userHistory
	if e.history == nil {
		return h
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.SourceTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		moods, err := e.history.GetMoodHistory(ctx, userID, e.cfg.History.MoodLimit)
		if err != nil {
			metrics.SourceFailures.WithLabelValues("mood_history", "error").Inc()
			return fmt.Errorf("mood history: %w", err)
		}
		h.moods = moods
		return nil
	})
	g.Go(func() error {
		journal, err := e.history.GetJournalEntries(ctx, userID, e.cfg.History.JournalLimit)
		if err != nil {
			metrics.SourceFailures.WithLabelValues("journal", "error").Inc()
			return fmt.Errorf("journal entries: %w", err)
		}
		h.journal = journal
		return nil
	})

	if err := g.Wait(); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("History load incomplete, continuing with partial history")
	}
	return h
}

// prepareContext enriches the request context and attaches pattern analysis.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) prepareContext(ctx context.Context, userID string, rc Context) (Context, patterns.Analysis) {
	c := e.enricher.Enrich(ctx, userID, rc)
	h := e.loadHistory(ctx, userID)

	analysis := patterns.AnalyzeMoodPatterns(h.moods, h.journal)
	if analysis.Degraded {
		metrics.EnrichmentFailures.WithLabelValues("patterns").Inc()
		e.logger.Warn().Str("user_id", userID).Msg("Pattern analysis failed, using defaults")
	}

	c.Patterns = &analysis
	c.Triggers = make([]string, 0, len(analysis.Triggers))
	for _, t := range analysis.Triggers {
		c.Triggers = append(c.Triggers, t.Keyword)
	}

	switch {
	case c.Mood == nil && len(h.moods) > 0:
		c.Mood = &MoodSnapshot{Rating: h.moods[len(h.moods)-1].Mood, Emotion: analysis.Emotions.Dominant}
	case c.Mood != nil && c.Mood.Emotion == "":
		mood := *c.Mood
		mood.Emotion = analysis.Emotions.Dominant
		c.Mood = &mood
	}
	return c, analysis
}

// runSource runs fetch under its own timeout. A panic or an expired
// deadline becomes a failed Result; the caller never blocks past the
// timeout even if fetch ignores its context.
func runSource[T any](parent context.Context, e *Engine, name string, fetch func(context.Context) Result[T]) Result[T] {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, e.cfg.Limits.SourceTimeout)
	defer cancel()

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Fail[T](fmt.Errorf("%w: %s: %v", errSourcePanic, name, r))
			}
		}()
		if ctx.Err() != nil {
			done <- Soft[T](ReasonTimeout)
			return
		}
		done <- fetch(ctx)
	}()

	var res Result[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Soft[T](ReasonTimeout)
	}

	metrics.RecordSourceFetch(name, time.Since(start), res.Label())
	if !res.IsOK() {
		ev := e.logger.Debug()
		if res.Err() != nil {
			ev = e.logger.Warn().Err(res.Err())
		}
		ev.Str("source", name).Str("reason", res.Label()).Msg("Source skipped")
	}
	return res
}

func cacheLoad[T any](ctx context.Context, e *Engine, category, userID string, now time.Time) (*T, bool) {
	if e.cache == nil || !e.cfg.CacheEnabled {
		return nil, false
	}

	data, ok := e.cache.Get(ctx, cache.BucketKey(category, userID, now))
	metrics.RecordCacheLookup(category, ok)
	if !ok {
		e.cacheMisses.Add(1)
		return nil, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		e.cacheMisses.Add(1)
		e.logger.Warn().Err(err).Str("category", category).Msg("Discarding undecodable cached bundle")
		return nil, false
	}
	e.cacheHits.Add(1)
	return &v, true
}

func (e *Engine) cacheStore(ctx context.Context, category, userID string, now time.Time, v interface{}) {
	if e.cache == nil || !e.cfg.CacheEnabled {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		e.logger.Warn().Err(err).Str("category", category).Msg("Failed to encode bundle for cache")
		return
	}
	if err := e.cache.Set(ctx, cache.BucketKey(category, userID, now), data); err != nil {
		e.logger.Warn().Err(err).Str("category", category).Msg("Failed to cache bundle")
	}
}

func (e *Engine) shouldTrackShown(skip bool) bool {
	return e.cfg.TrackShown && !skip && e.feedback != nil
}

func (e *Engine) trackBundle(ctx context.Context, userID string, b *Bundle) {
	items := make([]Item, 0, b.Len())
	items = append(items, b.Content...)
	items = append(items, b.Exercises.Immediate...)
	items = append(items, b.Exercises.Preventive...)
	items = append(items, b.Activities...)
	items = append(items, peerItems(b.Peers)...)
	e.feedback.RecordShown(ctx, userID, items)
}

func peerItems(peers []PeerCandidate) []Item {
	items := make([]Item, len(peers))
	for i, p := range peers {
		items[i] = Item{ID: p.ID, Category: CategoryPeer, Type: "peer_match"}
	}
	return items
}

func nonNilItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

func nonNilPeers(peers []PeerCandidate) []PeerCandidate {
	if peers == nil {
		return []PeerCandidate{}
	}
	return peers
}

func truncateItems(items []Item, n int) []Item {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func truncatePeers(peers []PeerCandidate, n int) []PeerCandidate {
	if n >= 0 && len(peers) > n {
		return peers[:n]
	}
	return peers
}

func emptyItems(items []Item) bool { return len(items) == 0 }

func emptyPeers(peers []PeerCandidate) bool { return len(peers) == 0 }
