// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/metrics"
)

// Source names used for metrics and logs.
const (
	sourceContent    = "content"
	sourceExercises  = "exercises"
	sourcePeers      = "peers"
	sourceActivities = "activities"
	sourceTasks      = "tasks"
	sourceAI         = "ai"
	sourceAIPeers    = "ai_peers"
	sourceAITasks    = "ai_tasks"
	sourceAIAdaptive = "ai_adaptive"
)

// GenerateContextualRecommendations builds a contextual bundle for a user.
// It never fails: when every source is unavailable it returns the fallback
// bundle.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) GenerateContextualRecommendations(ctx context.Context, userID string, rc Context, opts Options) (bundle *Bundle) {
	start := e.now()
	e.requestCount.Add(1)
	logger := e.requestLogger(ctx, userID, "contextual")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Contextual generation panicked, returning fallback")
			bundle = e.fallbackBundle(userID, rc, start)
		}
		metrics.RecordRecommendation("contextual", bundle.Fallback, time.Since(start))
		metrics.RecommendationItems.Observe(float64(bundle.Len()))
	}()

	maxItems := e.cfg.Limits.MaxRecommendations
	useCache := !opts.SkipCache
	if opts.MaxRecommendations > 0 && opts.MaxRecommendations != maxItems {
		maxItems = opts.MaxRecommendations
		useCache = false
	}

	if useCache {
		if cached, ok := cacheLoad[Bundle](ctx, e, CacheContextual, userID, start); ok {
			cached.Source = SourceCached
			logger.Debug().Msg("Serving cached contextual bundle")
			if e.shouldTrackShown(opts.SkipShownTracking) {
				e.trackBundle(ctx, userID, cached)
			}
			return cached
		}
	}

	c, analysis := e.prepareContext(ctx, userID, rc)
	bundle = e.buildContextual(ctx, userID, &c, maxItems, 0, logger)
	if bundle == nil {
		logger.Warn().Msg("All recommendation sources unavailable, returning fallback")
		return e.fallbackBundle(userID, c, start)
	}
	bundle.Insights = analysis.Insights
	bundle.GeneratedAt = start

	if useCache {
		e.cacheStore(ctx, CacheContextual, userID, start, bundle)
	}
	if e.shouldTrackShown(opts.SkipShownTracking) {
		e.trackBundle(ctx, userID, bundle)
	}

	logger.Debug().
		Int("items", bundle.Len()).
		Str("source", string(bundle.Source)).
		Dur("duration", time.Since(start)).
		Msg("Generated contextual bundle")
	return bundle
}

// buildContextual runs the rule sources and the AI provider in parallel and
// merges what succeeded. It returns nil when nothing succeeded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) buildContextual(ctx context.Context, userID string, c *Context, maxItems int, learningRate float64, logger zerolog.Logger) *Bundle {
	contentLimit := ContentLimit(maxItems)
	peerLimit := PeerLimit(maxItems)

	var (
		wg         sync.WaitGroup
		contentRes Result[[]Item]
		exerciseRs Result[ExerciseSet]
		peerRes    Result[[]PeerCandidate]
		activeRes  Result[[]Item]
		aiRes      Result[*Bundle]
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		contentRes = runSource(ctx, e, sourceContent, func(context.Context) Result[[]Item] {
			return FromCall(ruleContent(c), nil, emptyItems)
		})
	}()
	go func() {
		defer wg.Done()
		exerciseRs = runSource(ctx, e, sourceExercises, func(context.Context) Result[ExerciseSet] {
			return FromCall(ruleExercises(c), nil, func(s ExerciseSet) bool {
				return len(s.Immediate)+len(s.Preventive) == 0
			})
		})
	}()
	go func() {
		defer wg.Done()
		peerRes = runSource(ctx, e, sourcePeers, func(ctx context.Context) Result[[]PeerCandidate] {
			if e.peers == nil {
				return Soft[[]PeerCandidate](ReasonProviderUnavailable)
			}
			matches, err := e.peers.FindMatches(ctx, userID, peerLimit)
			return FromCall(matches, err, emptyPeers)
		})
	}()
	go func() {
		defer wg.Done()
		activeRes = runSource(ctx, e, sourceActivities, func(context.Context) Result[[]Item] {
			return FromCall(ruleActivities(c), nil, emptyItems)
		})
	}()
	go func() {
		defer wg.Done()
		aiRes = runSource(ctx, e, sourceAI, func(ctx context.Context) Result[*Bundle] {
			if e.provider == nil {
				return Soft[*Bundle](ReasonProviderUnavailable)
			}
			b, err := e.provider.SuggestContextual(ctx, ContextualPayload{
				UserID:       userID,
				Context:      *c,
				Analysis:     c.Patterns,
				MaxItems:     maxItems,
				LearningRate: learningRate,
			})
			return FromCall(b, err, func(b *Bundle) bool { return b.Len() == 0 })
		})
	}()
	wg.Wait()

	ai, aiOK := aiRes.Get()
	if !contentRes.IsOK() && !exerciseRs.IsOK() && !peerRes.IsOK() && !activeRes.IsOK() && !aiOK {
		return nil
	}

	content := contentRes.OrElse(nil)
	exercises := exerciseRs.OrElse(ExerciseSet{})
	peers := peerRes.OrElse(nil)
	activities := activeRes.OrElse(nil)
	source := SourceGenerated

	if aiOK {
		content = MergeContentLists(content, ai.Content)
		exercises.Immediate = MergeContentLists(exercises.Immediate, ai.Exercises.Immediate)
		exercises.Preventive = MergeContentLists(exercises.Preventive, ai.Exercises.Preventive)
		peers = MergePeerLists(peers, ai.Peers)
		activities = MergeContentLists(activities, ai.Activities)
		source = SourceAI
		logger.Debug().Int("ai_items", ai.Len()).Msg("Merged AI suggestions")
	}

	b := &Bundle{
		UserID:  userID,
		Content: nonNilItems(truncateItems(content, contentLimit)),
		Exercises: ExerciseSet{
			Immediate:  nonNilItems(exercises.Immediate),
			Preventive: nonNilItems(exercises.Preventive),
		},
		Peers:      nonNilPeers(truncatePeers(peers, peerLimit)),
		Activities: nonNilItems(activities),
		Context:    *c,
		Source:     source,
	}
	if b.Len() == 0 {
		return nil
	}
	return b
}

//nolint:gocritic // hugeParam: c passed by value for immutability
func (e *Engine) fallbackBundle(userID string, c Context, now time.Time) *Bundle {
	e.fallbackCount.Add(1)
	breathing, journal := FallbackItems()
	return &Bundle{
		UserID:  userID,
		Content: []Item{},
		Exercises: ExerciseSet{
			Immediate:  []Item{breathing},
			Preventive: []Item{},
		},
		Peers:       []PeerCandidate{},
		Activities:  []Item{journal},
		Context:     c,
		GeneratedAt: now,
		Source:      SourceFallback,
		Fallback:    true,
	}
}

// GeneratePeerRecommendations merges directory matches with AI peer
// suggestions. An empty fallback bundle is returned when both fail.
func (e *Engine) GeneratePeerRecommendations(ctx context.Context, userID string, opts PeerOptions) (bundle *PeerBundle) {
	start := e.now()
	e.requestCount.Add(1)
	logger := e.requestLogger(ctx, userID, "peers")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Peer recommendation panicked, returning fallback")
			bundle = e.fallbackPeerBundle(userID, start)
		}
		metrics.RecordRecommendation("peers", bundle.Fallback, time.Since(start))
	}()

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.Limits.DefaultPeerLimit
	}
	useCache := !opts.SkipCache && limit == e.cfg.Limits.DefaultPeerLimit && len(opts.Interests) == 0

	if useCache {
		if cached, ok := cacheLoad[PeerBundle](ctx, e, CachePeers, userID, start); ok {
			cached.Source = SourceCached
			return cached
		}
	}

	var (
		wg     sync.WaitGroup
		dirRes Result[[]PeerCandidate]
		aiRes  Result[*PeerBundle]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		dirRes = runSource(ctx, e, sourcePeers, func(ctx context.Context) Result[[]PeerCandidate] {
			if e.peers == nil {
				return Soft[[]PeerCandidate](ReasonProviderUnavailable)
			}
			matches, err := e.peers.FindMatches(ctx, userID, limit)
			return FromCall(matches, err, emptyPeers)
		})
	}()
	go func() {
		defer wg.Done()
		aiRes = runSource(ctx, e, sourceAIPeers, func(ctx context.Context) Result[*PeerBundle] {
			if e.provider == nil {
				return Soft[*PeerBundle](ReasonProviderUnavailable)
			}
			b, err := e.provider.SuggestPeers(ctx, PeerPayload{UserID: userID, Limit: limit, Interests: opts.Interests})
			return FromCall(b, err, func(b *PeerBundle) bool { return b == nil || len(b.Peers) == 0 })
		})
	}()
	wg.Wait()

	ai, aiOK := aiRes.Get()
	if !dirRes.IsOK() && !aiOK {
		logger.Warn().
			Str("directory", dirRes.Label()).
			Str("ai", aiRes.Label()).
			Msg("No peer source available, returning empty fallback")
		return e.fallbackPeerBundle(userID, start)
	}

	peers := dirRes.OrElse(nil)
	source := SourceGenerated
	if aiOK {
		peers = MergePeerLists(peers, ai.Peers)
		source = SourceAI
	} else {
		peers = MergePeerLists(peers, nil)
	}

	bundle = &PeerBundle{
		UserID:      userID,
		Peers:       nonNilPeers(truncatePeers(peers, limit)),
		GeneratedAt: start,
		Source:      source,
	}
	if useCache {
		e.cacheStore(ctx, CachePeers, userID, start, bundle)
	}
	return bundle
}

func (e *Engine) fallbackPeerBundle(userID string, now time.Time) *PeerBundle {
	e.fallbackCount.Add(1)
	return &PeerBundle{
		UserID:      userID,
		Peers:       []PeerCandidate{},
		GeneratedAt: now,
		Source:      SourceFallback,
		Fallback:    true,
	}
}

// GenerateWellnessTaskRecommendations returns tasks triaged into immediate,
// preventive and maintenance buckets.
//
//nolint:gocritic // hugeParam: rc passed by value for immutability
func (e *Engine) GenerateWellnessTaskRecommendations(ctx context.Context, userID string, rc Context) (bundle *TaskBundle) {
	start := e.now()
	e.requestCount.Add(1)
	logger := e.requestLogger(ctx, userID, "tasks")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Task recommendation panicked, returning fallback")
			bundle = e.fallbackTaskBundle(userID, start)
		}
		metrics.RecordRecommendation("tasks", bundle.Fallback, time.Since(start))
	}()

	if cached, ok := cacheLoad[TaskBundle](ctx, e, CacheTasks, userID, start); ok {
		cached.Source = SourceCached
		return cached
	}

	c, analysis := e.prepareContext(ctx, userID, rc)

	var (
		wg      sync.WaitGroup
		ruleRes Result[[]Item]
		aiRes   Result[[]Item]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ruleRes = runSource(ctx, e, sourceTasks, func(context.Context) Result[[]Item] {
			return FromCall(ruleTasks(&c), nil, emptyItems)
		})
	}()
	go func() {
		defer wg.Done()
		aiRes = runSource(ctx, e, sourceAITasks, func(ctx context.Context) Result[[]Item] {
			if e.provider == nil {
				return Soft[[]Item](ReasonProviderUnavailable)
			}
			items, err := e.provider.SuggestTasks(ctx, TaskPayload{UserID: userID, Context: c, Analysis: &analysis})
			return FromCall(items, err, emptyItems)
		})
	}()
	wg.Wait()

	aiItems, aiOK := aiRes.Get()
	if !ruleRes.IsOK() && !aiOK {
		logger.Warn().Msg("No task source available, returning fallback")
		return e.fallbackTaskBundle(userID, start)
	}

	merged := MergeContentLists(ruleRes.OrElse(nil), aiItems)
	bundle = TriageTasks(merged, logger)
	if len(bundle.Immediate)+len(bundle.Preventive)+len(bundle.Maintenance) == 0 {
		logger.Warn().Int("candidates", len(merged)).Msg("No task matched a triage bucket, returning fallback")
		return e.fallbackTaskBundle(userID, start)
	}

	bundle.UserID = userID
	bundle.GeneratedAt = start
	bundle.Source = SourceGenerated
	if aiOK {
		bundle.Source = SourceAI
	}
	e.cacheStore(ctx, CacheTasks, userID, start, bundle)
	return bundle
}

// TriageTasks sorts tasks into buckets. High priority interventions are
// immediate and medium priority preventive tasks are preventive. Every low
// priority task is maintenance whatever its type. Anything else is dropped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func TriageTasks(items []Item, logger zerolog.Logger) *TaskBundle {
	b := &TaskBundle{
		Immediate:   []Item{},
		Preventive:  []Item{},
		Maintenance: []Item{},
	}
	for i := range items {
		item := items[i]
		switch {
		case item.Priority == PriorityHigh && item.Type == TypeIntervention:
			b.Immediate = append(b.Immediate, item)
		case item.Priority == PriorityMedium && item.Type == TypePreventive:
			b.Preventive = append(b.Preventive, item)
		case item.Priority == PriorityLow:
			b.Maintenance = append(b.Maintenance, item)
		default:
			logger.Debug().
				Str("item_id", item.ID).
				Str("type", item.Type).
				Str("priority", string(item.Priority)).
				Msg("Dropping task outside triage buckets")
		}
	}
	return b
}

func (e *Engine) fallbackTaskBundle(userID string, now time.Time) *TaskBundle {
	e.fallbackCount.Add(1)
	breathing, journal := FallbackItems()
	b := TriageTasks([]Item{breathing, journal}, e.logger)
	b.UserID = userID
	b.GeneratedAt = now
	b.Source = SourceFallback
	b.Fallback = true
	return b
}

// GetAdaptiveRecommendations derives a learning rate from the user's most
// recent feedback and asks the provider for a bundle tuned by it. Without a
// provider result it falls back to contextual generation.
//
//nolint:gocritic // hugeParam: eng passed by value for immutability
func (e *Engine) GetAdaptiveRecommendations(ctx context.Context, userID string, eng Engagement) (result *AdaptiveBundle) {
	start := e.now()
	logger := e.requestLogger(ctx, userID, "adaptive")

	fb, ok := latestFeedback(eng.Feedback)
	if !ok && e.interactions != nil {
		events, err := e.interactions.Recent(ctx, userID, e.cfg.Limits.RecentEvents, ActionShown)
		if err != nil {
			logger.Debug().Err(err).Msg("Could not read recent events for learning rate")
		} else {
			fb, ok = feedbackFromEvents(events)
		}
	}
	if !ok {
		fb = Feedback{Timestamp: start}
	}
	rate := CalculateLearningRate(fb, start)
	metrics.LearningRate.Observe(rate)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Adaptive recommendation panicked, returning fallback")
			result = &AdaptiveBundle{
				UserID:       userID,
				LearningRate: rate,
				Bundle:       e.fallbackBundle(userID, eng.Context, start),
				Source:       SourceFallback,
				GeneratedAt:  start,
			}
		}
	}()

	c, analysis := e.prepareContext(ctx, userID, eng.Context)
	aiRes := runSource(ctx, e, sourceAIAdaptive, func(ctx context.Context) Result[*Bundle] {
		if e.provider == nil {
			return Soft[*Bundle](ReasonProviderUnavailable)
		}
		b, err := e.provider.SuggestContextual(ctx, ContextualPayload{
			UserID:       userID,
			Context:      c,
			Analysis:     &analysis,
			MaxItems:     e.cfg.Limits.MaxRecommendations,
			LearningRate: rate,
		})
		return FromCall(b, err, func(b *Bundle) bool { return b.Len() == 0 })
	})

	if ai, ok := aiRes.Get(); ok {
		e.requestCount.Add(1)
		b := &Bundle{
			UserID:  userID,
			Content: MergeContentLists(nil, ai.Content),
			Exercises: ExerciseSet{
				Immediate:  MergeContentLists(nil, ai.Exercises.Immediate),
				Preventive: MergeContentLists(nil, ai.Exercises.Preventive),
			},
			Peers:       MergePeerLists(nil, ai.Peers),
			Activities:  MergeContentLists(nil, ai.Activities),
			Insights:    ai.Insights,
			Context:     c,
			GeneratedAt: start,
			Source:      SourceAI,
		}
		if len(b.Insights) == 0 {
			b.Insights = analysis.Insights
		}
		if e.shouldTrackShown(false) {
			e.trackBundle(ctx, userID, b)
		}
		metrics.RecordRecommendation("adaptive", false, time.Since(start))
		return &AdaptiveBundle{UserID: userID, LearningRate: rate, Bundle: b, Source: SourceAI, GeneratedAt: start}
	}

	logger.Info().Str("reason", aiRes.Label()).Msg("Adaptive suggestions unavailable, using contextual generation")
	b := e.GenerateContextualRecommendations(ctx, userID, eng.Context, Options{})
	return &AdaptiveBundle{UserID: userID, LearningRate: rate, Bundle: b, Source: b.Source, GeneratedAt: start}
}
