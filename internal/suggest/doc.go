// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package suggest implements recommend.SuggestionProvider over an
// OpenAI-compatible chat completions endpoint.
//
// Every call passes a token bucket (golang.org/x/time/rate) and then a
// circuit breaker (sony/gobreaker). A full bucket wait that would exceed the
// context deadline, an open breaker, HTTP 429 and 5xx responses all surface
// as recommend.ErrProviderUnavailable so the engine treats them as soft
// failures. Malformed model output is a hard error.
//
// The model is asked for a JSON object. Items it returns are normalized:
// scores are clamped to [0,1], unknown priorities become medium, items
// without a title are dropped and every item is marked AI-enhanced.
package suggest
