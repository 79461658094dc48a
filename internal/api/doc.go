// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package api serves the recommendation engine over HTTP with chi.
//
// Routes (all JSON, wrapped in models.APIResponse):
//
//	GET  /api/v1/health
//	POST /api/v1/users/{userID}/recommendations   body: recommend.Context
//	GET  /api/v1/users/{userID}/peers?limit=&interests=
//	POST /api/v1/users/{userID}/tasks             body: recommend.Context
//	POST /api/v1/users/{userID}/adaptive          body: recommend.Engagement
//	POST /api/v1/users/{userID}/feedback          body: recommend.Event
//	GET  /api/v1/users/{userID}/patterns
//	PUT  /api/v1/users/{userID}/profile           body: ProfileRequest
//	GET  /api/v1/feedback/stats
//	GET  /metrics
//
// Per-user routes pass through auth.Middleware.Authenticate and RequireSelf.
package api
