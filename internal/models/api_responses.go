// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package models holds the HTTP wire envelope shared by all API handlers.
package models

import "time"

// APIResponse wraps every HTTP response body.
//
// Status is "success" or "error". On success Data holds the payload; on
// error Error describes the failure.
//
//	{
//	  "status": "success",
//	  "data": {"user_id": "u-1", "content": [...]},
//	  "metadata": {"timestamp": "2026-05-01T12:00:00Z", "query_time_ms": 41}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// APIError is the machine-readable error body.
//
// Codes in use:
//   - VALIDATION_ERROR
//   - AUTHENTICATION_ERROR
//   - AUTHORIZATION_ERROR
//   - NOT_FOUND
//   - RATE_LIMIT_EXCEEDED
//   - METHOD_NOT_ALLOWED
//   - SERVICE_UNAVAILABLE
//   - INTERNAL_ERROR
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     float64           `json:"uptime_seconds"`
	Components map[string]string `json:"components"`
}
