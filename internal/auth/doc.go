// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package auth authenticates API callers with HS256 bearer tokens.
//
// Access is self-only: the token subject is the user ID, and every
// /users/{userID}/... route requires the subject to match the path. In
// AUTH_MODE=none every request passes and no subject is attached.
package auth
