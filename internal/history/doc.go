// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package history reads mood and journal history for pattern analysis.
//
// Two backends implement recommend.HistoryStore:
//
//   - DuckDBStore: embedded, file-backed or ":memory:". Default for local runs
//     and tests.
//   - PostgresStore: pgx connection pool against the Supabase database that the
//     mobile app writes to.
//
// Both return entries oldest to newest, capped at the requested limit. The cap
// keeps the newest entries.
//
// Schema (both backends):
//
//	mood_entries    (user_id, mood, note, created_at)
//	journal_entries (user_id, content, mood, created_at)
package history
