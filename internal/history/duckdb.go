// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS mood_entries (
		user_id    VARCHAR   NOT NULL,
		mood       INTEGER   NOT NULL,
		note       VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mood_entries_user ON mood_entries (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS journal_entries (
		user_id    VARCHAR   NOT NULL,
		content    VARCHAR   NOT NULL,
		mood       INTEGER,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries (user_id, created_at)`,
}

// DuckDBStore keeps history in an embedded DuckDB database.
type DuckDBStore struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// OpenDuckDB opens (or creates) the database at path. An empty path or
// ":memory:" gives an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenDuckDB(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are not needed; keep startup offline.
	connStr := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	for _, stmt := range duckdbSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create history schema: %w", err)
		}
	}

	return &DuckDBStore{
		conn:   conn,
		logger: logger.With().Str("component", "history").Str("driver", DriverDuckDB).Logger(),
	}, nil
}

// GetMoodHistory returns up to limit of the user's newest mood entries,
// oldest first.
func (s *DuckDBStore) GetMoodHistory(ctx context.Context, userID string, limit int) ([]patterns.MoodEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT mood, COALESCE(note, ''), created_at
		FROM mood_entries
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query mood history: %w", err)
	}
	defer rows.Close()

	entries := make([]patterns.MoodEntry, 0, limit)
	for rows.Next() {
		var e patterns.MoodEntry
		if err := rows.Scan(&e.Mood, &e.Note, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood history: %w", err)
	}

	reverseMoods(entries)
	return entries, nil
}

// GetJournalEntries returns up to limit of the user's newest journal entries,
// oldest first.
func (s *DuckDBStore) GetJournalEntries(ctx context.Context, userID string, limit int) ([]patterns.JournalEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT content, COALESCE(mood, 0), created_at
		FROM journal_entries
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]patterns.JournalEntry, 0, limit)
	for rows.Next() {
		var e patterns.JournalEntry
		if err := rows.Scan(&e.Content, &e.Mood, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}

	reverseJournal(entries)
	return entries, nil
}

// AddMood inserts a mood entry. A zero timestamp means now.
func (s *DuckDBStore) AddMood(ctx context.Context, userID string, entry patterns.MoodEntry) error {
	if err := validateMood(userID, entry.Mood); err != nil {
		return err
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO mood_entries (user_id, mood, note, created_at) VALUES (?, ?, ?, ?)`,
		userID, entry.Mood, entry.Note, ts.UTC()); err != nil {
		return fmt.Errorf("insert mood entry: %w", err)
	}
	return nil
}

// AddJournal inserts a journal entry. A zero timestamp means now.
func (s *DuckDBStore) AddJournal(ctx context.Context, userID string, entry patterns.JournalEntry) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO journal_entries (user_id, content, mood, created_at) VALUES (?, ?, ?, ?)`,
		userID, entry.Content, entry.Mood, ts.UTC()); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close checkpoints and closes the database.
func (s *DuckDBStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to checkpoint history before close")
	}
	return s.conn.Close()
}
