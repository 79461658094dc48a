// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS mood_entries (
	user_id    TEXT        NOT NULL,
	mood       INTEGER     NOT NULL CHECK (mood BETWEEN 1 AND 10),
	note       TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_mood_entries_user ON mood_entries (user_id, created_at DESC);
CREATE TABLE IF NOT EXISTS journal_entries (
	user_id    TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	mood       INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries (user_id, created_at DESC);
`

// PostgresOptions configures the pgx pool.
type PostgresOptions struct {
	URL      string
	MaxConns int32

	// Migrate creates the tables when missing. Supabase deployments manage
	// their own schema and leave this off.
	Migrate bool
}

// PostgresStore reads history from Postgres through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// OpenPostgres connects the pool and verifies the connection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenPostgres(ctx context.Context, opts PostgresOptions, logger zerolog.Logger) (*PostgresStore, error) {
	if opts.URL == "" {
		return nil, errors.New("postgres url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if opts.Migrate {
		if _, err := pool.Exec(ctx, postgresSchema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create history schema: %w", err)
		}
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "history").Str("driver", DriverPostgres).Logger(),
	}, nil
}

// GetMoodHistory returns up to limit of the user's newest mood entries,
// oldest first. A missing table reads as no history.
func (s *PostgresStore) GetMoodHistory(ctx context.Context, userID string, limit int) ([]patterns.MoodEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT mood, COALESCE(note, ''), created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		if isUndefinedTable(err) {
			s.logger.Warn().Msg("mood_entries table missing, returning empty history")
			return nil, nil
		}
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
func (s *PostgresStore) GetJournalEntries(ctx context.Context, userID string, limit int) ([]patterns.JournalEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content, COALESCE(mood, 0), created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		if isUndefinedTable(err) {
			s.logger.Warn().Msg("journal_entries table missing, returning empty history")
			return nil, nil
		}
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
func (s *PostgresStore) AddMood(ctx context.Context, userID string, entry patterns.MoodEntry) error {
	if err := validateMood(userID, entry.Mood); err != nil {
		return err
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO mood_entries (user_id, mood, note, created_at) VALUES ($1, $2, $3, $4)`,
		userID, entry.Mood, entry.Note, ts.UTC()); err != nil {
		return fmt.Errorf("insert mood entry: %w", err)
	}
	return nil
}

// AddJournal inserts a journal entry. A zero timestamp means now.
func (s *PostgresStore) AddJournal(ctx context.Context, userID string, entry patterns.JournalEntry) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO journal_entries (user_id, content, mood, created_at) VALUES ($1, $2, $3, $4)`,
		userID, entry.Content, entry.Mood, ts.UTC()); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Ping checks the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTable
}
