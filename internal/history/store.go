// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

// Drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("history: unknown driver")

	// ErrInvalidEntry rejects entries with an empty user or an out-of-range mood.
	ErrInvalidEntry = errors.New("history: invalid entry")
)

// Store is a HistoryStore that can also be written to and closed.
type Store interface {
	recommend.HistoryStore

	AddMood(ctx context.Context, userID string, entry patterns.MoodEntry) error
	AddJournal(ctx context.Context, userID string, entry patterns.JournalEntry) error
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver with its schema in place.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg config.HistoryConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverDuckDB, "":
		s, err := OpenDuckDB(ctx, cfg.DuckDBPath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, PostgresOptions{
			URL:      cfg.PostgresURL,
			MaxConns: int32(cfg.MaxConns), //nolint:gosec // validated positive and small
			Migrate:  cfg.Migrate,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func validateMood(userID string, mood int) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	if mood < 1 || mood > 10 {
		return fmt.Errorf("%w: mood %d outside 1..10", ErrInvalidEntry, mood)
	}
	return nil
}

func reverseMoods(s []patterns.MoodEntry) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseJournal(s []patterns.JournalEntry) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
