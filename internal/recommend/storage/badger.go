// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

const (
	eventPrefix = "ev:"
	keySep      = byte(0)
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("interaction log is closed")

// Options configures the Badger interaction log.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool

	// Retention expires events after this long. Zero keeps them forever.
	Retention time.Duration

	// GCRatio is the discard ratio for value log GC. Defaults to 0.5.
	GCRatio float64
}

// BadgerLog is a recommend.InteractionLog backed by BadgerDB.
type BadgerLog struct {
	db     *badger.DB
	opts   Options
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool

	writes atomic.Int64
}

var _ recommend.InteractionLog = (*BadgerLog)(nil)

// OpenBadgerLog opens (or creates) the interaction log.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerLog(opts Options, logger zerolog.Logger) (*BadgerLog, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("interaction log path is required")
	}
	if opts.GCRatio <= 0 || opts.GCRatio >= 1 {
		opts.GCRatio = 0.5
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Compression = options.Snappy
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	l := &BadgerLog{
		db:     db,
		opts:   opts,
		logger: logger.With().Str("component", "interaction_log").Logger(),
	}
	l.logger.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Dur("retention", opts.Retention).
		Msg("Interaction log opened")
	return l, nil
}

func userPrefix(userID string) []byte {
	p := make([]byte, 0, len(eventPrefix)+len(userID)+1)
	p = append(p, eventPrefix...)
	p = append(p, userID...)
	return append(p, keySep)
}

func eventKey(e *recommend.Event) []byte {
	k := userPrefix(e.UserID)
	k = fmt.Appendf(k, "%020d", e.Timestamp.UnixNano())
	k = append(k, keySep)
	return append(k, e.ID...)
}

func (l *BadgerLog) checkOpen() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	return nil
}

// Record appends an event.
//
//nolint:gocritic // hugeParam: events are immutable values
func (l *BadgerLog) Record(_ context.Context, event recommend.Event) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if event.UserID == "" || event.ID == "" {
		return fmt.Errorf("%w: user and event id are required", recommend.ErrInvalidEvent)
	}

	data, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(eventKey(&event), data)
		if l.opts.Retention > 0 {
			e = e.WithTTL(l.opts.Retention)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	l.writes.Add(1)
	return nil
}

// Recent returns up to n of the user's events, newest first. Events whose
// action is in skip are read past and not counted.
func (l *BadgerLog) Recent(ctx context.Context, userID string, n int, skip ...recommend.Action) ([]recommend.Event, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []recommend.Event{}, nil
	}

	prefix := userPrefix(userID)
	events := make([]recommend.Event, 0, n)

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		opts.PrefetchSize = n
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(events) < n; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var ev recommend.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				l.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping undecodable event")
				continue
			}
			if slices.Contains(skip, ev.Action) {
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}
	return events, nil
}

// ForEach calls fn for every stored event in key order. Iteration stops at
// the first error from fn.
func (l *BadgerLog) ForEach(ctx context.Context, fn func(recommend.Event) error) (int, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}

	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(eventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var ev recommend.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				continue
			}
			if err := fn(ev); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("iterate events: %w", err)
	}
	return count, nil
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
func (l *BadgerLog) RunGC() error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if l.opts.InMemory {
		return nil
	}
	for {
		err := l.db.RunValueLogGC(l.opts.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Writes returns the number of events written since open.
func (l *BadgerLog) Writes() int64 {
	return l.writes.Load()
}

// Close closes the database. It is safe to call more than once.
func (l *BadgerLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
