// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper evicts stale cache entries. Satisfied by cache.Cacher.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// GCRunner reclaims storage space. Satisfied by *storage.BadgerLog.
type GCRunner interface {
	RunGC() error
}

// PeriodicService runs a task on a fixed interval. Task errors are logged
// and do not stop the service; the next tick retries.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   zerolog.Logger
}

// NewPeriodicService creates a service running task every interval.
// interval defaults to 10m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error, logger zerolog.Logger) *PeriodicService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// NewCacheSweeper evicts entries older than the cache's maximum age.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweeper(s Sweeper, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	svc := NewPeriodicService("cache-sweeper", interval, nil, logger)
	svc.task = func(ctx context.Context) error {
		n, err := s.Sweep(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			svc.logger.Debug().Int("evicted", n).Msg("Swept stale recommendation bundles")
		}
		return nil
	}
	return svc
}

// NewBadgerGC runs value-log garbage collection on the interaction log.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGC(gc GCRunner, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService("badger-gc", interval, func(context.Context) error {
		return gc.RunGC()
	}, logger)
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug().Dur("interval", p.interval).Msg("Periodic service started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.task(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("Periodic task failed")
			}
		}
	}
}

func (p *PeriodicService) String() string {
	return p.name
}
