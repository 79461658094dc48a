// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package cache stores generated recommendation bundles in five-minute
// buckets per user and category.
//
// Two backends implement Cacher: the in-memory Cache and RedisCache. Both
// enforce a maximum entry age on read, so a bundle older than an hour is
// never served even if a sweep has not yet run.
//
//	c := cache.New(time.Hour)
//	key := cache.BucketKey("contextual", userID, time.Now())
//	if data, ok := c.Get(ctx, key); ok {
//	    // decode bundle
//	}
package cache

import (
	"context"
	"time"
)

// Cacher is implemented by every cache backend.
type Cacher interface {
	// Get returns the payload for key when present and younger than the
	// backend's maximum age.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores data stamped with the current time.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Sweep evicts entries older than the maximum age relative to now.
	Sweep(ctx context.Context, now time.Time) (int, error)

	// Len returns the number of entries.
	Len() int

	Close() error
}

var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*RedisCache)(nil)
)
