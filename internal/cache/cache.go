// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// BucketWidth is the width of one cache bucket. Keys roll over every five
// minutes, so a request within the same bucket reuses the stored bundle.
const BucketWidth = 5 * time.Minute

// DefaultMaxAge is the oldest entry that may ever be served.
const DefaultMaxAge = time.Hour

// BucketKey returns the cache key for a category and user at now:
// category_<user>_<floor(unixMilli/300000)>. Underscores and backslashes in
// the user ID are escaped, so an unescaped underscore is always a separator.
func BucketKey(category, userID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d", category, escapeUserID(userID), now.UnixMilli()/BucketWidth.Milliseconds())
}

// UserPrefix returns the key prefix covering every bucket of a user within
// a category. It never matches keys of a user whose ID merely starts with
// userID followed by an underscore.
func UserPrefix(category, userID string) string {
	return category + "_" + escapeUserID(userID) + "_"
}

var userIDEscaper = strings.NewReplacer(`\`, `\\`, "_", `\_`)

func escapeUserID(userID string) string {
	return userIDEscaper.Replace(userID)
}

// Entry is a cached payload with the time it was stored.
type Entry struct {
	Data     []byte
	StoredAt time.Time
}

// Cache is a thread-safe in-memory cache keyed by bucket.
//
// Entries carry their own StoredAt timestamp. Get never returns an entry
// older than maxAge; such entries are deleted on read. Sweep removes every
// stale entry at once and is driven by the supervisor's cache sweeper.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	maxAge  time.Duration
	now     func() time.Time
	stats   Stats
}

// Stats tracks cache performance.
type Stats struct {
	mu        sync.RWMutex
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
	LastSweep time.Time
}

// New creates an in-memory cache. A non-positive maxAge uses DefaultMaxAge.
func New(maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{
		entries: make(map[string]Entry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// MaxAge returns the configured maximum entry age.
func (c *Cache) MaxAge() time.Duration { return c.maxAge }

// Get returns the payload stored under key if it is younger than MaxAge.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if c.now().Sub(entry.StoredAt) > c.maxAge {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().Sub(cur.StoredAt) > c.maxAge {
			delete(c.entries, key)
			c.recordEviction(1)
		}
		c.mu.Unlock()
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores data under key stamped with the current time.
func (c *Cache) Set(_ context.Context, key string, data []byte) error {
	c.setAt(key, data, c.now())
	return nil
}

func (c *Cache) setAt(key string, data []byte, storedAt time.Time) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: data, StoredAt: storedAt}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = n
	c.stats.mu.Unlock()
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if ok {
		c.recordEviction(1)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (c *Cache) DeletePrefix(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = n
	c.stats.mu.Unlock()
	return removed, nil
}

// Sweep removes every entry stored more than MaxAge before now and returns
// the number removed.
func (c *Cache) Sweep(_ context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.StoredAt) > c.maxAge {
			delete(c.entries, key)
			removed++
		}
	}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = n
	c.stats.LastSweep = now
	c.stats.mu.Unlock()
	return removed, nil
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op for the in-memory cache.
func (c *Cache) Close() error { return nil }

// GetStats returns a snapshot of cache statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:      c.stats.Hits,
		Misses:    c.stats.Misses,
		Evictions: c.stats.Evictions,
		TotalKeys: c.stats.TotalKeys,
		LastSweep: c.stats.LastSweep,
	}
}

// HitRate returns the hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *Cache) recordEviction(n int64) {
	c.stats.mu.Lock()
	c.stats.Evictions += n
	c.stats.mu.Unlock()
}
