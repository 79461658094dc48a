// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBucketKey(t *testing.T) {
	base := time.UnixMilli(1_700_000_100_000) // 1700000100000 / 300000 = 5666667

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{name: "bucket start", at: base, want: "contextual_u1_5666667"},
		{name: "within bucket", at: base.Add(4 * time.Minute), want: "contextual_u1_5666667"},
		{name: "next bucket", at: base.Add(5 * time.Minute), want: "contextual_u1_5666668"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketKey("contextual", "u1", tt.at); got != tt.want {
				t.Errorf("BucketKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheBasicOperations(t *testing.T) {
	ctx := context.Background()
	c := New(time.Hour)

	if err := c.Set(ctx, "key1", []byte("value1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, ok := c.Get(ctx, "key1")
	if !ok {
		t.Fatal("expected key1 to exist")
	}
	if string(value) != "value1" {
		t.Errorf("Get() = %q, want value1", value)
	}

	if _, ok := c.Get(ctx, "key2"); ok {
		t.Error("expected key2 to be missing")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}
}

func TestCacheGetRefusesStaleEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(time.Hour)
	c.now = func() time.Time { return now }

	c.setAt("stale", []byte("old"), now.Add(-61*time.Minute))

	if _, ok := c.Get(ctx, "stale"); ok {
		t.Fatal("Get() served an entry older than max age")
	}
	if c.Len() != 0 {
		t.Errorf("stale entry should be deleted on read, Len() = %d", c.Len())
	}
}

func TestCacheSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(time.Hour)

	c.setAt("old", []byte("a"), now.Add(-2*time.Hour))
	c.setAt("fresh", []byte("b"), now.Add(-10*time.Minute))

	removed, err := c.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}

	c.now = func() time.Time { return now }
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Error("entry stored 10 minutes ago should survive the sweep")
	}
	if _, ok := c.Get(ctx, "old"); ok {
		t.Error("entry stored 2 hours ago should be evicted")
	}
	if got := c.GetStats().LastSweep; !got.Equal(now) {
		t.Errorf("LastSweep = %v, want %v", got, now)
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := New(time.Hour)
	now := time.Now()

	_ = c.Set(ctx, BucketKey("contextual", "u1", now), []byte("1"))
	_ = c.Set(ctx, BucketKey("contextual", "u1", now.Add(-5*time.Minute)), []byte("2"))
	_ = c.Set(ctx, BucketKey("contextual", "u10", now), []byte("3"))
	_ = c.Set(ctx, BucketKey("tasks", "u1", now), []byte("4"))

	removed, err := c.DeletePrefix(ctx, UserPrefix("contextual", "u1"))
	if err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeletePrefix() removed %d, want 2", removed)
	}
	if _, ok := c.Get(ctx, BucketKey("contextual", "u10", now)); !ok {
		t.Error("u10 shares a string prefix with u1 and must not be removed")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheDeletePrefix_UnderscoreUserIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name  string
		evict string
		keep  []string
	}{
		{name: "plain id", evict: "bob", keep: []string{"bob_x", "bob__", `bob\`}},
		{name: "id with underscore", evict: "bob_x", keep: []string{"bob", "bob_x_y", "bo"}},
		{name: "id with backslash", evict: `bob\`, keep: []string{"bob", `bob\_x`, "bob_x"}},
		{name: "glob characters", evict: "*", keep: []string{"bob", "*_", "?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Hour)
			_ = c.Set(ctx, BucketKey("contextual", tt.evict, now), []byte("x"))
			for _, id := range tt.keep {
				_ = c.Set(ctx, BucketKey("contextual", id, now), []byte("k"))
			}

			removed, err := c.DeletePrefix(ctx, UserPrefix("contextual", tt.evict))
			if err != nil {
				t.Fatalf("DeletePrefix() error = %v", err)
			}
			if removed != 1 {
				t.Errorf("DeletePrefix(%q) removed %d, want 1", tt.evict, removed)
			}
			for _, id := range tt.keep {
				if _, ok := c.Get(ctx, BucketKey("contextual", id, now)); !ok {
					t.Errorf("entry for %q was evicted with %q", id, tt.evict)
				}
			}
		})
	}
}

func TestScanPattern(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "contextual_u1_", want: "mind-digest:rec:contextual_u1_*"},
		{prefix: UserPrefix("contextual", "*"), want: `mind-digest:rec:contextual_\*_*`},
		{prefix: UserPrefix("peers", "a?[b]"), want: `mind-digest:rec:peers_a\?\[b\]_*`},
		{prefix: UserPrefix("tasks", "bob_x"), want: `mind-digest:rec:tasks_bob\\_x_*`},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := scanPattern(tt.prefix); got != tt.want {
				t.Errorf("scanPattern(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := New(time.Hour)

	_ = c.Set(ctx, "key1", []byte("v"))
	_ = c.Delete(ctx, "key1")

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("expected key1 to be deleted")
	}
	if c.GetStats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.GetStats().Evictions)
	}
}

func TestNew_DefaultMaxAge(t *testing.T) {
	if got := New(0).MaxAge(); got != DefaultMaxAge {
		t.Errorf("MaxAge() = %v, want %v", got, DefaultMaxAge)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i%5)
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, []byte("v"))
				c.Get(ctx, key)
				if j%25 == 0 {
					c.Sweep(ctx, time.Now()) //nolint:errcheck
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}

func TestRedisEnvelope(t *testing.T) {
	storedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	raw, err := encodeEnvelope([]byte(`{"user_id":"u1"}`), storedAt)
	if err != nil {
		t.Fatalf("encodeEnvelope() error = %v", err)
	}
	data, gotAt, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope() error = %v", err)
	}
	if string(data) != `{"user_id":"u1"}` {
		t.Errorf("data = %s", data)
	}
	if !gotAt.Equal(storedAt) {
		t.Errorf("storedAt = %v, want %v", gotAt, storedAt)
	}

	if _, _, err := decodeEnvelope([]byte(`{"data":"AA=="}`)); err == nil {
		t.Error("envelope without stored_at should be rejected")
	}
	if _, _, err := decodeEnvelope([]byte(`not json`)); err == nil {
		t.Error("invalid JSON should be rejected")
	}
}
