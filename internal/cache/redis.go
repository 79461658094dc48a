// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisNamespace prefixes every key written by RedisCache.
const RedisNamespace = "mind-digest:rec:"

// RedisOptions configures RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	MaxAge   time.Duration
}

// RedisCache stores bundles in Redis.
//
// Keys get a native TTL of MaxAge. The stored timestamp travels with the
// payload and is re-checked on read, so clock skew between replicas cannot
// serve an entry older than MaxAge.
type RedisCache struct {
	client redis.UniversalClient
	maxAge time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

type redisEnvelope struct {
	StoredAt time.Time `json:"stored_at"`
	Data     []byte    `json:"data"`
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	return NewRedisCacheWithClient(client, opts.MaxAge, logger), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client redis.UniversalClient, maxAge time.Duration, logger zerolog.Logger) *RedisCache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &RedisCache{
		client: client,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger.With().Str("component", "redis-cache").Logger(),
	}
}

// Get returns the payload for key when it is younger than MaxAge.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, RedisNamespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("Redis get failed")
		}
		return nil, false
	}

	data, storedAt, err := decodeEnvelope(raw)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		r.client.Del(ctx, RedisNamespace+key) //nolint:errcheck
		return nil, false
	}
	if r.now().Sub(storedAt) > r.maxAge {
		r.client.Del(ctx, RedisNamespace+key) //nolint:errcheck
		return nil, false
	}
	return data, true
}

// Set stores data with a native TTL of MaxAge.
func (r *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	raw, err := encodeEnvelope(data, r.now())
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, RedisNamespace+key, raw, r.maxAge).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, RedisNamespace+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeletePrefix scans for keys under prefix and deletes them in batches.
func (r *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, scanPattern(prefix), 100).Iterator()
	batch := make([]string, 0, 100)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// scanPattern matches every namespaced key starting with prefix. Glob
// metacharacters in prefix match only themselves.
func scanPattern(prefix string) string {
	return globEscaper.Replace(RedisNamespace+prefix) + "*"
}

// Sweep is a no-op: Redis expires keys natively.
func (r *RedisCache) Sweep(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

// Len counts keys in the cache namespace.
func (r *RedisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, RedisNamespace+"*", 500).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		r.logger.Debug().Err(err).Msg("Redis key count failed")
	}
	return n
}

// Close closes the Redis client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func encodeEnvelope(data []byte, storedAt time.Time) ([]byte, error) {
	return json.Marshal(redisEnvelope{StoredAt: storedAt.UTC(), Data: data})
}

func decodeEnvelope(raw []byte) ([]byte, time.Time, error) {
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, time.Time{}, err
	}
	if env.StoredAt.IsZero() {
		return nil, time.Time{}, errors.New("cache entry has no stored_at")
	}
	return env.Data, env.StoredAt, nil
}
