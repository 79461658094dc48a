// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package config loads Mind Digest configuration.
//
// Configuration is layered with Koanf v2 (highest priority wins):
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
//  3. Environment variables, including any found in a local .env file
//
// Only environment variables listed in envTransformFunc are read; everything
// else in the environment is ignored.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Cache        CacheConfig        `koanf:"cache"`
	History      HistoryConfig      `koanf:"history"`
	Interactions InteractionsConfig `koanf:"interactions"`
	Peers        PeersConfig        `koanf:"peers"`
	AI           AIConfig           `koanf:"ai"`
	Events       EventsConfig       `koanf:"events"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ReadTimeout and WriteTimeout bound a single request.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is development or production.
	Environment string `koanf:"environment"`
}

// SecurityConfig configures authentication and inbound rate limiting.
type SecurityConfig struct {
	// AuthMode is "none" or "jwt".
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs HS256 bearer tokens. Required in jwt mode, 32+ chars.
	JWTSecret string `koanf:"jwt_secret"`

	// JWTIssuer, when set, must match the token's iss claim.
	JWTIssuer string `koanf:"jwt_issuer"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig tunes recommendation generation.
type RecommendConfig struct {
	// MaxRecommendations is the default bundle size. Content takes 40% of it
	// and peers 30%, both rounded up.
	// Default: 10
	MaxRecommendations int `koanf:"max_recommendations"`

	// SourceTimeout bounds each parallel source fetch and each AI call.
	// Default: 8s
	SourceTimeout time.Duration `koanf:"source_timeout"`

	// HistoryLimit is how many mood entries feed pattern analysis.
	// Default: 50
	HistoryLimit int `koanf:"history_limit"`

	// JournalLimit is how many journal entries feed trigger extraction.
	// Default: 20
	JournalLimit int `koanf:"journal_limit"`

	// TrackShown records a "shown" interaction for every returned item.
	// Default: true
	TrackShown bool `koanf:"track_shown"`
}

// CacheConfig selects and tunes the recommendation cache.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `koanf:"backend"`

	// MaxAge is the oldest entry that may be served. Default: 1h
	MaxAge time.Duration `koanf:"max_age"`

	// SweepInterval is how often stale entries are evicted. Default: 10m
	SweepInterval time.Duration `koanf:"sweep_interval"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// HistoryConfig selects the mood and journal history store.
type HistoryConfig struct {
	// Driver is "duckdb" or "postgres".
	Driver string `koanf:"driver"`

	// DuckDBPath is the database file; ":memory:" for an ephemeral store.
	DuckDBPath string `koanf:"duckdb_path"`

	// PostgresURL is a pgx connection string (Supabase database URL).
	PostgresURL string `koanf:"postgres_url"`

	// MaxConns caps the pgx pool.
	MaxConns int `koanf:"max_conns"`

	// Migrate creates the Postgres tables when missing.
	Migrate bool `koanf:"migrate"`
}

// InteractionsConfig configures the BadgerDB interaction log.
type InteractionsConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// GCInterval is how often value-log GC runs. Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`
}

// PeersConfig configures the Qdrant peer directory.
type PeersConfig struct {
	Enabled    bool    `koanf:"enabled"`
	Host       string  `koanf:"host"`
	Port       int     `koanf:"port"`
	Collection string  `koanf:"collection"`
	APIKey     string  `koanf:"api_key"`
	UseTLS     bool    `koanf:"use_tls"`
	MinScore   float64 `koanf:"min_score"`
}

// AIConfig configures the OpenAI-compatible suggestion provider.
type AIConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`

	Timeout     time.Duration `koanf:"timeout"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`

	// RequestsPerSecond and Burst feed a token bucket in front of the breaker.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// EventsConfig configures the interaction event bus.
type EventsConfig struct {
	// Backend is "channel" (in-process), "nats", or "none".
	Backend       string `koanf:"backend"`
	NATSURL       string `koanf:"nats_url"`
	Topic         string `koanf:"topic"`
	ConsumerGroup string `koanf:"consumer_group"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads configuration from defaults, an optional config file, a local
// .env file and the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}
	return LoadWithKoanf()
}

// DotEnvPath is the .env file read by Load when present.
var DotEnvPath = ".env"

// loadDotEnv exports variables from path without overriding ones already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
