// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mind-digest/config.yaml",
	"/etc/mind-digest/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			MaxRecommendations: 10,
			SourceTimeout:      8 * time.Second,
			HistoryLimit:       50,
			JournalLimit:       20,
			TrackShown:         true,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			MaxAge:        time.Hour,
			SweepInterval: 10 * time.Minute,
			RedisAddr:     "localhost:6379",
		},
		History: HistoryConfig{
			Driver:     "duckdb",
			DuckDBPath: "/data/mind-digest.duckdb",
			MaxConns:   10,
		},
		Interactions: InteractionsConfig{
			Path:       "/data/interactions",
			GCInterval: 10 * time.Minute,
		},
		Peers: PeersConfig{
			Enabled:    false,
			Host:       "localhost",
			Port:       6334,
			Collection: "peer_profiles",
			MinScore:   0.3,
		},
		AI: AIConfig{
			Enabled:           false,
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           8 * time.Second,
			Temperature:       0.4,
			MaxTokens:         800,
			RequestsPerSecond: 2,
			Burst:             4,
			BreakerFailures:   5,
			BreakerTimeout:    60 * time.Second,
		},
		Events: EventsConfig{
			Backend:       "channel",
			NATSURL:       "nats://127.0.0.1:4222",
			Topic:         "wellness.interactions",
			ConsumerGroup: "mind-digest",
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"auth_mode":          "security.auth_mode",
	"jwt_secret":         "security.jwt_secret",
	"jwt_issuer":         "security.jwt_issuer",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation generation
	"recommend_max_items":      "recommend.max_recommendations",
	"recommend_source_timeout": "recommend.source_timeout",
	"recommend_history_limit":  "recommend.history_limit",
	"recommend_journal_limit":  "recommend.journal_limit",
	"recommend_track_shown":    "recommend.track_shown",

	// Cache
	"cache_backend":        "cache.backend",
	"cache_max_age":        "cache.max_age",
	"cache_sweep_interval": "cache.sweep_interval",
	"redis_addr":           "cache.redis_addr",
	"redis_password":       "cache.redis_password",
	"redis_db":             "cache.redis_db",

	// History store
	"history_driver":    "history.driver",
	"duckdb_path":       "history.duckdb_path",
	"database_url":      "history.postgres_url",
	"supabase_db_url":   "history.postgres_url",
	"history_max_conns": "history.max_conns",
	"history_migrate":   "history.migrate",

	// Interaction log
	"interactions_path":        "interactions.path",
	"interactions_in_memory":   "interactions.in_memory",
	"interactions_gc_interval": "interactions.gc_interval",

	// Peer directory
	"qdrant_enabled":    "peers.enabled",
	"qdrant_host":       "peers.host",
	"qdrant_port":       "peers.port",
	"qdrant_collection": "peers.collection",
	"qdrant_api_key":    "peers.api_key",
	"qdrant_use_tls":    "peers.use_tls",
	"peer_min_score":    "peers.min_score",

	// AI suggestion provider
	"ai_enabled":          "ai.enabled",
	"openai_base_url":     "ai.base_url",
	"openai_api_key":      "ai.api_key",
	"openai_model":        "ai.model",
	"ai_timeout":          "ai.timeout",
	"ai_temperature":      "ai.temperature",
	"ai_max_tokens":       "ai.max_tokens",
	"ai_rate_limit":       "ai.requests_per_second",
	"ai_burst":            "ai.burst",
	"ai_breaker_failures": "ai.breaker_failures",
	"ai_breaker_timeout":  "ai.breaker_timeout",

	// Event bus
	"events_backend":        "events.backend",
	"nats_url":              "events.nats_url",
	"events_topic":          "events.topic",
	"events_consumer_group": "events.consumer_group",
}

// envTransformFunc maps an environment variable name to a koanf path, or ""
// to skip it.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - OPENAI_API_KEY -> ai.api_key
//   - SUPABASE_DB_URL -> history.postgres_url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
