// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateRecommend,
		c.validateCache,
		c.validateHistory,
		c.validateInteractions,
		c.validatePeers,
		c.validateAI,
		c.validateEvents,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if !c.IsDevelopment() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxRecommendations < 1 || r.MaxRecommendations > 100 {
		return fmt.Errorf("RECOMMEND_MAX_ITEMS must be between 1 and 100, got %d", r.MaxRecommendations)
	}
	if r.SourceTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_SOURCE_TIMEOUT must be positive, got %v", r.SourceTimeout)
	}
	if r.HistoryLimit < 14 {
		return fmt.Errorf("RECOMMEND_HISTORY_LIMIT must be at least 14 for forecasting, got %d", r.HistoryLimit)
	}
	if r.JournalLimit < 1 {
		return fmt.Errorf("RECOMMEND_JOURNAL_LIMIT must be positive, got %d", r.JournalLimit)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MaxAge <= 0 {
		return fmt.Errorf("CACHE_MAX_AGE must be positive, got %v", c.Cache.MaxAge)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive, got %v", c.Cache.SweepInterval)
	}
	switch c.Cache.Backend {
	case "memory":
		return nil
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
		return nil
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.Cache.Backend)
	}
}

func (c *Config) validateHistory() error {
	switch c.History.Driver {
	case "duckdb":
		if c.History.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required when HISTORY_DRIVER=duckdb")
		}
	case "postgres":
		if c.History.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required when HISTORY_DRIVER=postgres")
		}
		if c.History.MaxConns < 1 {
			return fmt.Errorf("HISTORY_MAX_CONNS must be positive, got %d", c.History.MaxConns)
		}
	default:
		return fmt.Errorf("HISTORY_DRIVER must be duckdb or postgres, got %q", c.History.Driver)
	}
	return nil
}

func (c *Config) validateInteractions() error {
	if !c.Interactions.InMemory && c.Interactions.Path == "" {
		return fmt.Errorf("INTERACTIONS_PATH is required unless INTERACTIONS_IN_MEMORY=true")
	}
	if c.Interactions.GCInterval <= 0 {
		return fmt.Errorf("INTERACTIONS_GC_INTERVAL must be positive, got %v", c.Interactions.GCInterval)
	}
	return nil
}

func (c *Config) validatePeers() error {
	if !c.Peers.Enabled {
		return nil
	}
	if c.Peers.Host == "" {
		return fmt.Errorf("QDRANT_HOST is required when QDRANT_ENABLED=true")
	}
	if c.Peers.Port < 1 || c.Peers.Port > 65535 {
		return fmt.Errorf("QDRANT_PORT must be between 1 and 65535, got %d", c.Peers.Port)
	}
	if c.Peers.Collection == "" {
		return fmt.Errorf("QDRANT_COLLECTION is required when QDRANT_ENABLED=true")
	}
	if c.Peers.MinScore < 0 || c.Peers.MinScore > 1 {
		return fmt.Errorf("PEER_MIN_SCORE must be in [0, 1], got %f", c.Peers.MinScore)
	}
	return nil
}

func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_ENABLED=true")
	}
	if err := validateHTTPURL(c.AI.BaseURL, "OPENAI_BASE_URL"); err != nil {
		return err
	}
	if c.AI.Model == "" {
		return fmt.Errorf("OPENAI_MODEL is required when AI_ENABLED=true")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %v", c.AI.Timeout)
	}
	if c.AI.RequestsPerSecond <= 0 || c.AI.Burst < 1 {
		return fmt.Errorf("AI_RATE_LIMIT and AI_BURST must be positive")
	}
	if c.AI.BreakerFailures == 0 {
		return fmt.Errorf("AI_BREAKER_FAILURES must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case "none":
		return nil
	case "channel", "nats":
	default:
		return fmt.Errorf("EVENTS_BACKEND must be channel, nats or none, got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if c.Events.Backend == "nats" {
		u, err := url.Parse(c.Events.NATSURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("NATS_URL is invalid: %q", c.Events.NATSURL)
		}
		if u.Scheme != "nats" && u.Scheme != "tls" {
			return fmt.Errorf("NATS_URL scheme must be nats or tls, got %q", u.Scheme)
		}
	}
	return nil
}

// validateHTTPURL requires an http(s) scheme and a host. Paths are allowed
// since API base URLs usually carry a version prefix.
func validateHTTPURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}
