// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package config provides layered configuration for Craftledger using
// Koanf v2: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Database  DatabaseConfig  `koanf:"database"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// UpstreamConfig configures the third-party game-data API client.
type UpstreamConfig struct {
	// BaseURL is the root of the upstream REST API.
	BaseURL string `koanf:"base_url"`

	// Token is the bearer token presented on every request. Token refresh
	// is handled by the client when a refresh endpoint is configured.
	Token string `koanf:"token"`

	// Region selects the regional API namespace (e.g. "us", "eu").
	Region string `koanf:"region"`

	// Locale is the preferred locale for localized names.
	Locale string `koanf:"locale"`

	// RequestsPerSecond caps the client-side request rate. The upstream
	// enforces its own limits; staying under them avoids 429 churn.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RetryAttempts bounds retries for rate-limited requests before the
	// failure is treated as upstream-unavailable.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryDelay is the base delay for retry backoff (doubled per attempt).
	RetryDelay time.Duration `koanf:"retry_delay"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// PageSize is the page length requested from paginated catalog listings.
	PageSize int `koanf:"page_size"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	// Path is the database file location; ":memory:" for tests.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// JobsConfig configures the population job manager.
type JobsConfig struct {
	// RetentionWindow is how long a terminal job record remains queryable
	// before eviction. Long enough for a slow poller to observe the
	// outcome; a poll after eviction gets NotFound, never Failed.
	RetentionWindow time.Duration `koanf:"retention_window"`

	// EvictionInterval is how often evictable terminal jobs are swept.
	EvictionInterval time.Duration `koanf:"eviction_interval"`

	// CharacterDelay is a deliberate pause between per-character upstream
	// fetches, a cooperative yield to stay under upstream rate limits.
	CharacterDelay time.Duration `koanf:"character_delay"`
}

// SchedulerConfig configures the periodic catalog staleness check.
type SchedulerConfig struct {
	// Enabled toggles the background refresh scheduler.
	Enabled bool `koanf:"enabled"`

	// StalenessThreshold is the catalog age beyond which a full refresh
	// is triggered.
	StalenessThreshold time.Duration `koanf:"staleness_threshold"`

	// CheckInterval is how often staleness is evaluated. The first check
	// runs at process start.
	CheckInterval time.Duration `koanf:"check_interval"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig configures API behavior.
type APIConfig struct {
	// RateLimitReqs is the per-IP request budget per window.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window duration.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// StatusCacheTTL is how long catalog status responses are served from
	// the in-process cache before hitting the database again.
	StatusCacheTTL time.Duration `koanf:"status_cache_ttl"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
