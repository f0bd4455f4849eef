// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

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

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/craftledger/config.yaml",
	"/etc/craftledger/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:           "",
			Token:             "",
			Region:            "us",
			Locale:            "en_US",
			RequestsPerSecond: 8,
			RetryAttempts:     3,
			RetryDelay:        2 * time.Second,
			Timeout:           30 * time.Second,
			PageSize:          100,
		},
		Database: DatabaseConfig{
			Path:      "/data/craftledger.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Jobs: JobsConfig{
			RetentionWindow:  10 * time.Minute,
			EvictionInterval: time.Minute,
			CharacterDelay:   250 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			StalenessThreshold: 7 * 24 * time.Hour,
			CheckInterval:      6 * time.Hour,
		},
		Server: ServerConfig{
			Port:    8471,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			StatusCacheTTL:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// UPSTREAM_BASE_URL -> upstream.base_url, HTTP_PORT -> server.port
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

// findConfigFile searches the env override then the default paths.
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

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// supplied via env vars (env values arrive as plain strings).
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
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
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are skipped so random environment noise never pollutes
// the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Upstream API mappings
		"upstream_base_url":            "upstream.base_url",
		"upstream_token":               "upstream.token",
		"upstream_region":              "upstream.region",
		"upstream_locale":              "upstream.locale",
		"upstream_requests_per_second": "upstream.requests_per_second",
		"upstream_retry_attempts":      "upstream.retry_attempts",
		"upstream_retry_delay":         "upstream.retry_delay",
		"upstream_timeout":             "upstream.timeout",
		"upstream_page_size":           "upstream.page_size",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Job manager mappings
		"jobs_retention_window":  "jobs.retention_window",
		"jobs_eviction_interval": "jobs.eviction_interval",
		"jobs_character_delay":   "jobs.character_delay",

		// Scheduler mappings
		"scheduler_enabled":         "scheduler.enabled",
		"cache_staleness_threshold": "scheduler.staleness_threshold",
		"scheduler_check_interval":  "scheduler.check_interval",

		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",

		// API mappings
		"rate_limit_requests": "api.rate_limit_reqs",
		"rate_limit_window":   "api.rate_limit_window",
		"cors_origins":        "api.cors_origins",
		"status_cache_ttl":    "api.status_cache_ttl",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
