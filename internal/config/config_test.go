// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package config

import (
	"os"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no file and no env: %v", err)
	}

	if cfg.Scheduler.StalenessThreshold != 7*24*time.Hour {
		t.Errorf("staleness threshold default = %v, want 168h", cfg.Scheduler.StalenessThreshold)
	}
	if cfg.Jobs.RetentionWindow != 10*time.Minute {
		t.Errorf("retention window default = %v, want 10m", cfg.Jobs.RetentionWindow)
	}
	if cfg.Server.Port != 8471 {
		t.Errorf("port default = %d, want 8471", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.test")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if cfg.Upstream.BaseURL != "https://api.example.test" {
		t.Errorf("base URL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if len(cfg.API.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.API.CORSOrigins)
	}
	if cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("second origin = %q", cfg.API.CORSOrigins[1])
	}
}

func TestUnmappedEnvVarsIgnored(t *testing.T) {
	t.Setenv("SOME_RANDOM_VAR", "should-not-leak")

	if _, err := Load(); err != nil {
		t.Fatalf("unmapped env var broke loading: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad upstream URL", func(c *Config) { c.Upstream.BaseURL = "://nope" }},
		{"ftp upstream URL", func(c *Config) { c.Upstream.BaseURL = "ftp://host" }},
		{"zero rate", func(c *Config) { c.Upstream.RequestsPerSecond = 0 }},
		{"negative retries", func(c *Config) { c.Upstream.RetryAttempts = -1 }},
		{"page size too large", func(c *Config) { c.Upstream.PageSize = 5000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero retention", func(c *Config) { c.Jobs.RetentionWindow = 0 }},
		{"zero staleness", func(c *Config) { c.Scheduler.StalenessThreshold = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSchedulerDisabledSkipsValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.CheckInterval = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled scheduler should not be validated: %v", err)
	}
}

func TestFindConfigFileEnvOverride(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	t.Setenv(ConfigPathEnvVar, f.Name())
	if got := findConfigFile(); got != f.Name() {
		t.Errorf("findConfigFile() = %q, want %q", got, f.Name())
	}
}
