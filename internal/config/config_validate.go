// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for internal consistency. It is called
// by Load after all layers are merged; a validation failure aborts startup.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateUpstream,
		c.validateDatabase,
		c.validateJobs,
		c.validateScheduler,
		c.validateServer,
		c.validateLogging,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL != "" {
		u, err := url.Parse(c.Upstream.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("upstream.base_url %q is not a valid URL", c.Upstream.BaseURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("upstream.base_url scheme must be http or https, got %q", u.Scheme)
		}
	}
	if c.Upstream.RequestsPerSecond <= 0 {
		return fmt.Errorf("upstream.requests_per_second must be positive, got %v", c.Upstream.RequestsPerSecond)
	}
	if c.Upstream.RetryAttempts < 0 {
		return fmt.Errorf("upstream.retry_attempts must not be negative, got %d", c.Upstream.RetryAttempts)
	}
	if c.Upstream.PageSize < 1 || c.Upstream.PageSize > 1000 {
		return fmt.Errorf("upstream.page_size must be between 1 and 1000, got %d", c.Upstream.PageSize)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.RetentionWindow <= 0 {
		return fmt.Errorf("jobs.retention_window must be positive, got %v", c.Jobs.RetentionWindow)
	}
	if c.Jobs.EvictionInterval <= 0 {
		return fmt.Errorf("jobs.eviction_interval must be positive, got %v", c.Jobs.EvictionInterval)
	}
	if c.Jobs.CharacterDelay < 0 {
		return fmt.Errorf("jobs.character_delay must not be negative, got %v", c.Jobs.CharacterDelay)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if !c.Scheduler.Enabled {
		return nil
	}
	if c.Scheduler.StalenessThreshold <= 0 {
		return fmt.Errorf("scheduler.staleness_threshold must be positive, got %v", c.Scheduler.StalenessThreshold)
	}
	if c.Scheduler.CheckInterval <= 0 {
		return fmt.Errorf("scheduler.check_interval must be positive, got %v", c.Scheduler.CheckInterval)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
