// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package config loads and validates the Craftledger configuration.

Configuration is layered via Koanf v2, highest priority last:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML config file (CONFIG_PATH, config.yaml, /etc/craftledger/)
 3. Environment variables (explicit mapping table in koanf.go)

Sections:

  - upstream: third-party game-data API (base URL, token, pacing, retries)
  - database: embedded DuckDB store
  - jobs: population job retention and pacing
  - scheduler: catalog staleness threshold and check interval
  - server / api / logging: HTTP surface and log output

Example:

	export UPSTREAM_BASE_URL=https://api.example.com
	export UPSTREAM_TOKEN=secret
	export CACHE_STALENESS_THRESHOLD=168h
	cfg, err := config.Load()
*/
package config
