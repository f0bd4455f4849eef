// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the application with the Prometheus client library,
exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Catalog population job throughput and queue depth
  - Upstream API call latency, retries, and rate limiting
  - Circuit breaker state transitions
  - Status cache hit/miss rates
  - Scheduled catalog refresh activity

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8471/metrics

# Usage

Metrics are package-level collectors registered via promauto at init time.
Call the Record* helpers from the owning subsystem rather than touching the
collectors directly:

	metrics.RecordDBQuery("select", "master_cache_entries", elapsed, err)
	metrics.RecordJobEnqueue(deduplicated)
	metrics.RecordUpstreamRequest("professions", elapsed, "rate_limited")

Label cardinality is kept bounded: error types are truncated, resources and
kinds come from small fixed sets, and no per-user or per-job labels exist.
*/
package metrics
