// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Catalog population jobs (queue depth, phases, outcomes)
// - Upstream API calls (latency, rate limiting, retries)
// - Status cache efficiency
// - Scheduled cache refreshes

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Job Metrics
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of job enqueue requests",
		},
		[]string{"result"}, // "created", "deduplicated"
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_completed_total",
			Help: "Total number of finished jobs by terminal status",
		},
		[]string{"status"}, // "completed", "failed"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "End-to-end duration of catalog population jobs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	JobQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "job_queue_depth",
			Help: "Current number of jobs waiting in the queue",
		},
	)

	JobCharacterFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_character_failures_total",
			Help: "Total number of per-character sync failures inside otherwise successful jobs",
		},
	)

	JobsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_evicted_total",
			Help: "Total number of terminal jobs evicted after the retention window",
		},
	)

	// Upstream API Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"}, // "professions", "tiers", "characters", "quests"
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_request_errors_total",
			Help: "Total number of upstream API request errors",
		},
		[]string{"resource", "error_type"}, // "unavailable", "rate_limited", "invalid_payload"
	)

	UpstreamRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_rate_limit_hits_total",
			Help: "Total number of 429 responses from the upstream API",
		},
	)

	UpstreamRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of upstream request retries",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "catalog_status"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Scheduler Metrics
	SchedulerChecks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_staleness_checks_total",
			Help: "Total number of catalog staleness checks",
		},
	)

	SchedulerRefreshesTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_refreshes_triggered_total",
			Help: "Total number of catalog refreshes triggered by the scheduler",
		},
		[]string{"kind"}, // "recipe", "quest"
	)

	CatalogLastRefresh = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful catalog refresh",
		},
		[]string{"kind"},
	)

	CatalogEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Current number of cached catalog entries",
		},
		[]string{"kind"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to keep label cardinality sane
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordJobEnqueue records the outcome of an enqueue request.
func RecordJobEnqueue(deduplicated bool) {
	if deduplicated {
		JobsEnqueued.WithLabelValues("deduplicated").Inc()
	} else {
		JobsEnqueued.WithLabelValues("created").Inc()
	}
}

// RecordJobFinished records a job reaching a terminal status.
func RecordJobFinished(status string, duration time.Duration, characterFailures int) {
	JobsCompleted.WithLabelValues(status).Inc()
	JobDuration.Observe(duration.Seconds())
	if characterFailures > 0 {
		JobCharacterFailures.Add(float64(characterFailures))
	}
}

// RecordUpstreamRequest records an upstream API call and its outcome.
func RecordUpstreamRequest(resource string, duration time.Duration, errorType string) {
	UpstreamRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
	if errorType != "" {
		UpstreamRequestErrors.WithLabelValues(resource, errorType).Inc()
	}
}

// RecordCacheAccess records a hit or miss for a named cache.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// UpdateCatalogGauges refreshes the per-kind catalog gauges after a
// successful refresh.
func UpdateCatalogGauges(kind string, entries int64, lastRefresh time.Time) {
	CatalogEntries.WithLabelValues(kind).Set(float64(entries))
	if !lastRefresh.IsZero() {
		CatalogLastRefresh.WithLabelValues(kind).Set(float64(lastRefresh.Unix()))
	}
}
