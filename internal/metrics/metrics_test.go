// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful select",
			operation: "select",
			table:     "master_cache_entries",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful upsert",
			operation: "upsert",
			table:     "ownership_records",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "delete",
			table:     "completion_summaries",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "slow query over 5 seconds",
			operation: "select",
			table:     "master_cache_entries",
			duration:  5500 * time.Millisecond,
			err:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the query - should not panic
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery_ErrorTruncation verifies error messages are truncated at 50 chars
func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	err50 := errors.New(strings.Repeat("a", 50))
	RecordDBQuery("select", "test", time.Millisecond, err50)

	err100 := errors.New(strings.Repeat("c", 100))
	RecordDBQuery("select", "test", time.Millisecond, err100)

	errShort := errors.New("err")
	RecordDBQuery("select", "test", time.Millisecond, errShort)
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "enqueue job",
			method:     "POST",
			endpoint:   "/api/v1/jobs/catalog-population",
			statusCode: "202",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "job status lookup",
			method:     "GET",
			endpoint:   "/api/v1/jobs/catalog-population",
			statusCode: "200",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "evicted job",
			method:     "GET",
			endpoint:   "/api/v1/jobs/catalog-population",
			statusCode: "404",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/api/v1/completion",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestRecordJobEnqueue verifies the counters advance for both enqueue outcomes
func TestRecordJobEnqueue(t *testing.T) {
	createdBefore := testutil.ToFloat64(JobsEnqueued.WithLabelValues("created"))
	dedupBefore := testutil.ToFloat64(JobsEnqueued.WithLabelValues("deduplicated"))

	RecordJobEnqueue(false)
	RecordJobEnqueue(true)
	RecordJobEnqueue(true)

	if got := testutil.ToFloat64(JobsEnqueued.WithLabelValues("created")); got != createdBefore+1 {
		t.Errorf("created counter = %v, want %v", got, createdBefore+1)
	}
	if got := testutil.ToFloat64(JobsEnqueued.WithLabelValues("deduplicated")); got != dedupBefore+2 {
		t.Errorf("deduplicated counter = %v, want %v", got, dedupBefore+2)
	}
}

// TestRecordJobFinished verifies terminal status and failure accounting
func TestRecordJobFinished(t *testing.T) {
	completedBefore := testutil.ToFloat64(JobsCompleted.WithLabelValues("completed"))
	failuresBefore := testutil.ToFloat64(JobCharacterFailures)

	RecordJobFinished("completed", 42*time.Second, 3)
	RecordJobFinished("failed", time.Second, 0)

	if got := testutil.ToFloat64(JobsCompleted.WithLabelValues("completed")); got != completedBefore+1 {
		t.Errorf("completed counter = %v, want %v", got, completedBefore+1)
	}
	if got := testutil.ToFloat64(JobCharacterFailures); got != failuresBefore+3 {
		t.Errorf("character failures = %v, want %v", got, failuresBefore+3)
	}
}

// TestRecordUpstreamRequest tests upstream call recording
func TestRecordUpstreamRequest(t *testing.T) {
	errorsBefore := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues("professions", "rate_limited"))

	RecordUpstreamRequest("professions", 80*time.Millisecond, "")
	RecordUpstreamRequest("professions", 10*time.Millisecond, "rate_limited")
	RecordUpstreamRequest("quests", 200*time.Millisecond, "unavailable")

	if got := testutil.ToFloat64(UpstreamRequestErrors.WithLabelValues("professions", "rate_limited")); got != errorsBefore+1 {
		t.Errorf("rate_limited errors = %v, want %v", got, errorsBefore+1)
	}
}

// TestRecordCacheAccess verifies hit and miss counters
func TestRecordCacheAccess(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("catalog_status"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("catalog_status"))

	RecordCacheAccess("catalog_status", true)
	RecordCacheAccess("catalog_status", false)
	RecordCacheAccess("catalog_status", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("catalog_status")); got != hitsBefore+1 {
		t.Errorf("hits = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("catalog_status")); got != missesBefore+2 {
		t.Errorf("misses = %v, want %v", got, missesBefore+2)
	}
}

// TestUpdateCatalogGauges verifies gauge values and that a zero time leaves
// the refresh timestamp untouched
func TestUpdateCatalogGauges(t *testing.T) {
	refreshed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	UpdateCatalogGauges("recipe", 1234, refreshed)

	if got := testutil.ToFloat64(CatalogEntries.WithLabelValues("recipe")); got != 1234 {
		t.Errorf("catalog entries = %v, want 1234", got)
	}
	if got := testutil.ToFloat64(CatalogLastRefresh.WithLabelValues("recipe")); got != float64(refreshed.Unix()) {
		t.Errorf("last refresh = %v, want %v", got, float64(refreshed.Unix()))
	}

	before := testutil.ToFloat64(CatalogLastRefresh.WithLabelValues("recipe"))
	UpdateCatalogGauges("recipe", 1300, time.Time{})
	if got := testutil.ToFloat64(CatalogLastRefresh.WithLabelValues("recipe")); got != before {
		t.Errorf("zero refresh time should not move the gauge: %v != %v", got, before)
	}
}

// TestTrackActiveRequest verifies the in-flight gauge moves both ways
func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
}
