// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/craftledger/internal/cache"
	"github.com/tomtom215/craftledger/internal/jobs"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/models"
)

// JobService is the slice of the job manager the handlers need.
type JobService interface {
	Enqueue(userScope string) (*models.Job, bool)
	Status(jobID string) (*models.Job, error)
}

// CompletionService computes completion analytics on demand. Results are
// never cached: ownership may change under a running population job and
// the engine reads are cheap single-group scans.
type CompletionService interface {
	Summarize(ctx context.Context, scope models.OwnerScope, group models.GroupKey) (models.CompletionSummary, []models.MasterCacheEntry, error)
}

// CatalogStore is the slice of the database the handlers need.
type CatalogStore interface {
	CatalogStatus(ctx context.Context, kind models.EntryKind) (models.CatalogStatus, error)
	ClearAll(ctx context.Context, kind models.EntryKind) error
	Ping(ctx context.Context) error
}

// Handler holds dependencies for all HTTP endpoints.
type Handler struct {
	catalog     CatalogStore
	jobs        JobService
	completion  CompletionService
	statusCache *cache.Cache
}

// NewHandler creates the endpoint handler. statusCache may be nil to
// disable catalog-status caching (used in tests).
func NewHandler(catalog CatalogStore, jobSvc JobService, completion CompletionService, statusCache *cache.Cache) *Handler {
	return &Handler{
		catalog:     catalog,
		jobs:        jobSvc,
		completion:  completion,
		statusCache: statusCache,
	}
}

// EnqueueJob starts (or joins) an asynchronous catalog population run for
// one user scope.
//
// Method: POST
// Path: /api/v1/jobs/catalog-population
//
// Response:
//   - 202: job accepted; body carries job_id and queue_position. When a
//     job for the same scope is already queued or processing, the existing
//     job is returned instead of a duplicate.
//   - 400: missing or invalid user_scope
func (h *Handler) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req EnqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be JSON with a user_scope field", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	job, created := h.jobs.Enqueue(req.UserScope)
	if !created {
		logging.Debug().
			Str("user_scope", sanitizeLogValue(req.UserScope)).
			Str("job_id", job.ID).
			Msg("Enqueue deduplicated to existing job")
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data:   job,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// JobStatus polls one job by id.
//
// Method: GET
// Path: /api/v1/jobs/catalog-population/{jobId}
//
// Response:
//   - 200: current snapshot, including phase progress and any
//     per-character errors; failed jobs stay queryable until eviction
//   - 404: unknown or evicted id, which is distinct from a failed job
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Status(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with this id; it may have been evicted", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Failed to read job status", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   job,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// CatalogStatus reports entry count, distinct groups, and last refresh time
// for one catalog kind. Dashboards poll this endpoint, so responses are
// served through a short TTL cache.
//
// Method: GET
// Path: /api/v1/catalog/{kind}/status
func (h *Handler) CatalogStatus(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	cacheKey := statusCacheKey(kind)
	if h.statusCache != nil {
		if cached, ok := h.statusCache.Get(cacheKey); ok {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   cached,
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
	}

	start := time.Now()
	status, err := h.catalog.CatalogStatus(r.Context(), kind)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to read catalog status", err)
		return
	}

	if h.statusCache != nil {
		h.statusCache.Set(cacheKey, status)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// ClearCatalog wipes all entries of one kind. This is the operator escape
// hatch for widespread catalog corruption; the next scheduler pass sees an
// empty catalog and enqueues a full refresh.
//
// Method: DELETE
// Path: /api/v1/catalog/{kind}
func (h *Handler) ClearCatalog(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.catalog.ClearAll(r.Context(), kind); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to clear catalog", err)
		return
	}

	if h.statusCache != nil {
		h.statusCache.Delete(statusCacheKey(kind))
	}

	logging.Warn().Str("kind", string(kind)).Msg("Catalog cleared by operator request")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"kind":    kind,
			"cleared": true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Completion returns account-wide completion for one grouping: totals, the
// rounded percentage, and the missing entries in stable
// (category, name) order.
//
// Method: GET
// Path: /api/v1/completion/{userScope}/{groupingKey}
func (h *Handler) Completion(w http.ResponseWriter, r *http.Request) {
	userScope := chi.URLParam(r, "userScope")
	if userScope == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userScope is required", nil)
		return
	}

	group, err := ParseGroupKey(chi.URLParam(r, "groupingKey"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	start := time.Now()
	summary, missing, err := h.completion.Summarize(r.Context(), models.AccountScope(userScope), group)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute completion", err)
		return
	}

	entries := make([]MissingEntry, len(missing))
	for i, e := range missing {
		entries[i] = MissingEntry{
			ID:       e.ID,
			Name:     e.Name,
			Category: e.Category(),
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: CompletionResponse{
			UserScope:            userScope,
			GroupKey:             group.String(),
			TotalAvailable:       summary.TotalAvailable,
			TotalKnown:           summary.TotalKnown,
			CompletionPercentage: summary.CompletionPct,
			Missing:              entries,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HealthLive reports process liveness.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "alive"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady reports readiness: the database must answer a ping.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.catalog.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not reachable", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "ready"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

func statusCacheKey(kind models.EntryKind) string {
	return cache.GenerateKey("catalog-status", kind)
}
