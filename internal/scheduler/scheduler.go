// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package scheduler

import (
	"context"
	"time"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/models"
)

// CatalogReader is the staleness-check surface, satisfied by *database.DB.
type CatalogReader interface {
	CatalogStatus(ctx context.Context, kind models.EntryKind) (models.CatalogStatus, error)
}

// Enqueuer accepts refresh jobs, satisfied by *jobs.Manager.
type Enqueuer interface {
	Enqueue(userScope string) (*models.Job, bool)
}

// Scheduler decides when the shared master cache is stale enough to
// warrant a full repopulation. It checks on start and on a fixed
// interval; when any catalog kind is past the staleness threshold (or was
// never populated) it enqueues a refresh job with no user scope.
//
// The scheduler needs no duplicate suppression of its own: refresh jobs
// share the empty user scope, so the job manager's idempotent enqueue
// coalesces overlapping triggers, and its single worker means at most one
// refresh runs at a time.
type Scheduler struct {
	cfg     *config.SchedulerConfig
	catalog CatalogReader
	jobs    Enqueuer
}

// New creates a cache refresh scheduler.
func New(cfg *config.SchedulerConfig, catalog CatalogReader, jobs Enqueuer) *Scheduler {
	return &Scheduler{cfg: cfg, catalog: catalog, jobs: jobs}
}

// Serve runs the staleness loop. Implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	interval := s.cfg.CheckInterval
	if interval <= 0 {
		interval = time.Hour
	}

	logging.Info().Dur("staleness_threshold", s.cfg.StalenessThreshold).
		Dur("check_interval", interval).Msg("Cache refresh scheduler started")

	s.checkOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkOnce(ctx)
		}
	}
}

// checkOnce compares each catalog kind's last refresh time against the
// staleness threshold and enqueues one refresh job if any kind is due.
func (s *Scheduler) checkOnce(ctx context.Context) {
	metrics.SchedulerChecks.Inc()

	now := time.Now().UTC()
	stale := false
	for _, kind := range []models.EntryKind{models.EntryKindRecipe, models.EntryKindQuest} {
		status, err := s.catalog.CatalogStatus(ctx, kind)
		if err != nil {
			logging.Error().Err(err).Str("kind", string(kind)).Msg("Staleness check failed")
			return
		}
		if status.StaleAfter(s.cfg.StalenessThreshold, now) {
			stale = true
			metrics.SchedulerRefreshesTriggered.WithLabelValues(string(kind)).Inc()
			logging.Info().Str("kind", string(kind)).Time("last_cached_at", status.LastCachedAt).
				Int64("entries", status.TotalEntries).Msg("Catalog stale, refresh due")
		}
	}

	if !stale {
		return
	}

	job, created := s.jobs.Enqueue("")
	if created {
		logging.Info().Str("job_id", job.ID).Msg("Catalog refresh job enqueued")
	} else {
		logging.Debug().Str("job_id", job.ID).Msg("Catalog refresh already in flight")
	}
}
