// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/models"
)

// ErrJobNotFound indicates the job id is unknown or its record was
// evicted after the retention window. Callers treat this as "outcome
// unknown", never as failure.
var ErrJobNotFound = errors.New("job not found")

// Runner executes one population job. Progress is reported through the
// Tracker, which funnels all mutations back through the Manager's lock.
type Runner interface {
	Run(ctx context.Context, userScope string, tracker *Tracker) error
}

// Manager owns the job table. It is the sole mutator of job state:
// handlers only call Enqueue and Status, the worker goroutine inside
// Serve drains the queue sequentially, and readers always get clones.
//
// Exactly one job runs at a time. That is a deliberate global concurrency
// slot: population hammers a rate-limited upstream, and a single worker
// also keeps catalog writes free of cross-job races on the same grouping.
type Manager struct {
	cfg    *config.JobsConfig
	runner Runner

	mu      sync.Mutex
	jobs    map[string]*models.Job
	byScope map[string]string // active (queued or processing) job per user scope
	queue   []string

	wake chan struct{}
}

// NewManager creates a job manager. Serve must be running for enqueued
// jobs to execute.
func NewManager(cfg *config.JobsConfig, runner Runner) *Manager {
	return &Manager{
		cfg:     cfg,
		runner:  runner,
		jobs:    make(map[string]*models.Job),
		byScope: make(map[string]string),
		queue:   make([]string, 0),
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue adds a population job for the user scope, or returns the
// already-active job for that scope. At most one job per scope is ever
// queued or processing; enqueueing is idempotent while one is in flight.
// The returned job is a clone with QueuePos populated.
func (m *Manager) Enqueue(userScope string) (*models.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, ok := m.byScope[userScope]; ok {
		if existing, ok := m.jobs[existingID]; ok && !existing.Status.Terminal() {
			metrics.RecordJobEnqueue(true)
			return m.cloneLocked(existing), false
		}
	}

	job := &models.Job{
		ID:        uuid.NewString(),
		UserScope: userScope,
		Status:    models.JobStatusQueued,
		Progress:  models.JobProgress{Phase: models.PhaseStarting},
		CreatedAt: time.Now().UTC(),
	}
	m.jobs[job.ID] = job
	m.byScope[userScope] = job.ID
	m.queue = append(m.queue, job.ID)

	metrics.RecordJobEnqueue(false)
	metrics.JobQueueDepth.Set(float64(len(m.queue)))
	logging.Info().Str("job_id", job.ID).Str("user_scope", userScope).
		Int("queue_position", len(m.queue)).Msg("Population job enqueued")

	select {
	case m.wake <- struct{}{}:
	default:
	}

	return m.cloneLocked(job), true
}

// Status returns a snapshot of the job, or ErrJobNotFound if the id is
// unknown or the record was evicted.
func (m *Manager) Status(jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return m.cloneLocked(job), nil
}

// cloneLocked deep-copies a job with its current queue position. Must be
// called with m.mu held.
func (m *Manager) cloneLocked(job *models.Job) *models.Job {
	c := job.Clone()
	if job.Status == models.JobStatusQueued {
		for i, id := range m.queue {
			if id == job.ID {
				c.QueuePos = i + 1
				break
			}
		}
	}
	return c
}

// Serve is the worker loop: drains the queue one job at a time and
// evicts terminal records past the retention window. Implements
// suture.Service; returning ctx.Err() on shutdown tells the supervisor
// the stop was clean.
func (m *Manager) Serve(ctx context.Context) error {
	evictInterval := m.cfg.EvictionInterval
	if evictInterval <= 0 {
		evictInterval = time.Minute
	}
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	logging.Info().Dur("retention", m.cfg.RetentionWindow).Msg("Job worker started")

	for {
		m.drainQueue(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		case <-ticker.C:
			m.evict(time.Now())
		}
	}
}

// drainQueue runs queued jobs sequentially until the queue is empty or
// the context is cancelled.
func (m *Manager) drainQueue(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job := m.dequeue()
		if job == nil {
			return
		}
		m.runJob(ctx, job)
	}
}

// dequeue pops the FIFO head and marks it processing. Positions of the
// remaining queued jobs shift down implicitly; Status recomputes them
// from the queue slice on read.
func (m *Manager) dequeue() *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return nil
	}
	id := m.queue[0]
	m.queue = m.queue[1:]
	metrics.JobQueueDepth.Set(float64(len(m.queue)))

	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	job.Status = models.JobStatusProcessing
	job.QueuePos = 0
	return job
}

// runJob executes one job to its terminal state. The job context is not
// derived from poller requests: clients give up polling, the job runs to
// natural completion or failure.
func (m *Manager) runJob(ctx context.Context, job *models.Job) {
	start := time.Now()
	logging.Info().Str("job_id", job.ID).Str("user_scope", job.UserScope).Msg("Population job started")

	err := m.runner.Run(ctx, job.UserScope, &Tracker{manager: m, jobID: job.ID})

	m.mu.Lock()
	if err != nil {
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = models.JobStatusCompleted
	}
	job.EndedAt = time.Now().UTC()
	delete(m.byScope, job.UserScope)
	status := job.Status
	characterFailures := len(job.Errors)
	m.mu.Unlock()

	metrics.RecordJobFinished(string(status), time.Since(start), characterFailures)

	if err != nil {
		logging.Error().Err(err).Str("job_id", job.ID).Dur("duration", time.Since(start)).
			Msg("Population job failed")
		return
	}
	logging.Info().Str("job_id", job.ID).Dur("duration", time.Since(start)).
		Int("character_failures", characterFailures).Msg("Population job completed")
}

// evict drops terminal job records older than the retention window.
// A Status call for an evicted id returns ErrJobNotFound.
func (m *Manager) evict(now time.Time) {
	retention := m.cfg.RetentionWindow
	if retention <= 0 {
		retention = 10 * time.Minute
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, job := range m.jobs {
		if job.Status.Terminal() && now.Sub(job.EndedAt) > retention {
			delete(m.jobs, id)
			metrics.JobsEvicted.Inc()
			logging.Debug().Str("job_id", id).Msg("Evicted terminal job record")
		}
	}
}

// Tracker is the runner's write handle into one job's progress. Every
// mutation goes through the manager's lock, preserving the single-writer
// discipline, and phase updates that would move backward are ignored.
type Tracker struct {
	manager *Manager
	jobID   string
}

// SetPhase advances the job's phase. Monotonic: an update ranking at or
// below the current phase is dropped, so pollers never observe a phase
// regression regardless of sampling cadence.
func (t *Tracker) SetPhase(phase models.JobPhase) {
	t.update(func(job *models.Job) {
		if phase.Rank() > job.Progress.Phase.Rank() {
			job.Progress.Phase = phase
		}
	})
}

// SetTotalCharacters records how many characters the job will process.
func (t *Tracker) SetTotalCharacters(total int) {
	t.update(func(job *models.Job) {
		job.Progress.TotalCharacters = total
	})
}

// CharacterDone increments the processed-character count. Called for
// failed characters too: processed means attempted, errors are tracked
// separately.
func (t *Tracker) CharacterDone() {
	t.update(func(job *models.Job) {
		job.Progress.CharactersProcessed++
	})
}

// AddQuests advances the quest counters: processed is every completed
// quest id seen, contributed is those that matched a catalog entry and
// produced an ownership row.
func (t *Tracker) AddQuests(processed, contributed int) {
	t.update(func(job *models.Job) {
		job.Progress.QuestsProcessed += processed
		job.Progress.QuestsContributed += contributed
	})
}

// RecordError appends a per-entity failure to the job's running error
// list without failing the job.
func (t *Tracker) RecordError(msg string) {
	t.update(func(job *models.Job) {
		job.Errors = append(job.Errors, msg)
	})
}

func (t *Tracker) update(fn func(job *models.Job)) {
	t.manager.mu.Lock()
	defer t.manager.mu.Unlock()
	if job, ok := t.manager.jobs[t.jobID]; ok {
		fn(job)
	}
}
