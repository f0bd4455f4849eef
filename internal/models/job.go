// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package models

import "time"

// JobStatus is the lifecycle state of a population job.
// Transitions: queued -> processing -> {completed | failed}.
// Terminal states are final; a job is never resumed or retried.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobPhase is the progress phase a processing job is in. Phases advance
// monotonically and are never skipped backward; pollers sampling at any
// cadence observe a non-decreasing sequence.
type JobPhase string

const (
	PhaseStarting             JobPhase = "starting"
	PhaseFetchingCharacters   JobPhase = "fetching_characters"
	PhaseProcessingCharacters JobPhase = "processing_characters"
	PhaseUpdatingSummaries    JobPhase = "updating_summaries"
	PhaseTriggeringDiscovery  JobPhase = "triggering_discovery"
)

// phaseRank orders phases for monotonicity enforcement.
var phaseRank = map[JobPhase]int{
	PhaseStarting:             0,
	PhaseFetchingCharacters:   1,
	PhaseProcessingCharacters: 2,
	PhaseUpdatingSummaries:    3,
	PhaseTriggeringDiscovery:  4,
}

// Rank returns the ordinal position of the phase, or -1 for unknown phases.
func (p JobPhase) Rank() int {
	if r, ok := phaseRank[p]; ok {
		return r
	}
	return -1
}

// JobProgress reports fine-grained progress for pollers. During the
// processing_characters phase, CharactersProcessed/TotalCharacters advance
// as each character completes, enabling percentage reporting.
type JobProgress struct {
	Phase               JobPhase `json:"phase"`
	CharactersProcessed int      `json:"characters_processed"`
	TotalCharacters     int      `json:"total_characters"`
	QuestsProcessed     int      `json:"quests_processed"`
	QuestsContributed   int      `json:"quests_contributed"`
}

// Job is a transient orchestration record for one asynchronous population
// run. Jobs live only in memory: losing in-flight jobs on restart is
// acceptable because enqueueing is idempotent and clients re-enqueue.
type Job struct {
	ID        string      `json:"job_id"`
	UserScope string      `json:"user_scope,omitempty"` // empty for scheduler-triggered refreshes
	Status    JobStatus   `json:"status"`
	QueuePos  int         `json:"queue_position,omitempty"` // meaningful only while queued
	Progress  JobProgress `json:"progress"`
	Errors    []string    `json:"errors,omitempty"` // per-character failures, job continues
	Error     string      `json:"error,omitempty"`  // set only on failed
	CreatedAt time.Time   `json:"created_at"`
	EndedAt   time.Time   `json:"ended_at,omitempty"`
}

// Clone returns a deep copy safe to hand to readers while the worker keeps
// mutating the original in place.
func (j *Job) Clone() *Job {
	c := *j
	if len(j.Errors) > 0 {
		c.Errors = append([]string(nil), j.Errors...)
	}
	return &c
}
