// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package jobs implements asynchronous catalog population.

The Manager owns the in-memory job table and is its sole mutator: handlers
call Enqueue and Status, a single worker goroutine drains the FIFO queue,
and readers receive clones. One job runs at a time, bounding upstream API
load and keeping catalog writes race-free.

Guarantees:
  - Enqueue is idempotent per user scope while a job is queued or
    processing (the existing job id is returned)
  - Phases advance monotonically: starting, fetching_characters,
    processing_characters, updating_summaries, triggering_discovery
  - Per-character failures are recorded and skipped; only listing-level
    failures mark the job failed
  - Terminal records are retained for a bounded window, then evicted;
    an evicted id yields ErrJobNotFound, which means outcome unknown

Jobs do not survive restarts. That is acceptable: clients poll, get
NotFound, and re-enqueue, which is idempotent.

The PopulationRunner is the pipeline the worker executes: refresh the
shared master cache when stale, rebuild the user's ownership from the
upstream profile, materialize completion summaries, then compute
account-wide coverage.
*/
package jobs
