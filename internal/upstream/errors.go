// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package upstream

import "errors"

// Error taxonomy for upstream failures. Callers branch on these with
// errors.Is; the job runner maps them to job outcomes (a listing-level
// failure fails the job, a per-entity failure is recorded and skipped).
var (
	// ErrUnavailable indicates the upstream API could not be reached or
	// answered with a server error. Transient; the job is failed and the
	// client may re-enqueue.
	ErrUnavailable = errors.New("upstream API unavailable")

	// ErrRateLimited indicates the upstream kept returning 429 after the
	// configured retries were exhausted.
	ErrRateLimited = errors.New("upstream API rate limit exceeded")

	// ErrInvalidPayload indicates the upstream answered 200 but the body
	// did not decode into the expected shape.
	ErrInvalidPayload = errors.New("upstream API returned invalid payload")
)
