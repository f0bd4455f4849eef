// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package upstream implements the client for the third-party game-data API.

The client walks two paginated catalog hierarchies (professions to tiers to
recipe categories, and quest areas to quests) plus the per-account profile
surface (characters, known recipes, completed quests).

Resilience:
  - Client-side token bucket (golang.org/x/time/rate) paces every request
  - HTTP 429 retried with exponential backoff, honoring Retry-After
  - Circuit breaker (BreakerClient) fails fast when the upstream is down
  - Errors map to a small taxonomy: ErrUnavailable, ErrRateLimited,
    ErrInvalidPayload

Localized names are resolved to plain strings during decode via
models.LocalizedText; entries whose names cannot be resolved are skipped
with a warning, never fatal.
*/
package upstream
