// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package middleware provides HTTP middleware for the API router.

Two components live here; everything else in the stack (CORS, rate
limiting, compression, panic recovery) comes from chi and its contrib
modules:

  - RequestID: UUID request tracking, propagated into the logging context
  - PrometheusMetrics: request count, latency, and in-flight gauge, with
    chi route patterns as endpoint labels to bound cardinality
*/
package middleware
