// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package api provides the HTTP surface of Craftledger using the chi router.

Endpoints (all JSON, wrapped in the models.APIResponse envelope):

	POST   /api/v1/jobs/catalog-population          enqueue a population job (202, idempotent per user scope)
	GET    /api/v1/jobs/catalog-population/{jobId}  poll job status (404 once evicted)
	GET    /api/v1/catalog/{kind}/status            catalog freshness, served through a short TTL cache
	DELETE /api/v1/catalog/{kind}                   operator escape hatch: clear one catalog kind
	GET    /api/v1/completion/{userScope}/{groupingKey}  account-wide completion for one grouping
	GET    /api/v1/health/live, /ready              liveness and readiness probes
	GET    /metrics                                 Prometheus exposition

The router wires go-chi/cors for CORS preflight, go-chi/httprate for per-IP
rate limiting, and the middleware package for request IDs and Prometheus
request metrics. Handlers depend on narrow interfaces (JobService,
CompletionService, CatalogStore) so tests run against fakes without a
database.
*/
package api
