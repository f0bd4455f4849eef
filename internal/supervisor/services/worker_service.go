// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package services

import "context"

// Server is anything with a blocking, context-aware Serve loop. Both the
// job manager and the refresh scheduler satisfy it.
type Server interface {
	Serve(ctx context.Context) error
}

// WorkerService names a Server for the supervision tree. suture restarts
// it on error; the wrapped components hold no state that outlives Serve,
// so restarts are safe.
type WorkerService struct {
	server Server
	name   string
}

// NewWorkerService wraps a Serve loop under the given service name.
func NewWorkerService(name string, server Server) *WorkerService {
	return &WorkerService{server: server, name: name}
}

// Serve implements suture.Service.
func (w *WorkerService) Serve(ctx context.Context) error {
	return w.server.Serve(ctx)
}

// String implements fmt.Stringer; suture uses it in event logs.
func (w *WorkerService) String() string {
	return w.name
}
