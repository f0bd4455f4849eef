// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/craftledger/internal/logging"
)

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("threshold = %v", cfg.FailureThreshold)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeout)
	}
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("threshold = %v", tree.config.FailureThreshold)
	}
	if tree.config.FailureBackoff != 15*time.Second {
		t.Errorf("backoff = %v", tree.config.FailureBackoff)
	}
	if tree.Root() == nil {
		t.Error("root supervisor missing")
	}
}

type blockingService struct {
	started chan struct{}
}

func (s *blockingService) Serve(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	worker := &blockingService{started: make(chan struct{})}
	apiSvc := &blockingService{started: make(chan struct{})}
	tree.AddWorkerService(worker)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, started := range []chan struct{}{worker.started, apiSvc.started} {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("service did not start")
		}
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("terminal err = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}
