// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/models"
)

type fakeCatalog struct {
	statuses map[models.EntryKind]models.CatalogStatus
}

func (f *fakeCatalog) CatalogStatus(_ context.Context, kind models.EntryKind) (models.CatalogStatus, error) {
	return f.statuses[kind], nil
}

type fakeEnqueuer struct {
	mu     sync.Mutex
	scopes []string
}

func (f *fakeEnqueuer) Enqueue(userScope string) (*models.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, userScope)
	return &models.Job{ID: "refresh-1", UserScope: userScope, Status: models.JobStatusQueued}, true
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scopes)
}

func schedulerConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		Enabled:            true,
		StalenessThreshold: 7 * 24 * time.Hour,
		CheckInterval:      time.Hour,
	}
}

func TestEmptyCatalogTriggersRefresh(t *testing.T) {
	catalog := &fakeCatalog{statuses: map[models.EntryKind]models.CatalogStatus{
		models.EntryKindRecipe: {Kind: models.EntryKindRecipe},
		models.EntryKindQuest:  {Kind: models.EntryKindQuest},
	}}
	enqueuer := &fakeEnqueuer{}

	s := New(schedulerConfig(), catalog, enqueuer)
	s.checkOnce(context.Background())

	if len(enqueuer.scopes) != 1 {
		t.Fatalf("expected exactly one refresh job, got %d", len(enqueuer.scopes))
	}
	if enqueuer.scopes[0] != "" {
		t.Errorf("refresh job should have no user scope, got %q", enqueuer.scopes[0])
	}
}

func TestFreshCatalogDoesNotTrigger(t *testing.T) {
	now := time.Now().UTC()
	catalog := &fakeCatalog{statuses: map[models.EntryKind]models.CatalogStatus{
		models.EntryKindRecipe: {Kind: models.EntryKindRecipe, TotalEntries: 100, LastCachedAt: now.Add(-time.Hour)},
		models.EntryKindQuest:  {Kind: models.EntryKindQuest, TotalEntries: 50, LastCachedAt: now.Add(-2 * time.Hour)},
	}}
	enqueuer := &fakeEnqueuer{}

	s := New(schedulerConfig(), catalog, enqueuer)
	s.checkOnce(context.Background())

	if len(enqueuer.scopes) != 0 {
		t.Errorf("fresh catalog should not trigger a refresh, got %d jobs", len(enqueuer.scopes))
	}
}

func TestOneStaleKindTriggersSingleRefresh(t *testing.T) {
	now := time.Now().UTC()
	catalog := &fakeCatalog{statuses: map[models.EntryKind]models.CatalogStatus{
		models.EntryKindRecipe: {Kind: models.EntryKindRecipe, TotalEntries: 100, LastCachedAt: now.Add(-time.Hour)},
		models.EntryKindQuest:  {Kind: models.EntryKindQuest, TotalEntries: 50, LastCachedAt: now.Add(-8 * 24 * time.Hour)},
	}}
	enqueuer := &fakeEnqueuer{}

	s := New(schedulerConfig(), catalog, enqueuer)
	s.checkOnce(context.Background())

	if len(enqueuer.scopes) != 1 {
		t.Errorf("one stale kind should enqueue one refresh, got %d", len(enqueuer.scopes))
	}
}

func TestServeChecksOnStart(t *testing.T) {
	catalog := &fakeCatalog{statuses: map[models.EntryKind]models.CatalogStatus{
		models.EntryKindRecipe: {Kind: models.EntryKindRecipe},
		models.EntryKindQuest:  {Kind: models.EntryKindQuest},
	}}
	enqueuer := &fakeEnqueuer{}

	s := New(schedulerConfig(), catalog, enqueuer)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && enqueuer.count() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if enqueuer.count() == 0 {
		t.Error("Serve should perform a staleness check on start")
	}
}
