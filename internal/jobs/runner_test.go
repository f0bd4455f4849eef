// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/database"
	"github.com/tomtom215/craftledger/internal/models"
	"github.com/tomtom215/craftledger/internal/upstream"
)

// runnerDBSemaphore serializes DuckDB usage across runner tests, matching
// the database package's test discipline.
var runnerDBSemaphore = make(chan struct{}, 1)

func setupRunnerDB(t *testing.T) *database.DB {
	t.Helper()
	runnerDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-runnerDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeCatalogClient is an in-memory upstream.CatalogClient.
type fakeCatalogClient struct {
	professions     []upstream.Profession
	tierRecipes     map[string][]models.MasterCacheEntry
	areas           []upstream.QuestArea
	areaQuests      map[int64][]models.MasterCacheEntry
	characters      []upstream.Character
	charProfessions map[int64][]upstream.CharacterProfession
	completedQuests map[int64][]int64
	charErr         map[int64]error
	charactersErr   error
}

func newFakeCatalogClient() *fakeCatalogClient {
	return &fakeCatalogClient{
		tierRecipes:     make(map[string][]models.MasterCacheEntry),
		areaQuests:      make(map[int64][]models.MasterCacheEntry),
		charProfessions: make(map[int64][]upstream.CharacterProfession),
		completedQuests: make(map[int64][]int64),
		charErr:         make(map[int64]error),
	}
}

func (f *fakeCatalogClient) Ping(context.Context) error { return nil }

func (f *fakeCatalogClient) Professions(context.Context) ([]upstream.Profession, error) {
	return f.professions, nil
}

func (f *fakeCatalogClient) TierRecipes(_ context.Context, p upstream.Profession, t upstream.Tier) ([]models.MasterCacheEntry, error) {
	return f.tierRecipes[fmt.Sprintf("%d:%d", p.ID, t.ID)], nil
}

func (f *fakeCatalogClient) QuestAreas(context.Context) ([]upstream.QuestArea, error) {
	return f.areas, nil
}

func (f *fakeCatalogClient) AreaQuests(_ context.Context, area upstream.QuestArea) ([]models.MasterCacheEntry, error) {
	return f.areaQuests[area.ID], nil
}

func (f *fakeCatalogClient) Characters(_ context.Context, userID string) ([]upstream.Character, error) {
	if f.charactersErr != nil {
		return nil, f.charactersErr
	}
	return f.characters, nil
}

func (f *fakeCatalogClient) CharacterProfessions(_ context.Context, _ string, characterID int64) ([]upstream.CharacterProfession, error) {
	if err := f.charErr[characterID]; err != nil {
		return nil, err
	}
	return f.charProfessions[characterID], nil
}

func (f *fakeCatalogClient) CompletedQuests(_ context.Context, _ string, characterID int64) ([]int64, error) {
	return f.completedQuests[characterID], nil
}

func runnerConfig() *config.Config {
	return &config.Config{
		Jobs: config.JobsConfig{
			RetentionWindow:  time.Minute,
			EvictionInterval: time.Hour,
			CharacterDelay:   0,
		},
		Scheduler: config.SchedulerConfig{
			StalenessThreshold: 7 * 24 * time.Hour,
		},
	}
}

// catalogFixture sets up one blacksmithing tier with recipes {1,2,3,4}.
func catalogFixture(client *fakeCatalogClient) {
	client.professions = []upstream.Profession{
		{ID: 164, Name: "Blacksmithing", Tiers: []upstream.Tier{{ID: 2437, Name: "Dragon Isles Blacksmithing"}}},
	}
	client.tierRecipes["164:2437"] = []models.MasterCacheEntry{
		{ID: 1, Kind: models.EntryKindRecipe, Name: "Obsidian Plate", CategoryName: "Armor"},
		{ID: 2, Kind: models.EntryKindRecipe, Name: "Runed Blade", CategoryName: "Weapons"},
		{ID: 3, Kind: models.EntryKindRecipe, Name: "Steel Rivets", CategoryName: "Parts"},
		{ID: 4, Kind: models.EntryKindRecipe, Name: "Iron Ingot", CategoryName: "Materials"},
	}
}

func TestRunEndToEnd(t *testing.T) {
	// Two characters owning {1,2} and {2,3} out of a catalog of {1,2,3,4}:
	// after the job, account-scope missing is {4} and completion is 75.0.
	db := setupRunnerDB(t)
	client := newFakeCatalogClient()
	catalogFixture(client)

	client.characters = []upstream.Character{
		{ID: 1, Name: "Aria"},
		{ID: 2, Name: "Borin"},
	}
	client.charProfessions[1] = []upstream.CharacterProfession{
		{ProfessionID: 164, Tiers: []upstream.CharacterTier{{TierID: 2437, KnownRecipeIDs: []int64{1, 2}}}},
	}
	client.charProfessions[2] = []upstream.CharacterProfession{
		{ProfessionID: 164, Tiers: []upstream.CharacterTier{{TierID: 2437, KnownRecipeIDs: []int64{2, 3}}}},
	}

	runner := NewPopulationRunner(db, client, runnerConfig())
	m := startManager(t, runner)

	job, _ := m.Enqueue("user-1")
	final := waitForTerminal(t, m, job.ID)

	if final.Status != models.JobStatusCompleted {
		t.Fatalf("job status = %s (%s), want completed", final.Status, final.Error)
	}
	if final.Progress.CharactersProcessed != 2 || final.Progress.TotalCharacters != 2 {
		t.Errorf("progress = %+v", final.Progress)
	}

	ctx := context.Background()
	group := models.RecipeGroup(164, 2437)

	owned, err := db.AccountOwnedIDs(ctx, "user-1", group)
	if err != nil {
		t.Fatal(err)
	}
	if len(owned) != 3 {
		t.Errorf("account owns %v, want {1,2,3}", owned)
	}
	if _, ok := owned[4]; ok {
		t.Error("entry 4 should be missing")
	}

	summary, err := db.SummaryFor(ctx, "user-1", group.String())
	if err != nil {
		t.Fatal(err)
	}
	if summary.CompletionPct != 75.0 || summary.TotalKnown != 3 || summary.TotalAvailable != 4 {
		t.Errorf("summary = %+v, want 3/4 at 75.0", summary)
	}
}

func TestRunPartialCharacterFailure(t *testing.T) {
	// Five characters, #3 raises an upstream error: the job still completes
	// with charactersProcessed = 5, one error entry referencing it, and
	// ownership present for the other four.
	db := setupRunnerDB(t)
	client := newFakeCatalogClient()
	catalogFixture(client)

	for i := int64(1); i <= 5; i++ {
		client.characters = append(client.characters, upstream.Character{ID: i, Name: fmt.Sprintf("Char%d", i)})
		client.charProfessions[i] = []upstream.CharacterProfession{
			{ProfessionID: 164, Tiers: []upstream.CharacterTier{{TierID: 2437, KnownRecipeIDs: []int64{i % 4}}}},
		}
	}
	client.charErr[3] = errors.New("upstream API unavailable")

	runner := NewPopulationRunner(db, client, runnerConfig())
	m := startManager(t, runner)

	job, _ := m.Enqueue("user-1")
	final := waitForTerminal(t, m, job.ID)

	if final.Status != models.JobStatusCompleted {
		t.Fatalf("partial failure must not fail the job: %s (%s)", final.Status, final.Error)
	}
	if final.Progress.CharactersProcessed != 5 {
		t.Errorf("charactersProcessed = %d, want 5", final.Progress.CharactersProcessed)
	}
	if len(final.Errors) != 1 || !strings.Contains(final.Errors[0], "character 3") {
		t.Errorf("errors = %v, want one entry referencing character 3", final.Errors)
	}

	// The failed character wrote nothing; the others did.
	ctx := context.Background()
	group := models.RecipeGroup(164, 2437)
	owned, err := db.OwnedIDs(ctx, models.CharacterScope("user-1", 3), group)
	if err != nil {
		t.Fatal(err)
	}
	if len(owned) != 0 {
		t.Errorf("failed character should own nothing, got %v", owned)
	}
	owned, err = db.OwnedIDs(ctx, models.CharacterScope("user-1", 2), group)
	if err != nil {
		t.Fatal(err)
	}
	if len(owned) != 1 {
		t.Errorf("healthy character ownership missing: %v", owned)
	}
}

func TestRunListingFailureFailsJob(t *testing.T) {
	db := setupRunnerDB(t)
	client := newFakeCatalogClient()
	catalogFixture(client)
	client.charactersErr = upstream.ErrUnavailable

	runner := NewPopulationRunner(db, client, runnerConfig())
	m := startManager(t, runner)

	job, _ := m.Enqueue("user-1")
	final := waitForTerminal(t, m, job.ID)

	if final.Status != models.JobStatusFailed {
		t.Fatalf("listing failure must fail the job, got %s", final.Status)
	}
	if !strings.Contains(final.Error, "unavailable") {
		t.Errorf("error = %q", final.Error)
	}
}

func TestRunSchedulerScopeRefreshesCatalogOnly(t *testing.T) {
	db := setupRunnerDB(t)
	client := newFakeCatalogClient()
	catalogFixture(client)
	client.areas = []upstream.QuestArea{{ID: 14717, Name: "Isle of Dorn", Expansion: "The War Within"}}
	client.areaQuests[14717] = []models.MasterCacheEntry{
		{ID: 80001, Kind: models.EntryKindQuest, Name: "The Weight of Stone"},
	}

	runner := NewPopulationRunner(db, client, runnerConfig())
	m := startManager(t, runner)

	job, _ := m.Enqueue("") // scheduler-style refresh, no user scope
	final := waitForTerminal(t, m, job.ID)

	if final.Status != models.JobStatusCompleted {
		t.Fatalf("refresh job = %s (%s)", final.Status, final.Error)
	}

	ctx := context.Background()
	recipeStatus, err := db.CatalogStatus(ctx, models.EntryKindRecipe)
	if err != nil {
		t.Fatal(err)
	}
	if recipeStatus.TotalEntries != 4 {
		t.Errorf("recipe catalog = %d entries, want 4", recipeStatus.TotalEntries)
	}
	questStatus, err := db.CatalogStatus(ctx, models.EntryKindQuest)
	if err != nil {
		t.Fatal(err)
	}
	if questStatus.TotalEntries != 1 {
		t.Errorf("quest catalog = %d entries, want 1", questStatus.TotalEntries)
	}
	if final.Progress.TotalCharacters != 0 {
		t.Errorf("refresh job should process no characters: %+v", final.Progress)
	}
}

func TestQuestCompletionCreditedAccountWide(t *testing.T) {
	db := setupRunnerDB(t)
	client := newFakeCatalogClient()
	catalogFixture(client)
	client.areas = []upstream.QuestArea{{ID: 14717, Name: "Isle of Dorn", Expansion: "The War Within"}}
	client.areaQuests[14717] = []models.MasterCacheEntry{
		{ID: 80001, Kind: models.EntryKindQuest, Name: "A"},
		{ID: 80002, Kind: models.EntryKindQuest, Name: "B"},
		{ID: 80003, Kind: models.EntryKindQuest, Name: "C"},
	}

	client.characters = []upstream.Character{{ID: 1, Name: "Aria"}, {ID: 2, Name: "Borin"}}
	// Overlapping completion across characters; 99999 is not in the catalog.
	client.completedQuests[1] = []int64{80001, 80002}
	client.completedQuests[2] = []int64{80002, 99999}

	runner := NewPopulationRunner(db, client, runnerConfig())
	m := startManager(t, runner)

	job, _ := m.Enqueue("user-1")
	final := waitForTerminal(t, m, job.ID)

	if final.Status != models.JobStatusCompleted {
		t.Fatalf("job = %s (%s)", final.Status, final.Error)
	}
	if final.Progress.QuestsProcessed != 4 {
		t.Errorf("questsProcessed = %d, want 4", final.Progress.QuestsProcessed)
	}
	if final.Progress.QuestsContributed != 2 {
		t.Errorf("questsContributed = %d, want 2 (one duplicate, one unknown)", final.Progress.QuestsContributed)
	}

	ctx := context.Background()
	group := models.QuestGroup(14717)
	owned, err := db.OwnedIDs(ctx, models.AccountScope("user-1"), group)
	if err != nil {
		t.Fatal(err)
	}
	if len(owned) != 2 {
		t.Errorf("account quest ownership = %v, want {80001,80002}", owned)
	}

	summary, err := db.SummaryFor(ctx, "user-1", group.String())
	if err != nil {
		t.Fatal(err)
	}
	if summary.CompletionPct != 66.7 {
		t.Errorf("quest completion = %v, want 66.7", summary.CompletionPct)
	}
}
