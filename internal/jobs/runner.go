// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/craftledger/internal/completion"
	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/database"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/models"
	"github.com/tomtom215/craftledger/internal/upstream"
)

// PopulationRunner executes the catalog population pipeline for one job:
// refresh the shared master cache if it is stale, then walk the user's
// characters to rebuild ownership, then materialize completion summaries.
//
// Failure policy is two-tiered. A listing-level failure (catalog index or
// character list unreachable) fails the job. A per-entity failure (one
// character, one tier) is recorded in the job's error list and skipped;
// one bad character never discards work for twenty good ones.
type PopulationRunner struct {
	db             *database.DB
	client         upstream.CatalogClient
	engine         *completion.Engine
	staleness      time.Duration
	characterDelay time.Duration
}

// NewPopulationRunner wires the runner. staleness controls when a
// user-triggered job also refreshes the shared catalog; scheduler jobs
// (empty user scope) always refresh.
func NewPopulationRunner(db *database.DB, client upstream.CatalogClient, cfg *config.Config) *PopulationRunner {
	return &PopulationRunner{
		db:             db,
		client:         client,
		engine:         completion.New(db),
		staleness:      cfg.Scheduler.StalenessThreshold,
		characterDelay: cfg.Jobs.CharacterDelay,
	}
}

// Run executes one job. Phases advance strictly forward; progress flows
// through the tracker so pollers see it live.
func (r *PopulationRunner) Run(ctx context.Context, userScope string, tracker *Tracker) error {
	tracker.SetPhase(models.PhaseStarting)

	force := userScope == ""
	if err := r.refreshCatalog(ctx, tracker, force); err != nil {
		return err
	}
	if userScope == "" {
		// Scheduler-triggered refresh: no account to reconcile.
		return nil
	}

	tracker.SetPhase(models.PhaseFetchingCharacters)
	characters, err := r.client.Characters(ctx, userScope)
	if err != nil {
		return fmt.Errorf("failed to list characters for %s: %w", userScope, err)
	}
	tracker.SetTotalCharacters(len(characters))

	tracker.SetPhase(models.PhaseProcessingCharacters)
	questGroups, err := r.questGroupIndex(ctx)
	if err != nil {
		return err
	}

	completedByGroup := make(map[models.GroupKey]map[int64]struct{})
	for i, character := range characters {
		if err := r.syncCharacter(ctx, userScope, character, questGroups, completedByGroup, tracker); err != nil {
			tracker.RecordError(fmt.Sprintf("character %d (%s): %v", character.ID, character.Name, err))
			logging.Warn().Err(err).Int64("character_id", character.ID).
				Str("user_scope", userScope).Msg("Character sync failed, continuing")
		}
		tracker.CharacterDone()

		// Cooperative pause between characters to stay under upstream
		// rate limits; not needed for correctness.
		if r.characterDelay > 0 && i < len(characters)-1 {
			select {
			case <-time.After(r.characterDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Quest completion is credited to the whole account (warband): replace
	// every catalog quest grouping's account-scope rows with the union
	// observed across characters, including groupings now empty.
	for group := range questGroups.groups {
		ids := make([]int64, 0)
		for id := range completedByGroup[group] {
			ids = append(ids, id)
		}
		if err := r.db.ReplaceOwnership(ctx, models.AccountScope(userScope), group, ids); err != nil {
			return fmt.Errorf("failed to replace quest ownership for %s: %w", group, err)
		}
	}

	tracker.SetPhase(models.PhaseUpdatingSummaries)
	if err := r.updateSummaries(ctx, userScope); err != nil {
		return err
	}

	tracker.SetPhase(models.PhaseTriggeringDiscovery)
	untouched, err := r.engine.GlobalMissingCoverage(ctx, userScope)
	if err != nil {
		return fmt.Errorf("failed to compute account coverage: %w", err)
	}
	logging.Info().Str("user_scope", userScope).Int("untouched_groups", len(untouched)).
		Msg("Account coverage computed")

	return nil
}

// refreshCatalog repopulates the shared master cache when it is empty or
// stale (always, when forced). A failed index fetch fails the job; a
// failed tier or area fetch is logged and skipped so the rest of the
// catalog still lands.
func (r *PopulationRunner) refreshCatalog(ctx context.Context, tracker *Tracker, force bool) error {
	recipeStatus, err := r.db.CatalogStatus(ctx, models.EntryKindRecipe)
	if err != nil {
		return fmt.Errorf("failed to read recipe catalog status: %w", err)
	}
	questStatus, err := r.db.CatalogStatus(ctx, models.EntryKindQuest)
	if err != nil {
		return fmt.Errorf("failed to read quest catalog status: %w", err)
	}

	now := time.Now().UTC()
	if force || recipeStatus.StaleAfter(r.staleness, now) {
		if err := r.refreshRecipes(ctx, tracker); err != nil {
			return err
		}
	}
	if force || questStatus.StaleAfter(r.staleness, now) {
		if err := r.refreshQuests(ctx, tracker); err != nil {
			return err
		}
	}
	return nil
}

func (r *PopulationRunner) refreshRecipes(ctx context.Context, tracker *Tracker) error {
	professions, err := r.client.Professions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list professions: %w", err)
	}

	var total int64
	for _, profession := range professions {
		for _, tier := range profession.Tiers {
			entries, err := r.client.TierRecipes(ctx, profession, tier)
			if err != nil {
				tracker.RecordError(fmt.Sprintf("tier %d/%d: %v", profession.ID, tier.ID, err))
				logging.Warn().Err(err).Int64("profession_id", profession.ID).
					Int64("tier_id", tier.ID).Msg("Tier fetch failed, skipping")
				continue
			}
			group := models.RecipeGroup(profession.ID, tier.ID)
			if err := r.db.UpsertEntries(ctx, group, entries); err != nil {
				return fmt.Errorf("failed to store recipes for %s: %w", group, err)
			}
			total += int64(len(entries))
		}
	}

	metrics.UpdateCatalogGauges(string(models.EntryKindRecipe), total, time.Now().UTC())
	logging.Info().Int64("entries", total).Int("professions", len(professions)).
		Msg("Recipe catalog refreshed")
	return nil
}

func (r *PopulationRunner) refreshQuests(ctx context.Context, tracker *Tracker) error {
	areas, err := r.client.QuestAreas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quest areas: %w", err)
	}

	var total int64
	for _, area := range areas {
		entries, err := r.client.AreaQuests(ctx, area)
		if err != nil {
			tracker.RecordError(fmt.Sprintf("area %d: %v", area.ID, err))
			logging.Warn().Err(err).Int64("area_id", area.ID).Msg("Area fetch failed, skipping")
			continue
		}
		group := models.QuestGroup(area.ID)
		if err := r.db.UpsertEntries(ctx, group, entries); err != nil {
			return fmt.Errorf("failed to store quests for %s: %w", group, err)
		}
		total += int64(len(entries))
	}

	metrics.UpdateCatalogGauges(string(models.EntryKindQuest), total, time.Now().UTC())
	logging.Info().Int64("entries", total).Int("areas", len(areas)).Msg("Quest catalog refreshed")
	return nil
}

// questGroupLookup maps quest entry ids to their area grouping, built
// once per job from the catalog so per-character quest ids can be bucketed
// without a query per quest.
type questGroupLookup struct {
	groups  map[models.GroupKey]struct{}
	byQuest map[int64]models.GroupKey
}

func (r *PopulationRunner) questGroupIndex(ctx context.Context) (*questGroupLookup, error) {
	groups, err := r.db.Groups(ctx, models.EntryKindQuest)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest groupings: %w", err)
	}

	lookup := &questGroupLookup{
		groups:  make(map[models.GroupKey]struct{}, len(groups)),
		byQuest: make(map[int64]models.GroupKey),
	}
	for _, group := range groups {
		lookup.groups[group] = struct{}{}
		entries, err := r.db.EntriesForGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("failed to load quests for %s: %w", group, err)
		}
		for i := range entries {
			lookup.byQuest[entries[i].ID] = group
		}
	}
	return lookup, nil
}

// syncCharacter rebuilds one character's recipe ownership and folds its
// completed quests into the account-wide accumulation.
func (r *PopulationRunner) syncCharacter(
	ctx context.Context,
	userScope string,
	character upstream.Character,
	questGroups *questGroupLookup,
	completedByGroup map[models.GroupKey]map[int64]struct{},
	tracker *Tracker,
) error {
	professions, err := r.client.CharacterProfessions(ctx, userScope, character.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch professions: %w", err)
	}

	scope := models.CharacterScope(userScope, character.ID)
	for _, profession := range professions {
		for _, tier := range profession.Tiers {
			group := models.RecipeGroup(profession.ProfessionID, tier.TierID)
			if err := r.db.ReplaceOwnership(ctx, scope, group, tier.KnownRecipeIDs); err != nil {
				return fmt.Errorf("failed to replace recipe ownership for %s: %w", group, err)
			}
		}
	}

	questIDs, err := r.client.CompletedQuests(ctx, userScope, character.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch completed quests: %w", err)
	}

	contributed := 0
	for _, id := range questIDs {
		group, ok := questGroups.byQuest[id]
		if !ok {
			// Quest not in the catalog (removed upstream, or the catalog
			// predates it). Processed but not contributed.
			continue
		}
		if completedByGroup[group] == nil {
			completedByGroup[group] = make(map[int64]struct{})
		}
		if _, seen := completedByGroup[group][id]; !seen {
			completedByGroup[group][id] = struct{}{}
			contributed++
		}
	}
	tracker.AddQuests(len(questIDs), contributed)

	return nil
}

// updateSummaries materializes account-scope completion summaries for
// every grouping of both kinds (write-through after population).
func (r *PopulationRunner) updateSummaries(ctx context.Context, userScope string) error {
	for _, kind := range []models.EntryKind{models.EntryKindRecipe, models.EntryKindQuest} {
		summaries, err := r.engine.SummarizeAll(ctx, userScope, kind)
		if err != nil {
			return fmt.Errorf("failed to summarize %s completion: %w", kind, err)
		}
		if err := r.db.UpsertSummaries(ctx, userScope, summaries); err != nil {
			return fmt.Errorf("failed to store %s summaries: %w", kind, err)
		}
	}
	return nil
}
