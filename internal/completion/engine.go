// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package completion

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/craftledger/internal/models"
)

// Store is the read surface the engine needs from the durable stores.
// *database.DB satisfies it; tests use an in-memory fake.
type Store interface {
	EntriesForGroup(ctx context.Context, group models.GroupKey) ([]models.MasterCacheEntry, error)
	OwnedIDs(ctx context.Context, scope models.OwnerScope, group models.GroupKey) (map[int64]struct{}, error)
	AccountOwnedIDs(ctx context.Context, userID string, group models.GroupKey) (map[int64]struct{}, error)
	Groups(ctx context.Context, kind models.EntryKind) ([]models.GroupKey, error)
}

// Engine derives completion analytics from the master cache joined with
// ownership. All methods are pure reads over current store state; nothing
// here mutates, and nothing here caches. Materialization of summaries is
// the job runner's concern.
type Engine struct {
	store Store
}

// New returns an engine over the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Percentage computes the completion percentage for a grouping, rounded
// half-up to one decimal place. An empty grouping is 0, not NaN.
func Percentage(total, known int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(known)/float64(total)*1000) / 10
}

// MissingEntries returns the catalog entries in the given groupings that
// the scope does not own: the exact set difference of the master cache
// slice and the ownership set. For an account scope the ownership set is
// the union across every character, so an entry is missing only when no
// character has it.
//
// The result is stably sorted by (category, name) ascending so repeated
// reads render identically.
func (e *Engine) MissingEntries(ctx context.Context, scope models.OwnerScope, groups []models.GroupKey) ([]models.MasterCacheEntry, error) {
	missing := make([]models.MasterCacheEntry, 0)
	for _, group := range groups {
		entries, err := e.store.EntriesForGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog for %s: %w", group, err)
		}

		owned, err := e.ownedSet(ctx, scope, group)
		if err != nil {
			return nil, err
		}

		for i := range entries {
			if _, ok := owned[entries[i].ID]; !ok {
				missing = append(missing, entries[i])
			}
		}
	}

	sort.SliceStable(missing, func(i, j int) bool {
		ci, cj := missing[i].Category(), missing[j].Category()
		if ci != cj {
			return ci < cj
		}
		return missing[i].Name < missing[j].Name
	})
	return missing, nil
}

// Summarize computes the completion summary for one scope and grouping,
// along with the missing entries that back it. This is the read path for
// the completion endpoint and the building block of the job runner's bulk
// summary refresh.
func (e *Engine) Summarize(ctx context.Context, scope models.OwnerScope, group models.GroupKey) (models.CompletionSummary, []models.MasterCacheEntry, error) {
	summary := models.CompletionSummary{
		UserID:   scope.UserID,
		GroupKey: group.String(),
	}

	entries, err := e.store.EntriesForGroup(ctx, group)
	if err != nil {
		return summary, nil, fmt.Errorf("failed to load catalog for %s: %w", group, err)
	}

	owned, err := e.ownedSet(ctx, scope, group)
	if err != nil {
		return summary, nil, err
	}

	missing := make([]models.MasterCacheEntry, 0)
	for i := range entries {
		if _, ok := owned[entries[i].ID]; ok {
			summary.TotalKnown++
		} else {
			missing = append(missing, entries[i])
		}
	}
	summary.TotalAvailable = len(entries)
	summary.CompletionPct = Percentage(summary.TotalAvailable, summary.TotalKnown)
	return summary, missing, nil
}

// SummarizeAll recomputes summaries for every grouping of a kind for one
// user at account scope. The job runner calls this during its
// updating_summaries phase to materialize the rows in bulk.
func (e *Engine) SummarizeAll(ctx context.Context, userID string, kind models.EntryKind) ([]models.CompletionSummary, error) {
	groups, err := e.store.Groups(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list groupings for %s: %w", kind, err)
	}

	summaries := make([]models.CompletionSummary, 0, len(groups))
	for _, group := range groups {
		summary, _, err := e.Summarize(ctx, models.AccountScope(userID), group)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GlobalMissingCoverage returns the groupings the user's whole account has
// never touched: for each grouping in the master cache, those where zero
// entries are owned across all of the user's characters. A left anti join
// over the full catalog, not a per-character check.
func (e *Engine) GlobalMissingCoverage(ctx context.Context, userID string) ([]models.GroupKey, error) {
	untouched := make([]models.GroupKey, 0)
	for _, kind := range []models.EntryKind{models.EntryKindRecipe, models.EntryKindQuest} {
		groups, err := e.store.Groups(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list groupings for %s: %w", kind, err)
		}
		for _, group := range groups {
			owned, err := e.store.AccountOwnedIDs(ctx, userID, group)
			if err != nil {
				return nil, fmt.Errorf("failed to load account ownership for %s: %w", group, err)
			}
			if len(owned) == 0 {
				untouched = append(untouched, group)
			}
		}
	}
	return untouched, nil
}

// ownedSet resolves the ownership set for a scope: the exact character's
// rows, or the union across all characters for an account scope.
func (e *Engine) ownedSet(ctx context.Context, scope models.OwnerScope, group models.GroupKey) (map[int64]struct{}, error) {
	if scope.IsAccount() {
		owned, err := e.store.AccountOwnedIDs(ctx, scope.UserID, group)
		if err != nil {
			return nil, fmt.Errorf("failed to load account ownership for %s: %w", group, err)
		}
		return owned, nil
	}
	owned, err := e.store.OwnedIDs(ctx, scope, group)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership for %s: %w", group, err)
	}
	return owned, nil
}
