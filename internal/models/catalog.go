// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package models defines data structures for the Craftledger application.
// These models represent master catalog entries, ownership records,
// completion summaries, and population job state.
package models

import (
	"fmt"
	"time"
)

// EntryKind identifies the catalog family a master cache entry belongs to.
type EntryKind string

const (
	// EntryKindRecipe is a craftable recipe from a profession tier.
	EntryKindRecipe EntryKind = "recipe"

	// EntryKindQuest is a completable quest from a zone.
	EntryKindQuest EntryKind = "quest"
)

// Valid reports whether the kind is one of the known catalog families.
func (k EntryKind) Valid() bool {
	return k == EntryKindRecipe || k == EntryKindQuest
}

// MasterCacheEntry represents one shared catalog item.
//
// The catalog is account-independent: every user sees the same entries, so
// a single copy is stored and refreshed for the whole process. Entries are
// keyed by the upstream-stable ID within their grouping.
//
// Grouping Fields:
//   - Recipe: ProfessionID/ProfessionName, TierID/TierName, CategoryName
//   - Quest: AreaID/AreaName, ExpansionName, IsSeasonal
//
// Fields of the other kind are left at their zero values.
type MasterCacheEntry struct {
	ID   int64     `json:"id"`
	Kind EntryKind `json:"kind"`
	Name string    `json:"name"`

	// Recipe grouping attributes
	ProfessionID   int64  `json:"profession_id,omitempty"`
	ProfessionName string `json:"profession_name,omitempty"`
	TierID         int64  `json:"tier_id,omitempty"`
	TierName       string `json:"tier_name,omitempty"`
	CategoryName   string `json:"category_name,omitempty"`

	// Quest grouping attributes
	AreaID        int64  `json:"area_id,omitempty"`
	AreaName      string `json:"area_name,omitempty"`
	ExpansionName string `json:"expansion_name,omitempty"`
	IsSeasonal    bool   `json:"is_seasonal,omitempty"`

	// CachedAt is the timestamp of the last refresh that wrote this entry.
	CachedAt time.Time `json:"cached_at"`
}

// Group returns the grouping key this entry is replaced under.
func (e *MasterCacheEntry) Group() GroupKey {
	if e.Kind == EntryKindQuest {
		return QuestGroup(e.AreaID)
	}
	return RecipeGroup(e.ProfessionID, e.TierID)
}

// Category returns the ordering key used for stable sorting of missing
// entries: the recipe category name, or the quest area name.
func (e *MasterCacheEntry) Category() string {
	if e.Kind == EntryKindQuest {
		return e.AreaName
	}
	return e.CategoryName
}

// GroupKey is the partition key used to replace catalog and ownership data
// atomically: (profession, tier) for recipes, (area) for quests. The
// expansion name is an attribute of the area, not part of the key.
type GroupKey struct {
	Kind         EntryKind `json:"kind"`
	ProfessionID int64     `json:"profession_id,omitempty"`
	TierID       int64     `json:"tier_id,omitempty"`
	AreaID       int64     `json:"area_id,omitempty"`
}

// RecipeGroup returns the grouping key for a profession tier.
func RecipeGroup(professionID, tierID int64) GroupKey {
	return GroupKey{Kind: EntryKindRecipe, ProfessionID: professionID, TierID: tierID}
}

// QuestGroup returns the grouping key for a quest area.
func QuestGroup(areaID int64) GroupKey {
	return GroupKey{Kind: EntryKindQuest, AreaID: areaID}
}

// String renders the canonical textual form of the key, used as the
// group_key column in completion summaries and in log fields.
//
//	recipe:164:2437
//	quest:10288
func (g GroupKey) String() string {
	if g.Kind == EntryKindQuest {
		return fmt.Sprintf("quest:%d", g.AreaID)
	}
	return fmt.Sprintf("recipe:%d:%d", g.ProfessionID, g.TierID)
}

// OwnerScope identifies whose ownership rows a read or replace applies to.
//
// Recipes are known per character; quests are completed account-wide
// (warband-scoped), represented by CharacterID == 0.
type OwnerScope struct {
	UserID      string `json:"user_id"`
	CharacterID int64  `json:"character_id,omitempty"`
}

// AccountScope returns the account-wide (warband) scope for a user.
func AccountScope(userID string) OwnerScope {
	return OwnerScope{UserID: userID}
}

// CharacterScope returns the per-character scope for a user.
func CharacterScope(userID string, characterID int64) OwnerScope {
	return OwnerScope{UserID: userID, CharacterID: characterID}
}

// IsAccount reports whether the scope covers the whole account rather than
// a single character.
func (s OwnerScope) IsAccount() bool {
	return s.CharacterID == 0
}

// OwnershipRecord is one fact: this user's character possesses or has
// completed the given catalog entry. Re-observing an entry is idempotent
// and only bumps ObservedAt.
type OwnershipRecord struct {
	UserID      string    `json:"user_id"`
	CharacterID int64     `json:"character_id,omitempty"` // 0 = account scope
	EntryID     int64     `json:"entry_id"`
	ObservedAt  time.Time `json:"observed_at"`
}

// CompletionSummary is a derived row, recomputable at any time from the
// master cache joined with ownership. Never hand-edited.
type CompletionSummary struct {
	UserID         string    `json:"user_id"`
	GroupKey       string    `json:"group_key"`
	TotalAvailable int       `json:"total_available"`
	TotalKnown     int       `json:"total_known"`
	CompletionPct  float64   `json:"completion_percentage"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CatalogStatus summarizes the state of one catalog kind for staleness
// checks and the status endpoint.
type CatalogStatus struct {
	Kind           EntryKind `json:"kind"`
	TotalEntries   int64     `json:"total_entries"`
	LastCachedAt   time.Time `json:"last_cached_at"`
	DistinctGroups int64     `json:"distinct_groups"`
}

// Empty reports whether the catalog kind has never been populated.
func (s CatalogStatus) Empty() bool {
	return s.TotalEntries == 0
}

// StaleAfter reports whether the catalog is due for a refresh given the
// configured staleness threshold.
func (s CatalogStatus) StaleAfter(threshold time.Duration, now time.Time) bool {
	if s.Empty() {
		return true
	}
	return now.Sub(s.LastCachedAt) > threshold
}
