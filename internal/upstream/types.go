// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package upstream

import "github.com/tomtom215/craftledger/internal/models"

// Resolved shapes returned by the client. Localized names are collapsed to
// plain strings at decode time; nothing past this package sees a locale map.

// Profession is one crafting profession and its skill tiers.
type Profession struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Tiers []Tier `json:"tiers"`
}

// Tier is one skill tier of a profession (usually one per expansion).
type Tier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// QuestArea is one quest zone.
type QuestArea struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Expansion  string `json:"expansion"`
	IsSeasonal bool   `json:"is_seasonal"`
}

// Character is one character on the user's account.
type Character struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Realm string `json:"realm"`
}

// CharacterProfession is the known-recipe state of one character's
// profession, per tier. The upstream returns the full known-set on every
// sync, never a delta.
type CharacterProfession struct {
	ProfessionID int64           `json:"profession_id"`
	Tiers        []CharacterTier `json:"tiers"`
}

// CharacterTier holds the recipe ids a character knows within one tier.
type CharacterTier struct {
	TierID         int64   `json:"tier_id"`
	KnownRecipeIDs []int64 `json:"known_recipe_ids"`
}

// Wire types mirror the raw API payloads. Names arrive either as plain
// strings or locale maps; models.LocalizedText absorbs both.

type pagedEnvelope struct {
	Page      int `json:"page"`
	PageCount int `json:"pageCount"`
}

type professionIndexPayload struct {
	pagedEnvelope
	Results []professionRefPayload `json:"results"`
}

type professionRefPayload struct {
	ID   int64                `json:"id"`
	Name models.LocalizedText `json:"name"`
}

type professionDetailPayload struct {
	ID    int64                `json:"id"`
	Name  models.LocalizedText `json:"name"`
	Tiers []tierRefPayload     `json:"tiers"`
}

type tierRefPayload struct {
	ID   int64                `json:"id"`
	Name models.LocalizedText `json:"name"`
}

type tierDetailPayload struct {
	ID         int64                `json:"id"`
	Name       models.LocalizedText `json:"name"`
	Categories []categoryPayload    `json:"categories"`
}

type categoryPayload struct {
	Name    models.LocalizedText `json:"name"`
	Recipes []entryRefPayload    `json:"recipes"`
}

type entryRefPayload struct {
	ID   int64                `json:"id"`
	Name models.LocalizedText `json:"name"`
}

type areaIndexPayload struct {
	pagedEnvelope
	Results []areaRefPayload `json:"results"`
}

type areaRefPayload struct {
	ID         int64                `json:"id"`
	Name       models.LocalizedText `json:"name"`
	Expansion  models.LocalizedText `json:"expansion"`
	IsSeasonal bool                 `json:"isSeasonal"`
}

type areaQuestsPayload struct {
	pagedEnvelope
	Quests []entryRefPayload `json:"quests"`
}

type characterIndexPayload struct {
	Characters []characterPayload `json:"characters"`
}

type characterPayload struct {
	ID    int64                `json:"id"`
	Name  models.LocalizedText `json:"name"`
	Realm models.LocalizedText `json:"realm"`
}

type characterProfessionsPayload struct {
	Professions []characterProfessionPayload `json:"professions"`
}

type characterProfessionPayload struct {
	Profession professionRefPayload   `json:"profession"`
	Tiers      []characterTierPayload `json:"tiers"`
}

type characterTierPayload struct {
	Tier         tierRefPayload    `json:"tier"`
	KnownRecipes []entryRefPayload `json:"knownRecipes"`
}

type completedQuestsPayload struct {
	pagedEnvelope
	Quests []entryRefPayload `json:"quests"`
}
