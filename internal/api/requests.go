// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/craftledger/internal/models"
)

// Request parsing errors surfaced as VALIDATION_ERROR responses.
var (
	ErrInvalidKind     = errors.New("kind must be recipe or quest")
	ErrInvalidGroupKey = errors.New("grouping key must be recipe:<professionId>:<tierId> or quest:<areaId>")
)

// EnqueueJobRequest is the POST /jobs/catalog-population body.
type EnqueueJobRequest struct {
	UserScope string `json:"user_scope" validate:"required,min=1,max=128"`
}

// MissingEntry is one catalog entry absent from the user's ownership,
// trimmed to the fields the dashboard renders.
type MissingEntry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// CompletionResponse is the GET /completion payload.
type CompletionResponse struct {
	UserScope            string         `json:"user_scope"`
	GroupKey             string         `json:"group_key"`
	TotalAvailable       int            `json:"total_available"`
	TotalKnown           int            `json:"total_known"`
	CompletionPercentage float64        `json:"completion_percentage"`
	Missing              []MissingEntry `json:"missing"`
}

// ParseKind parses the {kind} path parameter.
func ParseKind(s string) (models.EntryKind, error) {
	kind := models.EntryKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return kind, nil
}

// ParseGroupKey parses the canonical textual grouping key, the inverse of
// models.GroupKey.String:
//
//	recipe:164:2437  ->  profession 164, tier 2437
//	quest:10288      ->  area 10288
func ParseGroupKey(s string) (models.GroupKey, error) {
	parts := strings.Split(s, ":")

	switch {
	case len(parts) == 3 && parts[0] == string(models.EntryKindRecipe):
		professionID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || professionID <= 0 {
			return models.GroupKey{}, fmt.Errorf("%w: bad profession id %q", ErrInvalidGroupKey, parts[1])
		}
		tierID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || tierID <= 0 {
			return models.GroupKey{}, fmt.Errorf("%w: bad tier id %q", ErrInvalidGroupKey, parts[2])
		}
		return models.RecipeGroup(professionID, tierID), nil

	case len(parts) == 2 && parts[0] == string(models.EntryKindQuest):
		areaID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || areaID <= 0 {
			return models.GroupKey{}, fmt.Errorf("%w: bad area id %q", ErrInvalidGroupKey, parts[1])
		}
		return models.QuestGroup(areaID), nil

	default:
		return models.GroupKey{}, fmt.Errorf("%w: %q", ErrInvalidGroupKey, s)
	}
}
