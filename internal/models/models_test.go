// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package models

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestGroupKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  GroupKey
		want string
	}{
		{"recipe group", RecipeGroup(164, 2437), "recipe:164:2437"},
		{"quest group", QuestGroup(10288), "quest:10288"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryGroup(t *testing.T) {
	recipe := &MasterCacheEntry{Kind: EntryKindRecipe, ProfessionID: 164, TierID: 2437}
	if got := recipe.Group(); got != RecipeGroup(164, 2437) {
		t.Errorf("recipe Group() = %v", got)
	}

	quest := &MasterCacheEntry{Kind: EntryKindQuest, AreaID: 10288}
	if got := quest.Group(); got != QuestGroup(10288) {
		t.Errorf("quest Group() = %v", got)
	}
}

func TestEntryCategory(t *testing.T) {
	recipe := &MasterCacheEntry{Kind: EntryKindRecipe, CategoryName: "Gadgets"}
	if recipe.Category() != "Gadgets" {
		t.Errorf("recipe Category() = %q", recipe.Category())
	}

	quest := &MasterCacheEntry{Kind: EntryKindQuest, AreaName: "Isle of Dorn"}
	if quest.Category() != "Isle of Dorn" {
		t.Errorf("quest Category() = %q", quest.Category())
	}
}

func TestOwnerScope(t *testing.T) {
	account := AccountScope("user-1")
	if !account.IsAccount() {
		t.Error("account scope should report IsAccount")
	}

	char := CharacterScope("user-1", 42)
	if char.IsAccount() {
		t.Error("character scope should not report IsAccount")
	}
}

func TestCatalogStatusStaleness(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	threshold := 7 * 24 * time.Hour

	empty := CatalogStatus{Kind: EntryKindRecipe}
	if !empty.StaleAfter(threshold, now) {
		t.Error("never-populated catalog should be stale")
	}

	fresh := CatalogStatus{TotalEntries: 10, LastCachedAt: now.Add(-time.Hour)}
	if fresh.StaleAfter(threshold, now) {
		t.Error("catalog refreshed an hour ago should not be stale")
	}

	old := CatalogStatus{TotalEntries: 10, LastCachedAt: now.Add(-8 * 24 * time.Hour)}
	if !old.StaleAfter(threshold, now) {
		t.Error("catalog refreshed 8 days ago should be stale")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobStatusQueued.Terminal() || JobStatusProcessing.Terminal() {
		t.Error("queued/processing must not be terminal")
	}
	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Error("completed/failed must be terminal")
	}
}

func TestJobPhaseRank(t *testing.T) {
	ordered := []JobPhase{
		PhaseStarting,
		PhaseFetchingCharacters,
		PhaseProcessingCharacters,
		PhaseUpdatingSummaries,
		PhaseTriggeringDiscovery,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("phase %s should rank above %s", ordered[i], ordered[i-1])
		}
	}
	if JobPhase("bogus").Rank() != -1 {
		t.Error("unknown phase should rank -1")
	}
}

func TestJobClone(t *testing.T) {
	j := &Job{
		ID:     "abc",
		Status: JobStatusProcessing,
		Errors: []string{"character 3: upstream timeout"},
	}

	c := j.Clone()
	c.Errors[0] = "mutated"
	c.Status = JobStatusFailed

	if j.Errors[0] != "character 3: upstream timeout" {
		t.Error("clone must not share the errors slice")
	}
	if j.Status != JobStatusProcessing {
		t.Error("clone must not alias the original")
	}
}

func TestLocalizedTextPlainString(t *testing.T) {
	var lt LocalizedText
	if err := json.Unmarshal([]byte(`"Arclight Spanner"`), &lt); err != nil {
		t.Fatalf("unmarshal plain string: %v", err)
	}
	if lt.String() != "Arclight Spanner" {
		t.Errorf("got %q", lt.String())
	}
}

func TestLocalizedTextLocaleMap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"prefers en_US", `{"de_DE":"Funkenschlüssel","en_US":"Arclight Spanner"}`, "Arclight Spanner"},
		{"falls back to en_GB", `{"en_GB":"Arclight Spanner","fr_FR":"Clé Arclight"}`, "Arclight Spanner"},
		{"deterministic fallback", `{"fr_FR":"Clé Arclight","de_DE":"Funkenschlüssel"}`, "Funkenschlüssel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lt LocalizedText
			if err := json.Unmarshal([]byte(tt.in), &lt); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if lt.String() != tt.want {
				t.Errorf("got %q, want %q", lt.String(), tt.want)
			}
		})
	}
}

func TestLocalizedTextUnresolvable(t *testing.T) {
	for _, in := range []string{`{}`, `{"en_US":""}`, `42`, `["a"]`} {
		var lt LocalizedText
		err := json.Unmarshal([]byte(in), &lt)
		if !errors.Is(err, ErrUnresolvableText) {
			t.Errorf("input %s: expected ErrUnresolvableText, got %v", in, err)
		}
	}
}

func TestLocalizedTextMarshalRoundTrip(t *testing.T) {
	lt := NewLocalizedText("Waking Shores")
	out, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"Waking Shores"` {
		t.Errorf("got %s", out)
	}
}
