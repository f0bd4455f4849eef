// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// ErrUnresolvableText indicates a localized name object carried no usable
// string. Entries with unresolvable names are treated as corrupt upstream
// data: skipped with a warning, never fatal to the job.
var ErrUnresolvableText = errors.New("localized text has no resolvable value")

// localePreference lists locales tried in order when resolving a
// localized-map payload. Falls back to the lexicographically first key so
// resolution stays deterministic for unexpected locale sets.
var localePreference = []string{"en_US", "en_GB"}

// LocalizedText resolves the upstream API's polymorphic name shape into a
// single canonical string at decode time. The upstream returns either a
// plain string or a locale map:
//
//	"name": "Arclight Spanner"
//	"name": {"en_US": "Arclight Spanner", "de_DE": "Funkenschlüssel"}
//
// Resolution happens exactly once, during ingestion; every read afterwards
// sees a plain string.
type LocalizedText struct {
	value string
}

// NewLocalizedText wraps an already-resolved string, mainly for tests.
func NewLocalizedText(s string) LocalizedText {
	return LocalizedText{value: s}
}

// String returns the resolved canonical value.
func (t LocalizedText) String() string {
	return t.value
}

// IsZero reports whether no value was resolved.
func (t LocalizedText) IsZero() bool {
	return t.value == ""
}

// UnmarshalJSON accepts either a plain string or a locale map.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		t.value = plain
		return nil
	}

	var byLocale map[string]string
	if err := json.Unmarshal(data, &byLocale); err != nil {
		return fmt.Errorf("%w: unexpected shape %s", ErrUnresolvableText, truncate(data, 64))
	}

	for _, locale := range localePreference {
		if v, ok := byLocale[locale]; ok && v != "" {
			t.value = v
			return nil
		}
	}

	// No preferred locale present: pick the first non-empty value in key
	// order so repeated ingestions resolve identically.
	keys := make([]string, 0, len(byLocale))
	for k := range byLocale {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if byLocale[k] != "" {
			t.value = byLocale[k]
			return nil
		}
	}

	return ErrUnresolvableText
}

// MarshalJSON emits the resolved string.
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
