// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New("test", time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("catalog:recipe", 42)
	v, ok := c.Get("catalog:recipe")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New("test", time.Minute)
	c.SetWithTTL("short", "value", 10*time.Millisecond)

	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry should be live before TTL")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("entry should expire after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New("test", time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry still readable")
	}
}

func TestDeleteAbsentKeyIsSafe(t *testing.T) {
	c := New("test", time.Minute)
	c.Delete("never-existed")
}

func TestGenerateKeyIsStable(t *testing.T) {
	type params struct {
		Kind string
		Page int
	}
	a := GenerateKey("status", params{Kind: "recipe", Page: 1})
	b := GenerateKey("status", params{Kind: "recipe", Page: 1})
	if a != b {
		t.Errorf("same params must hash identically: %s vs %s", a, b)
	}

	other := GenerateKey("status", params{Kind: "quest", Page: 1})
	if a == other {
		t.Error("different params must produce different keys")
	}
}

func TestOverwriteReplacesValue(t *testing.T) {
	c := New("test", time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)
	v, _ := c.Get("k")
	if v.(int) != 2 {
		t.Errorf("value = %v, want 2", v)
	}
}
