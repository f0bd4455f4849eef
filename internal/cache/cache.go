// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package cache provides a thread-safe in-memory TTL cache used to absorb
// catalog status polling. Status reads hit DuckDB aggregate queries; a
// short TTL keeps aggressive pollers from repeating the same scan.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/craftledger/internal/metrics"
)

// cleanupInterval is how often expired entries are swept in the
// background. Expiry is also enforced lazily on Get.
const cleanupInterval = 5 * time.Minute

// Entry is a cached item with its expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	name    string
}

// New creates a cache with a default TTL. name labels the cache in
// metrics. A background goroutine sweeps expired entries for the life of
// the process.
func New(name string, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		name:    name,
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value, enforcing expiry lazily.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		metrics.RecordCacheAccess(c.name, false)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		metrics.RecordCacheAccess(c.name, false)
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		return nil, false
	}

	metrics.RecordCacheAccess(c.name, true)
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes one entry. Safe to call for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry, used after a population job writes fresh
// catalog data so pollers see the new state immediately.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		}
	}
}

// GenerateKey builds a stable cache key from a method name and its
// parameters. Parameters are serialized and hashed so arbitrary structs
// produce consistent, bounded-length keys.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return method
	}
	return fmt.Sprintf("%s:%x", method, sha256.Sum256(data))
}
