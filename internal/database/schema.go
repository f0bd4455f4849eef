// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package database

// schemaStatements creates the three durable tables. The job table is
// deliberately absent: jobs are in-memory only and clients re-enqueue after
// a restart (enqueue is idempotent per user scope).
var schemaStatements = []string{
	// Shared master catalog. One row per catalog item, keyed by the
	// upstream-stable id within its grouping. Recipe rows use the
	// profession/tier columns; quest rows use the area columns; the other
	// family's columns stay at zero values.
	`CREATE TABLE IF NOT EXISTS master_cache_entries (
		id BIGINT NOT NULL,
		kind VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		profession_id BIGINT NOT NULL DEFAULT 0,
		profession_name VARCHAR NOT NULL DEFAULT '',
		tier_id BIGINT NOT NULL DEFAULT 0,
		tier_name VARCHAR NOT NULL DEFAULT '',
		category_name VARCHAR NOT NULL DEFAULT '',
		area_id BIGINT NOT NULL DEFAULT 0,
		area_name VARCHAR NOT NULL DEFAULT '',
		expansion_name VARCHAR NOT NULL DEFAULT '',
		is_seasonal BOOLEAN NOT NULL DEFAULT FALSE,
		cached_at TIMESTAMP NOT NULL,
		PRIMARY KEY (kind, profession_id, tier_id, area_id, id)
	)`,

	// Per-user ownership facts. character_id = 0 means account (warband)
	// scope, used for quests. Grouping columns are denormalized so a
	// replace can delete exactly one grouping's rows in one statement.
	`CREATE TABLE IF NOT EXISTS ownership_records (
		user_id VARCHAR NOT NULL,
		character_id BIGINT NOT NULL DEFAULT 0,
		entry_id BIGINT NOT NULL,
		kind VARCHAR NOT NULL,
		profession_id BIGINT NOT NULL DEFAULT 0,
		tier_id BIGINT NOT NULL DEFAULT 0,
		area_id BIGINT NOT NULL DEFAULT 0,
		observed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, character_id, entry_id)
	)`,

	// Derived completion summaries, recomputed from the two tables above.
	// Written through in bulk after a population job; never hand-edited.
	`CREATE TABLE IF NOT EXISTS completion_summaries (
		user_id VARCHAR NOT NULL,
		group_key VARCHAR NOT NULL,
		total_available INTEGER NOT NULL,
		total_known INTEGER NOT NULL,
		completion_pct DOUBLE NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, group_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_master_cache_group
		ON master_cache_entries (kind, profession_id, tier_id, area_id)`,

	`CREATE INDEX IF NOT EXISTS idx_ownership_group
		ON ownership_records (user_id, kind, profession_id, tier_id, area_id)`,
}
