// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/craftledger/internal/models"
)

// Catalog errors
var (
	// ErrUpstreamDataInvalid indicates a catalog entry arrived without a
	// stable upstream id or a resolvable name. The whole upsert is
	// rejected so a malformed page never replaces good data.
	ErrUpstreamDataInvalid = errors.New("catalog entry missing stable id or name")

	// ErrUnknownKind indicates an unrecognized catalog kind.
	ErrUnknownKind = errors.New("unknown catalog kind")
)

// UpsertEntries replaces all catalog entries for the given grouping with
// the provided set. The replace is delete-then-insert inside a single
// transaction, so a partially fetched category never leaves stale and
// fresh rows mixed, and concurrent readers never observe a half-replaced
// grouping.
func (db *DB) UpsertEntries(ctx context.Context, group models.GroupKey, entries []models.MasterCacheEntry) error {
	defer observeQuery("upsert", "master_cache_entries", time.Now())

	if !group.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, group.Kind)
	}
	for i := range entries {
		if entries[i].ID == 0 || entries[i].Name == "" {
			return fmt.Errorf("%w: entry %d in group %s", ErrUpstreamDataInvalid, i, group)
		}
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM master_cache_entries
		 WHERE kind = ? AND profession_id = ? AND tier_id = ? AND area_id = ?`,
		string(group.Kind), group.ProfessionID, group.TierID, group.AreaID,
	); err != nil {
		return fmt.Errorf("failed to clear grouping %s: %w", group, err)
	}

	now := time.Now().UTC()
	for i := range entries {
		e := &entries[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO master_cache_entries (
				id, kind, name,
				profession_id, profession_name, tier_id, tier_name, category_name,
				area_id, area_name, expansion_name, is_seasonal,
				cached_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(group.Kind), e.Name,
			group.ProfessionID, e.ProfessionName, group.TierID, e.TierName, e.CategoryName,
			group.AreaID, e.AreaName, e.ExpansionName, e.IsSeasonal,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert entry %d in group %s: %w", e.ID, group, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert for group %s: %w", group, err)
	}
	return nil
}

// ClearAll wipes every entry of the given kind. This is a corruption
// recovery escape hatch for operators, not part of the normal refresh
// path; the delete is a single atomic statement.
func (db *DB) ClearAll(ctx context.Context, kind models.EntryKind) error {
	defer observeQuery("delete", "master_cache_entries", time.Now())

	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM master_cache_entries WHERE kind = ?`, string(kind),
	); err != nil {
		return fmt.Errorf("failed to clear catalog kind %s: %w", kind, err)
	}
	return nil
}

// CatalogStatus reports entry count, last refresh time, and distinct
// grouping count for one catalog kind, for staleness checks and the
// status endpoint.
func (db *DB) CatalogStatus(ctx context.Context, kind models.EntryKind) (models.CatalogStatus, error) {
	defer observeQuery("select", "master_cache_entries", time.Now())

	status := models.CatalogStatus{Kind: kind}
	if !kind.Valid() {
		return status, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var lastCached sql.NullTime
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        MAX(cached_at),
		        COUNT(DISTINCT profession_id || ':' || tier_id || ':' || area_id)
		 FROM master_cache_entries WHERE kind = ?`,
		string(kind),
	).Scan(&status.TotalEntries, &lastCached, &status.DistinctGroups)
	if err != nil {
		return status, fmt.Errorf("failed to read catalog status for %s: %w", kind, err)
	}
	if lastCached.Valid {
		status.LastCachedAt = lastCached.Time
	}
	return status, nil
}

// EntriesForGroup returns all catalog entries in a grouping, ordered by
// (category, name) ascending, case-sensitive, matching the stable ordering
// the completion engine promises.
func (db *DB) EntriesForGroup(ctx context.Context, group models.GroupKey) ([]models.MasterCacheEntry, error) {
	defer observeQuery("select", "master_cache_entries", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, kind, name,
		        profession_id, profession_name, tier_id, tier_name, category_name,
		        area_id, area_name, expansion_name, is_seasonal, cached_at
		 FROM master_cache_entries
		 WHERE kind = ? AND profession_id = ? AND tier_id = ? AND area_id = ?
		 ORDER BY CASE WHEN kind = 'quest' THEN area_name ELSE category_name END ASC,
		          name ASC`,
		string(group.Kind), group.ProfessionID, group.TierID, group.AreaID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for group %s: %w", group, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Groups returns every distinct grouping key present for a kind, used by
// the account-wide coverage computation to walk the full catalog.
func (db *DB) Groups(ctx context.Context, kind models.EntryKind) ([]models.GroupKey, error) {
	defer observeQuery("select", "master_cache_entries", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT profession_id, tier_id, area_id
		 FROM master_cache_entries
		 WHERE kind = ?
		 ORDER BY profession_id, tier_id, area_id`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for %s: %w", kind, err)
	}
	defer rows.Close()

	var groups []models.GroupKey
	for rows.Next() {
		g := models.GroupKey{Kind: kind}
		if err := rows.Scan(&g.ProfessionID, &g.TierID, &g.AreaID); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

func scanEntries(rows *sql.Rows) ([]models.MasterCacheEntry, error) {
	entries := make([]models.MasterCacheEntry, 0)
	for rows.Next() {
		var e models.MasterCacheEntry
		var kind string
		if err := rows.Scan(
			&e.ID, &kind, &e.Name,
			&e.ProfessionID, &e.ProfessionName, &e.TierID, &e.TierName, &e.CategoryName,
			&e.AreaID, &e.AreaName, &e.ExpansionName, &e.IsSeasonal, &e.CachedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		e.Kind = models.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog entries: %w", err)
	}
	return entries, nil
}

func rollbackQuietly(tx *sql.Tx) {
	// Rollback after a successful commit returns sql.ErrTxDone; anything
	// else is worth a log line.
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logWarnRollback(err)
	}
}
