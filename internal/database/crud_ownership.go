// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/craftledger/internal/models"
)

// ReplaceOwnership replaces the ownership set for one scope and grouping
// with the provided entry ids. This is a snapshot replace, not an
// accumulate: the upstream API returns the full known-set on every sync,
// so prior rows for the exact grouping are deleted and the new set
// inserted inside one transaction. Readers never observe the transient
// empty state mid-replace.
//
// Re-observing an entry is idempotent: the delete-and-insert refreshes
// observed_at and nothing else changes.
func (db *DB) ReplaceOwnership(ctx context.Context, scope models.OwnerScope, group models.GroupKey, entryIDs []int64) error {
	defer observeQuery("upsert", "ownership_records", time.Now())

	if !group.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, group.Kind)
	}
	if scope.UserID == "" {
		return fmt.Errorf("ownership replace requires a user id")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ownership transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ownership_records
		 WHERE user_id = ? AND character_id = ?
		   AND kind = ? AND profession_id = ? AND tier_id = ? AND area_id = ?`,
		scope.UserID, scope.CharacterID,
		string(group.Kind), group.ProfessionID, group.TierID, group.AreaID,
	); err != nil {
		return fmt.Errorf("failed to clear ownership for %s/%s: %w", scope.UserID, group, err)
	}

	now := time.Now().UTC()
	for _, id := range entryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ownership_records (
				user_id, character_id, entry_id,
				kind, profession_id, tier_id, area_id, observed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			scope.UserID, scope.CharacterID, id,
			string(group.Kind), group.ProfessionID, group.TierID, group.AreaID, now,
		); err != nil {
			return fmt.Errorf("failed to insert ownership of entry %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ownership replace: %w", err)
	}
	return nil
}

// OwnedIDs returns the set of entry ids owned under the exact scope and
// grouping.
func (db *DB) OwnedIDs(ctx context.Context, scope models.OwnerScope, group models.GroupKey) (map[int64]struct{}, error) {
	defer observeQuery("select", "ownership_records", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT entry_id FROM ownership_records
		 WHERE user_id = ? AND character_id = ?
		   AND kind = ? AND profession_id = ? AND tier_id = ? AND area_id = ?`,
		scope.UserID, scope.CharacterID,
		string(group.Kind), group.ProfessionID, group.TierID, group.AreaID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned ids: %w", err)
	}
	defer rows.Close()

	return scanIDSet(rows)
}

// AccountOwnedIDs returns the union of entry ids owned by any of the
// user's characters (and the account scope itself) for a grouping. Used
// by account-wide completion: an entry is missing account-wide only when
// no character at all has it.
func (db *DB) AccountOwnedIDs(ctx context.Context, userID string, group models.GroupKey) (map[int64]struct{}, error) {
	defer observeQuery("select", "ownership_records", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT entry_id FROM ownership_records
		 WHERE user_id = ?
		   AND kind = ? AND profession_id = ? AND tier_id = ? AND area_id = ?`,
		userID,
		string(group.Kind), group.ProfessionID, group.TierID, group.AreaID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account owned ids: %w", err)
	}
	defer rows.Close()

	return scanIDSet(rows)
}

func scanIDSet(rows *sql.Rows) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry ids: %w", err)
	}
	return ids, nil
}
