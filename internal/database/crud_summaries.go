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

// ErrSummaryNotFound indicates no materialized summary exists for the
// user/group pair. Callers fall back to recomputing from the stores.
var ErrSummaryNotFound = errors.New("completion summary not found")

// UpsertSummaries writes a batch of derived completion summaries for one
// user, replacing any prior row per group key. Called by the job runner
// during the updating_summaries phase (write-through), never by hand.
func (db *DB) UpsertSummaries(ctx context.Context, userID string, summaries []models.CompletionSummary) error {
	defer observeQuery("upsert", "completion_summaries", time.Now())

	if len(summaries) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	now := time.Now().UTC()
	for i := range summaries {
		s := &summaries[i]
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM completion_summaries WHERE user_id = ? AND group_key = ?`,
			userID, s.GroupKey,
		); err != nil {
			return fmt.Errorf("failed to clear summary %s: %w", s.GroupKey, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO completion_summaries (
				user_id, group_key, total_available, total_known, completion_pct, updated_at
			) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, s.GroupKey, s.TotalAvailable, s.TotalKnown, s.CompletionPct, now,
		); err != nil {
			return fmt.Errorf("failed to insert summary %s: %w", s.GroupKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit summaries: %w", err)
	}
	return nil
}

// SummaryFor returns the materialized summary for a user/group pair.
func (db *DB) SummaryFor(ctx context.Context, userID, groupKey string) (*models.CompletionSummary, error) {
	defer observeQuery("select", "completion_summaries", time.Now())

	s := &models.CompletionSummary{UserID: userID}
	err := db.conn.QueryRowContext(ctx,
		`SELECT group_key, total_available, total_known, completion_pct, updated_at
		 FROM completion_summaries WHERE user_id = ? AND group_key = ?`,
		userID, groupKey,
	).Scan(&s.GroupKey, &s.TotalAvailable, &s.TotalKnown, &s.CompletionPct, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary %s/%s: %w", userID, groupKey, err)
	}
	return s, nil
}

// SummariesForUser lists all materialized summaries for a user, ordered by
// group key for stable dashboard rendering.
func (db *DB) SummariesForUser(ctx context.Context, userID string) ([]models.CompletionSummary, error) {
	defer observeQuery("select", "completion_summaries", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT group_key, total_available, total_known, completion_pct, updated_at
		 FROM completion_summaries WHERE user_id = ? ORDER BY group_key`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries for %s: %w", userID, err)
	}
	defer rows.Close()

	summaries := make([]models.CompletionSummary, 0)
	for rows.Next() {
		s := models.CompletionSummary{UserID: userID}
		if err := rows.Scan(&s.GroupKey, &s.TotalAvailable, &s.TotalKnown, &s.CompletionPct, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summaries: %w", err)
	}
	return summaries, nil
}
