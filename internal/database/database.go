// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package database provides the durable stores backing Craftledger: the
// shared master catalog cache, per-user ownership records, and derived
// completion summaries, all in an embedded DuckDB database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
)

// DB wraps the DuckDB connection and provides data access methods.
//
// The master cache and ownership tables are shared mutable state for the
// whole process: the job worker loop is the only writer of catalog rows,
// and ownership rows are only ever replaced within a single user's scope,
// so per-grouping transactional replaces are the only isolation needed.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database, configures the connection pool, and initializes
// the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	// 0750 per gosec G301.
	if cfg.Path != ":memory:" {
		if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database initialized")
	return db, nil
}

// configureConnectionPool tunes the sql.DB pool for DuckDB. DuckDB is an
// embedded engine; a small pool avoids CGO-level contention while still
// letting read paths overlap the single writer.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
}

// initialize creates the schema if it does not exist.
func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Conn returns the underlying SQL connection, for callers that need direct
// access (health checks).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// observeQuery records query duration metrics for the given operation.
func observeQuery(operation, table string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}

func logWarnRollback(err error) {
	logging.Warn().Err(err).Msg("Transaction rollback failed")
}
