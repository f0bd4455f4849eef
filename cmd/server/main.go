// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package main is the entry point for the Craftledger server.
//
// Craftledger tracks crafting-recipe and quest completion for game
// accounts: a shared master catalog is populated from the upstream game
// API, per-user ownership is reconciled against it by asynchronous
// population jobs, and completion analytics are served over HTTP.
//
// The server initializes components in order:
//
//  1. Configuration: koanf v2 layered loading (defaults, YAML, env)
//  2. Database: DuckDB with master cache, ownership, and summary tables
//  3. Upstream client: rate-limited, circuit-broken game API client
//  4. Job manager: single-worker FIFO population pipeline
//  5. Scheduler: periodic catalog staleness check (optional)
//  6. HTTP server: REST API plus /metrics
//
// All long-running components run under a suture/v4 supervision tree;
// SIGINT/SIGTERM trigger graceful shutdown with a bounded drain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/craftledger/internal/api"
	"github.com/tomtom215/craftledger/internal/cache"
	"github.com/tomtom215/craftledger/internal/completion"
	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/database"
	"github.com/tomtom215/craftledger/internal/jobs"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/scheduler"
	"github.com/tomtom215/craftledger/internal/supervisor"
	"github.com/tomtom215/craftledger/internal/supervisor/services"
	"github.com/tomtom215/craftledger/internal/upstream"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("upstream_region", cfg.Upstream.Region).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Starting Craftledger")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	client := upstream.NewBreakerClient(&cfg.Upstream)
	if err := client.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Upstream API not reachable at startup (jobs will retry)")
	}

	runner := jobs.NewPopulationRunner(db, client, cfg)
	manager := jobs.NewManager(&cfg.Jobs, runner)

	engine := completion.New(db)
	statusCache := cache.New("catalog-status", cfg.API.StatusCacheTTL)
	handler := api.NewHandler(db, manager, engine, statusCache)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddWorkerService(services.NewWorkerService("job-manager", manager))
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(&cfg.Scheduler, db, manager)
		tree.AddWorkerService(services.NewWorkerService("refresh-scheduler", sched))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go trackUptime(ctx)

	logging.Info().Str("addr", server.Addr).Msg("Serving")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("Shutdown complete")
}

func trackUptime(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
