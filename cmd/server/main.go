// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package main is the entry point for the Tunescale server.
//
// Tunescale scores content creators for marketing campaigns: a genre
// classification pipeline labels campaigns from their titles (with an
// optional external search fallback), and a recommendation engine ranks
// creators against a campaign under a budget, with human swipe feedback
// folded back into future rankings.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config.yaml, and
//     TUNESCALE_* environment variables (Koanf v2)
//  2. Database: DuckDB with the scoring schema
//  3. Taxonomy: genre keyword tables, embedded or from file
//  4. Classification: heuristic classifier, run tracker, pipeline
//  5. Search resolver (optional): rate-limited, circuit-broken HTTP client
//  6. Recommendation engine
//  7. Events (optional): NATS JetStream publisher, embeddable in-process
//  8. HTTP server: REST API under a suture supervision tree
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, then the cache, events transport, and database are
// closed in that order.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/api"
	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/authz"
	"github.com/tunescale/tunescale/internal/cache"
	"github.com/tunescale/tunescale/internal/classify"
	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/database"
	"github.com/tunescale/tunescale/internal/events"
	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/recommend"
	"github.com/tunescale/tunescale/internal/search"
	"github.com/tunescale/tunescale/internal/supervisor"
	"github.com/tunescale/tunescale/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("database close failed")
		}
	}()

	tax, err := loadTaxonomy(cfg)
	if err != nil {
		return err
	}

	publisher, closeEvents, err := events.New(&cfg.Events)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEvents(); err != nil {
			logging.Error().Err(err).Msg("events close failed")
		}
	}()

	var resolver classify.Resolver
	if cfg.Search.Enabled {
		resolver = search.NewHTTPResolver(cfg.Search, logger)
	}

	classifier := classify.NewClassifier(tax, cfg.Classify)
	tracker := classify.NewTracker(db, logger)
	pipeline := classify.NewPipeline(db, classifier, tracker, resolver, publisher, cfg.Classify, logger)

	engine, err := recommend.NewEngine(db, cfg.Recommend, logger)
	if err != nil {
		return err
	}

	store, err := buildCacheStore(cfg)
	if err != nil {
		return err
	}
	readCache := cache.New(&cfg.Cache, store)
	defer func() {
		if err := readCache.Close(); err != nil {
			logging.Error().Err(err).Msg("cache close failed")
		}
	}()

	verifier, err := auth.NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
		return err
	}
	enforcer, err := authz.New(&cfg.Security)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, db, pipeline, engine, readCache, verifier, enforcer, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(slogLogger(logger), supervisor.DefaultTreeConfig())
	tree.AddAPIService(server)

	logging.Info().Str("environment", cfg.Server.Environment).Msg("tunescale starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("tunescale stopped")
	return nil
}

func loadTaxonomy(cfg *config.Config) (*taxonomy.Store, error) {
	if cfg.Classify.TaxonomyPath != "" {
		return taxonomy.LoadFile(cfg.Classify.TaxonomyPath)
	}
	return taxonomy.Default(), nil
}

func buildCacheStore(cfg *config.Config) (cache.Store, error) {
	maxAge := cfg.Cache.TTL + cfg.Cache.StaleTTL
	if cfg.Cache.Store == "badger" {
		return cache.NewBadgerStore(cfg.Cache.BadgerPath, maxAge)
	}
	return cache.NewMemoryStore(maxAge), nil
}

// slogLogger adapts the zerolog root logger for sutureslog, which speaks
// slog.
func slogLogger(logger zerolog.Logger) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(logger.GetLevel()),
	}))
}

func slogLevel(level zerolog.Level) slog.Level {
	switch {
	case level <= zerolog.DebugLevel:
		return slog.LevelDebug
	case level == zerolog.InfoLevel:
		return slog.LevelInfo
	case level == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
