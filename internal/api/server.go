// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/authz"
	"github.com/tunescale/tunescale/internal/cache"
	"github.com/tunescale/tunescale/internal/classify"
	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/database"
	"github.com/tunescale/tunescale/internal/events"
	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/recommend"
)

// Server bundles the HTTP surface and its collaborators.
type Server struct {
	cfg      *config.Config
	db       *database.DB
	pipeline *classify.Pipeline
	engine   *recommend.Engine
	cache    *cache.Cache
	verifier *auth.Verifier
	enforcer *authz.Enforcer
	events   *events.Publisher

	httpServer *http.Server
}

// NewServer wires the HTTP server. events may be nil.
func NewServer(
	cfg *config.Config,
	db *database.DB,
	pipeline *classify.Pipeline,
	engine *recommend.Engine,
	readCache *cache.Cache,
	verifier *auth.Verifier,
	enforcer *authz.Enforcer,
	publisher *events.Publisher,
) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		pipeline: pipeline,
		engine:   engine,
		cache:    readCache,
		verifier: verifier,
		enforcer: enforcer,
		events:   publisher,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Serve blocks until ctx is canceled, then drains in-flight requests.
// Implements suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return ctx.Err()
	}
}

func (s *Server) String() string { return "api.Server" }
