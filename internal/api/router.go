// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tunescale/tunescale/internal/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)

	if len(s.cfg.Security.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Security.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if !s.cfg.Security.RateLimitDisabled {
		window := s.cfg.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, window))
	}

	// Unauthenticated operational endpoints.
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.verifier.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("campaigns", "read"))
			r.Get("/campaigns/{slug}", s.handleGetCampaign)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("campaigns", "write"))
			r.Post("/campaigns", s.handleCreateCampaign)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("classification", "write"))
			r.Put("/campaigns/{slug}/genre", s.handleOverrideGenre)
			r.Post("/classification/runs", s.handleStartClassification)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("classification", "read"))
			r.Get("/classification/runs", s.handleListClassificationRuns)
			r.Get("/classification/runs/{id}", s.handleGetClassificationRun)
			r.Get("/classification/health", s.handleClassificationHealth)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("creators", "write"))
			r.Post("/creators", s.handleCreateCreator)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("creators", "read"))
			r.Get("/creators", s.handleListCreators)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("recommendations", "write"))
			r.Post("/campaigns/{slug}/recommendations", s.handleGenerateRecommendations)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("recommendations", "read"))
			r.Get("/recommendations/{runID}", s.handleGetRecommendationRun)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.enforcer.Require("swipes", "write"))
			r.Put("/recommendations/{runID}/swipes/{creatorID}", s.handleRecordSwipe)
			r.Get("/recommendations/{runID}/swipes", s.handleListSwipes)
		})
	})

	return r
}
