// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/metrics"
	"github.com/tunescale/tunescale/internal/models"
	"github.com/tunescale/tunescale/internal/recommend"
	"github.com/tunescale/tunescale/internal/validation"
)

type generateRecommendationsRequest struct {
	Objective       string   `json:"objective" validate:"max=256"`
	Budget          float64  `json:"budget" validate:"gte=0"`
	RiskMode        string   `json:"risk_mode" validate:"omitempty,oneof=manual hybrid auto"`
	GenreFilters    []string `json:"genre_filters" validate:"dive,min=1,max=64"`
	PlatformFilters []string `json:"platform_filters" validate:"dive,min=1,max=32"`
	Limit           int      `json:"limit" validate:"gte=0"`
	PerCreatorCap   float64  `json:"per_creator_cap" validate:"gte=0"`
	Persist         bool     `json:"persist"`
}

func (s *Server) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req generateRecommendationsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, errs.Invalid("%s", err))
		return
	}

	opts := recommend.Options{
		Objective:       req.Objective,
		Budget:          req.Budget,
		RiskMode:        models.RiskMode(req.RiskMode),
		GenreFilters:    req.GenreFilters,
		PlatformFilters: req.PlatformFilters,
		Limit:           req.Limit,
		PerCreatorCap:   req.PerCreatorCap,
		Persist:         req.Persist,
	}

	result, err := s.engine.Generate(r.Context(), *session, slug, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	metrics.RecommendationRunsTotal.WithLabelValues(string(result.RiskMode)).Inc()

	if result.Persisted && s.events != nil {
		s.events.PublishRecommendationGenerated(&models.RecommendationRun{
			ID:           result.RunID,
			OrgID:        session.OrgID,
			CampaignSlug: result.CampaignSlug,
			Objective:    result.Objective,
			Budget:       result.Budget,
			RiskMode:     result.RiskMode,
			GeneratedAt:  result.GeneratedAt,
		})
	}
	respond(w, r, http.StatusOK, result, started)
}

func (s *Server) handleGetRecommendationRun(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, errs.Invalid("malformed run id"))
		return
	}

	run, recs, err := s.db.GetRecommendationRun(r.Context(), session.OrgID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, struct {
		Run             *models.RecommendationRun `json:"run"`
		Recommendations []models.Recommendation   `json:"recommendations"`
	}{Run: run, Recommendations: recs}, started)
}
