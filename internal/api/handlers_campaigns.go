// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/metrics"
	"github.com/tunescale/tunescale/internal/models"
	"github.com/tunescale/tunescale/internal/validation"
)

type createCampaignRequest struct {
	Slug  string `json:"slug" validate:"required,min=1,max=128"`
	Title string `json:"title" validate:"required,min=1,max=512"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	var req createCampaignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, errs.Invalid("%s", err))
		return
	}

	campaign := &models.Campaign{
		OrgID: session.OrgID,
		Slug:  req.Slug,
		Title: req.Title,
	}
	if err := s.db.InsertCampaign(r.Context(), campaign); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, campaign, started)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	campaign, err := s.db.GetCampaignBySlug(r.Context(), session.OrgID, chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, campaign, started)
}

type overrideGenreRequest struct {
	Genre string `json:"genre" validate:"required,min=1,max=64"`
}

// handleOverrideGenre applies a manual genre label. Manual overrides
// always win: they overwrite pipeline-assigned labels and the pipeline
// never touches them afterwards.
func (s *Server) handleOverrideGenre(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req overrideGenreRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, errs.Invalid("%s", err))
		return
	}

	_, err := s.db.AssignCampaignGenre(r.Context(), session.OrgID, slug, req.Genre,
		models.GenreSourceManual, models.ConfidenceHigh)
	if err != nil {
		respondError(w, r, err)
		return
	}
	metrics.CampaignsClassifiedTotal.WithLabelValues(string(models.GenreSourceManual)).Inc()

	campaign, err := s.db.GetCampaignBySlug(r.Context(), session.OrgID, slug)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, campaign, started)
}
