// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"net/http"
	"time"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
	"github.com/tunescale/tunescale/internal/validation"
)

type createCreatorRequest struct {
	Handle      string             `json:"handle" validate:"required,min=2,max=64"`
	DisplayName string             `json:"display_name" validate:"max=128"`
	Platforms   []string           `json:"platforms" validate:"dive,min=1,max=32"`
	Agency      string             `json:"agency" validate:"max=128"`
	GenreMix    map[string]float64 `json:"genre_mix" validate:"dive,gte=0,lte=1"`
	TotalViews  int64              `json:"total_views" validate:"gte=0"`
	TotalPosts  int64              `json:"total_posts" validate:"gte=0"`
	CostToDate  float64            `json:"cost_to_date" validate:"gte=0"`
	SuccessRate float64            `json:"success_rate" validate:"gte=0,lte=1"`
}

func (s *Server) handleCreateCreator(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	var req createCreatorRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, errs.Invalid("%s", err))
		return
	}

	creator := &models.Creator{
		OrgID:       session.OrgID,
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Platforms:   req.Platforms,
		Agency:      req.Agency,
		GenreMix:    req.GenreMix,
		TotalViews:  req.TotalViews,
		TotalPosts:  req.TotalPosts,
		CostToDate:  req.CostToDate,
		SuccessRate: req.SuccessRate,
	}
	if err := s.db.InsertCreator(r.Context(), creator); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, creator, started)
}

func (s *Server) handleListCreators(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	q := r.URL.Query()
	creators, err := s.db.ListCreators(r.Context(), session.OrgID, q["genre"], q["platform"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	if creators == nil {
		creators = []models.Creator{}
	}
	respond(w, r, http.StatusOK, creators, started)
}
