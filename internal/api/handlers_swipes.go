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
	"github.com/tunescale/tunescale/internal/validation"
)

type recordSwipeRequest struct {
	Action string `json:"action" validate:"required,oneof=left right maybe"`
	Note   string `json:"note" validate:"max=512"`
}

// handleRecordSwipe upserts a decision for a (run, creator) pair. A
// repeat decision overwrites the prior one; the latest decision is what
// feedback aggregation sees.
func (s *Server) handleRecordSwipe(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, errs.Invalid("malformed run id"))
		return
	}
	creatorID, err := uuid.Parse(chi.URLParam(r, "creatorID"))
	if err != nil {
		respondError(w, r, errs.Invalid("malformed creator id"))
		return
	}

	var req recordSwipeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondError(w, r, errs.Invalid("%s", err))
		return
	}

	swipe := &models.Swipe{
		RunID:     runID,
		CreatorID: creatorID,
		Action:    models.SwipeAction(req.Action),
		Note:      req.Note,
	}
	if err := s.db.UpsertSwipe(r.Context(), session.OrgID, swipe); err != nil {
		respondError(w, r, err)
		return
	}
	metrics.SwipesTotal.WithLabelValues(req.Action).Inc()

	if s.events != nil {
		s.events.PublishSwipeRecorded(session.OrgID, swipe)
	}
	respond(w, r, http.StatusOK, swipe, started)
}

func (s *Server) handleListSwipes(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, errs.Invalid("malformed run id"))
		return
	}

	swipes, err := s.db.ListSwipes(r.Context(), session.OrgID, runID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if swipes == nil {
		swipes = []models.Swipe{}
	}
	respond(w, r, http.StatusOK, swipes, started)
}
