// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/cache"
	"github.com/tunescale/tunescale/internal/classify"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

// handleStartClassification triggers a batch run for the caller's org.
// The batch continues in the background; 202 carries the run to poll.
// A concurrent run yields 409.
func (s *Server) handleStartClassification(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	run, err := s.pipeline.Start(r.Context(), *session)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusAccepted, run, started)
}

func (s *Server) handleGetClassificationRun(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, errs.Invalid("malformed run id"))
		return
	}

	run, err := s.db.GetClassificationRun(r.Context(), session.OrgID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, run, started)
}

func (s *Server) handleListClassificationRuns(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(w, r, errs.Invalid("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	runs, err := s.db.RecentClassificationRuns(r.Context(), session.OrgID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.ClassificationRun{}
	}
	respond(w, r, http.StatusOK, runs, started)
}

// handleClassificationHealth serves the coverage and run-history view.
// The view is expensive to assemble, so it is cached per org and role
// with stale-while-revalidate semantics.
func (s *Server) handleClassificationHealth(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	session := auth.SessionFromContext(r.Context())

	key := cache.Key(session.OrgID, session.Role, "classification-health")
	raw, stale, err := s.cache.Get(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		health, err := classify.HealthReport(ctx, s.db, session.OrgID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(models.APIResponse{
			Status: "success",
			Data:   health,
			Metadata: models.Metadata{
				Timestamp:   time.Now().UTC(),
				QueryTimeMS: time.Since(started).Milliseconds(),
				Cached:      true,
			},
		})
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCached(w, r, raw, stale)
}
