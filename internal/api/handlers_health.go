// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package api

import (
	"net/http"
	"time"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"}, time.Now())
}

// handleReadyz verifies the database is reachable before reporting ready.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if err := s.db.Ping(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"status": "ready"}, started)
}
