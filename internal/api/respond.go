// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package api exposes the HTTP surface of the scoring core: campaign and
// creator ingestion, classification runs and health, recommendation
// generation, and swipe capture. Every response uses the APIResponse
// envelope.
package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/models"
)

// respond writes a success envelope.
func respond(w http.ResponseWriter, r *http.Request, status int, data any, started time.Time) {
	respondMeta(w, r, status, data, models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(started).Milliseconds(),
	})
}

// respondCached writes a success envelope flagged as cache-served.
func respondCached(w http.ResponseWriter, r *http.Request, raw []byte, stale bool) {
	w.Header().Set("Content-Type", "application/json")
	if stale {
		w.Header().Set("X-Cache", "stale")
	} else {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("response write failed")
	}
}

func respondMeta(w http.ResponseWriter, r *http.Request, status int, data any, meta models.Metadata) {
	body := models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	}
	writeJSON(w, r, status, &body)
}

// respondError maps domain sentinel errors onto HTTP status codes and a
// structured error payload. Internal details never leak to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal error"

	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
		code = "VALIDATION_ERROR"
		message = err.Error()
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
		message = err.Error()
	case errors.Is(err, errs.ErrRunAlreadyActive):
		status = http.StatusConflict
		code = "RUN_ALREADY_ACTIVE"
		message = "a classification run is already active for this org"
	case errors.Is(err, errs.ErrTimeout):
		status = http.StatusGatewayTimeout
		code = "TIMEOUT"
		message = "operation timed out"
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	body := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	writeJSON(w, r, status, &body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("response encode failed")
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields and oversized payloads.
func decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Invalid("malformed request body")
	}
	return nil
}
