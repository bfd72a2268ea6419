// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package middleware holds the HTTP middleware shared across routes.
package middleware

import (
	"net/http"

	"github.com/tunescale/tunescale/internal/logging"
)

// RequestIDHeader carries the request ID on responses and accepts a
// caller-supplied ID on requests.
const RequestIDHeader = "X-Request-ID"

// RequestID ensures every request has an ID, propagates it via context
// for log correlation, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
