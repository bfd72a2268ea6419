// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/models"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFromContext returns the authenticated session, or nil when the
// request was not authenticated.
func SessionFromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}

// ContextWithSession attaches a session to the context. Exposed for
// handler tests.
func ContextWithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Middleware rejects requests without a valid bearer token and attaches
// the session to the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, `{"status":"error","error":{"code":401,"message":"missing bearer token"}}`, http.StatusUnauthorized)
			return
		}

		session, err := v.Verify(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			http.Error(w, `{"status":"error","error":{"code":401,"message":"invalid token"}}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}
