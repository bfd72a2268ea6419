// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package authz enforces role-based access control over the API. Roles
// form a hierarchy (admin > manager > viewer); the model and policy ship
// embedded so a default deployment needs no external files.
package authz

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"github.com/tunescale/tunescale/internal/auth"
	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer answers whether a role may perform an action on a resource.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// New builds the enforcer from the embedded model and policy, or from
// the configured override paths when set.
func New(cfg *config.SecurityConfig) (*Enforcer, error) {
	modelText := embeddedModel
	if cfg.CasbinModelPath != "" {
		raw, err := os.ReadFile(cfg.CasbinModelPath)
		if err != nil {
			return nil, fmt.Errorf("read casbin model: %w", err)
		}
		modelText = string(raw)
	}
	policyText := embeddedPolicy
	if cfg.CasbinPolicyPath != "" {
		raw, err := os.ReadFile(cfg.CasbinPolicyPath)
		if err != nil {
			return nil, fmt.Errorf("read casbin policy: %w", err)
		}
		policyText = string(raw)
	}

	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("build casbin enforcer: %w", err)
	}
	if err := loadPolicy(e, policyText); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e}, nil
}

// Allowed reports whether role may perform action on resource.
func (e *Enforcer) Allowed(role, resource, action string) bool {
	ok, err := e.enforcer.Enforce(role, resource, action)
	if err != nil {
		logging.Error().Err(err).Str("role", role).Str("resource", resource).Msg("enforcement error")
		return false
	}
	return ok
}

// Require is route middleware that rejects requests whose session role
// lacks the (resource, action) permission. It must run after the
// authentication middleware.
func (e *Enforcer) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.SessionFromContext(r.Context())
			if session == nil {
				http.Error(w, `{"status":"error","error":{"code":401,"message":"unauthenticated"}}`, http.StatusUnauthorized)
				return
			}
			if !e.Allowed(session.Role, resource, action) {
				logging.Ctx(r.Context()).Debug().
					Str("role", session.Role).
					Str("resource", resource).
					Str("action", action).
					Msg("permission denied")
				http.Error(w, `{"status":"error","error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loadPolicy parses CSV policy lines into the enforcer.
func loadPolicy(e *casbin.Enforcer, policyText string) error {
	for _, line := range strings.Split(policyText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		switch fields[0] {
		case "p":
			if _, err := e.AddPolicy(toAny(fields[1:])...); err != nil {
				return fmt.Errorf("add policy %q: %w", line, err)
			}
		case "g":
			if _, err := e.AddGroupingPolicy(toAny(fields[1:])...); err != nil {
				return fmt.Errorf("add grouping policy %q: %w", line, err)
			}
		default:
			return fmt.Errorf("unknown policy line %q", line)
		}
	}
	return nil
}

func toAny(fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}
