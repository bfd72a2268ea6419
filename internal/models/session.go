// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

// Session is the authenticated caller context supplied by the inbound
// collaborator. The core trusts it as already verified and uses it only
// for tenant scoping and role-based access.
type Session struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	Role   string `json:"role"`
}

// Roles understood by the authorization layer, least to most privileged.
const (
	RoleViewer  = "viewer"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)
