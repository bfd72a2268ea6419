// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Creator is a content creator eligible for campaign shortlists.
// Read-mostly from the scoring core's perspective; aggregate stats are
// written by the ingestion collaborator.
type Creator struct {
	ID          uuid.UUID `json:"id"`
	OrgID       string    `json:"org_id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name,omitempty"`
	Platforms   []string  `json:"platforms"`
	Agency      string    `json:"agency,omitempty"`

	// GenreMix maps genre label to the share of the creator's historical
	// posts in that genre. Shares are in [0,1] and need not sum to 1.
	GenreMix map[string]float64 `json:"genre_mix,omitempty"`

	TotalViews  int64     `json:"total_views"`
	TotalPosts  int64     `json:"total_posts"`
	CostToDate  float64   `json:"cost_to_date"`
	SuccessRate float64   `json:"success_rate"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeHandle lower-cases a creator handle for case-insensitive
// uniqueness and lookups.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// AvgCostPerPost estimates the creator's per-post cost from historical
// spend. Returns 0 when there is no posting history.
func (c *Creator) AvgCostPerPost() float64 {
	if c.TotalPosts <= 0 {
		return 0
	}
	return c.CostToDate / float64(c.TotalPosts)
}

// HasPlatform reports whether the creator is active on the named platform
// (case-insensitive).
func (c *Creator) HasPlatform(platform string) bool {
	for _, p := range c.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}
