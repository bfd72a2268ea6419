// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a classification run.
type RunStatus string

const (
	// RunPending means the run is constructed but not yet admitted by
	// the store's single-flight insert.
	RunPending RunStatus = "pending"
	// RunRunning means the batch is in progress. At most one run per org
	// may be running at a time.
	RunRunning RunStatus = "running"
	// RunSuccess means the batch completed; counters are frozen.
	RunSuccess RunStatus = "success"
	// RunFailed means the batch aborted; partial counters are retained.
	RunFailed RunStatus = "failed"
)

// ClassificationRun tracks one batch classification execution.
// Counters are monotonically non-decreasing within a run and frozen once
// CompletedAt is set.
type ClassificationRun struct {
	ID                 uuid.UUID  `json:"id"`
	OrgID              string     `json:"org_id"`
	Status             RunStatus  `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	TotalCandidates    int        `json:"total_candidates"`
	Classified         int        `json:"classified"`
	MarkedUnclassified int        `json:"marked_unclassified"`
	MarkedOther        int        `json:"marked_other"`
	Failures           int        `json:"failures"`
	SearchCalls        int        `json:"search_calls"`
	ErrorMessage       string     `json:"error_message,omitempty"`
}

// RiskMode controls how aggressively candidates are auto-shortlisted
// without human review.
type RiskMode string

const (
	// RiskManual never auto-shortlists; every candidate awaits a swipe.
	RiskManual RiskMode = "manual"
	// RiskHybrid auto-shortlists candidates above the confidence cutoff.
	RiskHybrid RiskMode = "hybrid"
	// RiskAuto auto-shortlists every included candidate.
	RiskAuto RiskMode = "auto"
)

// ValidRiskMode reports whether s names a known risk mode.
func ValidRiskMode(s string) bool {
	switch RiskMode(s) {
	case RiskManual, RiskHybrid, RiskAuto:
		return true
	}
	return false
}

// RecommendationRun is one immutable, identified execution of the
// recommendation engine. Re-running produces a new run, never an update.
type RecommendationRun struct {
	ID              uuid.UUID `json:"run_id"`
	OrgID           string    `json:"org_id"`
	CampaignSlug    string    `json:"campaign_slug"`
	Objective       string    `json:"objective"`
	Budget          float64   `json:"budget,omitempty"`
	RiskMode        RiskMode  `json:"risk_mode"`
	GenreFilters    []string  `json:"genre_filters,omitempty"`
	PlatformFilters []string  `json:"platform_filters,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Recommendation is one ranked creator within a recommendation run.
// Never mutated after creation.
type Recommendation struct {
	RunID           uuid.UUID `json:"run_id"`
	CreatorID       uuid.UUID `json:"creator_id"`
	Rank            int       `json:"rank"`
	FitScore        float64   `json:"fit_score"`
	EstimatedSpend  float64   `json:"estimated_spend"`
	AutoShortlisted bool      `json:"auto_shortlisted"`
}
