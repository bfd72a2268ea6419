// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints.
//
// Status is "success" or "error"; Error is populated only for errors.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability: server timestamp,
// query execution time, and whether the response was served from cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error payload.
//
// Common codes: VALIDATION_ERROR, NOT_FOUND, RUN_ALREADY_ACTIVE, TIMEOUT,
// INTERNAL_ERROR, FORBIDDEN.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationResult is the API-facing shape of one engine invocation.
type RecommendationResult struct {
	CampaignSlug         string               `json:"campaign_slug"`
	Objective            string               `json:"objective"`
	Budget               float64              `json:"budget,omitempty"`
	RiskMode             RiskMode             `json:"risk_mode"`
	Recommendations      []RecommendationItem `json:"recommendations"`
	AutoShortlistedCount int                  `json:"auto_shortlisted_count"`
	RunID                uuid.UUID            `json:"run_id"`
	GeneratedAt          time.Time            `json:"generated_at"`
	Persisted            bool                 `json:"persisted"`
}

// RecommendationItem is one ranked creator in a RecommendationResult.
type RecommendationItem struct {
	CreatorID       uuid.UUID `json:"creator_id"`
	Handle          string    `json:"handle"`
	Rank            int       `json:"rank"`
	FitScore        float64   `json:"fit_score"`
	EstimatedSpend  float64   `json:"estimated_spend"`
	AutoShortlisted bool      `json:"auto_shortlisted"`
}

// CoverageStats summarizes campaign classification coverage for an org.
type CoverageStats struct {
	Total           int     `json:"total"`
	Classified      int     `json:"classified"`
	Unclassified    int     `json:"unclassified"`
	OtherCount      int     `json:"other_count"`
	ClassifiedPct   float64 `json:"classified_pct"`
	UnclassifiedPct float64 `json:"unclassified_pct"`
}

// ClassificationHealth is the read-only health view over classification
// runs and coverage. Purely derived; producing it has no side effects.
type ClassificationHealth struct {
	Coverage              CoverageStats       `json:"coverage"`
	LatestSuccessfulRunAt *time.Time          `json:"latest_successful_run_at,omitempty"`
	RecentRuns            []ClassificationRun `json:"recent_runs"`
	RecentFailures        []ClassificationRun `json:"recent_failures"`
	SourceBreakdown       map[string]int      `json:"source_breakdown"`
}
