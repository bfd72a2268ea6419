// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/tunescale/tunescale/internal/models"
)

// Health report sizes. Derived views only; producing a report has no side
// effects.
const (
	recentRunLimit     = 10
	recentFailureLimit = 5
)

// HealthStore is the read surface for the classification health report.
type HealthStore interface {
	CampaignCoverage(ctx context.Context, orgID string) (models.CoverageStats, error)
	RecentClassificationRuns(ctx context.Context, orgID string, limit int) ([]models.ClassificationRun, error)
	RecentFailedClassificationRuns(ctx context.Context, orgID string, limit int) ([]models.ClassificationRun, error)
	LatestSuccessfulRunAt(ctx context.Context, orgID string) (*time.Time, error)
	GenreSourceBreakdown(ctx context.Context, orgID string) (map[string]int, error)
}

// HealthReport aggregates coverage, run history, and source provenance
// for an org's classification state.
func HealthReport(ctx context.Context, store HealthStore, orgID string) (*models.ClassificationHealth, error) {
	coverage, err := store.CampaignCoverage(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("campaign coverage: %w", err)
	}

	runs, err := store.RecentClassificationRuns(ctx, orgID, recentRunLimit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}

	failures, err := store.RecentFailedClassificationRuns(ctx, orgID, recentFailureLimit)
	if err != nil {
		return nil, fmt.Errorf("recent failures: %w", err)
	}

	latest, err := store.LatestSuccessfulRunAt(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("latest successful run: %w", err)
	}

	breakdown, err := store.GenreSourceBreakdown(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("source breakdown: %w", err)
	}

	return &models.ClassificationHealth{
		Coverage:              coverage,
		LatestSuccessfulRunAt: latest,
		RecentRuns:            runs,
		RecentFailures:        failures,
		SourceBreakdown:       breakdown,
	}, nil
}
