// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tunescale/tunescale/internal/models"
)

// CampaignCoverage computes classification coverage over the org's
// campaigns. Percentages are 0 when the org has no campaigns.
func (db *DB) CampaignCoverage(ctx context.Context, orgID string) (stats models.CoverageStats, err error) {
	start := time.Now()
	defer func() { track("select", "campaigns", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE source != 'unset'),
			COUNT(*) FILTER (WHERE source = 'unset'),
			COUNT(*) FILTER (WHERE genre = 'Other')
		FROM campaigns WHERE org_id = ?`)
	if err != nil {
		return stats, err
	}
	err = stmt.QueryRowContext(ctx, orgID).Scan(&stats.Total, &stats.Classified,
		&stats.Unclassified, &stats.OtherCount)
	if err != nil {
		return stats, fmt.Errorf("campaign coverage: %w", err)
	}
	if stats.Total > 0 {
		stats.ClassifiedPct = float64(stats.Classified) / float64(stats.Total) * 100
		stats.UnclassifiedPct = float64(stats.Unclassified) / float64(stats.Total) * 100
	}
	return stats, nil
}

// GenreSourceBreakdown counts the org's campaigns by how their genre
// label was assigned.
func (db *DB) GenreSourceBreakdown(ctx context.Context, orgID string) (out map[string]int, err error) {
	start := time.Now()
	defer func() { track("select", "campaigns", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT source, COUNT(*) FROM campaigns
		WHERE org_id = ? GROUP BY source`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("genre source breakdown: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make(map[string]int)
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err = rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan source breakdown: %w", err)
		}
		out[source] = count
	}
	return out, rows.Err()
}
