// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

// PersistRecommendationRun atomically writes the run and its
// recommendation rows. Runs are immutable once written.
func (db *DB) PersistRecommendationRun(ctx context.Context, run *models.RecommendationRun, recs []models.Recommendation) (err error) {
	start := time.Now()
	defer func() { track("insert", "recommendation_runs", start, err) }()

	genreFilters, err := json.Marshal(run.GenreFilters)
	if err != nil {
		return fmt.Errorf("marshal genre filters: %w", err)
	}
	platformFilters, err := json.Marshal(run.PlatformFilters)
	if err != nil {
		return fmt.Errorf("marshal platform filters: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recommendation_runs (id, org_id, campaign_slug, objective, budget,
			risk_mode, genre_filters, platform_filters, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.OrgID, run.CampaignSlug, run.Objective, run.Budget,
		string(run.RiskMode), string(genreFilters), string(platformFilters), run.GeneratedAt)
	if err != nil {
		return fmt.Errorf("insert recommendation run: %w", err)
	}

	for i := range recs {
		r := &recs[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recommendations (run_id, creator_id, "rank", fit_score, estimated_spend, auto_shortlisted)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.RunID.String(), r.CreatorID.String(), r.Rank, r.FitScore, r.EstimatedSpend, r.AutoShortlisted)
		if err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendation run: %w", err)
	}
	return nil
}

// GetRecommendationRun resolves a persisted run and its ranked rows
// within the org, or errs.ErrNotFound.
func (db *DB) GetRecommendationRun(ctx context.Context, orgID string, id uuid.UUID) (run *models.RecommendationRun, recs []models.Recommendation, err error) {
	start := time.Now()
	defer func() { track("select", "recommendation_runs", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT id, org_id, campaign_slug, objective, budget, risk_mode,
			genre_filters, platform_filters, generated_at
		FROM recommendation_runs WHERE org_id = ? AND id = ?`)
	if err != nil {
		return nil, nil, err
	}

	var (
		r                                      models.RecommendationRun
		runID, riskMode, genreFlt, platformFlt string
	)
	err = stmt.QueryRowContext(ctx, orgID, id.String()).Scan(&runID, &r.OrgID, &r.CampaignSlug,
		&r.Objective, &r.Budget, &riskMode, &genreFlt, &platformFlt, &r.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("recommendation run %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("scan recommendation run: %w", err)
	}
	if r.ID, err = uuid.Parse(runID); err != nil {
		return nil, nil, fmt.Errorf("scan recommendation run id: %w", err)
	}
	r.RiskMode = models.RiskMode(riskMode)
	if err = json.Unmarshal([]byte(genreFlt), &r.GenreFilters); err != nil {
		return nil, nil, fmt.Errorf("decode genre filters: %w", err)
	}
	if err = json.Unmarshal([]byte(platformFlt), &r.PlatformFilters); err != nil {
		return nil, nil, fmt.Errorf("decode platform filters: %w", err)
	}

	recs, err = db.listRecommendations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &r, recs, nil
}

// RecommendationExists reports whether the creator appears in the run's
// recommendation set, with the run scoped to the org. Swipe validation
// depends on this check.
func (db *DB) RecommendationExists(ctx context.Context, orgID string, runID, creatorID uuid.UUID) (ok bool, err error) {
	start := time.Now()
	defer func() { track("select", "recommendations", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT COUNT(*) FROM recommendations rec
		JOIN recommendation_runs run ON run.id = rec.run_id
		WHERE run.org_id = ? AND rec.run_id = ? AND rec.creator_id = ?`)
	if err != nil {
		return false, err
	}
	var n int
	if err = stmt.QueryRowContext(ctx, orgID, runID.String(), creatorID.String()).Scan(&n); err != nil {
		return false, fmt.Errorf("check recommendation membership: %w", err)
	}
	return n > 0, nil
}

func (db *DB) listRecommendations(ctx context.Context, runID uuid.UUID) (out []models.Recommendation, err error) {
	stmt, err := db.getStmt(ctx, `
		SELECT run_id, creator_id, "rank", fit_score, estimated_spend, auto_shortlisted
		FROM recommendations WHERE run_id = ?
		ORDER BY "rank"`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			rec      models.Recommendation
			rID, cID string
		)
		if err = rows.Scan(&rID, &cID, &rec.Rank, &rec.FitScore, &rec.EstimatedSpend, &rec.AutoShortlisted); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if rec.RunID, err = uuid.Parse(rID); err != nil {
			return nil, fmt.Errorf("scan recommendation run id: %w", err)
		}
		if rec.CreatorID, err = uuid.Parse(cID); err != nil {
			return nil, fmt.Errorf("scan recommendation creator id: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
