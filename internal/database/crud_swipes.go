// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

// UpsertSwipe records a decision for a (run, creator) pair, overwriting
// any prior decision for the same pair. The creator must appear in the
// run's recommendation set and the run must belong to the org, otherwise
// errs.ErrNotFound.
func (db *DB) UpsertSwipe(ctx context.Context, orgID string, swipe *models.Swipe) (err error) {
	start := time.Now()
	defer func() { track("upsert", "swipes", start, err) }()

	ok, err := db.RecommendationExists(ctx, orgID, swipe.RunID, swipe.CreatorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("creator %s in run %s: %w", swipe.CreatorID, swipe.RunID, errs.ErrNotFound)
	}

	if swipe.RecordedAt.IsZero() {
		swipe.RecordedAt = time.Now().UTC()
	}

	stmt, err := db.getStmt(ctx, `
		INSERT INTO swipes (run_id, creator_id, org_id, action, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, creator_id) DO UPDATE
		SET action = excluded.action, note = excluded.note, recorded_at = excluded.recorded_at`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, swipe.RunID.String(), swipe.CreatorID.String(), orgID,
		string(swipe.Action), swipe.Note, swipe.RecordedAt)
	if err != nil {
		return fmt.Errorf("upsert swipe: %w", err)
	}
	return nil
}

// ListSwipes returns the latest decisions recorded for a run, most recent
// first.
func (db *DB) ListSwipes(ctx context.Context, orgID string, runID uuid.UUID) (out []models.Swipe, err error) {
	start := time.Now()
	defer func() { track("select", "swipes", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT run_id, creator_id, action, note, recorded_at
		FROM swipes WHERE org_id = ? AND run_id = ?
		ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list swipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			s        models.Swipe
			rID, cID string
			action   string
		)
		if err = rows.Scan(&rID, &cID, &action, &s.Note, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan swipe: %w", err)
		}
		if s.RunID, err = uuid.Parse(rID); err != nil {
			return nil, fmt.Errorf("scan swipe run id: %w", err)
		}
		if s.CreatorID, err = uuid.Parse(cID); err != nil {
			return nil, fmt.Errorf("scan swipe creator id: %w", err)
		}
		s.Action = models.SwipeAction(action)
		out = append(out, s)
	}
	return out, rows.Err()
}

// FeedbackSignals aggregates the latest decision per (run, creator) pair
// across all of the org's runs. Because the swipes table already holds
// one row per pair, the aggregation is a straight count by action.
func (db *DB) FeedbackSignals(ctx context.Context, orgID string) (out map[uuid.UUID]models.FeedbackSignal, err error) {
	start := time.Now()
	defer func() { track("select", "swipes", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT creator_id,
			COUNT(*) FILTER (WHERE action = 'right') AS rights,
			COUNT(*) FILTER (WHERE action = 'left') AS lefts,
			COUNT(*) FILTER (WHERE action = 'maybe') AS maybes
		FROM swipes WHERE org_id = ?
		GROUP BY creator_id`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("aggregate feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make(map[uuid.UUID]models.FeedbackSignal)
	for rows.Next() {
		var (
			cID                   string
			rights, lefts, maybes int
		)
		if err = rows.Scan(&cID, &rights, &lefts, &maybes); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		creatorID, parseErr := uuid.Parse(cID)
		if parseErr != nil {
			return nil, fmt.Errorf("scan feedback creator id: %w", parseErr)
		}
		out[creatorID] = models.FeedbackSignal{
			CreatorID: creatorID,
			Rights:    rights,
			Lefts:     lefts,
			Maybes:    maybes,
		}
	}
	return out, rows.Err()
}
