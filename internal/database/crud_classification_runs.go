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

	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

const classificationRunColumns = "id, org_id, status, started_at, completed_at, total_candidates, classified, marked_unclassified, marked_other, failures, search_calls, error_message"

// CreateClassificationRun inserts a run in running state. The insert is
// conditional on no other running run existing for the org, and the
// condition is evaluated inside the INSERT ... SELECT so two concurrent
// processes cannot both succeed. Returns errs.ErrRunAlreadyActive when
// another run holds the slot.
func (db *DB) CreateClassificationRun(ctx context.Context, run *models.ClassificationRun) (err error) {
	start := time.Now()
	defer func() { track("insert", "classification_runs", start, err) }()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = models.RunRunning

	stmt, err := db.getStmt(ctx, `
		INSERT INTO classification_runs (id, org_id, status, started_at, total_candidates)
		SELECT ?, ?, 'running', ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM classification_runs WHERE org_id = ? AND status = 'running'
		)`)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, run.ID.String(), run.OrgID, run.StartedAt, run.TotalCandidates, run.OrgID)
	if err != nil {
		return fmt.Errorf("create classification run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create classification run: %w", err)
	}
	if n == 0 {
		return errs.ErrRunAlreadyActive
	}
	return nil
}

// UpdateClassificationRunCounters persists the current counters of a
// running run. Finished runs are never touched.
func (db *DB) UpdateClassificationRunCounters(ctx context.Context, run *models.ClassificationRun) (err error) {
	start := time.Now()
	defer func() { track("update", "classification_runs", start, err) }()

	stmt, err := db.getStmt(ctx, `
		UPDATE classification_runs
		SET total_candidates = ?, classified = ?, marked_unclassified = ?,
			marked_other = ?, failures = ?, search_calls = ?
		WHERE id = ? AND org_id = ? AND status = 'running'`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, run.TotalCandidates, run.Classified, run.MarkedUnclassified,
		run.MarkedOther, run.Failures, run.SearchCalls, run.ID.String(), run.OrgID)
	if err != nil {
		return fmt.Errorf("update classification run counters: %w", err)
	}
	return nil
}

// FinishClassificationRun transitions a running run to its terminal
// status, freezing the counters. The status guard makes the transition
// idempotent: finishing an already-finished run is a no-op.
func (db *DB) FinishClassificationRun(ctx context.Context, run *models.ClassificationRun) (err error) {
	start := time.Now()
	defer func() { track("update", "classification_runs", start, err) }()

	stmt, err := db.getStmt(ctx, `
		UPDATE classification_runs
		SET status = ?, completed_at = ?, total_candidates = ?, classified = ?,
			marked_unclassified = ?, marked_other = ?, failures = ?, search_calls = ?,
			error_message = ?
		WHERE id = ? AND org_id = ? AND status = 'running'`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, string(run.Status), run.CompletedAt,
		run.TotalCandidates, run.Classified, run.MarkedUnclassified, run.MarkedOther,
		run.Failures, run.SearchCalls, run.ErrorMessage, run.ID.String(), run.OrgID)
	if err != nil {
		return fmt.Errorf("finish classification run: %w", err)
	}
	return nil
}

// GetClassificationRun resolves a run by ID within the org, or
// errs.ErrNotFound.
func (db *DB) GetClassificationRun(ctx context.Context, orgID string, id uuid.UUID) (run *models.ClassificationRun, err error) {
	start := time.Now()
	defer func() { track("select", "classification_runs", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT `+classificationRunColumns+`
		FROM classification_runs WHERE org_id = ? AND id = ?`)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, orgID, id.String())
	run, err = scanClassificationRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("classification run %s: %w", id, errs.ErrNotFound)
	}
	return run, err
}

// RecentClassificationRuns returns the org's most recent runs, newest
// first.
func (db *DB) RecentClassificationRuns(ctx context.Context, orgID string, limit int) ([]models.ClassificationRun, error) {
	return db.listClassificationRuns(ctx, orgID, limit, false)
}

// RecentFailedClassificationRuns returns the org's most recent failed
// runs, newest first.
func (db *DB) RecentFailedClassificationRuns(ctx context.Context, orgID string, limit int) ([]models.ClassificationRun, error) {
	return db.listClassificationRuns(ctx, orgID, limit, true)
}

func (db *DB) listClassificationRuns(ctx context.Context, orgID string, limit int, failedOnly bool) (out []models.ClassificationRun, err error) {
	start := time.Now()
	defer func() { track("select", "classification_runs", start, err) }()

	query := `
		SELECT ` + classificationRunColumns + `
		FROM classification_runs
		WHERE org_id = ?
		ORDER BY started_at DESC
		LIMIT ?`
	if failedOnly {
		query = `
		SELECT ` + classificationRunColumns + `
		FROM classification_runs
		WHERE org_id = ? AND status = 'failed'
		ORDER BY started_at DESC
		LIMIT ?`
	}

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("list classification runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		run, scanErr := scanClassificationRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// LatestSuccessfulRunAt returns when the org's most recent successful run
// completed, or nil when none has succeeded yet.
func (db *DB) LatestSuccessfulRunAt(ctx context.Context, orgID string) (at *time.Time, err error) {
	start := time.Now()
	defer func() { track("select", "classification_runs", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT MAX(completed_at) FROM classification_runs
		WHERE org_id = ? AND status = 'success'`)
	if err != nil {
		return nil, err
	}
	var completed sql.NullTime
	if err = stmt.QueryRowContext(ctx, orgID).Scan(&completed); err != nil {
		return nil, fmt.Errorf("latest successful run: %w", err)
	}
	if !completed.Valid {
		return nil, nil
	}
	return &completed.Time, nil
}

func scanClassificationRun(s scanner) (*models.ClassificationRun, error) {
	var (
		run        models.ClassificationRun
		id, status string
		completed  sql.NullTime
	)
	if err := s.Scan(&id, &run.OrgID, &status, &run.StartedAt, &completed,
		&run.TotalCandidates, &run.Classified, &run.MarkedUnclassified, &run.MarkedOther,
		&run.Failures, &run.SearchCalls, &run.ErrorMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan classification run: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("scan classification run id: %w", err)
	}
	run.ID = parsed
	run.Status = models.RunStatus(status)
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
