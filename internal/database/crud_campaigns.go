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

const campaignColumns = "id, org_id, slug, title, genre, confidence, source, created_at"

// InsertCampaign stores a new campaign. The (org, slug) pair must be
// unique; a zero ID or CreatedAt is filled in.
func (db *DB) InsertCampaign(ctx context.Context, c *models.Campaign) (err error) {
	start := time.Now()
	defer func() { track("insert", "campaigns", start, err) }()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Source == "" {
		c.Source = models.GenreSourceUnset
	}

	stmt, err := db.getStmt(ctx, `
		INSERT INTO campaigns (id, org_id, slug, title, genre, confidence, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, c.ID.String(), c.OrgID, c.Slug, c.Title,
		c.Genre, string(c.Confidence), string(c.Source), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetCampaignBySlug resolves a campaign within the org, or errs.ErrNotFound.
func (db *DB) GetCampaignBySlug(ctx context.Context, orgID, slug string) (c *models.Campaign, err error) {
	start := time.Now()
	defer func() { track("select", "campaigns", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE org_id = ? AND slug = ?`)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, orgID, slug)
	c, err = scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %q: %w", slug, errs.ErrNotFound)
	}
	return c, err
}

// ListUnclassifiedCampaigns returns up to limit campaigns in the org
// whose genre source is still unset, oldest first so retries make
// progress front-to-back.
func (db *DB) ListUnclassifiedCampaigns(ctx context.Context, orgID string, limit int) (out []models.Campaign, err error) {
	start := time.Now()
	defer func() { track("select", "campaigns", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE org_id = ? AND source = 'unset'
		ORDER BY created_at, slug
		LIMIT ?`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unclassified campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c, scanErr := scanCampaign(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// AssignCampaignGenre writes the genre fields for a campaign. Pipeline
// sources (heuristic, search) only apply when the campaign is still
// unset, so a re-run never clobbers an existing label; source manual
// always overwrites. Reports whether the write was applied.
func (db *DB) AssignCampaignGenre(ctx context.Context, orgID, slug, genre string, source models.GenreSource, confidence models.Confidence) (applied bool, err error) {
	start := time.Now()
	defer func() { track("update", "campaigns", start, err) }()

	query := `
		UPDATE campaigns SET genre = ?, confidence = ?, source = ?
		WHERE org_id = ? AND slug = ? AND source = 'unset'`
	if source == models.GenreSourceManual {
		query = `
		UPDATE campaigns SET genre = ?, confidence = ?, source = ?
		WHERE org_id = ? AND slug = ?`
	}

	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return false, err
	}
	res, err := stmt.ExecContext(ctx, genre, string(confidence), string(source), orgID, slug)
	if err != nil {
		return false, fmt.Errorf("assign campaign genre: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assign campaign genre: %w", err)
	}
	if n == 0 && source == models.GenreSourceManual {
		// Manual writes target a specific campaign; a miss means it
		// does not exist in this org.
		return false, fmt.Errorf("campaign %q: %w", slug, errs.ErrNotFound)
	}
	return n > 0, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(s scanner) (*models.Campaign, error) {
	var (
		c                      models.Campaign
		id, source, confidence string
	)
	if err := s.Scan(&id, &c.OrgID, &c.Slug, &c.Title, &c.Genre, &confidence, &source, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("scan campaign id: %w", err)
	}
	c.ID = parsed
	c.Source = models.GenreSource(source)
	c.Confidence = models.Confidence(confidence)
	return &c, nil
}
