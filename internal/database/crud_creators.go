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

const creatorColumns = "id, org_id, handle, display_name, platforms, agency, genre_mix, total_views, total_posts, cost_to_date, success_rate, created_at"

// InsertCreator stores a new creator. The handle is normalized to lower
// case before the uniqueness check.
func (db *DB) InsertCreator(ctx context.Context, c *models.Creator) (err error) {
	start := time.Now()
	defer func() { track("insert", "creators", start, err) }()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Handle = models.NormalizeHandle(c.Handle)

	platforms, err := json.Marshal(c.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}
	genreMix, err := json.Marshal(c.GenreMix)
	if err != nil {
		return fmt.Errorf("marshal genre mix: %w", err)
	}

	stmt, err := db.getStmt(ctx, `
		INSERT INTO creators (id, org_id, handle, display_name, platforms, agency, genre_mix,
			total_views, total_posts, cost_to_date, success_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, c.ID.String(), c.OrgID, c.Handle, c.DisplayName,
		string(platforms), c.Agency, string(genreMix),
		c.TotalViews, c.TotalPosts, c.CostToDate, c.SuccessRate, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert creator: %w", err)
	}
	return nil
}

// GetCreator resolves a creator by ID within the org, or errs.ErrNotFound.
func (db *DB) GetCreator(ctx context.Context, orgID string, id uuid.UUID) (c *models.Creator, err error) {
	start := time.Now()
	defer func() { track("select", "creators", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT `+creatorColumns+`
		FROM creators WHERE org_id = ? AND id = ?`)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, orgID, id.String())
	c, err = scanCreator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("creator %s: %w", id, errs.ErrNotFound)
	}
	return c, err
}

// ListCreators returns the org's creators matching the given genre and
// platform filters. Empty filters match everything. Filter matching
// happens on the decoded JSON columns in Go rather than in SQL; candidate
// pools are org-sized and this keeps the queries cacheable.
func (db *DB) ListCreators(ctx context.Context, orgID string, genres, platforms []string) (out []models.Creator, err error) {
	start := time.Now()
	defer func() { track("select", "creators", start, err) }()

	stmt, err := db.getStmt(ctx, `
		SELECT `+creatorColumns+`
		FROM creators WHERE org_id = ?
		ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c, scanErr := scanCreator(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if !matchesGenres(c, genres) || !matchesPlatforms(c, platforms) {
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// matchesGenres reports whether the creator has any posting history in
// one of the wanted genres.
func matchesGenres(c *models.Creator, genres []string) bool {
	if len(genres) == 0 {
		return true
	}
	for _, g := range genres {
		if c.GenreMix[g] > 0 {
			return true
		}
	}
	return false
}

func matchesPlatforms(c *models.Creator, platforms []string) bool {
	if len(platforms) == 0 {
		return true
	}
	for _, p := range platforms {
		if c.HasPlatform(p) {
			return true
		}
	}
	return false
}

func scanCreator(s scanner) (*models.Creator, error) {
	var (
		c                   models.Creator
		id, platforms, gMix string
	)
	if err := s.Scan(&id, &c.OrgID, &c.Handle, &c.DisplayName, &platforms, &c.Agency, &gMix,
		&c.TotalViews, &c.TotalPosts, &c.CostToDate, &c.SuccessRate, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan creator: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("scan creator id: %w", err)
	}
	c.ID = parsed
	if err := json.Unmarshal([]byte(platforms), &c.Platforms); err != nil {
		return nil, fmt.Errorf("decode platforms: %w", err)
	}
	if err := json.Unmarshal([]byte(gMix), &c.GenreMix); err != nil {
		return nil, fmt.Errorf("decode genre mix: %w", err)
	}
	return &c, nil
}
