// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package database

// Schema notes:
//   - UUIDs are stored as VARCHAR so database/sql scanning stays
//     driver-agnostic.
//   - Platform lists, filter lists, and genre mixes are stored as JSON
//     text and decoded at the edge.
//   - swipes keys on (run_id, creator_id) so a repeat decision for the
//     same pair overwrites in place.
const schema = `
CREATE TABLE IF NOT EXISTS campaigns (
    id VARCHAR PRIMARY KEY,
    org_id VARCHAR NOT NULL,
    slug VARCHAR NOT NULL,
    title VARCHAR NOT NULL,
    genre VARCHAR NOT NULL DEFAULT '',
    confidence VARCHAR NOT NULL DEFAULT '',
    source VARCHAR NOT NULL DEFAULT 'unset',
    created_at TIMESTAMP NOT NULL,
    UNIQUE (org_id, slug)
);

CREATE TABLE IF NOT EXISTS creators (
    id VARCHAR PRIMARY KEY,
    org_id VARCHAR NOT NULL,
    handle VARCHAR NOT NULL,
    display_name VARCHAR NOT NULL DEFAULT '',
    platforms VARCHAR NOT NULL DEFAULT '[]',
    agency VARCHAR NOT NULL DEFAULT '',
    genre_mix VARCHAR NOT NULL DEFAULT '{}',
    total_views BIGINT NOT NULL DEFAULT 0,
    total_posts BIGINT NOT NULL DEFAULT 0,
    cost_to_date DOUBLE NOT NULL DEFAULT 0,
    success_rate DOUBLE NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (org_id, handle)
);

CREATE TABLE IF NOT EXISTS classification_runs (
    id VARCHAR PRIMARY KEY,
    org_id VARCHAR NOT NULL,
    status VARCHAR NOT NULL,
    started_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    total_candidates INTEGER NOT NULL DEFAULT 0,
    classified INTEGER NOT NULL DEFAULT 0,
    marked_unclassified INTEGER NOT NULL DEFAULT 0,
    marked_other INTEGER NOT NULL DEFAULT 0,
    failures INTEGER NOT NULL DEFAULT 0,
    search_calls INTEGER NOT NULL DEFAULT 0,
    error_message VARCHAR NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS recommendation_runs (
    id VARCHAR PRIMARY KEY,
    org_id VARCHAR NOT NULL,
    campaign_slug VARCHAR NOT NULL,
    objective VARCHAR NOT NULL DEFAULT '',
    budget DOUBLE NOT NULL DEFAULT 0,
    risk_mode VARCHAR NOT NULL,
    genre_filters VARCHAR NOT NULL DEFAULT '[]',
    platform_filters VARCHAR NOT NULL DEFAULT '[]',
    generated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
    run_id VARCHAR NOT NULL,
    creator_id VARCHAR NOT NULL,
    "rank" INTEGER NOT NULL,
    fit_score DOUBLE NOT NULL,
    estimated_spend DOUBLE NOT NULL,
    auto_shortlisted BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (run_id, creator_id)
);

CREATE TABLE IF NOT EXISTS swipes (
    run_id VARCHAR NOT NULL,
    creator_id VARCHAR NOT NULL,
    org_id VARCHAR NOT NULL,
    action VARCHAR NOT NULL,
    note VARCHAR NOT NULL DEFAULT '',
    recorded_at TIMESTAMP NOT NULL,
    PRIMARY KEY (run_id, creator_id)
);

CREATE INDEX IF NOT EXISTS idx_campaigns_org_source ON campaigns (org_id, source);
CREATE INDEX IF NOT EXISTS idx_creators_org ON creators (org_id);
CREATE INDEX IF NOT EXISTS idx_class_runs_org_status ON classification_runs (org_id, status);
CREATE INDEX IF NOT EXISTS idx_rec_runs_org_slug ON recommendation_runs (org_id, campaign_slug);
CREATE INDEX IF NOT EXISTS idx_swipes_org_creator ON swipes (org_id, creator_id);
`

func (db *DB) initSchema() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return nil
}
