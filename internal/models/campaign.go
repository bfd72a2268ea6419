// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

import (
	"time"

	"github.com/google/uuid"
)

// GenreSource records how a campaign's genre label was assigned.
type GenreSource string

const (
	// GenreSourceUnset means no classification has been recorded yet.
	GenreSourceUnset GenreSource = "unset"
	// GenreSourceHeuristic means the taxonomy scorer assigned the label.
	GenreSourceHeuristic GenreSource = "heuristic"
	// GenreSourceSearch means the external search resolver supplied the label.
	GenreSourceSearch GenreSource = "search"
	// GenreSourceManual means an operator overrode the label.
	GenreSourceManual GenreSource = "manual"
)

// Confidence grades how strong the classification signal was.
type Confidence string

const (
	// ConfidenceHigh is an exact or dominant keyword match.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium is a clear but weaker signal.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow is a single uncontested low-weight signal.
	ConfidenceLow Confidence = "low"
	// ConfidenceNone means no classification is recorded.
	ConfidenceNone Confidence = ""
)

// Campaign is a marketing campaign as seen by the scoring core.
// The slug is immutable; genre fields are mutated only by the
// classification pipeline or a manual override.
type Campaign struct {
	ID         uuid.UUID   `json:"id"`
	OrgID      string      `json:"org_id"`
	Slug       string      `json:"slug"`
	Title      string      `json:"title"`
	Genre      string      `json:"genre,omitempty"`
	Source     GenreSource `json:"genre_source"`
	Confidence Confidence  `json:"classification_confidence,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Classified reports whether the campaign carries a genre label.
func (c *Campaign) Classified() bool {
	return c.Genre != "" && c.Source != GenreSourceUnset
}
