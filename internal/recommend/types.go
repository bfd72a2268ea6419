// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package recommend

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/models"
)

// Options carries one generation request. Zero values mean "unset":
// a zero budget or cap is no constraint, a zero limit uses the default.
type Options struct {
	// Objective is a free-form tag, e.g. "maximize_views".
	Objective string `json:"objective"`

	// Budget caps cumulative estimated spend. Ignored unless finite
	// and > 0.
	Budget float64 `json:"budget,omitempty"`

	// RiskMode controls auto-shortlisting. Defaults to manual.
	RiskMode models.RiskMode `json:"risk_mode"`

	// GenreFilters and PlatformFilters narrow the candidate pool. Order
	// is preserved; entries are trimmed and de-duplicated.
	GenreFilters    []string `json:"genre_filters,omitempty"`
	PlatformFilters []string `json:"platform_filters,omitempty"`

	// Limit bounds the result size.
	Limit int `json:"limit,omitempty"`

	// PerCreatorCap excludes any candidate whose estimated spend exceeds
	// it. Ignored unless finite and > 0.
	PerCreatorCap float64 `json:"per_creator_cap,omitempty"`

	// Persist writes the run and its recommendations. Preview calls leave
	// it false and are side-effect-free except for reads.
	Persist bool `json:"persist"`
}

// normalize applies defaults and cleans filters in place.
func (o *Options) normalize(defaultLimit, maxLimit int) {
	if o.RiskMode == "" {
		o.RiskMode = models.RiskManual
	}
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if !validAmount(o.Budget) {
		o.Budget = 0
	}
	if !validAmount(o.PerCreatorCap) {
		o.PerCreatorCap = 0
	}
	o.GenreFilters = dedupeTrim(o.GenreFilters)
	o.PlatformFilters = dedupeTrim(o.PlatformFilters)
}

// validAmount reports whether v is a usable positive amount.
func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// dedupeTrim trims entries and removes duplicates while preserving order.
func dedupeTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DataProvider is the read/write surface the engine needs, implemented by
// the database layer. The interface keeps the import direction clean and
// makes the engine trivially testable.
type DataProvider interface {
	// GetCampaignBySlug resolves a campaign within the org, or
	// errs.ErrNotFound.
	GetCampaignBySlug(ctx context.Context, orgID, slug string) (*models.Campaign, error)

	// ListCreators returns the org's creators matching the filters. Empty
	// filters match everything.
	ListCreators(ctx context.Context, orgID string, genres, platforms []string) ([]models.Creator, error)

	// FeedbackSignals aggregates the latest swipe decision per
	// (run, creator) pair across all of the org's prior runs.
	FeedbackSignals(ctx context.Context, orgID string) (map[uuid.UUID]models.FeedbackSignal, error)

	// PersistRecommendationRun atomically writes the run and its
	// recommendation rows.
	PersistRecommendationRun(ctx context.Context, run *models.RecommendationRun, recs []models.Recommendation) error
}

// scoredCreator pairs a candidate with its computed fit and spend.
type scoredCreator struct {
	creator  models.Creator
	fitScore float64
	spend    float64
}
