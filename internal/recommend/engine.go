// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package recommend implements the creator recommendation engine: fit
// scoring, deterministic ranking, budget allocation, and risk-policy
// auto-shortlisting.
//
// The engine reads campaign genre fields but never writes them; those are
// owned by the classification pipeline.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

// fitScale maps the normalized 0-1 weighted combination onto the 0-10
// fit-score scale used by the API and the auto-shortlist threshold.
const fitScale = 10.0

// Engine computes ranked, budgeted creator shortlists for campaigns.
// It is stateless between calls and safe for concurrent use; each call
// reads its own snapshot of creator and swipe data.
type Engine struct {
	data   DataProvider
	cfg    config.RecommendConfig
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is fine for zerolog
func NewEngine(data DataProvider, cfg config.RecommendConfig, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		data:   data,
		cfg:    cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Generate computes a ranked shortlist for the campaign under the given
// options. The result is always returned; the run and its rows are
// persisted only when opts.Persist is set. Two calls with identical
// inputs over an unchanged creator pool and swipe history produce the
// same ordering and scores; only the run ID and timestamp differ.
func (e *Engine) Generate(ctx context.Context, session models.Session, campaignSlug string, opts Options) (*models.RecommendationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.GenerateTimeout)
	defer cancel()

	opts.normalize(e.cfg.DefaultLimit, e.cfg.MaxLimit)

	campaign, err := e.data.GetCampaignBySlug(ctx, session.OrgID, campaignSlug)
	if err != nil {
		return nil, mapCtxErr(err)
	}

	candidates, err := e.data.ListCreators(ctx, session.OrgID, opts.GenreFilters, opts.PlatformFilters)
	if err != nil {
		return nil, mapCtxErr(fmt.Errorf("list creators: %w", err))
	}

	// Feedback aggregates only prior runs; the current run does not exist
	// yet and can never influence its own ranking.
	feedback, err := e.data.FeedbackSignals(ctx, session.OrgID)
	if err != nil {
		return nil, mapCtxErr(fmt.Errorf("feedback signals: %w", err))
	}

	scored := e.scoreCandidates(campaign, candidates, opts, feedback)
	sortCandidates(scored)
	included := e.allocate(scored, opts)

	run := &models.RecommendationRun{
		ID:              uuid.New(),
		OrgID:           session.OrgID,
		CampaignSlug:    campaign.Slug,
		Objective:       opts.Objective,
		Budget:          opts.Budget,
		RiskMode:        opts.RiskMode,
		GenreFilters:    opts.GenreFilters,
		PlatformFilters: opts.PlatformFilters,
		GeneratedAt:     time.Now().UTC(),
	}

	recs := make([]models.Recommendation, len(included))
	items := make([]models.RecommendationItem, len(included))
	autoCount := 0
	for i, sc := range included {
		auto := e.autoShortlist(sc.fitScore, opts.RiskMode)
		if auto {
			autoCount++
		}
		recs[i] = models.Recommendation{
			RunID:           run.ID,
			CreatorID:       sc.creator.ID,
			Rank:            i + 1,
			FitScore:        sc.fitScore,
			EstimatedSpend:  sc.spend,
			AutoShortlisted: auto,
		}
		items[i] = models.RecommendationItem{
			CreatorID:       sc.creator.ID,
			Handle:          sc.creator.Handle,
			Rank:            i + 1,
			FitScore:        sc.fitScore,
			EstimatedSpend:  sc.spend,
			AutoShortlisted: auto,
		}
	}

	if opts.Persist {
		if err := e.data.PersistRecommendationRun(ctx, run, recs); err != nil {
			// Nothing partial is persisted; either the full run lands or
			// the caller gets an error.
			return nil, mapCtxErr(fmt.Errorf("persist run: %w", err))
		}
	}

	e.logger.Debug().
		Str("campaign", campaign.Slug).
		Int("candidates", len(candidates)).
		Int("included", len(included)).
		Bool("persisted", opts.Persist).
		Msg("recommendation generated")

	return &models.RecommendationResult{
		CampaignSlug:         campaign.Slug,
		Objective:            opts.Objective,
		Budget:               opts.Budget,
		RiskMode:             opts.RiskMode,
		Recommendations:      items,
		AutoShortlistedCount: autoCount,
		RunID:                run.ID,
		GeneratedAt:          run.GeneratedAt,
		Persisted:            opts.Persist,
	}, nil
}

// scoreCandidates computes a fit score and estimated spend per candidate.
func (e *Engine) scoreCandidates(campaign *models.Campaign, candidates []models.Creator, opts Options, feedback map[uuid.UUID]models.FeedbackSignal) []scoredCreator {
	scored := make([]scoredCreator, 0, len(candidates))
	for _, creator := range candidates {
		scored = append(scored, scoredCreator{
			creator:  creator,
			fitScore: e.fitScore(campaign, &creator, opts, feedback[creator.ID]),
			spend:    e.estimatedSpend(&creator),
		})
	}
	return scored
}

// fitScore combines genre affinity, platform match, historical success
// rate, and the aggregated swipe signal into a 0-10 score.
func (e *Engine) fitScore(campaign *models.Campaign, creator *models.Creator, opts Options, signal models.FeedbackSignal) float64 {
	genreAffinity := e.cfg.NeutralGenreAffinity
	if campaign.Classified() {
		genreAffinity = clamp01(creator.GenreMix[campaign.Genre])
	}

	platformMatch := 1.0
	if len(opts.PlatformFilters) > 0 {
		platformMatch = 0.0
		for _, p := range opts.PlatformFilters {
			if creator.HasPlatform(p) {
				platformMatch = 1.0
				break
			}
		}
	}

	success := clamp01(creator.SuccessRate)

	// Swipe signal in (-1, 1), smoothed toward neutral for creators with
	// few observations, then shifted into [0, 1].
	raw := 0.0
	if n := signal.Rights + signal.Lefts; n > 0 {
		raw = float64(signal.Rights-signal.Lefts) / (float64(n) + e.cfg.FeedbackSmoothing)
	}
	feedbackTerm := (raw + 1) / 2

	weightSum := e.cfg.GenreWeight + e.cfg.PlatformWeight + e.cfg.SuccessWeight + e.cfg.FeedbackWeight
	combined := (e.cfg.GenreWeight*genreAffinity +
		e.cfg.PlatformWeight*platformMatch +
		e.cfg.SuccessWeight*success +
		e.cfg.FeedbackWeight*feedbackTerm) / weightSum

	return combined * fitScale
}

// estimatedSpend derives a per-post rate from the creator's history,
// falling back to the configured default for creators with no posts.
func (e *Engine) estimatedSpend(creator *models.Creator) float64 {
	if spend := creator.AvgCostPerPost(); spend > 0 {
		return spend
	}
	return e.cfg.DefaultCreatorRate
}

// sortCandidates orders by fit score descending, then estimated cost
// ascending, then creator ID ascending. The ordering is a strict function
// of those three keys so repeated runs are identical.
func sortCandidates(scored []scoredCreator) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].fitScore != scored[j].fitScore {
			return scored[i].fitScore > scored[j].fitScore
		}
		if scored[i].spend != scored[j].spend {
			return scored[i].spend < scored[j].spend
		}
		return strings.Compare(scored[i].creator.ID.String(), scored[j].creator.ID.String()) < 0
	})
}

// allocate walks the sorted candidates accumulating spend. A candidate
// over the per-creator cap is skipped; budget exhaustion stops inclusion
// without truncating candidates already included.
func (e *Engine) allocate(scored []scoredCreator, opts Options) []scoredCreator {
	included := make([]scoredCreator, 0, opts.Limit)
	total := 0.0

	for _, sc := range scored {
		if len(included) >= opts.Limit {
			break
		}
		if opts.PerCreatorCap > 0 && sc.spend > opts.PerCreatorCap {
			continue
		}
		if opts.Budget > 0 && total+sc.spend > opts.Budget {
			break
		}
		total += sc.spend
		included = append(included, sc)
	}

	return included
}

// autoShortlist applies the risk policy to one included candidate.
func (e *Engine) autoShortlist(fitScore float64, mode models.RiskMode) bool {
	switch mode {
	case models.RiskAuto:
		return true
	case models.RiskHybrid:
		return fitScore > e.cfg.AutoShortlistThreshold
	default:
		return false
	}
}

// clamp01 bounds v into [0, 1].
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// mapCtxErr surfaces deadline expiry as the core timeout error.
func mapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("recommendation generation: %w", errs.ErrTimeout)
	}
	return err
}
