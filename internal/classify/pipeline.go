// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
	"github.com/tunescale/tunescale/internal/taxonomy"
)

// CampaignStore is the campaign persistence surface the pipeline needs.
type CampaignStore interface {
	// ListUnclassifiedCampaigns returns campaigns in the org without a
	// genre label, up to limit.
	ListUnclassifiedCampaigns(ctx context.Context, orgID string, limit int) ([]models.Campaign, error)

	// AssignCampaignGenre writes the genre fields with insert-if-absent
	// semantics for pipeline sources: it reports applied=false when the
	// campaign already carries a genre, making classification idempotent.
	// Source manual always overwrites.
	AssignCampaignGenre(ctx context.Context, orgID, slug, genre string, source models.GenreSource, confidence models.Confidence) (applied bool, err error)
}

// Resolver is the outbound external-search collaborator. Given an
// ambiguous title it returns a best-effort genre label, or "" when the
// search was inconclusive.
type Resolver interface {
	Resolve(ctx context.Context, title string) (string, error)
}

// Publisher receives pipeline lifecycle events. Best-effort; failures are
// logged and never affect the run.
type Publisher interface {
	PublishRunCompleted(run *models.ClassificationRun)
}

// Pipeline runs batch genre classification over an org's unclassified
// campaigns. It is triggered externally and is not re-entrant: the
// tracker enforces single-flight execution.
type Pipeline struct {
	campaigns  CampaignStore
	classifier *Classifier
	tracker    *Tracker
	resolver   Resolver
	publisher  Publisher
	cfg        config.ClassifyConfig
	logger     zerolog.Logger
}

// NewPipeline assembles a classification pipeline. resolver and publisher
// may be nil: without a resolver ambiguous campaigns are marked
// unclassified instead of escalated.
//
//nolint:gocritic // logger passed by value is fine for zerolog
func NewPipeline(campaigns CampaignStore, classifier *Classifier, tracker *Tracker, resolver Resolver, publisher Publisher, cfg config.ClassifyConfig, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		campaigns:  campaigns,
		classifier: classifier,
		tracker:    tracker,
		resolver:   resolver,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With().Str("component", "classify.pipeline").Logger(),
	}
}

// Run classifies every unclassified campaign in the session's org.
// Per-item failures are recorded into run counters and do not abort the
// batch; a catastrophic persistence failure aborts the run as failed.
// The returned run reflects final counters whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, session models.Session) (*models.ClassificationRun, error) {
	candidates, err := p.campaigns.ListUnclassifiedCampaigns(ctx, session.OrgID, p.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("list unclassified campaigns: %w", err)
	}

	run, err := p.tracker.Begin(ctx, session.OrgID, len(candidates))
	if err != nil {
		return nil, err
	}

	return p.process(ctx, run, candidates)
}

// Start begins a run and processes the batch in the background. The
// single-flight check happens synchronously, so a caller holding a stale
// trigger still gets errs.ErrRunAlreadyActive immediately; the returned
// run carries the ID to poll.
func (p *Pipeline) Start(ctx context.Context, session models.Session) (*models.ClassificationRun, error) {
	candidates, err := p.campaigns.ListUnclassifiedCampaigns(ctx, session.OrgID, p.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("list unclassified campaigns: %w", err)
	}

	run, err := p.tracker.Begin(ctx, session.OrgID, len(candidates))
	if err != nil {
		return nil, err
	}

	started := *run
	go func() {
		// Detached from the trigger request; the batch outlives it.
		if _, err := p.process(context.Background(), run, candidates); err != nil {
			p.logger.Error().Err(err).Str("run_id", run.ID.String()).Msg("background run aborted")
		}
	}()
	return &started, nil
}

func (p *Pipeline) process(ctx context.Context, run *models.ClassificationRun, candidates []models.Campaign) (*models.ClassificationRun, error) {
	for _, campaign := range candidates {
		if err := p.classifyOne(ctx, run, &campaign); err != nil {
			// Persistence is gone; abort the run. Genre fields already
			// written stay written, a re-run resumes from the remainder.
			_ = p.tracker.Fail(ctx, run, err)
			p.emit(run)
			return run, err
		}

		if err := p.tracker.Checkpoint(ctx, run); err != nil {
			_ = p.tracker.Fail(ctx, run, err)
			p.emit(run)
			return run, err
		}
	}

	if err := p.tracker.Complete(ctx, run); err != nil {
		return run, err
	}
	p.emit(run)
	return run, nil
}

// classifyOne handles a single campaign: heuristic first, then search
// escalation. Returns a non-nil error only for catastrophic persistence
// failures; resolver errors become per-item failure counts.
func (p *Pipeline) classifyOne(ctx context.Context, run *models.ClassificationRun, campaign *models.Campaign) error {
	itemCtx, cancel := context.WithTimeout(ctx, p.cfg.ItemTimeout)
	defer cancel()

	if result, ok := p.classifier.Classify(campaign.Title); ok {
		applied, err := p.campaigns.AssignCampaignGenre(itemCtx, campaign.OrgID, campaign.Slug, result.Genre, models.GenreSourceHeuristic, result.Confidence)
		if err != nil {
			return fmt.Errorf("assign genre for %s: %w", campaign.Slug, err)
		}
		if applied {
			run.Classified++
		}
		return nil
	}

	if p.resolver == nil {
		run.MarkedUnclassified++
		return nil
	}

	return p.escalate(itemCtx, run, campaign)
}

// escalate asks the external search resolver for a label. The invocation
// counts toward search_calls whether or not it yields anything usable.
func (p *Pipeline) escalate(ctx context.Context, run *models.ClassificationRun, campaign *models.Campaign) error {
	run.SearchCalls++

	label, err := p.resolver.Resolve(ctx, campaign.Title)
	if err != nil {
		run.Failures++
		p.logger.Warn().
			Err(err).
			Str("slug", campaign.Slug).
			Bool("timeout", errors.Is(err, errs.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)).
			Msg("search escalation failed")
		return nil
	}

	if label == "" {
		run.MarkedUnclassified++
		return nil
	}

	confidence := models.ConfidenceMedium
	if label == taxonomy.GenreOther {
		confidence = models.ConfidenceLow
	}

	applied, err := p.campaigns.AssignCampaignGenre(ctx, campaign.OrgID, campaign.Slug, label, models.GenreSourceSearch, confidence)
	if err != nil {
		return fmt.Errorf("assign searched genre for %s: %w", campaign.Slug, err)
	}
	if !applied {
		return nil
	}

	if label == taxonomy.GenreOther {
		run.MarkedOther++
	} else {
		run.Classified++
	}
	return nil
}

func (p *Pipeline) emit(run *models.ClassificationRun) {
	if p.publisher != nil {
		p.publisher.PublishRunCompleted(run)
	}
}
