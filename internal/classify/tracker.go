// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/metrics"
	"github.com/tunescale/tunescale/internal/models"
)

// RunStore is the persistence surface the tracker needs. Implemented by
// the database layer; an interface here keeps the import direction clean.
type RunStore interface {
	// CreateClassificationRun admits a pending run, transitioning it to
	// running. The insert is atomic and conditional: it fails with
	// errs.ErrRunAlreadyActive when another run for the org is already
	// running.
	CreateClassificationRun(ctx context.Context, run *models.ClassificationRun) error

	// UpdateClassificationRunCounters persists the current counters of a
	// running run.
	UpdateClassificationRunCounters(ctx context.Context, run *models.ClassificationRun) error

	// FinishClassificationRun transitions a running run to success or
	// failed, setting completed_at exactly once.
	FinishClassificationRun(ctx context.Context, run *models.ClassificationRun) error
}

// Tracker owns the batch run lifecycle: pending -> running -> success or
// failed. Exactly one run may be running at a time; the in-process lock
// fails fast and the store's conditional insert enforces the same
// invariant across processes.
type Tracker struct {
	store  RunStore
	logger zerolog.Logger

	mu     sync.Mutex
	active bool
}

// NewTracker creates a run tracker backed by the given store.
//
//nolint:gocritic // logger passed by value is fine for zerolog
func NewTracker(store RunStore, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger.With().Str("component", "classify.tracker").Logger(),
	}
}

// Begin starts a run for the org, recording the candidate count. Fails
// with errs.ErrRunAlreadyActive when a run is already in flight; the
// rejected attempt performs no work and touches no counters.
func (t *Tracker) Begin(ctx context.Context, orgID string, totalCandidates int) (*models.ClassificationRun, error) {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return nil, fmt.Errorf("begin run: %w", errs.ErrRunAlreadyActive)
	}
	t.active = true
	t.mu.Unlock()

	run := &models.ClassificationRun{
		ID:              uuid.New(),
		OrgID:           orgID,
		Status:          models.RunPending,
		StartedAt:       time.Now().UTC(),
		TotalCandidates: totalCandidates,
	}

	if err := t.store.CreateClassificationRun(ctx, run); err != nil {
		t.release()
		return nil, err
	}
	run.Status = models.RunRunning

	t.logger.Info().
		Str("run_id", run.ID.String()).
		Str("org_id", orgID).
		Int("candidates", totalCandidates).
		Msg("classification run started")

	return run, nil
}

// Checkpoint persists the run's current counters. Counters only ever grow
// within a run.
func (t *Tracker) Checkpoint(ctx context.Context, run *models.ClassificationRun) error {
	return t.store.UpdateClassificationRunCounters(ctx, run)
}

// Complete transitions the run to success and freezes its counters.
func (t *Tracker) Complete(ctx context.Context, run *models.ClassificationRun) error {
	return t.finish(ctx, run, models.RunSuccess, "")
}

// Fail transitions the run to failed, retaining partial counters and the
// error message. Campaign genre fields already written stay written;
// classification is per-campaign idempotent, so a later re-run resumes
// safely.
func (t *Tracker) Fail(ctx context.Context, run *models.ClassificationRun, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return t.finish(ctx, run, models.RunFailed, msg)
}

func (t *Tracker) finish(ctx context.Context, run *models.ClassificationRun, status models.RunStatus, errMsg string) error {
	defer t.release()

	now := time.Now().UTC()
	run.Status = status
	run.CompletedAt = &now
	run.ErrorMessage = errMsg

	if err := t.store.FinishClassificationRun(ctx, run); err != nil {
		t.logger.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to finalize run")
		return err
	}
	metrics.ClassificationRunsTotal.WithLabelValues(string(status)).Inc()

	t.logger.Info().
		Str("run_id", run.ID.String()).
		Str("status", string(status)).
		Int("classified", run.Classified).
		Int("unclassified", run.MarkedUnclassified).
		Int("other", run.MarkedOther).
		Int("failures", run.Failures).
		Int("search_calls", run.SearchCalls).
		Msg("classification run finished")

	return nil
}

func (t *Tracker) release() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}
