// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"context"
	"errors"
	"testing"

	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/metrics"
	"github.com/tunescale/tunescale/internal/models"
)

// fakeRunStore records lifecycle calls and can fail on demand.
type fakeRunStore struct {
	createErr error
	finishErr error

	created       []*models.ClassificationRun
	createdStatus models.RunStatus
	checkpoint    int
	finished      []*models.ClassificationRun
}

func (f *fakeRunStore) CreateClassificationRun(_ context.Context, run *models.ClassificationRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, run)
	f.createdStatus = run.Status
	return nil
}

func (f *fakeRunStore) UpdateClassificationRunCounters(_ context.Context, _ *models.ClassificationRun) error {
	f.checkpoint++
	return nil
}

func (f *fakeRunStore) FinishClassificationRun(_ context.Context, run *models.ClassificationRun) error {
	if f.finishErr != nil {
		return f.finishErr
	}
	f.finished = append(f.finished, run)
	return nil
}

func TestTrackerSingleFlight(t *testing.T) {
	store := &fakeRunStore{}
	tracker := NewTracker(store, zerolog.Nop())
	ctx := context.Background()

	run, err := tracker.Begin(ctx, "org-1", 10)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if run.Status != models.RunRunning {
		t.Errorf("run.Status = %q, want %q", run.Status, models.RunRunning)
	}
	if run.TotalCandidates != 10 {
		t.Errorf("run.TotalCandidates = %d, want 10", run.TotalCandidates)
	}

	if _, err := tracker.Begin(ctx, "org-1", 5); !errors.Is(err, errs.ErrRunAlreadyActive) {
		t.Fatalf("second Begin() error = %v, want ErrRunAlreadyActive", err)
	}

	if err := tracker.Complete(ctx, run); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if run.Status != models.RunSuccess {
		t.Errorf("run.Status after Complete = %q, want %q", run.Status, models.RunSuccess)
	}
	if run.CompletedAt == nil {
		t.Error("run.CompletedAt is nil after Complete")
	}

	// The lock is released; a new run may begin.
	if _, err := tracker.Begin(ctx, "org-1", 3); err != nil {
		t.Fatalf("Begin() after Complete error = %v", err)
	}
}

func TestTrackerBeginStoreFailureReleasesLock(t *testing.T) {
	store := &fakeRunStore{createErr: errors.New("db down")}
	tracker := NewTracker(store, zerolog.Nop())
	ctx := context.Background()

	if _, err := tracker.Begin(ctx, "org-1", 1); err == nil {
		t.Fatal("Begin() error = nil, want store error")
	}

	store.createErr = nil
	if _, err := tracker.Begin(ctx, "org-1", 1); err != nil {
		t.Fatalf("Begin() after store recovery error = %v", err)
	}
}

func TestTrackerFail(t *testing.T) {
	store := &fakeRunStore{}
	tracker := NewTracker(store, zerolog.Nop())
	ctx := context.Background()

	run, err := tracker.Begin(ctx, "org-1", 2)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	run.Classified = 1

	if err := tracker.Fail(ctx, run, errors.New("storage gone")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if run.Status != models.RunFailed {
		t.Errorf("run.Status = %q, want %q", run.Status, models.RunFailed)
	}
	if run.ErrorMessage != "storage gone" {
		t.Errorf("run.ErrorMessage = %q, want %q", run.ErrorMessage, "storage gone")
	}
	if run.CompletedAt == nil {
		t.Error("run.CompletedAt is nil after Fail")
	}
	if run.Classified != 1 {
		t.Errorf("run.Classified = %d, want partial counter retained", run.Classified)
	}

	// Fail releases the lock too.
	if _, err := tracker.Begin(ctx, "org-1", 1); err != nil {
		t.Fatalf("Begin() after Fail error = %v", err)
	}
}

func TestTrackerFinishStoreFailureStillReleases(t *testing.T) {
	store := &fakeRunStore{}
	tracker := NewTracker(store, zerolog.Nop())
	ctx := context.Background()

	run, err := tracker.Begin(ctx, "org-1", 1)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	store.finishErr = errors.New("db down")
	if err := tracker.Complete(ctx, run); err == nil {
		t.Fatal("Complete() error = nil, want store error")
	}

	store.finishErr = nil
	if _, err := tracker.Begin(ctx, "org-1", 1); err != nil {
		t.Fatalf("Begin() after failed finish error = %v", err)
	}
}

func runsFinishedValue(t *testing.T, status models.RunStatus) float64 {
	t.Helper()

	counter, err := metrics.ClassificationRunsTotal.GetMetricWithLabelValues(string(status))
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestTrackerFinishCountsRuns(t *testing.T) {
	store := &fakeRunStore{}
	tracker := NewTracker(store, zerolog.Nop())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		before := runsFinishedValue(t, models.RunSuccess)

		run, err := tracker.Begin(ctx, "org-1", 1)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if err := tracker.Complete(ctx, run); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if after := runsFinishedValue(t, models.RunSuccess); after != before+1 {
			t.Errorf("success counter = %f -> %f, want +1", before, after)
		}
	})

	t.Run("failed", func(t *testing.T) {
		before := runsFinishedValue(t, models.RunFailed)

		run, err := tracker.Begin(ctx, "org-1", 1)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if err := tracker.Fail(ctx, run, errors.New("storage gone")); err != nil {
			t.Fatalf("Fail() error = %v", err)
		}

		if after := runsFinishedValue(t, models.RunFailed); after != before+1 {
			t.Errorf("failed counter = %f -> %f, want +1", before, after)
		}
	})

	t.Run("store failure counts nothing", func(t *testing.T) {
		before := runsFinishedValue(t, models.RunSuccess)

		run, err := tracker.Begin(ctx, "org-1", 1)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		store.finishErr = errors.New("db down")
		if err := tracker.Complete(ctx, run); err == nil {
			t.Fatal("Complete() error = nil, want store error")
		}
		store.finishErr = nil

		if after := runsFinishedValue(t, models.RunSuccess); after != before {
			t.Errorf("success counter = %f -> %f, want unchanged", before, after)
		}
	})
}

func TestTrackerBeginAdmitsPendingRun(t *testing.T) {
	store := &fakeRunStore{}
	tracker := NewTracker(store, zerolog.Nop())

	run, err := tracker.Begin(context.Background(), "org-1", 3)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if store.createdStatus != models.RunPending {
		t.Errorf("status at insert = %q, want %q", store.createdStatus, models.RunPending)
	}
	if run.Status != models.RunRunning {
		t.Errorf("status after admission = %q, want %q", run.Status, models.RunRunning)
	}
}
