// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

// testDB opens an in-memory DuckDB with the schema applied.
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: "", MaxMemory: "512MB", Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertCampaign(t *testing.T, db *DB, orgID, slug, title string) *models.Campaign {
	t.Helper()
	c := &models.Campaign{OrgID: orgID, Slug: slug, Title: title}
	if err := db.InsertCampaign(context.Background(), c); err != nil {
		t.Fatalf("InsertCampaign(%q) error = %v", slug, err)
	}
	return c
}

func insertCreator(t *testing.T, db *DB, orgID, handle string) *models.Creator {
	t.Helper()
	c := &models.Creator{
		ID:          uuid.New(),
		OrgID:       orgID,
		Handle:      handle,
		Platforms:   []string{"tiktok", "instagram"},
		GenreMix:    map[string]float64{"Pop": 0.8},
		TotalPosts:  4,
		CostToDate:  1000,
		SuccessRate: 0.5,
	}
	if err := db.InsertCreator(context.Background(), c); err != nil {
		t.Fatalf("InsertCreator(%q) error = %v", handle, err)
	}
	return c
}

func TestCampaignRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insertCampaign(t, db, "org-1", "pop-summer", "Pop Summer Push")

	got, err := db.GetCampaignBySlug(ctx, "org-1", "pop-summer")
	if err != nil {
		t.Fatalf("GetCampaignBySlug() error = %v", err)
	}
	if got.Title != "Pop Summer Push" {
		t.Errorf("Title = %q, want %q", got.Title, "Pop Summer Push")
	}
	if got.Source != models.GenreSourceUnset {
		t.Errorf("Source = %q, want %q", got.Source, models.GenreSourceUnset)
	}

	// Tenant scoping: another org cannot see it.
	if _, err := db.GetCampaignBySlug(ctx, "org-2", "pop-summer"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-org GetCampaignBySlug() error = %v, want ErrNotFound", err)
	}
}

func TestAssignCampaignGenreIdempotency(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insertCampaign(t, db, "org-1", "pop-summer", "Pop Summer Push")

	applied, err := db.AssignCampaignGenre(ctx, "org-1", "pop-summer", "Pop", models.GenreSourceHeuristic, models.ConfidenceHigh)
	if err != nil {
		t.Fatalf("AssignCampaignGenre() error = %v", err)
	}
	if !applied {
		t.Fatal("first heuristic assignment applied = false, want true")
	}

	// A second pipeline write must not overwrite.
	applied, err = db.AssignCampaignGenre(ctx, "org-1", "pop-summer", "Rock", models.GenreSourceSearch, models.ConfidenceMedium)
	if err != nil {
		t.Fatalf("AssignCampaignGenre() error = %v", err)
	}
	if applied {
		t.Error("pipeline re-assignment applied = true, want false")
	}

	got, err := db.GetCampaignBySlug(ctx, "org-1", "pop-summer")
	if err != nil {
		t.Fatalf("GetCampaignBySlug() error = %v", err)
	}
	if got.Genre != "Pop" || got.Source != models.GenreSourceHeuristic {
		t.Errorf("campaign = %q/%q, want Pop/heuristic preserved", got.Genre, got.Source)
	}

	// Manual always overwrites.
	applied, err = db.AssignCampaignGenre(ctx, "org-1", "pop-summer", "Rock", models.GenreSourceManual, models.ConfidenceHigh)
	if err != nil {
		t.Fatalf("manual AssignCampaignGenre() error = %v", err)
	}
	if !applied {
		t.Error("manual assignment applied = false, want true")
	}
	got, err = db.GetCampaignBySlug(ctx, "org-1", "pop-summer")
	if err != nil {
		t.Fatalf("GetCampaignBySlug() error = %v", err)
	}
	if got.Genre != "Rock" || got.Source != models.GenreSourceManual {
		t.Errorf("campaign = %q/%q, want Rock/manual", got.Genre, got.Source)
	}
}

func TestAssignCampaignGenreManualMissing(t *testing.T) {
	db := testDB(t)

	_, err := db.AssignCampaignGenre(context.Background(), "org-1", "missing", "Pop", models.GenreSourceManual, models.ConfidenceHigh)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("AssignCampaignGenre() error = %v, want ErrNotFound", err)
	}
}

func TestListUnclassifiedCampaigns(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insertCampaign(t, db, "org-1", "a-unset", "First")
	insertCampaign(t, db, "org-1", "b-labeled", "Second")
	insertCampaign(t, db, "org-2", "c-other-org", "Third")

	if _, err := db.AssignCampaignGenre(ctx, "org-1", "b-labeled", "Pop", models.GenreSourceHeuristic, models.ConfidenceHigh); err != nil {
		t.Fatalf("AssignCampaignGenre() error = %v", err)
	}

	got, err := db.ListUnclassifiedCampaigns(ctx, "org-1", 100)
	if err != nil {
		t.Fatalf("ListUnclassifiedCampaigns() error = %v", err)
	}
	if len(got) != 1 || got[0].Slug != "a-unset" {
		t.Errorf("ListUnclassifiedCampaigns() = %+v, want only a-unset", got)
	}
}

func TestClassificationRunSingleFlight(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := &models.ClassificationRun{
		ID:        uuid.New(),
		OrgID:     "org-1",
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := db.CreateClassificationRun(ctx, first); err != nil {
		t.Fatalf("CreateClassificationRun() error = %v", err)
	}

	second := &models.ClassificationRun{
		ID:        uuid.New(),
		OrgID:     "org-1",
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := db.CreateClassificationRun(ctx, second); !errors.Is(err, errs.ErrRunAlreadyActive) {
		t.Fatalf("concurrent CreateClassificationRun() error = %v, want ErrRunAlreadyActive", err)
	}

	// A different org is unaffected.
	other := &models.ClassificationRun{
		ID:        uuid.New(),
		OrgID:     "org-2",
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := db.CreateClassificationRun(ctx, other); err != nil {
		t.Fatalf("other-org CreateClassificationRun() error = %v", err)
	}

	// Finishing the first run frees the slot.
	now := time.Now().UTC()
	first.Status = models.RunSuccess
	first.CompletedAt = &now
	if err := db.FinishClassificationRun(ctx, first); err != nil {
		t.Fatalf("FinishClassificationRun() error = %v", err)
	}
	if err := db.CreateClassificationRun(ctx, second); err != nil {
		t.Fatalf("CreateClassificationRun() after finish error = %v", err)
	}
}

func TestClassificationRunLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run := &models.ClassificationRun{
		ID:              uuid.New(),
		OrgID:           "org-1",
		Status:          models.RunRunning,
		StartedAt:       time.Now().UTC(),
		TotalCandidates: 3,
	}
	if err := db.CreateClassificationRun(ctx, run); err != nil {
		t.Fatalf("CreateClassificationRun() error = %v", err)
	}

	run.Classified = 2
	run.MarkedUnclassified = 1
	if err := db.UpdateClassificationRunCounters(ctx, run); err != nil {
		t.Fatalf("UpdateClassificationRunCounters() error = %v", err)
	}

	now := time.Now().UTC()
	run.Status = models.RunSuccess
	run.CompletedAt = &now
	if err := db.FinishClassificationRun(ctx, run); err != nil {
		t.Fatalf("FinishClassificationRun() error = %v", err)
	}

	got, err := db.GetClassificationRun(ctx, "org-1", run.ID)
	if err != nil {
		t.Fatalf("GetClassificationRun() error = %v", err)
	}
	if got.Status != models.RunSuccess {
		t.Errorf("Status = %q, want %q", got.Status, models.RunSuccess)
	}
	if got.Classified != 2 || got.MarkedUnclassified != 1 {
		t.Errorf("counters = %d/%d, want 2/1", got.Classified, got.MarkedUnclassified)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt = nil after finish")
	}

	at, err := db.LatestSuccessfulRunAt(ctx, "org-1")
	if err != nil {
		t.Fatalf("LatestSuccessfulRunAt() error = %v", err)
	}
	if at == nil {
		t.Error("LatestSuccessfulRunAt() = nil, want completion time")
	}

	if at, err := db.LatestSuccessfulRunAt(ctx, "org-2"); err != nil || at != nil {
		t.Errorf("LatestSuccessfulRunAt(org-2) = %v, %v, want nil, nil", at, err)
	}
}

func persistRun(t *testing.T, db *DB, orgID string, creators ...*models.Creator) *models.RecommendationRun {
	t.Helper()
	run := &models.RecommendationRun{
		ID:           uuid.New(),
		OrgID:        orgID,
		CampaignSlug: "pop-summer",
		Objective:    "maximize_views",
		Budget:       1000,
		RiskMode:     models.RiskHybrid,
		GeneratedAt:  time.Now().UTC(),
	}
	recs := make([]models.Recommendation, len(creators))
	for i, c := range creators {
		recs[i] = models.Recommendation{
			RunID:          run.ID,
			CreatorID:      c.ID,
			Rank:           i + 1,
			FitScore:       9.0 - float64(i),
			EstimatedSpend: 250,
		}
	}
	if err := db.PersistRecommendationRun(context.Background(), run, recs); err != nil {
		t.Fatalf("PersistRecommendationRun() error = %v", err)
	}
	return run
}

func TestRecommendationRunRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c1 := insertCreator(t, db, "org-1", "ace")
	c2 := insertCreator(t, db, "org-1", "value")
	run := persistRun(t, db, "org-1", c1, c2)

	gotRun, gotRecs, err := db.GetRecommendationRun(ctx, "org-1", run.ID)
	if err != nil {
		t.Fatalf("GetRecommendationRun() error = %v", err)
	}
	if gotRun.CampaignSlug != "pop-summer" || gotRun.RiskMode != models.RiskHybrid {
		t.Errorf("run = %q/%q, want pop-summer/hybrid", gotRun.CampaignSlug, gotRun.RiskMode)
	}
	if len(gotRecs) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(gotRecs))
	}
	if gotRecs[0].Rank != 1 || gotRecs[0].CreatorID != c1.ID {
		t.Errorf("first rec = rank %d creator %s, want rank 1 creator %s", gotRecs[0].Rank, gotRecs[0].CreatorID, c1.ID)
	}

	if _, _, err := db.GetRecommendationRun(ctx, "org-2", run.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-org GetRecommendationRun() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertSwipe(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c1 := insertCreator(t, db, "org-1", "ace")
	run := persistRun(t, db, "org-1", c1)

	swipe := &models.Swipe{RunID: run.ID, CreatorID: c1.ID, Action: models.SwipeRight, Note: "strong audience overlap"}
	if err := db.UpsertSwipe(ctx, "org-1", swipe); err != nil {
		t.Fatalf("UpsertSwipe() error = %v", err)
	}

	// Re-swiping replaces the decision.
	replace := &models.Swipe{RunID: run.ID, CreatorID: c1.ID, Action: models.SwipeLeft}
	if err := db.UpsertSwipe(ctx, "org-1", replace); err != nil {
		t.Fatalf("UpsertSwipe() replace error = %v", err)
	}

	swipes, err := db.ListSwipes(ctx, "org-1", run.ID)
	if err != nil {
		t.Fatalf("ListSwipes() error = %v", err)
	}
	if len(swipes) != 1 {
		t.Fatalf("swipes = %d, want 1 after upsert", len(swipes))
	}
	if swipes[0].Action != models.SwipeLeft {
		t.Errorf("Action = %q, want %q (last write wins)", swipes[0].Action, models.SwipeLeft)
	}
}

func TestUpsertSwipeRequiresMembership(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c1 := insertCreator(t, db, "org-1", "ace")
	run := persistRun(t, db, "org-1", c1)

	// A creator outside the run's recommendation set cannot be swiped.
	outsider := insertCreator(t, db, "org-1", "outsider")
	swipe := &models.Swipe{RunID: run.ID, CreatorID: outsider.ID, Action: models.SwipeRight}
	if err := db.UpsertSwipe(ctx, "org-1", swipe); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("UpsertSwipe() error = %v, want ErrNotFound", err)
	}

	// An org cannot swipe another org's run.
	other := &models.Swipe{RunID: run.ID, CreatorID: c1.ID, Action: models.SwipeRight}
	if err := db.UpsertSwipe(ctx, "org-2", other); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("cross-org UpsertSwipe() error = %v, want ErrNotFound", err)
	}
}

func TestFeedbackSignals(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c1 := insertCreator(t, db, "org-1", "loved")
	c2 := insertCreator(t, db, "org-1", "mixed")
	runA := persistRun(t, db, "org-1", c1, c2)
	runB := persistRun(t, db, "org-1", c1, c2)

	for _, s := range []*models.Swipe{
		{RunID: runA.ID, CreatorID: c1.ID, Action: models.SwipeRight},
		{RunID: runB.ID, CreatorID: c1.ID, Action: models.SwipeRight},
		{RunID: runA.ID, CreatorID: c2.ID, Action: models.SwipeLeft},
		{RunID: runB.ID, CreatorID: c2.ID, Action: models.SwipeMaybe},
	} {
		if err := db.UpsertSwipe(ctx, "org-1", s); err != nil {
			t.Fatalf("UpsertSwipe() error = %v", err)
		}
	}

	signals, err := db.FeedbackSignals(ctx, "org-1")
	if err != nil {
		t.Fatalf("FeedbackSignals() error = %v", err)
	}
	if got := signals[c1.ID]; got.Rights != 2 || got.Lefts != 0 || got.Maybes != 0 {
		t.Errorf("signals[loved] = %+v, want 2 rights", got)
	}
	if got := signals[c2.ID]; got.Rights != 0 || got.Lefts != 1 || got.Maybes != 1 {
		t.Errorf("signals[mixed] = %+v, want 1 left 1 maybe", got)
	}

	other, err := db.FeedbackSignals(ctx, "org-2")
	if err != nil {
		t.Fatalf("FeedbackSignals(org-2) error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("signals for empty org = %d entries, want 0", len(other))
	}
}

func TestListCreatorsFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pop := insertCreator(t, db, "org-1", "popster")
	rock := &models.Creator{
		ID:        uuid.New(),
		OrgID:     "org-1",
		Handle:    "rocker",
		Platforms: []string{"youtube"},
		GenreMix:  map[string]float64{"Rock": 0.9},
	}
	if err := db.InsertCreator(ctx, rock); err != nil {
		t.Fatalf("InsertCreator() error = %v", err)
	}

	t.Run("no filters returns all", func(t *testing.T) {
		got, err := db.ListCreators(ctx, "org-1", nil, nil)
		if err != nil {
			t.Fatalf("ListCreators() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("creators = %d, want 2", len(got))
		}
	})

	t.Run("genre filter", func(t *testing.T) {
		got, err := db.ListCreators(ctx, "org-1", []string{"Pop"}, nil)
		if err != nil {
			t.Fatalf("ListCreators() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != pop.ID {
			t.Errorf("creators = %+v, want only popster", got)
		}
	})

	t.Run("platform filter case-insensitive", func(t *testing.T) {
		got, err := db.ListCreators(ctx, "org-1", nil, []string{"YouTube"})
		if err != nil {
			t.Fatalf("ListCreators() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != rock.ID {
			t.Errorf("creators = %+v, want only rocker", got)
		}
	})
}

func TestCampaignCoverage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	insertCampaign(t, db, "org-1", "one", "One")
	insertCampaign(t, db, "org-1", "two", "Two")
	insertCampaign(t, db, "org-1", "three", "Three")
	insertCampaign(t, db, "org-1", "four", "Four")

	mustAssign := func(slug, genre string, source models.GenreSource) {
		t.Helper()
		if _, err := db.AssignCampaignGenre(ctx, "org-1", slug, genre, source, models.ConfidenceHigh); err != nil {
			t.Fatalf("AssignCampaignGenre(%q) error = %v", slug, err)
		}
	}
	mustAssign("one", "Pop", models.GenreSourceHeuristic)
	mustAssign("two", "Rock", models.GenreSourceSearch)
	mustAssign("three", "Other", models.GenreSourceSearch)

	stats, err := db.CampaignCoverage(ctx, "org-1")
	if err != nil {
		t.Fatalf("CampaignCoverage() error = %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Classified != 3 {
		t.Errorf("Classified = %d, want 3", stats.Classified)
	}
	if stats.Unclassified != 1 {
		t.Errorf("Unclassified = %d, want 1", stats.Unclassified)
	}
	if stats.OtherCount != 1 {
		t.Errorf("OtherCount = %d, want 1", stats.OtherCount)
	}
	if stats.ClassifiedPct != 75.0 {
		t.Errorf("ClassifiedPct = %v, want 75.0", stats.ClassifiedPct)
	}

	breakdown, err := db.GenreSourceBreakdown(ctx, "org-1")
	if err != nil {
		t.Fatalf("GenreSourceBreakdown() error = %v", err)
	}
	if breakdown["heuristic"] != 1 || breakdown["search"] != 2 || breakdown["unset"] != 1 {
		t.Errorf("breakdown = %v, want heuristic:1 search:2 unset:1", breakdown)
	}
}

func TestCampaignCoverageEmptyOrg(t *testing.T) {
	db := testDB(t)

	stats, err := db.CampaignCoverage(context.Background(), "org-empty")
	if err != nil {
		t.Fatalf("CampaignCoverage() error = %v", err)
	}
	if stats.Total != 0 || stats.ClassifiedPct != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
}
