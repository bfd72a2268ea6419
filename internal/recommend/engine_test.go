// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/models"
)

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{
		GenreWeight:            0.4,
		PlatformWeight:         0.15,
		SuccessWeight:          0.25,
		FeedbackWeight:         0.2,
		FeedbackSmoothing:      2.0,
		NeutralGenreAffinity:   0.5,
		AutoShortlistThreshold: 7.5,
		DefaultCreatorRate:     250.0,
		DefaultLimit:           20,
		MaxLimit:               100,
		GenerateTimeout:        10 * time.Second,
	}
}

type fakeDataProvider struct {
	campaign    *models.Campaign
	campaignErr error
	creators    []models.Creator
	feedback    map[uuid.UUID]models.FeedbackSignal
	persistErr  error

	persistedRun  *models.RecommendationRun
	persistedRecs []models.Recommendation
}

func (f *fakeDataProvider) GetCampaignBySlug(_ context.Context, _, _ string) (*models.Campaign, error) {
	if f.campaignErr != nil {
		return nil, f.campaignErr
	}
	return f.campaign, nil
}

func (f *fakeDataProvider) ListCreators(_ context.Context, _ string, _, _ []string) ([]models.Creator, error) {
	return f.creators, nil
}

func (f *fakeDataProvider) FeedbackSignals(_ context.Context, _ string) (map[uuid.UUID]models.FeedbackSignal, error) {
	return f.feedback, nil
}

func (f *fakeDataProvider) PersistRecommendationRun(_ context.Context, run *models.RecommendationRun, recs []models.Recommendation) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.persistedRun = run
	f.persistedRecs = recs
	return nil
}

func testEngine(t *testing.T, data DataProvider) *Engine {
	t.Helper()
	e, err := NewEngine(data, testRecommendConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// Fixed IDs so ID-based tie breaking is deterministic in assertions.
var (
	creatorID1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	creatorID2 = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	creatorID3 = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func popCreator(id uuid.UUID, handle string, popAffinity, costToDate float64) models.Creator {
	return models.Creator{
		ID:          id,
		OrgID:       "org-1",
		Handle:      handle,
		Platforms:   []string{"tiktok"},
		GenreMix:    map[string]float64{"Pop": popAffinity},
		TotalPosts:  1,
		CostToDate:  costToDate,
		SuccessRate: 1.0,
	}
}

func popCampaign() *models.Campaign {
	return &models.Campaign{
		OrgID:      "org-1",
		Slug:       "pop-summer",
		Title:      "Pop Summer Push",
		Genre:      "Pop",
		Source:     models.GenreSourceHeuristic,
		Confidence: models.ConfidenceHigh,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSortCandidates(t *testing.T) {
	scored := []scoredCreator{
		{creator: models.Creator{ID: creatorID2}, fitScore: 8.0, spend: 800},
		{creator: models.Creator{ID: creatorID3}, fitScore: 8.0, spend: 300},
		{creator: models.Creator{ID: creatorID1}, fitScore: 9.0, spend: 500},
	}
	sortCandidates(scored)

	wantOrder := []uuid.UUID{creatorID1, creatorID3, creatorID2}
	for i, want := range wantOrder {
		if scored[i].creator.ID != want {
			t.Errorf("scored[%d].ID = %s, want %s", i, scored[i].creator.ID, want)
		}
	}
}

func TestSortCandidatesIDTieBreak(t *testing.T) {
	scored := []scoredCreator{
		{creator: models.Creator{ID: creatorID3}, fitScore: 8.0, spend: 300},
		{creator: models.Creator{ID: creatorID1}, fitScore: 8.0, spend: 300},
	}
	sortCandidates(scored)

	if scored[0].creator.ID != creatorID1 {
		t.Errorf("scored[0].ID = %s, want lower ID %s", scored[0].creator.ID, creatorID1)
	}
}

func TestAllocate(t *testing.T) {
	e := testEngine(t, &fakeDataProvider{})

	// Already in rank order: fit 9.0/500, 8.0/300, 8.0/800.
	scored := []scoredCreator{
		{creator: models.Creator{ID: creatorID1}, fitScore: 9.0, spend: 500},
		{creator: models.Creator{ID: creatorID3}, fitScore: 8.0, spend: 300},
		{creator: models.Creator{ID: creatorID2}, fitScore: 8.0, spend: 800},
	}

	t.Run("budget exhaustion stops inclusion", func(t *testing.T) {
		included := e.allocate(scored, Options{Budget: 1000, Limit: 20})
		if len(included) != 2 {
			t.Fatalf("included = %d candidates, want 2", len(included))
		}
		if included[0].creator.ID != creatorID1 || included[1].creator.ID != creatorID3 {
			t.Errorf("included = [%s, %s], want [%s, %s]",
				included[0].creator.ID, included[1].creator.ID, creatorID1, creatorID3)
		}
	})

	t.Run("zero budget is unconstrained", func(t *testing.T) {
		included := e.allocate(scored, Options{Limit: 20})
		if len(included) != 3 {
			t.Errorf("included = %d candidates, want all 3", len(included))
		}
	})

	t.Run("per-creator cap skips without stopping", func(t *testing.T) {
		included := e.allocate(scored, Options{PerCreatorCap: 600, Limit: 20})
		if len(included) != 2 {
			t.Fatalf("included = %d candidates, want 2", len(included))
		}
		for _, sc := range included {
			if sc.creator.ID == creatorID2 {
				t.Error("creator over the cap was included")
			}
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		included := e.allocate(scored, Options{Limit: 1})
		if len(included) != 1 || included[0].creator.ID != creatorID1 {
			t.Errorf("included = %+v, want only the top candidate", included)
		}
	})
}

func TestFitScore(t *testing.T) {
	e := testEngine(t, &fakeDataProvider{})

	tests := []struct {
		name     string
		campaign *models.Campaign
		creator  models.Creator
		opts     Options
		signal   models.FeedbackSignal
		want     float64
	}{
		{
			name:     "perfect genre and success with neutral feedback",
			campaign: popCampaign(),
			creator:  popCreator(creatorID1, "ace", 1.0, 500),
			want:     9.0,
		},
		{
			name:     "partial genre affinity",
			campaign: popCampaign(),
			creator:  popCreator(creatorID2, "mid", 0.75, 800),
			want:     8.0,
		},
		{
			name: "unclassified campaign uses neutral affinity",
			campaign: &models.Campaign{
				OrgID: "org-1", Slug: "mystery", Title: "Mystery",
				Source: models.GenreSourceUnset,
			},
			creator: popCreator(creatorID1, "ace", 1.0, 500),
			want:    7.0,
		},
		{
			name:     "platform filter miss zeroes the platform term",
			campaign: popCampaign(),
			creator:  popCreator(creatorID1, "ace", 1.0, 500),
			opts:     Options{PlatformFilters: []string{"youtube"}},
			want:     7.5,
		},
		{
			name:     "positive swipe history lifts the score",
			campaign: popCampaign(),
			creator:  popCreator(creatorID1, "ace", 1.0, 500),
			signal:   models.FeedbackSignal{CreatorID: creatorID1, Rights: 8, Lefts: 0},
			// raw = 8/(8+2) = 0.8, term = 0.9: combined 0.98 -> 9.8.
			want: 9.8,
		},
		{
			name:     "negative swipe history drags the score",
			campaign: popCampaign(),
			creator:  popCreator(creatorID1, "ace", 1.0, 500),
			signal:   models.FeedbackSignal{CreatorID: creatorID1, Rights: 0, Lefts: 8},
			want:     8.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.fitScore(tt.campaign, &tt.creator, tt.opts, tt.signal)
			if !almostEqual(got, tt.want) {
				t.Errorf("fitScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimatedSpend(t *testing.T) {
	e := testEngine(t, &fakeDataProvider{})

	withHistory := popCreator(creatorID1, "ace", 1.0, 500)
	if got := e.estimatedSpend(&withHistory); got != 500 {
		t.Errorf("estimatedSpend() = %v, want 500 from history", got)
	}

	fresh := models.Creator{ID: creatorID2, Handle: "new"}
	if got := e.estimatedSpend(&fresh); got != 250 {
		t.Errorf("estimatedSpend() = %v, want default rate 250", got)
	}
}

func TestGenerateBudgetedRanking(t *testing.T) {
	data := &fakeDataProvider{
		campaign: popCampaign(),
		creators: []models.Creator{
			popCreator(creatorID1, "ace", 1.0, 500),
			popCreator(creatorID2, "pricey", 0.75, 800),
			popCreator(creatorID3, "value", 0.75, 300),
		},
	}
	e := testEngine(t, data)

	result, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", Options{Budget: 1000})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(result.Recommendations) != 2 {
		t.Fatalf("recommendations = %d, want 2 within budget", len(result.Recommendations))
	}
	first, second := result.Recommendations[0], result.Recommendations[1]
	if first.CreatorID != creatorID1 || first.Rank != 1 {
		t.Errorf("first = %s rank %d, want %s rank 1", first.CreatorID, first.Rank, creatorID1)
	}
	if second.CreatorID != creatorID3 || second.Rank != 2 {
		t.Errorf("second = %s rank %d, want %s rank 2", second.CreatorID, second.Rank, creatorID3)
	}
	if !almostEqual(first.FitScore, 9.0) || !almostEqual(second.FitScore, 8.0) {
		t.Errorf("fit scores = %v, %v, want 9.0, 8.0", first.FitScore, second.FitScore)
	}
	if first.EstimatedSpend+second.EstimatedSpend != 800 {
		t.Errorf("total spend = %v, want 800", first.EstimatedSpend+second.EstimatedSpend)
	}
	if result.Persisted {
		t.Error("result.Persisted = true for a preview call")
	}
	if data.persistedRun != nil {
		t.Error("preview call persisted a run")
	}
}

func TestGenerateDeterminism(t *testing.T) {
	data := &fakeDataProvider{
		campaign: popCampaign(),
		creators: []models.Creator{
			popCreator(creatorID3, "c", 0.75, 300),
			popCreator(creatorID1, "a", 1.0, 500),
			popCreator(creatorID2, "b", 0.75, 800),
		},
	}
	e := testEngine(t, data)
	opts := Options{Budget: 1000, RiskMode: models.RiskHybrid}

	first, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("result sizes differ: %d vs %d", len(first.Recommendations), len(second.Recommendations))
	}
	for i := range first.Recommendations {
		a, b := first.Recommendations[i], second.Recommendations[i]
		if a.CreatorID != b.CreatorID || a.Rank != b.Rank || a.FitScore != b.FitScore ||
			a.EstimatedSpend != b.EstimatedSpend || a.AutoShortlisted != b.AutoShortlisted {
			t.Errorf("recommendation %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestGenerateRiskModes(t *testing.T) {
	// Fits 9.0 and 7.0: only the first clears the 7.5 hybrid threshold.
	creators := []models.Creator{
		popCreator(creatorID1, "strong", 1.0, 500),
		popCreator(creatorID2, "weak", 0.5, 400),
	}

	tests := []struct {
		mode      models.RiskMode
		wantAuto  int
		wantFirst bool
	}{
		{models.RiskManual, 0, false},
		{models.RiskHybrid, 1, true},
		{models.RiskAuto, 2, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			data := &fakeDataProvider{campaign: popCampaign(), creators: creators}
			e := testEngine(t, data)

			result, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", Options{RiskMode: tt.mode})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if result.AutoShortlistedCount != tt.wantAuto {
				t.Errorf("AutoShortlistedCount = %d, want %d", result.AutoShortlistedCount, tt.wantAuto)
			}
			if got := result.Recommendations[0].AutoShortlisted; got != tt.wantFirst {
				t.Errorf("first AutoShortlisted = %v, want %v", got, tt.wantFirst)
			}
		})
	}
}

func TestGeneratePersist(t *testing.T) {
	data := &fakeDataProvider{
		campaign: popCampaign(),
		creators: []models.Creator{popCreator(creatorID1, "ace", 1.0, 500)},
	}
	e := testEngine(t, data)

	result, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", Options{Persist: true, RiskMode: models.RiskAuto})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !result.Persisted {
		t.Error("result.Persisted = false, want true")
	}
	if data.persistedRun == nil {
		t.Fatal("run was not persisted")
	}
	if data.persistedRun.ID != result.RunID {
		t.Errorf("persisted run ID = %s, want %s", data.persistedRun.ID, result.RunID)
	}
	if len(data.persistedRecs) != 1 {
		t.Fatalf("persisted recommendations = %d, want 1", len(data.persistedRecs))
	}
	if data.persistedRecs[0].RunID != data.persistedRun.ID {
		t.Error("recommendation rows not keyed to the persisted run")
	}
}

func TestGeneratePersistFailure(t *testing.T) {
	data := &fakeDataProvider{
		campaign:   popCampaign(),
		creators:   []models.Creator{popCreator(creatorID1, "ace", 1.0, 500)},
		persistErr: errors.New("transaction aborted"),
	}
	e := testEngine(t, data)

	if _, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "pop-summer", Options{Persist: true}); err == nil {
		t.Fatal("Generate() error = nil, want persistence error")
	}
}

func TestGenerateCampaignNotFound(t *testing.T) {
	data := &fakeDataProvider{campaignErr: errs.ErrNotFound}
	e := testEngine(t, data)

	_, err := e.Generate(context.Background(), models.Session{OrgID: "org-1"}, "missing", Options{})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Generate() error = %v, want ErrNotFound", err)
	}
}

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{
			name: "defaults applied",
			in:   Options{},
			want: Options{RiskMode: models.RiskManual, Limit: 20},
		},
		{
			name: "limit clamped to max",
			in:   Options{Limit: 500},
			want: Options{RiskMode: models.RiskManual, Limit: 100},
		},
		{
			name: "invalid amounts dropped",
			in:   Options{Budget: -10, PerCreatorCap: math.NaN()},
			want: Options{RiskMode: models.RiskManual, Limit: 20},
		},
		{
			name: "filters trimmed and deduplicated",
			in:   Options{GenreFilters: []string{" Pop ", "pop", "", "Rock"}},
			want: Options{RiskMode: models.RiskManual, Limit: 20, GenreFilters: []string{"Pop", "Rock"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.normalize(20, 100)

			if got.RiskMode != tt.want.RiskMode {
				t.Errorf("RiskMode = %q, want %q", got.RiskMode, tt.want.RiskMode)
			}
			if got.Limit != tt.want.Limit {
				t.Errorf("Limit = %d, want %d", got.Limit, tt.want.Limit)
			}
			if got.Budget != tt.want.Budget {
				t.Errorf("Budget = %v, want %v", got.Budget, tt.want.Budget)
			}
			if got.PerCreatorCap != tt.want.PerCreatorCap {
				t.Errorf("PerCreatorCap = %v, want %v", got.PerCreatorCap, tt.want.PerCreatorCap)
			}
			if len(got.GenreFilters) != len(tt.want.GenreFilters) {
				t.Fatalf("GenreFilters = %v, want %v", got.GenreFilters, tt.want.GenreFilters)
			}
			for i := range got.GenreFilters {
				if got.GenreFilters[i] != tt.want.GenreFilters[i] {
					t.Errorf("GenreFilters[%d] = %q, want %q", i, got.GenreFilters[i], tt.want.GenreFilters[i])
				}
			}
		})
	}
}
