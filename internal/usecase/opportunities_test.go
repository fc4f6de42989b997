package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DarkPull/internal/domain/models"
)

func testEvaluation() Evaluation {
	return Evaluation{
		Score:          55,
		Confidence:     70,
		RiskLevel:      models.RiskMedium,
		StrategyType:   models.StrategyVolCrush,
		ExpectedProfit: 1200,
		Triggered:      true,
	}
}

func TestUpsertCreatesOpportunity(t *testing.T) {
	store := &memOpportunityStore{}
	pub := &fakePublisher{}
	mgr := NewOpportunityManager(store, pub, 24*time.Hour, &fakeMetrics{}, newTestLogger(t))

	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	pos := &models.StockPosition{Symbol: "AAPL", ActivityRatio: 4, CurrentVolume: 500000, CurrentTrades: 12}
	snap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}

	opp, err := mgr.Upsert(context.Background(), pos, snap, testEvaluation(), now)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if opp.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !opp.CreatedAt.Equal(now) || !opp.ExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("lifecycle times %v %v", opp.CreatedAt, opp.ExpiresAt)
	}
	if !opp.IsActive {
		t.Fatalf("expected active")
	}
	if opp.RealizedVol != 0.40 || opp.ImpliedVol != 0.25 {
		t.Fatalf("snapshot fields %v/%v", opp.RealizedVol, opp.ImpliedVol)
	}
	if opp.Metadata.TotalVolume != 500000 || opp.Metadata.TotalTrades != 12 {
		t.Fatalf("metadata %+v", opp.Metadata)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d", len(pub.published))
	}
}

func TestUpsertRefreshKeepsIdentity(t *testing.T) {
	store := &memOpportunityStore{}
	mgr := NewOpportunityManager(store, nil, 24*time.Hour, &fakeMetrics{}, newTestLogger(t))

	ctx := context.Background()
	t0 := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	pos := &models.StockPosition{Symbol: "AAPL", ActivityRatio: 4}
	snap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}

	first, err := mgr.Upsert(ctx, pos, snap, testEvaluation(), t0)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	t1 := t0.Add(2 * time.Hour)
	pos.ActivityRatio = 6
	ev := testEvaluation()
	ev.Confidence = 90
	second, err := mgr.Upsert(ctx, pos, snap, ev, t1)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("refresh changed id %s -> %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("refresh changed created_at")
	}
	// lifetime is anchored to creation, refreshing must not slide it
	if !second.ExpiresAt.Equal(t0.Add(24 * time.Hour)) {
		t.Fatalf("expiry drifted from creation+TTL: created=%v expires=%v", second.CreatedAt, second.ExpiresAt)
	}
	if second.Confidence != 90 || second.ActivityRatio != 6 {
		t.Fatalf("refresh did not overwrite evaluation: %+v", second)
	}
}

func TestUpsertAfterExpiryCreatesNewRecord(t *testing.T) {
	store := &memOpportunityStore{}
	mgr := NewOpportunityManager(store, nil, time.Hour, &fakeMetrics{}, newTestLogger(t))

	ctx := context.Background()
	t0 := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	pos := &models.StockPosition{Symbol: "AAPL", ActivityRatio: 4}
	snap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}

	first, err := mgr.Upsert(ctx, pos, snap, testEvaluation(), t0)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// well past the one hour TTL
	t1 := t0.Add(3 * time.Hour)
	second, err := mgr.Upsert(ctx, pos, snap, testEvaluation(), t1)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expired record must not be refreshed in place")
	}
	if !second.CreatedAt.Equal(t1) {
		t.Fatalf("new record created_at %v", second.CreatedAt)
	}
}

func TestUpsertPublishFailureIsNotFatal(t *testing.T) {
	store := &memOpportunityStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	metrics := &fakeMetrics{}
	mgr := NewOpportunityManager(store, pub, time.Hour, metrics, newTestLogger(t))

	pos := &models.StockPosition{Symbol: "AAPL", ActivityRatio: 4}
	snap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

	if _, err := mgr.Upsert(context.Background(), pos, snap, testEvaluation(), now); err != nil {
		t.Fatalf("publish failure must not fail the upsert: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("puts %d want 1", store.puts)
	}
	if len(metrics.errors) != 1 || metrics.errors[0] != "opportunity_publish" {
		t.Fatalf("errors %v", metrics.errors)
	}
}

func TestListActiveOrdering(t *testing.T) {
	store := &memOpportunityStore{}
	mgr := NewOpportunityManager(store, nil, 24*time.Hour, &fakeMetrics{}, newTestLogger(t))

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	snap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}

	for _, tc := range []struct {
		symbol     string
		confidence float64
	}{
		{"AAPL", 40}, {"TSLA", 90}, {"NVDA", 65},
	} {
		ev := testEvaluation()
		ev.Confidence = tc.confidence
		if _, err := mgr.Upsert(ctx, &models.StockPosition{Symbol: tc.symbol, ActivityRatio: 4}, snap, ev, now); err != nil {
			t.Fatalf("upsert %s: %v", tc.symbol, err)
		}
	}

	opps, err := mgr.ListActive(ctx, 10, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(opps) != 3 {
		t.Fatalf("len %d", len(opps))
	}
	want := []string{"TSLA", "NVDA", "AAPL"}
	for i, symbol := range want {
		if opps[i].Symbol != symbol {
			t.Fatalf("position %d: got %s want %s", i, opps[i].Symbol, symbol)
		}
	}
}
