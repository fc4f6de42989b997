package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/cache"
)

func newTestReader(t *testing.T, c cache.Service) (*AnalyticsReader, *memTradeStore, *memPositionStore, *memOpportunityStore) {
	t.Helper()
	trades := &memTradeStore{}
	positions := &memPositionStore{}
	opps := &memOpportunityStore{}
	mgr := NewOpportunityManager(opps, nil, 24*time.Hour, &fakeMetrics{}, newTestLogger(t))
	return NewAnalyticsReader(positions, trades, mgr, c, time.Minute), trades, positions, opps
}

func TestSymbolAnalyticsUnknownSymbol(t *testing.T) {
	r, _, _, _ := newTestReader(t, nil)
	_, err := r.SymbolAnalytics(context.Background(), "ZZZZ")
	if !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("err %v want ErrNotFound", err)
	}
}

func TestSymbolAnalyticsView(t *testing.T) {
	r, trades, positions, _ := newTestReader(t, nil)

	ctx := context.Background()
	now := time.Now().UTC()
	if err := positions.Put(ctx, &models.StockPosition{
		Symbol:             "AAPL",
		CurrentVolume:      5000,
		CurrentTrades:      10,
		CurrentAvgPrice:    150.5,
		HistoricalVolume:   90000,
		HistoricalTrades:   400,
		HistoricalAvgPrice: 148.2,
		ActivityRatio:      5,
		ImpliedVolatility:  0.25,
		IsOpportunity:      true,
		OpportunityScore:   62,
		LastUpdated:        now,
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := trades.Append(ctx, darkTrade("AAPL", 150, 100, now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res, err := r.SymbolAnalytics(ctx, "AAPL")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if res.CurrentActivity.Volume != 5000 || res.CurrentActivity.Trades != 10 {
		t.Fatalf("current %+v", res.CurrentActivity)
	}
	if res.HistoricalActivity.Volume != 90000 {
		t.Fatalf("historical %+v", res.HistoricalActivity)
	}
	if !res.IsOpportunity || res.OpportunityScore != 62 {
		t.Fatalf("opportunity fields %+v", res)
	}
	if len(res.RecentTrades) != 3 {
		t.Fatalf("recent trades %d", len(res.RecentTrades))
	}
}

func TestSymbolAnalyticsCached(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	r, _, positions, _ := newTestReader(t, c)

	ctx := context.Background()
	if err := positions.Put(ctx, &models.StockPosition{Symbol: "AAPL", CurrentVolume: 5000}); err != nil {
		t.Fatalf("put: %v", err)
	}

	first, err := r.SymbolAnalytics(ctx, "AAPL")
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	// change the backing store; cached view must still be served
	if err := positions.Put(ctx, &models.StockPosition{Symbol: "AAPL", CurrentVolume: 9999}); err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := r.SymbolAnalytics(ctx, "AAPL")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.CurrentActivity.Volume != first.CurrentActivity.Volume {
		t.Fatalf("cache bypassed: %d vs %d", second.CurrentActivity.Volume, first.CurrentActivity.Volume)
	}
}

func TestOpportunitiesViews(t *testing.T) {
	r, _, _, opps := newTestReader(t, nil)

	ctx := context.Background()
	now := time.Now().UTC()
	if err := opps.Put(ctx, &models.TradingOpportunity{
		ID: "abc", Symbol: "TSLA", StrategyType: models.StrategyVolCrush,
		Confidence: 80, RiskLevel: models.RiskHigh, IsActive: true,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// expired record is filtered at read time
	if err := opps.Put(ctx, &models.TradingOpportunity{
		ID: "def", Symbol: "NVDA", IsActive: true,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	views, err := r.Opportunities(ctx, 50)
	if err != nil {
		t.Fatalf("opportunities: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views %d want 1", len(views))
	}
	if views[0].Symbol != "TSLA" {
		t.Fatalf("symbol %s", views[0].Symbol)
	}
}
