package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DarkPull/internal/domain/models"
)

func newTestEngine(t *testing.T, oracle *fakeOracle) (*Engine, *memTradeStore, *memPositionStore, *memOpportunityStore, *fakeMetrics) {
	t.Helper()
	trades := &memTradeStore{}
	positions := &memPositionStore{}
	opps := &memOpportunityStore{}
	metrics := &fakeMetrics{}
	lgr := newTestLogger(t)

	agg := NewPositionAggregator(positions, trades, 90, metrics)
	scorer := NewScorer(300, 0.10)
	mgr := NewOpportunityManager(opps, nil, 24*time.Hour, metrics, lgr)
	engine := NewEngine(NewClassifier(4), agg, scorer, mgr, oracle, positions, trades, metrics, lgr, time.Second)
	return engine, trades, positions, opps, metrics
}

func TestProcessTradeDropsLitPrints(t *testing.T) {
	engine, trades, positions, _, metrics := newTestEngine(t, &fakeOracle{})

	lit := &models.Trade{
		Symbol: "AAPL", TradeID: "1", Price: 150, Size: 100,
		VenueID: 11, SIPTimestampMS: time.Now().UnixMilli(),
	}
	if err := engine.ProcessTrade(context.Background(), lit); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(trades.trades) != 0 {
		t.Fatalf("lit print reached storage")
	}
	if positions.puts != 0 {
		t.Fatalf("lit print touched positions")
	}
	if metrics.ingested != 1 || metrics.darkPool != 0 {
		t.Fatalf("metrics %d/%d", metrics.ingested, metrics.darkPool)
	}
}

func TestProcessTradeStoresAndScores(t *testing.T) {
	oracle := &fakeOracle{snap: models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}}
	engine, trades, positions, opps, _ := newTestEngine(t, oracle)

	ctx := context.Background()
	now := time.Now().UTC()

	// seed 90 days of history so one big print pushes the ratio over 3x
	for d := 1; d <= 90; d++ {
		if err := trades.Append(ctx, darkTrade("AAPL", 100, 1000, now.AddDate(0, 0, -d))); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := engine.ProcessTrade(ctx, darkTrade("AAPL", 101, 5000, now)); err != nil {
		t.Fatalf("process: %v", err)
	}

	pos, err := positions.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if !pos.IsOpportunity {
		t.Fatalf("expected opportunity flag, ratio %v", pos.ActivityRatio)
	}
	if pos.ImpliedVolatility != 0.25 || pos.HistoricalVolatility != 0.40 {
		t.Fatalf("snapshot not folded in: %+v", pos)
	}

	opp, err := opps.GetActive(ctx, "AAPL", now)
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if opp.StrategyType != models.StrategyVolCrush {
		t.Fatalf("strategy %q", opp.StrategyType)
	}
}

func TestProcessTradeOracleFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("api down")}
	engine, trades, positions, opps, metrics := newTestEngine(t, oracle)

	ctx := context.Background()
	now := time.Now().UTC()
	for d := 1; d <= 90; d++ {
		if err := trades.Append(ctx, darkTrade("AAPL", 100, 1000, now.AddDate(0, 0, -d))); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// elevated activity, but no volatility signal
	if err := engine.ProcessTrade(ctx, darkTrade("AAPL", 101, 5000, now)); err != nil {
		t.Fatalf("oracle failure must not fail processing: %v", err)
	}

	pos, err := positions.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.IsOpportunity {
		t.Fatalf("zero snapshot must not trigger")
	}
	if pos.ImpliedVolatility != 0 || pos.HistoricalVolatility != 0 {
		t.Fatalf("expected zero snapshot, got %+v", pos)
	}

	if _, err := opps.GetActive(ctx, "AAPL", now); err == nil {
		t.Fatalf("no opportunity expected")
	}
	found := false
	for _, kind := range metrics.errors {
		if kind == "oracle" {
			found = true
		}
	}
	if !found {
		t.Fatalf("oracle error not recorded: %v", metrics.errors)
	}
}

func TestRefreshSymbol(t *testing.T) {
	oracle := &fakeOracle{snap: models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}}
	engine, trades, positions, _, _ := newTestEngine(t, oracle)

	ctx := context.Background()
	now := time.Now().UTC()

	// backfilled prints only, nothing went through the live path
	if err := trades.Append(ctx, darkTrade("TSLA", 200, 1500, now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := trades.Append(ctx, darkTrade("TSLA", 195, 500, now.AddDate(0, 0, -5))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := engine.RefreshSymbol(ctx, "TSLA"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	pos, err := positions.Get(ctx, "TSLA")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.CurrentVolume != 1500 || pos.HistoricalVolume != 500 {
		t.Fatalf("sides %d/%d", pos.CurrentVolume, pos.HistoricalVolume)
	}
}

func TestProcessTradeConcurrentSameSymbol(t *testing.T) {
	engine, _, positions, _, _ := newTestEngine(t, &fakeOracle{})

	ctx := context.Background()
	now := time.Now().UTC()
	const n = 50
	const size = 100

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.ProcessTrade(ctx, darkTrade("AAPL", 100, size, now))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	// a lost update would undercount the running totals
	pos, err := positions.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.CurrentVolume != n*size {
		t.Fatalf("volume %d want %d", pos.CurrentVolume, n*size)
	}
	if pos.CurrentTrades != n {
		t.Fatalf("trades %d want %d", pos.CurrentTrades, n)
	}
}

func TestSymbolLockReuse(t *testing.T) {
	engine, _, _, _, _ := newTestEngine(t, &fakeOracle{})
	a := engine.symbolLock("AAPL")
	b := engine.symbolLock("AAPL")
	if a != b {
		t.Fatalf("expected same mutex per symbol")
	}
	if engine.symbolLock("TSLA") == a {
		t.Fatalf("expected distinct mutex per symbol")
	}
}
