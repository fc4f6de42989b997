package usecase

import (
	"context"
	"testing"
	"time"

	"DarkPull/internal/domain/models"
)

type stubMarketAPI struct {
	byDate map[string][]*models.Trade
	calls  int
}

func (s *stubMarketAPI) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	return []float64{100, 101, 99, 102, 100}, nil
}

func (s *stubMarketAPI) TradesForDate(ctx context.Context, symbol, date string, limit int) ([]*models.Trade, error) {
	s.calls++
	return s.byDate[date], nil
}

func TestBackfillInlineRun(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	lit := darkTrade("AAPL", 99, 100, now.AddDate(0, 0, -1))
	lit.VenueID = 11
	lit.TRFID = nil

	malformed := darkTrade("AAPL", 0, 100, now.AddDate(0, 0, -1))

	api := &stubMarketAPI{byDate: map[string][]*models.Trade{
		yesterday: {
			darkTrade("AAPL", 100, 500, now.AddDate(0, 0, -1)),
			lit,
			malformed,
		},
	}}

	trades := &memTradeStore{}
	positions := &memPositionStore{}
	opps := &memOpportunityStore{}
	metrics := &fakeMetrics{}
	lgr := newTestLogger(t)

	classifier := NewClassifier(4)
	agg := NewPositionAggregator(positions, trades, 90, metrics)
	mgr := NewOpportunityManager(opps, nil, 24*time.Hour, metrics, lgr)
	engine := NewEngine(classifier, agg, NewScorer(300, 0.10), mgr, &fakeOracle{}, positions, trades, metrics, lgr, time.Second)

	// nil publisher means Enqueue runs inline
	b := NewBackfiller(api, classifier, trades, engine, nil, 2, lgr)
	if err := b.Enqueue(context.Background(), "AAPL", 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if api.calls != 3 {
		t.Fatalf("api calls %d want 3", api.calls)
	}
	// only the valid dark-pool print survives the filter
	if len(trades.trades) != 1 {
		t.Fatalf("stored %d want 1", len(trades.trades))
	}

	// RefreshSymbol ran: yesterday's print is in the historical window
	pos, err := positions.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.HistoricalVolume != 500 {
		t.Fatalf("historical volume %d want 500", pos.HistoricalVolume)
	}
}

func TestBackfillJobIdentity(t *testing.T) {
	b := NewBackfiller(&stubMarketAPI{}, NewClassifier(4), &memTradeStore{}, nil, nil, 1, newTestLogger(t))
	if b.Type() != "backfill" {
		t.Fatalf("type %q", b.Type())
	}
	if b.Name() == "" {
		t.Fatalf("empty name")
	}
}
