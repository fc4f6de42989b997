package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/util"
)

// PositionAggregator maintains the per-symbol dark-pool aggregates. The
// current UTC day is tracked incrementally; the trailing window is
// recomputed from the trade store so late backfills are picked up.
type PositionAggregator struct {
	positions    domrepo.PositionStore
	trades       domrepo.TradeStore
	lookbackDays int
	metrics      domrepo.Metrics
}

// NewPositionAggregator creates an aggregator over the given stores.
func NewPositionAggregator(positions domrepo.PositionStore, trades domrepo.TradeStore, lookbackDays int, metrics domrepo.Metrics) *PositionAggregator {
	return &PositionAggregator{
		positions:    positions,
		trades:       trades,
		lookbackDays: lookbackDays,
		metrics:      metrics,
	}
}

// Apply folds one dark-pool trade into the symbol's position and returns
// the updated aggregate. Callers serialize per symbol; Apply itself does
// not lock.
func (a *PositionAggregator) Apply(ctx context.Context, t *models.Trade, now time.Time) (*models.StockPosition, error) {
	pos, err := a.positions.Get(ctx, t.Symbol)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNotFound) {
			return nil, fmt.Errorf("load position %s: %w", t.Symbol, err)
		}
		pos = &models.StockPosition{Symbol: t.Symbol}
	}

	dayStart := util.DayStartUTC(now)

	// Day rollover: yesterday's running totals move into the historical
	// window via the trade store, so the current side starts clean.
	if pos.LastUpdated.Before(dayStart) {
		pos.CurrentVolume = 0
		pos.CurrentTrades = 0
		pos.CurrentAvgPrice = 0
	}

	// A print belongs to the day of its SIP timestamp. Stale prints go to
	// the historical side via the trade store only; folding them into the
	// current day would count them on both sides of the ratio.
	if util.DayStartUTC(t.SIPTime()).Equal(dayStart) {
		notional := pos.CurrentAvgPrice*float64(pos.CurrentVolume) + t.Price*float64(t.Size)
		pos.CurrentVolume += t.Size
		pos.CurrentTrades++
		if pos.CurrentVolume > 0 {
			pos.CurrentAvgPrice = notional / float64(pos.CurrentVolume)
		} else {
			pos.CurrentAvgPrice = 0
		}
	}

	if err := a.refreshHistorical(ctx, pos, now); err != nil {
		return nil, err
	}

	pos.ActivityRatio = activityRatio(pos.CurrentVolume, pos.HistoricalVolume, a.lookbackDays)
	pos.LastUpdated = now

	a.metrics.RecordActivityRatio(pos.Symbol, pos.ActivityRatio)
	return pos, nil
}

// Refresh recomputes both sides of the aggregate from the trade store.
// Used after backfills, where trades land outside the live path.
func (a *PositionAggregator) Refresh(ctx context.Context, symbol string, now time.Time) (*models.StockPosition, error) {
	pos, err := a.positions.Get(ctx, symbol)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNotFound) {
			return nil, fmt.Errorf("load position %s: %w", symbol, err)
		}
		pos = &models.StockPosition{Symbol: symbol}
	}

	dayStart := util.DayStartUTC(now)
	current, err := a.trades.QueryRange(ctx, symbol, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("query current day %s: %w", symbol, err)
	}
	pos.CurrentVolume, pos.CurrentTrades, pos.CurrentAvgPrice = summarize(current)

	if err := a.refreshHistorical(ctx, pos, now); err != nil {
		return nil, err
	}

	pos.ActivityRatio = activityRatio(pos.CurrentVolume, pos.HistoricalVolume, a.lookbackDays)
	pos.LastUpdated = now

	if err := a.positions.Put(ctx, pos); err != nil {
		return nil, fmt.Errorf("store position %s: %w", symbol, err)
	}
	a.metrics.RecordActivityRatio(pos.Symbol, pos.ActivityRatio)
	return pos, nil
}

func (a *PositionAggregator) refreshHistorical(ctx context.Context, pos *models.StockPosition, now time.Time) error {
	from, to := util.LookbackWindow(now, a.lookbackDays)
	hist, err := a.trades.QueryRange(ctx, pos.Symbol, from, to)
	if err != nil {
		return fmt.Errorf("query lookback %s: %w", pos.Symbol, err)
	}
	pos.HistoricalVolume, pos.HistoricalTrades, pos.HistoricalAvgPrice = summarize(hist)
	return nil
}

// summarize returns total volume, trade count, and VWAP for a batch.
// VWAP is zero when there is no volume.
func summarize(trades []*models.Trade) (int64, int, float64) {
	var volume int64
	var notional float64
	for _, t := range trades {
		volume += t.Size
		notional += t.Price * float64(t.Size)
	}
	if volume == 0 {
		return 0, len(trades), 0
	}
	return volume, len(trades), notional / float64(volume)
}

// activityRatio compares today's volume against the historical daily
// average. Zero when the window is empty, so brand-new symbols never
// trigger on their first print.
func activityRatio(current, historical int64, lookbackDays int) float64 {
	if historical <= 0 || lookbackDays <= 0 {
		return 0
	}
	avgDaily := float64(historical) / float64(lookbackDays)
	return float64(current) / avgDaily
}
