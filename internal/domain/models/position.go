package models

import "time"

// StockPosition is the long-lived per-symbol aggregate of dark-pool activity.
// One row per symbol; mutated only by the position aggregator.
type StockPosition struct {
	Symbol string

	// Current UTC day.
	CurrentVolume   int64
	CurrentTrades   int
	CurrentAvgPrice float64

	// Trailing lookback window, excluding today.
	HistoricalVolume   int64
	HistoricalTrades   int
	HistoricalAvgPrice float64

	// Current-day volume relative to the historical daily average.
	// Zero when the historical window is empty.
	ActivityRatio float64

	ImpliedVolatility    float64
	HistoricalVolatility float64
	VolatilitySpread     float64

	IsOpportunity    bool
	OpportunityScore float64

	LastUpdated time.Time
}
