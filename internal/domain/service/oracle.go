package service

import (
	"context"

	"DarkPull/internal/domain/models"
)

// VolatilityOracle supplies implied/historical volatility for a symbol.
// Implementations may fail or time out; callers substitute a zero snapshot.
type VolatilityOracle interface {
	CalculateVolatility(ctx context.Context, symbol string) (models.VolatilitySnapshot, error)
}

// MarketDataAPI is the REST side of the market-data provider, used by the
// oracle and the historical backfill.
type MarketDataAPI interface {
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
	TradesForDate(ctx context.Context, symbol, date string, limit int) ([]*models.Trade, error)
}
