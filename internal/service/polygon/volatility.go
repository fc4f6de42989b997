package polygon

import (
	"context"
	"fmt"
	"math"
	"time"

	"DarkPull/internal/domain/models"
	domsvc "DarkPull/internal/domain/service"
	icache "DarkPull/internal/service/cache"
	"DarkPull/pkg/logger"
)

const tradingDaysPerYear = 252

// Oracle computes volatility snapshots from daily closes. Implied
// volatility has no free source, so it is proxied as historical plus a
// fixed premium until an options feed is wired in.
type Oracle struct {
	api      domsvc.MarketDataAPI
	days     int
	cacheTTL time.Duration
	cache    *icache.TTLCache
	logger   *logger.Logger
}

// NewOracle creates a volatility oracle with snapshot caching.
func NewOracle(api domsvc.MarketDataAPI, days int, cacheTTL time.Duration, lgr *logger.Logger) domsvc.VolatilityOracle {
	return &Oracle{
		api:      api,
		days:     days,
		cacheTTL: cacheTTL,
		cache:    icache.NewTTLCache(),
		logger:   lgr,
	}
}

// CalculateVolatility returns annualized historical volatility from daily
// close-to-close returns and the implied proxy derived from it.
func (o *Oracle) CalculateVolatility(ctx context.Context, symbol string) (models.VolatilitySnapshot, error) {
	if v, ok := o.cache.Get(symbol); ok {
		if snap, ok2 := v.(models.VolatilitySnapshot); ok2 {
			return snap, nil
		}
	}

	closes, err := o.api.DailyCloses(ctx, symbol, o.days)
	if err != nil {
		return models.VolatilitySnapshot{}, fmt.Errorf("daily closes %s: %w", symbol, err)
	}
	if len(closes) < 2 {
		return models.VolatilitySnapshot{}, fmt.Errorf("not enough closes for %s: %d", symbol, len(closes))
	}

	hist := annualizedVolatility(closes)
	snap := models.VolatilitySnapshot{
		HistoricalVol: hist,
		ImpliedVol:    hist * 1.1,
	}
	snap.VolSpread = snap.ImpliedVol - snap.HistoricalVol

	o.cache.Set(symbol, snap, o.cacheTTL)
	o.logger.Debug("volatility snapshot",
		logger.String("symbol", symbol),
		logger.Float64("historical", snap.HistoricalVol),
		logger.Float64("implied", snap.ImpliedVol))
	return snap, nil
}

// annualizedVolatility is the stddev of simple daily returns scaled by
// sqrt(252).
func annualizedVolatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}
