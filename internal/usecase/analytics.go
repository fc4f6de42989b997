package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/cache"
)

const recentTradesLimit = 20

// AnalyticsReader serves the read path: per-symbol analytics and the
// active opportunity list. Responses are cached briefly so a dashboard
// polling every second does not hammer ClickHouse.
type AnalyticsReader struct {
	positions domrepo.PositionStore
	trades    domrepo.TradeStore
	opps      *OpportunityManager
	cache     cache.Service
	cacheTTL  time.Duration
}

// NewAnalyticsReader creates the read-path aggregator. cache may be nil.
func NewAnalyticsReader(positions domrepo.PositionStore, trades domrepo.TradeStore, opps *OpportunityManager, c cache.Service, cacheTTL time.Duration) *AnalyticsReader {
	return &AnalyticsReader{
		positions: positions,
		trades:    trades,
		opps:      opps,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// SymbolAnalytics returns the position view plus recent dark-pool prints.
func (r *AnalyticsReader) SymbolAnalytics(ctx context.Context, symbol string) (*models.SymbolAnalytics, error) {
	key := "analytics:" + symbol
	if r.cache != nil {
		var cached models.SymbolAnalytics
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	pos, err := r.positions.Get(ctx, symbol)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load position %s: %w", symbol, err)
	}

	recent, err := r.trades.RecentTrades(ctx, symbol, recentTradesLimit)
	if err != nil {
		return nil, fmt.Errorf("recent trades %s: %w", symbol, err)
	}

	views := make([]models.TradeView, 0, len(recent))
	for _, t := range recent {
		views = append(views, models.TradeView{
			Price:      t.Price,
			Size:       t.Size,
			Timestamp:  t.SIPTime(),
			Conditions: t.Conditions,
		})
	}

	out := &models.SymbolAnalytics{
		Symbol: pos.Symbol,
		CurrentActivity: models.ActivitySummary{
			Volume:   pos.CurrentVolume,
			Trades:   pos.CurrentTrades,
			AvgPrice: pos.CurrentAvgPrice,
		},
		HistoricalActivity: models.ActivitySummary{
			Volume:   pos.HistoricalVolume,
			Trades:   pos.HistoricalTrades,
			AvgPrice: pos.HistoricalAvgPrice,
		},
		ActivityRatio: pos.ActivityRatio,
		Volatility: models.VolatilityView{
			Implied:    pos.ImpliedVolatility,
			Historical: pos.HistoricalVolatility,
			Spread:     pos.VolatilitySpread,
		},
		IsOpportunity:    pos.IsOpportunity,
		OpportunityScore: pos.OpportunityScore,
		LastUpdated:      pos.LastUpdated,
		RecentTrades:     views,
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, key, out, r.cacheTTL)
	}
	return out, nil
}

// Opportunities returns active, unexpired opportunities ordered by
// confidence descending.
func (r *AnalyticsReader) Opportunities(ctx context.Context, limit int) ([]models.OpportunityView, error) {
	now := time.Now().UTC()
	opps, err := r.opps.ListActive(ctx, limit, now)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}

	views := make([]models.OpportunityView, 0, len(opps))
	for _, o := range opps {
		views = append(views, models.NewOpportunityView(o))
	}
	return views, nil
}
