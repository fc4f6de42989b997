package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	"DarkPull/internal/domain/repository"
)

// ClickHousePositionStore keeps one row per symbol in a
// ReplacingMergeTree versioned by last_updated; Put inserts a new version
// and reads use FINAL to collapse to the latest.
type ClickHousePositionStore struct {
	db    *sql.DB
	table string
}

// NewClickHousePositionStore creates the position store.
func NewClickHousePositionStore(db *sql.DB, table string) repository.PositionStore {
	return &ClickHousePositionStore{db: db, table: table}
}

func (s *ClickHousePositionStore) Get(ctx context.Context, symbol string) (*models.StockPosition, error) {
	q := fmt.Sprintf(
		`SELECT symbol, current_volume, current_trades, current_avg_price,
		        historical_volume, historical_trades, historical_avg_price,
		        activity_ratio, implied_vol, historical_vol, vol_spread,
		        is_opportunity, opportunity_score, last_updated
		 FROM %s FINAL WHERE symbol = ?`, s.table)

	var p models.StockPosition
	var isOpp uint8
	var lastUpdated time.Time
	err := s.db.QueryRowContext(ctx, q, symbol).Scan(
		&p.Symbol, &p.CurrentVolume, &p.CurrentTrades, &p.CurrentAvgPrice,
		&p.HistoricalVolume, &p.HistoricalTrades, &p.HistoricalAvgPrice,
		&p.ActivityRatio, &p.ImpliedVolatility, &p.HistoricalVolatility, &p.VolatilitySpread,
		&isOpp, &p.OpportunityScore, &lastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.IsOpportunity = isOpp != 0
	p.LastUpdated = lastUpdated.UTC()
	return &p, nil
}

func (s *ClickHousePositionStore) Put(ctx context.Context, pos *models.StockPosition) error {
	q := fmt.Sprintf(
		`INSERT INTO %s (symbol, current_volume, current_trades, current_avg_price,
		                 historical_volume, historical_trades, historical_avg_price,
		                 activity_ratio, implied_vol, historical_vol, vol_spread,
		                 is_opportunity, opportunity_score, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	isOpp := uint8(0)
	if pos.IsOpportunity {
		isOpp = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		pos.Symbol, pos.CurrentVolume, pos.CurrentTrades, pos.CurrentAvgPrice,
		pos.HistoricalVolume, pos.HistoricalTrades, pos.HistoricalAvgPrice,
		pos.ActivityRatio, pos.ImpliedVolatility, pos.HistoricalVolatility, pos.VolatilitySpread,
		isOpp, pos.OpportunityScore, pos.LastUpdated,
	)
	return err
}
