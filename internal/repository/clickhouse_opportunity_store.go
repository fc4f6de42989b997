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

// ClickHouseOpportunityStore keeps one row per symbol in a
// ReplacingMergeTree versioned by last_updated. Expiry is never written
// back; reads filter on expires_at so stale rows simply stop matching.
type ClickHouseOpportunityStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseOpportunityStore creates the opportunity store.
func NewClickHouseOpportunityStore(db *sql.DB, table string) repository.OpportunityStore {
	return &ClickHouseOpportunityStore{db: db, table: table}
}

const opportunityColumns = `id, symbol, strategy_type, vol_spread, implied_vol, realized_vol,
	expected_profit, confidence, risk_level, activity_ratio,
	created_at, last_updated, expires_at, is_active,
	meta_activity_ratio, meta_total_volume, meta_total_trades`

func (s *ClickHouseOpportunityStore) GetActive(ctx context.Context, symbol string, now time.Time) (*models.TradingOpportunity, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s FINAL WHERE symbol = ? AND is_active = 1 AND expires_at > ?",
		opportunityColumns, s.table)

	row := s.db.QueryRowContext(ctx, q, symbol, now)
	opp, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return opp, nil
}

func (s *ClickHouseOpportunityStore) Put(ctx context.Context, opp *models.TradingOpportunity) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.table, opportunityColumns)

	isActive := uint8(0)
	if opp.IsActive {
		isActive = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		opp.ID, opp.Symbol, opp.StrategyType, opp.VolSpread, opp.ImpliedVol, opp.RealizedVol,
		opp.ExpectedProfit, opp.Confidence, opp.RiskLevel, opp.ActivityRatio,
		opp.CreatedAt, opp.LastUpdated, opp.ExpiresAt, isActive,
		opp.Metadata.ActivityRatio, opp.Metadata.TotalVolume, opp.Metadata.TotalTrades,
	)
	return err
}

func (s *ClickHouseOpportunityStore) ListActive(ctx context.Context, limit int, now time.Time) ([]*models.TradingOpportunity, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s FINAL WHERE is_active = 1 AND expires_at > ? ORDER BY confidence DESC LIMIT ?",
		opportunityColumns, s.table)

	rows, err := s.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opps []*models.TradingOpportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOpportunity(r rowScanner) (*models.TradingOpportunity, error) {
	var o models.TradingOpportunity
	var isActive uint8
	var createdAt, lastUpdated, expiresAt time.Time
	err := r.Scan(
		&o.ID, &o.Symbol, &o.StrategyType, &o.VolSpread, &o.ImpliedVol, &o.RealizedVol,
		&o.ExpectedProfit, &o.Confidence, &o.RiskLevel, &o.ActivityRatio,
		&createdAt, &lastUpdated, &expiresAt, &isActive,
		&o.Metadata.ActivityRatio, &o.Metadata.TotalVolume, &o.Metadata.TotalTrades,
	)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = createdAt.UTC()
	o.LastUpdated = lastUpdated.UTC()
	o.ExpiresAt = expiresAt.UTC()
	o.IsActive = isActive != 0
	return &o, nil
}
