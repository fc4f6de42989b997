package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"DarkPull/internal/domain/models"
	"DarkPull/internal/domain/repository"
)

// ClickHouseTradeStore persists dark-pool prints. The table is a plain
// MergeTree ordered by (symbol, sip_ts); window queries hit the primary
// key directly.
type ClickHouseTradeStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseTradeStore creates the trade store.
func NewClickHouseTradeStore(db *sql.DB, table string) repository.TradeStore {
	return &ClickHouseTradeStore{db: db, table: table}
}

func (s *ClickHouseTradeStore) Init(ctx context.Context) error {
	return nil // schema managed in DI via pkg/clickhouse InitSchema
}

func (s *ClickHouseTradeStore) Append(ctx context.Context, t *models.Trade) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (symbol, trade_id, price, size, venue_id, trf_id, trf_ts, sip_ts, conditions, tape, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.table)
	_, err := s.db.ExecContext(ctx, q, tradeArgs(t)...)
	return err
}

func (s *ClickHouseTradeStore) AppendBatch(ctx context.Context, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(trades); start += chunkSize {
		end := start + chunkSize
		if end > len(trades) {
			end = len(trades)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, t := range trades[start:end] {
			if t == nil || t.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, tradeArgs(t)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (symbol, trade_id, price, size, venue_id, trf_id, trf_ts, sip_ts, conditions, tape, seq) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// QueryRange returns prints with sip_ts in [from, to), oldest first.
func (s *ClickHouseTradeStore) QueryRange(ctx context.Context, symbol string, from, to time.Time) ([]*models.Trade, error) {
	q := fmt.Sprintf(
		"SELECT symbol, trade_id, price, size, venue_id, trf_id, sip_ts, conditions FROM %s WHERE symbol = ? AND sip_ts >= ? AND sip_ts < ? ORDER BY sip_ts ASC",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// RecentTrades returns the newest prints for a symbol, newest first.
func (s *ClickHouseTradeStore) RecentTrades(ctx context.Context, symbol string, limit int) ([]*models.Trade, error) {
	q := fmt.Sprintf(
		"SELECT symbol, trade_id, price, size, venue_id, trf_id, sip_ts, conditions FROM %s WHERE symbol = ? ORDER BY sip_ts DESC LIMIT ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

func (s *ClickHouseTradeStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTradeStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}

func tradeArgs(t *models.Trade) []interface{} {
	var trfTS interface{}
	if t.TRFTimestampMS != nil {
		trfTS = time.UnixMilli(*t.TRFTimestampMS).UTC()
	}
	return []interface{}{
		t.Symbol,
		t.TradeID,
		t.Price,
		t.Size,
		t.VenueID,
		t.TRFID,
		trfTS,
		t.SIPTime(),
		t.Conditions,
		t.Tape,
		t.SequenceNumber,
	}
}

func scanTrades(rows *sql.Rows) ([]*models.Trade, error) {
	var trades []*models.Trade
	for rows.Next() {
		var t models.Trade
		var sipTS time.Time
		var trfID sql.NullInt64
		if err := rows.Scan(&t.Symbol, &t.TradeID, &t.Price, &t.Size, &t.VenueID, &trfID, &sipTS, &t.Conditions); err != nil {
			return nil, err
		}
		t.SIPTimestampMS = sipTS.UnixMilli()
		if trfID.Valid {
			id := trfID.Int64
			t.TRFID = &id
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}
