package repository

import (
	"context"
	"errors"
	"time"

	"DarkPull/internal/domain/models"
)

// ErrNotFound is returned by stores when no row exists for the key.
var ErrNotFound = errors.New("repository: not found")

// MarketStream is the trade feed the collector consumes.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols ...string) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TradeStore persists classified dark-pool prints and serves the window
// queries the aggregator recomputes from.
type TradeStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, t *models.Trade) error
	AppendBatch(ctx context.Context, trades []*models.Trade) error
	QueryRange(ctx context.Context, symbol string, from, to time.Time) ([]*models.Trade, error)
	RecentTrades(ctx context.Context, symbol string, limit int) ([]*models.Trade, error)
	Health(ctx context.Context) error
	Close() error
}

// PositionStore persists per-symbol aggregates. Get returns ErrNotFound
// for symbols never seen.
type PositionStore interface {
	Get(ctx context.Context, symbol string) (*models.StockPosition, error)
	Put(ctx context.Context, pos *models.StockPosition) error
}

// OpportunityStore persists scored opportunities. GetActive returns
// ErrNotFound when the symbol has no unexpired active record; expiry is
// enforced at read time.
type OpportunityStore interface {
	GetActive(ctx context.Context, symbol string, now time.Time) (*models.TradingOpportunity, error)
	Put(ctx context.Context, opp *models.TradingOpportunity) error
	ListActive(ctx context.Context, limit int, now time.Time) ([]*models.TradingOpportunity, error)
}

// Publisher emits opportunity events to downstream consumers.
type Publisher interface {
	PublishOpportunity(ctx context.Context, opp *models.TradingOpportunity) error
	Close() error
}

// Metrics is the instrumentation sink used across the pipeline.
type Metrics interface {
	RecordTradeIngested(source, symbol string)
	RecordDarkPoolTrade(symbol string)
	RecordError(kind string)
	RecordActivityRatio(symbol string, ratio float64)
	RecordOpportunityScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
}
