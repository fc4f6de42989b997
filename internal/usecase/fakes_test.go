package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeMetrics struct {
	mu       sync.Mutex
	ingested int
	darkPool int
	errors   []string
	ratios   map[string]float64
}

func (m *fakeMetrics) RecordTradeIngested(source, symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested++
}

func (m *fakeMetrics) RecordDarkPoolTrade(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.darkPool++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *fakeMetrics) RecordActivityRatio(symbol string, ratio float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ratios == nil {
		m.ratios = map[string]float64{}
	}
	m.ratios[symbol] = ratio
}

func (m *fakeMetrics) RecordOpportunityScore(symbol string, score float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)            {}

type memTradeStore struct {
	trades []*models.Trade
}

func (s *memTradeStore) Init(ctx context.Context) error { return nil }

func (s *memTradeStore) Append(ctx context.Context, t *models.Trade) error {
	s.trades = append(s.trades, t)
	return nil
}

func (s *memTradeStore) AppendBatch(ctx context.Context, trades []*models.Trade) error {
	s.trades = append(s.trades, trades...)
	return nil
}

func (s *memTradeStore) QueryRange(ctx context.Context, symbol string, from, to time.Time) ([]*models.Trade, error) {
	var out []*models.Trade
	for _, t := range s.trades {
		ts := t.SIPTime()
		if t.Symbol == symbol && !ts.Before(from) && ts.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTradeStore) RecentTrades(ctx context.Context, symbol string, limit int) ([]*models.Trade, error) {
	var out []*models.Trade
	for i := len(s.trades) - 1; i >= 0 && len(out) < limit; i-- {
		if s.trades[i].Symbol == symbol {
			out = append(out, s.trades[i])
		}
	}
	return out, nil
}

func (s *memTradeStore) Health(ctx context.Context) error { return nil }
func (s *memTradeStore) Close() error                     { return nil }

type memPositionStore struct {
	positions map[string]*models.StockPosition
	puts      int
}

func (s *memPositionStore) Get(ctx context.Context, symbol string) (*models.StockPosition, error) {
	pos, ok := s.positions[symbol]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	cp := *pos
	return &cp, nil
}

func (s *memPositionStore) Put(ctx context.Context, pos *models.StockPosition) error {
	if s.positions == nil {
		s.positions = map[string]*models.StockPosition{}
	}
	cp := *pos
	s.positions[pos.Symbol] = &cp
	s.puts++
	return nil
}

type memOpportunityStore struct {
	bySymbol map[string]*models.TradingOpportunity
	puts     int
}

func (s *memOpportunityStore) GetActive(ctx context.Context, symbol string, now time.Time) (*models.TradingOpportunity, error) {
	opp, ok := s.bySymbol[symbol]
	if !ok || !opp.IsActive || opp.Expired(now) {
		return nil, domrepo.ErrNotFound
	}
	cp := *opp
	return &cp, nil
}

func (s *memOpportunityStore) Put(ctx context.Context, opp *models.TradingOpportunity) error {
	if s.bySymbol == nil {
		s.bySymbol = map[string]*models.TradingOpportunity{}
	}
	cp := *opp
	s.bySymbol[opp.Symbol] = &cp
	s.puts++
	return nil
}

func (s *memOpportunityStore) ListActive(ctx context.Context, limit int, now time.Time) ([]*models.TradingOpportunity, error) {
	var out []*models.TradingOpportunity
	for _, opp := range s.bySymbol {
		if opp.IsActive && !opp.Expired(now) {
			cp := *opp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePublisher struct {
	published []*models.TradingOpportunity
	err       error
}

func (p *fakePublisher) PublishOpportunity(ctx context.Context, opp *models.TradingOpportunity) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, opp)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeOracle struct {
	snap models.VolatilitySnapshot
	err  error
}

func (o *fakeOracle) CalculateVolatility(ctx context.Context, symbol string) (models.VolatilitySnapshot, error) {
	if o.err != nil {
		return models.VolatilitySnapshot{}, o.err
	}
	return o.snap, nil
}

func int64p(v int64) *int64 { return &v }

func darkTrade(symbol string, price float64, size int64, ts time.Time) *models.Trade {
	return &models.Trade{
		Symbol:         symbol,
		TradeID:        "t-" + ts.Format("150405.000"),
		Price:          price,
		Size:           size,
		VenueID:        4,
		TRFID:          int64p(201),
		SIPTimestampMS: ts.UnixMilli(),
	}
}
