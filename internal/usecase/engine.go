package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	domsvc "DarkPull/internal/domain/service"
	"DarkPull/pkg/logger"
)

// Engine runs the per-trade sequence: classify, persist, aggregate,
// consult the volatility oracle, score, and upsert the opportunity.
// Work is serialized per symbol; different symbols proceed concurrently.
type Engine struct {
	classifier *Classifier
	aggregator *PositionAggregator
	scorer     *Scorer
	opps       *OpportunityManager
	oracle     domsvc.VolatilityOracle
	positions  domrepo.PositionStore
	trades     domrepo.TradeStore
	metrics    domrepo.Metrics
	logger     *logger.Logger

	oracleTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-symbol, grown lazily, never removed
}

// NewEngine creates the trade processing engine.
func NewEngine(
	classifier *Classifier,
	aggregator *PositionAggregator,
	scorer *Scorer,
	opps *OpportunityManager,
	oracle domsvc.VolatilityOracle,
	positions domrepo.PositionStore,
	trades domrepo.TradeStore,
	metrics domrepo.Metrics,
	lgr *logger.Logger,
	oracleTimeout time.Duration,
) *Engine {
	return &Engine{
		classifier:    classifier,
		aggregator:    aggregator,
		scorer:        scorer,
		opps:          opps,
		oracle:        oracle,
		positions:     positions,
		trades:        trades,
		metrics:       metrics,
		logger:        lgr,
		oracleTimeout: oracleTimeout,
		locks:         make(map[string]*sync.Mutex),
	}
}

// ProcessTrade runs one print through the pipeline. Non-dark-pool prints
// are counted and dropped; they never touch storage or positions.
func (e *Engine) ProcessTrade(ctx context.Context, t *models.Trade) error {
	start := time.Now()
	e.metrics.RecordTradeIngested("stream", t.Symbol)

	if !e.classifier.IsDarkPool(t) {
		return nil
	}
	e.metrics.RecordDarkPoolTrade(t.Symbol)

	lock := e.symbolLock(t.Symbol)
	lock.Lock()
	defer lock.Unlock()

	if err := e.trades.Append(ctx, t); err != nil {
		e.metrics.RecordError("trade_store")
		return fmt.Errorf("append trade: %w", err)
	}

	now := time.Now().UTC()
	pos, err := e.aggregator.Apply(ctx, t, now)
	if err != nil {
		e.metrics.RecordError("aggregate")
		return fmt.Errorf("aggregate %s: %w", t.Symbol, err)
	}

	snap := e.volatility(ctx, t.Symbol)
	pos.ImpliedVolatility = snap.ImpliedVol
	pos.HistoricalVolatility = snap.HistoricalVol
	pos.VolatilitySpread = snap.VolSpread

	ev := e.scorer.Evaluate(pos, snap)
	pos.IsOpportunity = ev.Triggered
	pos.OpportunityScore = ev.Score

	if err := e.positions.Put(ctx, pos); err != nil {
		e.metrics.RecordError("position_store")
		return fmt.Errorf("store position %s: %w", t.Symbol, err)
	}

	if ev.Triggered {
		if _, err := e.opps.Upsert(ctx, pos, snap, ev, now); err != nil {
			e.metrics.RecordError("opportunity_store")
			return fmt.Errorf("upsert opportunity %s: %w", t.Symbol, err)
		}
	}

	e.metrics.RecordLatency("process_trade", time.Since(start).Seconds())
	return nil
}

// RefreshSymbol recomputes a symbol's position from storage and re-runs
// scoring. Used after backfills.
func (e *Engine) RefreshSymbol(ctx context.Context, symbol string) error {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	pos, err := e.aggregator.Refresh(ctx, symbol, now)
	if err != nil {
		return err
	}

	snap := e.volatility(ctx, symbol)
	pos.ImpliedVolatility = snap.ImpliedVol
	pos.HistoricalVolatility = snap.HistoricalVol
	pos.VolatilitySpread = snap.VolSpread

	ev := e.scorer.Evaluate(pos, snap)
	pos.IsOpportunity = ev.Triggered
	pos.OpportunityScore = ev.Score

	if err := e.positions.Put(ctx, pos); err != nil {
		return fmt.Errorf("store position %s: %w", symbol, err)
	}
	if ev.Triggered {
		if _, err := e.opps.Upsert(ctx, pos, snap, ev, now); err != nil {
			return fmt.Errorf("upsert opportunity %s: %w", symbol, err)
		}
	}
	return nil
}

// volatility consults the oracle under a hard timeout. On any failure the
// zero snapshot is used: scoring still runs, the trigger never fires.
func (e *Engine) volatility(ctx context.Context, symbol string) models.VolatilitySnapshot {
	octx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	snap, err := e.oracle.CalculateVolatility(octx, symbol)
	if err != nil {
		e.metrics.RecordError("oracle")
		e.logger.Debug("oracle unavailable",
			logger.String("symbol", symbol),
			logger.Error(err))
		return models.VolatilitySnapshot{}
	}
	return snap
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		e.locks[symbol] = l
	}
	return l
}
