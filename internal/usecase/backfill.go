package usecase

import (
	"context"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	domsvc "DarkPull/internal/domain/service"
	"DarkPull/pkg/logger"
	"DarkPull/pkg/queue"
	"DarkPull/pkg/util"

	"golang.org/x/sync/errgroup"
)

const backfillJobType = "backfill"
const tradesPerDayLimit = 50000

// Backfiller loads historical dark-pool prints for a symbol via the REST
// API. Jobs arrive over the Redis queue so a crash mid-backfill is
// retried; days are fetched concurrently up to the worker limit.
type Backfiller struct {
	api        domsvc.MarketDataAPI
	classifier *Classifier
	trades     domrepo.TradeStore
	engine     *Engine
	publisher  queue.QueueService
	workers    int
	logger     *logger.Logger
}

// NewBackfiller creates a backfiller.
func NewBackfiller(api domsvc.MarketDataAPI, classifier *Classifier, trades domrepo.TradeStore, engine *Engine, publisher queue.QueueService, workers int, lgr *logger.Logger) *Backfiller {
	if workers <= 0 {
		workers = 4
	}
	return &Backfiller{
		api:        api,
		classifier: classifier,
		trades:     trades,
		engine:     engine,
		publisher:  publisher,
		workers:    workers,
		logger:     lgr,
	}
}

// Enqueue schedules a backfill job.
func (b *Backfiller) Enqueue(ctx context.Context, symbol string, days int) error {
	if b.publisher == nil {
		// no queue wired; run inline
		return b.run(ctx, symbol, days)
	}
	return b.publisher.PublishMessage(ctx, backfillJobType, models.BackfillRequest{Symbol: symbol, Days: days})
}

// Name implements queue.Job.
func (b *Backfiller) Name() string { return "historical-backfill" }

// Type implements queue.Job.
func (b *Backfiller) Type() string { return backfillJobType }

// Handle implements queue.Job.
func (b *Backfiller) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.BackfillRequest](payload)
	if err != nil {
		return fmt.Errorf("backfill payload: %w", err)
	}
	return b.run(ctx, req.Symbol, req.Days)
}

func (b *Backfiller) run(ctx context.Context, symbol string, days int) error {
	start := time.Now()
	b.logger.Info("backfill started",
		logger.String("symbol", symbol),
		logger.Int("days", days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	now := time.Now().UTC()
	for i := 1; i <= days; i++ {
		date := util.DateUTC(now.AddDate(0, 0, -i))
		g.Go(func() error {
			return b.backfillDate(gctx, symbol, date)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("backfill %s: %w", symbol, err)
	}

	// fold the new history into the position
	if err := b.engine.RefreshSymbol(ctx, symbol); err != nil {
		return fmt.Errorf("refresh after backfill %s: %w", symbol, err)
	}

	b.logger.Info("backfill complete",
		logger.String("symbol", symbol),
		logger.Int("days", days),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

func (b *Backfiller) backfillDate(ctx context.Context, symbol, date string) error {
	prints, err := b.api.TradesForDate(ctx, symbol, date, tradesPerDayLimit)
	if err != nil {
		return fmt.Errorf("fetch %s@%s: %w", symbol, date, err)
	}

	dark := make([]*models.Trade, 0, len(prints))
	for _, t := range prints {
		if t.Validate() != nil {
			continue
		}
		if b.classifier.IsDarkPool(t) {
			dark = append(dark, t)
		}
	}
	if len(dark) == 0 {
		return nil
	}

	if err := b.trades.AppendBatch(ctx, dark); err != nil {
		return fmt.Errorf("store %s@%s: %w", symbol, date, err)
	}
	b.logger.Debug("backfilled day",
		logger.String("symbol", symbol),
		logger.String("date", date),
		logger.Int("dark_pool_trades", len(dark)))
	return nil
}

var _ queue.Job = (*Backfiller)(nil)
