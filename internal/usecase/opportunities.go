package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/pkg/logger"

	"github.com/google/uuid"
)

// OpportunityManager owns the opportunity lifecycle: upsert on trigger,
// TTL-based expiry enforced at read time, and downstream publication.
// At most one active record exists per symbol.
type OpportunityManager struct {
	store   domrepo.OpportunityStore
	pub     domrepo.Publisher
	ttl     time.Duration
	metrics domrepo.Metrics
	logger  *logger.Logger
}

// NewOpportunityManager creates an opportunity manager.
func NewOpportunityManager(store domrepo.OpportunityStore, pub domrepo.Publisher, ttl time.Duration, metrics domrepo.Metrics, lgr *logger.Logger) *OpportunityManager {
	return &OpportunityManager{
		store:   store,
		pub:     pub,
		ttl:     ttl,
		metrics: metrics,
		logger:  lgr,
	}
}

// Upsert creates or refreshes the symbol's active opportunity. A refresh
// keeps the original ID, CreatedAt, and ExpiresAt; the lifetime is fixed
// at creation so a symbol that keeps triggering still expires on schedule.
// Everything else is overwritten with the latest evaluation.
func (m *OpportunityManager) Upsert(ctx context.Context, pos *models.StockPosition, snap models.VolatilitySnapshot, ev Evaluation, now time.Time) (*models.TradingOpportunity, error) {
	opp, err := m.store.GetActive(ctx, pos.Symbol, now)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNotFound) {
			return nil, fmt.Errorf("load opportunity %s: %w", pos.Symbol, err)
		}
		opp = &models.TradingOpportunity{
			ID:        uuid.NewString(),
			Symbol:    pos.Symbol,
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
		}
	}

	opp.StrategyType = ev.StrategyType
	opp.VolSpread = snap.VolSpread
	opp.ImpliedVol = snap.ImpliedVol
	opp.RealizedVol = snap.HistoricalVol
	opp.ExpectedProfit = ev.ExpectedProfit
	opp.Confidence = ev.Confidence
	opp.RiskLevel = ev.RiskLevel
	opp.ActivityRatio = pos.ActivityRatio
	opp.LastUpdated = now
	opp.IsActive = true
	opp.Metadata = models.OpportunityMetadata{
		ActivityRatio: pos.ActivityRatio,
		TotalVolume:   pos.CurrentVolume,
		TotalTrades:   pos.CurrentTrades,
	}

	if err := m.store.Put(ctx, opp); err != nil {
		return nil, fmt.Errorf("store opportunity %s: %w", pos.Symbol, err)
	}

	if m.pub != nil {
		if err := m.pub.PublishOpportunity(ctx, opp); err != nil {
			// storage is the source of truth; a publish failure only loses
			// the notification
			m.metrics.RecordError("opportunity_publish")
			m.logger.Warn("opportunity publish failed",
				logger.String("symbol", opp.Symbol),
				logger.Error(err))
		}
	}

	m.metrics.RecordOpportunityScore(opp.Symbol, ev.Score)
	m.logger.Info("opportunity upserted",
		logger.String("symbol", opp.Symbol),
		logger.String("strategy", opp.StrategyType),
		logger.Float64("confidence", opp.Confidence),
		logger.String("risk", opp.RiskLevel))
	return opp, nil
}

// ListActive returns unexpired opportunities ordered by confidence,
// highest first.
func (m *OpportunityManager) ListActive(ctx context.Context, limit int, now time.Time) ([]*models.TradingOpportunity, error) {
	return m.store.ListActive(ctx, limit, now)
}
