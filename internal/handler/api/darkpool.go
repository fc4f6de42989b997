package api

import (
	"context"
	"errors"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	"DarkPull/internal/usecase"
	xhttp "DarkPull/pkg/http"
	xlogger "DarkPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Subscriber adds symbols to the live stream at runtime.
type Subscriber interface {
	Subscribe(ctx context.Context, symbols ...string) error
}

// HealthChecker reports whether the backing stores are reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ConfigView is the subset of runtime configuration exposed over HTTP.
type ConfigView struct {
	DarkPoolVenueID          int     `json:"dark_pool_venue_id"`
	ActivityThresholdPercent float64 `json:"activity_threshold_percent"`
	LookbackDays             int     `json:"lookback_days"`
	VolatilityThreshold      float64 `json:"volatility_threshold"`
	OpportunityTTLHours      float64 `json:"opportunity_ttl_hours"`
	Symbols                  []string `json:"symbols"`
}

// DarkPoolHandler exposes the read path and operational endpoints.
type DarkPoolHandler struct {
	logger     *xlogger.Logger
	analytics  *usecase.AnalyticsReader
	backfiller *usecase.Backfiller
	subscriber Subscriber
	health     HealthChecker
	config     ConfigView
}

// NewDarkPoolHandler creates the HTTP handler. subscriber and health may
// be nil when the component is not wired (kafka ingest has no stream).
func NewDarkPoolHandler(lgr *xlogger.Logger, analytics *usecase.AnalyticsReader, backfiller *usecase.Backfiller, subscriber Subscriber, health HealthChecker, config ConfigView) *DarkPoolHandler {
	return &DarkPoolHandler{
		logger:     lgr,
		analytics:  analytics,
		backfiller: backfiller,
		subscriber: subscriber,
		health:     health,
		config:     config,
	}
}

func (h *DarkPoolHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/opportunities", h.Opportunities)
	g.GET("/analytics/:symbol", h.Analytics)
	g.POST("/subscribe/:symbol", h.Subscribe)
	g.POST("/backfill", h.Backfill)
	g.GET("/config", h.Config)
	g.GET("/health", h.Health)
}

// Opportunities returns active opportunities ordered by confidence.
func (h *DarkPoolHandler) Opportunities(c echo.Context) error {
	req := &models.OpportunitiesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	views, err := h.analytics.Opportunities(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("opportunities usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, views, int64(len(views)))
}

// Analytics returns the per-symbol activity view.
func (h *DarkPoolHandler) Analytics(c echo.Context) error {
	req := &models.AnalyticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analytics.SymbolAnalytics(c.Request().Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no dark pool activity for %s", req.Symbol))
		}
		h.logger.Error("analytics usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Subscribe adds a symbol to the live stream.
func (h *DarkPoolHandler) Subscribe(c echo.Context) error {
	req := &models.SubscribeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.subscriber == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("live stream not enabled"))
	}

	if err := h.subscriber.Subscribe(c.Request().Context(), req.Symbol); err != nil {
		h.logger.Error("subscribe error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("subscribe %s failed", req.Symbol))
	}
	h.logger.Info("symbol subscribed", xlogger.String("symbol", req.Symbol))
	return xhttp.SuccessResponse(c, map[string]string{"symbol": req.Symbol, "status": "subscribed"})
}

// Backfill schedules a historical load for one symbol.
func (h *DarkPoolHandler) Backfill(c echo.Context) error {
	req := &models.BackfillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.backfiller == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("backfill not enabled"))
	}

	if err := h.backfiller.Enqueue(c.Request().Context(), req.Symbol, req.Days); err != nil {
		h.logger.Error("backfill enqueue error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("backfill %s failed", req.Symbol))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"symbol": req.Symbol, "days": req.Days, "status": "scheduled"})
}

// Config exposes the effective detection thresholds.
func (h *DarkPoolHandler) Config(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.config)
}

// Health reports storage reachability.
func (h *DarkPoolHandler) Health(c echo.Context) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Health(ctx); err != nil {
			return xhttp.ServiceUnavailableResponse(c, map[string]string{"status": "degraded", "error": err.Error()})
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

var _ xhttp.Handler = (*DarkPoolHandler)(nil)
