package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DarkPull/internal/usecase"
	"DarkPull/pkg/cache"
	pkgch "DarkPull/pkg/clickhouse"
	"DarkPull/pkg/config"
	xhttp "DarkPull/pkg/http"
	pkgkafka "DarkPull/pkg/kafka"
	applogger "DarkPull/pkg/logger"
	"DarkPull/pkg/queue"
)

// App encapsulates the entire application lifecycle. Either the collector
// (websocket ingest) or the consumer (kafka ingest) is active, never both.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.TradeCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	backfillQ   *queue.RedisQueue
	chClient    *pkgch.Client
	cacheSvc    cache.Service
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	backfillQ *queue.RedisQueue,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      lgr,
		collector:   collector,
		consumer:    consumer,
		kh:          kh,
		backfillQ:   backfillQ,
		chClient:    chClient,
		cacheSvc:    cacheSvc,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("symbols", a.cfg.Polygon.Symbols))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.backfillQ != nil {
		if err := a.backfillQ.Start(); err != nil {
			l.Error("backfill queue start error", applogger.Error(err))
		} else {
			l.Info("backfill queue started", applogger.Int("workers", a.cfg.Backfill.Workers))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.backfillQ != nil {
		if err := a.backfillQ.Stop(shutdownCtx); err != nil {
			l.Warn("backfill queue stop error", applogger.Error(err))
		}
	}

	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
