package usecase

import (
	"context"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	mid "DarkPull/internal/middleware"
)

// TradeCollector connects the market stream to the engine through the
// realtime pipeline.
type TradeCollector struct {
	stream  domrepo.MarketStream
	symbols []string
	metrics domrepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewTradeCollector creates a collector for the given symbols.
func NewTradeCollector(stream domrepo.MarketStream, symbols []string, metrics domrepo.Metrics, pipe *mid.RealtimePipeline) *TradeCollector {
	return &TradeCollector{stream: stream, symbols: symbols, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *TradeCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and launches the consume loop.
func (c *TradeCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, c.symbols...); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

func (c *TradeCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-trCh:
			if t == nil {
				continue
			}
			_ = c.pipe.Process(ctx, t)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TradeCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
