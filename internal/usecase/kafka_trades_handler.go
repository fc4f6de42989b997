package usecase

import (
	"context"
	"encoding/json"
	"time"

	"DarkPull/internal/domain/models"
	domrepo "DarkPull/internal/domain/repository"
	pkgkafka "DarkPull/pkg/kafka"
)

// KafkaTradesHandler is the alternative ingest backend: trade prints
// arrive on a Kafka topic instead of the WebSocket. Messages carry the
// same JSON shape as the stream events.
type KafkaTradesHandler struct {
	topic   string
	engine  *Engine
	metrics domrepo.Metrics
}

func NewKafkaTradesHandler(topic string, engine *Engine, metrics domrepo.Metrics) *KafkaTradesHandler {
	return &KafkaTradesHandler{topic: topic, engine: engine, metrics: metrics}
}

func (h *KafkaTradesHandler) Topic() string { return h.topic }

func (h *KafkaTradesHandler) Handle(ctx context.Context, b []byte) error {
	var t models.Trade
	if err := json.Unmarshal(b, &t); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if err := t.Validate(); err != nil {
		h.metrics.RecordError("consumer_validate")
		// a malformed print will never become valid; drop instead of retry
		return nil
	}

	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(t.SIPTime()).Seconds())

	return h.engine.ProcessTrade(ctx, &t)
}

var _ pkgkafka.MessageHandler = (*KafkaTradesHandler)(nil)
