package repository

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"DarkPull/internal/domain/repository"
	pkgkafka "DarkPull/pkg/kafka"
)

// ConsumerMetricsHook records handling latency and consume errors for
// every message the trade consumer pulls off the wire. It also threads
// the trace id from the message headers into the handler context.
type ConsumerMetricsHook struct {
	metrics repository.Metrics
}

var _ pkgkafka.ConsumerHook = (*ConsumerMetricsHook)(nil)

// NewConsumerMetricsHook creates the hook.
func NewConsumerMetricsHook(m repository.Metrics) *ConsumerMetricsHook {
	return &ConsumerMetricsHook{metrics: m}
}

func (h *ConsumerMetricsHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	ctx = pkgkafka.WithStartTime(ctx, time.Now())
	ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
	return ctx, km, data, nil
}

func (h *ConsumerMetricsHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if err != nil {
		return
	}
	if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
		h.metrics.RecordLatency("kafka_handle", time.Since(start).Seconds())
	}
}

func (h *ConsumerMetricsHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	h.metrics.RecordError("kafka_consume")
}
