package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	pkgkafka "DarkPull/pkg/kafka"
)

type recordingMetrics struct {
	errors    []string
	latencies map[string]float64
}

func (m *recordingMetrics) RecordTradeIngested(source, symbol string)        {}
func (m *recordingMetrics) RecordDarkPoolTrade(symbol string)                {}
func (m *recordingMetrics) RecordActivityRatio(symbol string, ratio float64) {}
func (m *recordingMetrics) RecordOpportunityScore(symbol string, s float64)  {}

func (m *recordingMetrics) RecordError(kind string) {
	m.errors = append(m.errors, kind)
}

func (m *recordingMetrics) RecordLatency(op string, seconds float64) {
	if m.latencies == nil {
		m.latencies = map[string]float64{}
	}
	m.latencies[op] = seconds
}

func TestConsumerMetricsHookLatency(t *testing.T) {
	metrics := &recordingMetrics{}
	hook := NewConsumerMetricsHook(metrics)

	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc-123")}}}
	ctx, km, data, err := hook.BeforeHandle(context.Background(), "trades", km, []byte("payload"))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if got, ok := ctx.Value(pkgkafka.CtxTraceID).(string); !ok || got != "abc-123" {
		t.Fatalf("trace id not threaded: %v", ctx.Value(pkgkafka.CtxTraceID))
	}
	if _, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); !ok {
		t.Fatalf("start time not set")
	}

	hook.AfterHandle(ctx, "trades", km, data, nil)
	if _, ok := metrics.latencies["kafka_handle"]; !ok {
		t.Fatalf("handle latency not recorded: %v", metrics.latencies)
	}
	if len(metrics.errors) != 0 {
		t.Fatalf("unexpected errors %v", metrics.errors)
	}
}

func TestConsumerMetricsHookSkipsLatencyOnFailure(t *testing.T) {
	metrics := &recordingMetrics{}
	hook := NewConsumerMetricsHook(metrics)

	km := kafka.Message{}
	ctx, km, data, err := hook.BeforeHandle(context.Background(), "trades", km, nil)
	if err != nil {
		t.Fatalf("before: %v", err)
	}

	handleErr := errors.New("bad payload")
	hook.AfterHandle(ctx, "trades", km, data, handleErr)
	if len(metrics.latencies) != 0 {
		t.Fatalf("failed handle must not record latency: %v", metrics.latencies)
	}

	hook.OnError(ctx, "trades", km, data, handleErr)
	if len(metrics.errors) != 1 || metrics.errors[0] != "kafka_consume" {
		t.Fatalf("errors %v", metrics.errors)
	}
}
