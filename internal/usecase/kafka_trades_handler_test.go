package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestKafkaHandlerProcessesTrade(t *testing.T) {
	engine, trades, _, _, _ := newTestEngine(t, &fakeOracle{})
	h := NewKafkaTradesHandler("market.trades", engine, &fakeMetrics{})

	if h.Topic() != "market.trades" {
		t.Fatalf("topic %q", h.Topic())
	}

	msg, err := json.Marshal(darkTrade("AAPL", 150, 200, time.Now().UTC()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(trades.trades) != 1 {
		t.Fatalf("stored %d want 1", len(trades.trades))
	}
}

func TestKafkaHandlerDropsMalformed(t *testing.T) {
	engine, trades, _, _, metrics := newTestEngine(t, &fakeOracle{})
	h := NewKafkaTradesHandler("market.trades", engine, metrics)

	// invalid print: no retry will fix it, Handle must swallow it
	if err := h.Handle(context.Background(), []byte(`{"sym":"AAPL","p":0}`)); err != nil {
		t.Fatalf("malformed print must not be retried: %v", err)
	}
	if len(trades.trades) != 0 {
		t.Fatalf("malformed print stored")
	}
	if len(metrics.errors) == 0 || metrics.errors[0] != "consumer_validate" {
		t.Fatalf("errors %v", metrics.errors)
	}
}

func TestKafkaHandlerRejectsGarbage(t *testing.T) {
	engine, _, _, _, _ := newTestEngine(t, &fakeOracle{})
	h := NewKafkaTradesHandler("market.trades", engine, &fakeMetrics{})

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
