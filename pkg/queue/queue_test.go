package queue

import (
	"encoding/json"
	"testing"
)

type samplePayload struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

func TestParsePayloadStruct(t *testing.T) {
	in := samplePayload{Symbol: "AAPL", Days: 30}
	got, err := ParsePayload[samplePayload](in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Symbol != "AAPL" || got.Days != 30 {
		t.Fatalf("got %+v", got)
	}
}

func TestParsePayloadMap(t *testing.T) {
	in := map[string]interface{}{"symbol": "TSLA", "days": float64(7)}
	got, err := ParsePayload[samplePayload](in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Symbol != "TSLA" || got.Days != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestParsePayloadRawMessage(t *testing.T) {
	got, err := ParsePayload[samplePayload](json.RawMessage(`{"symbol":"NVDA","days":90}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Symbol != "NVDA" || got.Days != 90 {
		t.Fatalf("got %+v", got)
	}
}

func TestParsePayloadInvalidType(t *testing.T) {
	if _, err := ParsePayload[samplePayload](42); err == nil {
		t.Fatalf("expected error for invalid payload type")
	}
}
