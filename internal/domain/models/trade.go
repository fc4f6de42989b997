package models

import (
	"fmt"
	"time"
)

// Trade is a single consolidated-tape trade print as delivered by the
// market-data feed. Timestamps are epoch milliseconds; optional TRF fields
// are nil for lit-exchange prints.
type Trade struct {
	Symbol         string `json:"sym"`
	TradeID        string `json:"i"`
	Price          float64 `json:"p"`
	Size           int64  `json:"s"`
	VenueID        int    `json:"x"`
	TRFID          *int64 `json:"trfi,omitempty"`
	TRFTimestampMS *int64 `json:"trft,omitempty"`
	SIPTimestampMS int64  `json:"t"`
	ParticipantTS  int64  `json:"y,omitempty"`
	Conditions     []int32 `json:"c,omitempty"`
	Tape           *int32 `json:"z,omitempty"`
	SequenceNumber *int64 `json:"q,omitempty"`
}

// SIPTime returns the SIP timestamp as a time.Time in UTC.
func (t *Trade) SIPTime() time.Time {
	return time.UnixMilli(t.SIPTimestampMS).UTC()
}

// Validate checks the fields every downstream component relies on.
// Trades failing validation are dropped at the stream boundary.
func (t *Trade) Validate() error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.TradeID == "" {
		return fmt.Errorf("trade id empty")
	}
	if t.Price <= 0 {
		return fmt.Errorf("non-positive price %v", t.Price)
	}
	if t.Size <= 0 {
		return fmt.Errorf("non-positive size %d", t.Size)
	}
	if t.SIPTimestampMS <= 0 {
		return fmt.Errorf("sip timestamp invalid")
	}
	return nil
}
