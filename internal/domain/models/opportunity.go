package models

import "time"

// Strategy labels assigned by the scorer.
const (
	StrategyLongStraddle = "Long Straddle"
	StrategyVolCrush     = "Vol Crush Trade"
)

// Risk tiers derived from the activity ratio.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// OpportunityMetadata is the fixed-shape snapshot captured when an
// opportunity is created or refreshed. Serialized only at the storage
// and transport boundary.
type OpportunityMetadata struct {
	ActivityRatio float64 `json:"activity_ratio"`
	TotalVolume   int64   `json:"total_volume"`
	TotalTrades   int     `json:"total_trades"`
}

// TradingOpportunity is a scored, time-bounded signal. At most one record
// per symbol is active at any instant; refreshing an active record keeps
// its ID and CreatedAt.
type TradingOpportunity struct {
	ID             string
	Symbol         string
	StrategyType   string
	VolSpread      float64
	ImpliedVol     float64
	RealizedVol    float64
	ExpectedProfit float64
	Confidence     float64
	RiskLevel      string
	ActivityRatio  float64
	CreatedAt      time.Time
	LastUpdated    time.Time
	ExpiresAt      time.Time
	IsActive       bool
	Metadata       OpportunityMetadata
}

// Expired reports whether the record is past its expiry at the given instant.
func (o *TradingOpportunity) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
