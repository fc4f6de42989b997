package models

import "time"

// ActivitySummary is one side (current or historical) of a symbol's
// dark-pool aggregates.
type ActivitySummary struct {
	Volume   int64   `json:"volume"`
	Trades   int     `json:"trades"`
	AvgPrice float64 `json:"avg_price"`
}

// VolatilityView mirrors the position's volatility fields for transport.
type VolatilityView struct {
	Implied    float64 `json:"implied"`
	Historical float64 `json:"historical"`
	Spread     float64 `json:"spread"`
}

// TradeView is a recent dark-pool print included in symbol analytics.
type TradeView struct {
	Price      float64   `json:"price"`
	Size       int64     `json:"size"`
	Timestamp  time.Time `json:"timestamp"`
	Conditions []int32   `json:"conditions"`
}

// SymbolAnalytics is the read-path view of one symbol's position state.
type SymbolAnalytics struct {
	Symbol             string          `json:"symbol"`
	CurrentActivity    ActivitySummary `json:"current_activity"`
	HistoricalActivity ActivitySummary `json:"historical_activity"`
	ActivityRatio      float64         `json:"activity_ratio"`
	Volatility         VolatilityView  `json:"volatility"`
	IsOpportunity      bool            `json:"is_opportunity"`
	OpportunityScore   float64         `json:"opportunity_score"`
	LastUpdated        time.Time       `json:"last_updated"`
	RecentTrades       []TradeView     `json:"recent_trades"`
}

// OpportunityView is the transport shape of an active opportunity.
type OpportunityView struct {
	ID             string              `json:"id"`
	Symbol         string              `json:"symbol"`
	StrategyType   string              `json:"strategy_type"`
	VolSpread      float64             `json:"vol_spread"`
	ImpliedVol     float64             `json:"implied_vol"`
	RealizedVol    float64             `json:"realized_vol"`
	ExpectedProfit float64             `json:"expected_profit"`
	Confidence     float64             `json:"confidence"`
	RiskLevel      string              `json:"risk_level"`
	ActivityRatio  float64             `json:"dark_pool_activity_ratio"`
	CreatedAt      time.Time           `json:"created_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
	Metadata       OpportunityMetadata `json:"metadata"`
}

// NewOpportunityView converts a stored opportunity for transport.
func NewOpportunityView(o *TradingOpportunity) OpportunityView {
	return OpportunityView{
		ID:             o.ID,
		Symbol:         o.Symbol,
		StrategyType:   o.StrategyType,
		VolSpread:      o.VolSpread,
		ImpliedVol:     o.ImpliedVol,
		RealizedVol:    o.RealizedVol,
		ExpectedProfit: o.ExpectedProfit,
		Confidence:     o.Confidence,
		RiskLevel:      o.RiskLevel,
		ActivityRatio:  o.ActivityRatio,
		CreatedAt:      o.CreatedAt,
		ExpiresAt:      o.ExpiresAt,
		Metadata:       o.Metadata,
	}
}
