package models

// VolatilitySnapshot is the oracle's view of a symbol's volatility.
// A zero-valued snapshot means "no signal"; such symbols are ineligible
// for opportunity flagging in that cycle.
type VolatilitySnapshot struct {
	HistoricalVol float64 `json:"historical_vol"`
	ImpliedVol    float64 `json:"implied_vol"`
	VolSpread     float64 `json:"vol_spread"`
}

// IsZero reports whether the snapshot carries no signal.
func (v VolatilitySnapshot) IsZero() bool {
	return v.HistoricalVol == 0 && v.ImpliedVol == 0 && v.VolSpread == 0
}
