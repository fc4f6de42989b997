package usecase

import (
	"math"

	"DarkPull/internal/domain/models"
)

// Evaluation is the scorer's verdict for one position update.
type Evaluation struct {
	Score          float64
	Confidence     float64
	RiskLevel      string
	StrategyType   string
	ExpectedProfit float64
	Triggered      bool
}

// Scorer turns position aggregates and a volatility snapshot into a
// bounded opportunity score and trigger decision. All math is pure; the
// thresholds come from config.
type Scorer struct {
	activityThresholdPct float64
	volatilityThreshold  float64
}

// NewScorer creates a scorer. activityThresholdPct is expressed in percent
// (300 means current activity must be at least 3x the historical average).
func NewScorer(activityThresholdPct, volatilityThreshold float64) *Scorer {
	return &Scorer{
		activityThresholdPct: activityThresholdPct,
		volatilityThreshold:  volatilityThreshold,
	}
}

// Evaluate scores the position against the snapshot.
func (s *Scorer) Evaluate(pos *models.StockPosition, snap models.VolatilitySnapshot) Evaluation {
	ratio := pos.ActivityRatio
	spread := snap.VolSpread
	absSpread := math.Abs(spread)

	ev := Evaluation{
		Score:      s.score(ratio, absSpread, pos.CurrentVolume),
		Confidence: math.Min(95, ratio*20+absSpread*50),
		RiskLevel:  riskLevel(ratio),
		Triggered:  s.triggered(ratio, snap),
	}

	if spread > 0 {
		ev.StrategyType = models.StrategyLongStraddle
		ev.ExpectedProfit = 1500
	} else {
		ev.StrategyType = models.StrategyVolCrush
		ev.ExpectedProfit = 1200
	}
	return ev
}

// score sums three capped components: unusual activity (up to 40),
// volatility spread (up to 30), and raw volume (up to 30).
func (s *Scorer) score(ratio, absSpread float64, volume int64) float64 {
	activity := math.Min(40, (ratio-1)*20)
	if activity < 0 {
		activity = 0
	}
	volatility := math.Min(30, absSpread*100)
	vol := math.Min(30, float64(volume)/1e6)
	return activity + volatility + vol
}

// triggered requires elevated activity, implied trading below historical,
// and a spread wide enough to matter.
func (s *Scorer) triggered(ratio float64, snap models.VolatilitySnapshot) bool {
	if snap.IsZero() {
		return false
	}
	return ratio >= s.activityThresholdPct/100 &&
		snap.ImpliedVol < snap.HistoricalVol &&
		math.Abs(snap.VolSpread) > s.volatilityThreshold
}

func riskLevel(ratio float64) string {
	switch {
	case ratio > 5:
		return models.RiskHigh
	case ratio > 3:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
