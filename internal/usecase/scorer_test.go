package usecase

import (
	"math"
	"testing"

	"DarkPull/internal/domain/models"
)

func TestEvaluateScoreComponents(t *testing.T) {
	s := NewScorer(300, 0.10)

	pos := &models.StockPosition{
		Symbol:        "AAPL",
		ActivityRatio: 2,             // activity component (2-1)*20 = 20
		CurrentVolume: 10_000_000,    // volume component 10, under the cap
	}
	snap := models.VolatilitySnapshot{
		HistoricalVol: 0.40,
		ImpliedVol:    0.25,
		VolSpread:     -0.15, // volatility component 15
	}

	ev := s.Evaluate(pos, snap)
	if got, want := ev.Score, 45.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("score %v want %v", got, want)
	}
	// confidence = ratio*20 + |spread|*50 = 40 + 7.5
	if got, want := ev.Confidence, 47.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence %v want %v", got, want)
	}
}

func TestEvaluateScoreCaps(t *testing.T) {
	s := NewScorer(300, 0.10)

	pos := &models.StockPosition{
		ActivityRatio: 100,
		CurrentVolume: 1_000_000_000,
	}
	snap := models.VolatilitySnapshot{HistoricalVol: 5, ImpliedVol: 1, VolSpread: -4}

	ev := s.Evaluate(pos, snap)
	if ev.Score != 100 {
		t.Fatalf("capped score %v want 100", ev.Score)
	}
	if ev.Confidence != 95 {
		t.Fatalf("capped confidence %v want 95", ev.Confidence)
	}
}

func TestEvaluateNegativeActivityClamped(t *testing.T) {
	s := NewScorer(300, 0.10)

	// ratio below 1 must not subtract from the other components
	pos := &models.StockPosition{ActivityRatio: 0.5, CurrentVolume: 0}
	snap := models.VolatilitySnapshot{HistoricalVol: 0.3, ImpliedVol: 0.2, VolSpread: -0.10}

	ev := s.Evaluate(pos, snap)
	if got, want := ev.Score, 10.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("score %v want %v", got, want)
	}
}

func TestEvaluateRiskLevels(t *testing.T) {
	s := NewScorer(300, 0.10)
	snap := models.VolatilitySnapshot{HistoricalVol: 0.3, ImpliedVol: 0.2, VolSpread: -0.1}

	cases := []struct {
		ratio float64
		want  string
	}{
		{1, models.RiskLow},
		{3, models.RiskLow},
		{3.5, models.RiskMedium},
		{5, models.RiskMedium},
		{5.1, models.RiskHigh},
	}
	for _, tc := range cases {
		ev := s.Evaluate(&models.StockPosition{ActivityRatio: tc.ratio}, snap)
		if ev.RiskLevel != tc.want {
			t.Fatalf("ratio %v: risk %q want %q", tc.ratio, ev.RiskLevel, tc.want)
		}
	}
}

func TestEvaluateStrategySelection(t *testing.T) {
	s := NewScorer(300, 0.10)
	pos := &models.StockPosition{ActivityRatio: 4}

	ev := s.Evaluate(pos, models.VolatilitySnapshot{HistoricalVol: 0.2, ImpliedVol: 0.35, VolSpread: 0.15})
	if ev.StrategyType != models.StrategyLongStraddle || ev.ExpectedProfit != 1500 {
		t.Fatalf("positive spread: got %q/%v", ev.StrategyType, ev.ExpectedProfit)
	}

	ev = s.Evaluate(pos, models.VolatilitySnapshot{HistoricalVol: 0.35, ImpliedVol: 0.2, VolSpread: -0.15})
	if ev.StrategyType != models.StrategyVolCrush || ev.ExpectedProfit != 1200 {
		t.Fatalf("negative spread: got %q/%v", ev.StrategyType, ev.ExpectedProfit)
	}
}

func TestEvaluateTrigger(t *testing.T) {
	s := NewScorer(300, 0.10)

	cheap := models.VolatilitySnapshot{HistoricalVol: 0.40, ImpliedVol: 0.25, VolSpread: -0.15}

	// all three conditions met
	ev := s.Evaluate(&models.StockPosition{ActivityRatio: 3}, cheap)
	if !ev.Triggered {
		t.Fatalf("expected trigger at ratio 3 with cheap vol")
	}

	// ratio below threshold
	ev = s.Evaluate(&models.StockPosition{ActivityRatio: 2.9}, cheap)
	if ev.Triggered {
		t.Fatalf("ratio below threshold must not trigger")
	}

	// implied above historical
	rich := models.VolatilitySnapshot{HistoricalVol: 0.25, ImpliedVol: 0.40, VolSpread: 0.15}
	ev = s.Evaluate(&models.StockPosition{ActivityRatio: 5}, rich)
	if ev.Triggered {
		t.Fatalf("rich implied vol must not trigger")
	}

	// spread too narrow
	narrow := models.VolatilitySnapshot{HistoricalVol: 0.30, ImpliedVol: 0.25, VolSpread: -0.05}
	ev = s.Evaluate(&models.StockPosition{ActivityRatio: 5}, narrow)
	if ev.Triggered {
		t.Fatalf("narrow spread must not trigger")
	}
}

func TestEvaluateZeroSnapshotNeverTriggers(t *testing.T) {
	s := NewScorer(300, 0.10)
	ev := s.Evaluate(&models.StockPosition{ActivityRatio: 10, CurrentVolume: 50_000_000}, models.VolatilitySnapshot{})
	if ev.Triggered {
		t.Fatalf("zero snapshot must not trigger")
	}
	// scoring still runs on the activity and volume components
	if ev.Score == 0 {
		t.Fatalf("expected nonzero score from activity and volume")
	}
}
