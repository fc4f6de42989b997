package repository

import (
	"context"
	"time"

	"DarkPull/internal/domain/models"
	"DarkPull/internal/domain/repository"
	pkgkafka "DarkPull/pkg/kafka"
)

// KafkaOpportunityPublisher emits opportunity events keyed by symbol so
// per-symbol ordering survives partitioning.
type KafkaOpportunityPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaOpportunityPublisher creates the publisher.
func NewKafkaOpportunityPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaOpportunityPublisher{producer: producer, topic: topic}
}

type opportunityEvent struct {
	ID             string                     `json:"id"`
	Symbol         string                     `json:"symbol"`
	StrategyType   string                     `json:"strategy_type"`
	VolSpread      float64                    `json:"vol_spread"`
	ImpliedVol     float64                    `json:"implied_vol"`
	RealizedVol    float64                    `json:"realized_vol"`
	ExpectedProfit float64                    `json:"expected_profit"`
	Confidence     float64                    `json:"confidence"`
	RiskLevel      string                     `json:"risk_level"`
	ActivityRatio  float64                    `json:"activity_ratio"`
	CreatedAt      time.Time                  `json:"created_at"`
	ExpiresAt      time.Time                  `json:"expires_at"`
	Metadata       models.OpportunityMetadata `json:"metadata"`
}

func (p *KafkaOpportunityPublisher) PublishOpportunity(ctx context.Context, opp *models.TradingOpportunity) error {
	ev := opportunityEvent{
		ID:             opp.ID,
		Symbol:         opp.Symbol,
		StrategyType:   opp.StrategyType,
		VolSpread:      opp.VolSpread,
		ImpliedVol:     opp.ImpliedVol,
		RealizedVol:    opp.RealizedVol,
		ExpectedProfit: opp.ExpectedProfit,
		Confidence:     opp.Confidence,
		RiskLevel:      opp.RiskLevel,
		ActivityRatio:  opp.ActivityRatio,
		CreatedAt:      opp.CreatedAt,
		ExpiresAt:      opp.ExpiresAt,
		Metadata:       opp.Metadata,
	}
	return p.producer.Publish(ctx, p.topic, []byte(opp.Symbol), ev)
}

func (p *KafkaOpportunityPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
