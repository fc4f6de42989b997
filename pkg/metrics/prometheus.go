package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	tradesIngested   *prometheus.CounterVec
	darkPoolTrades   *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	activityRatio    *prometheus.GaugeVec
	opportunityScore *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		tradesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkpull_trades_ingested_total",
				Help: "Total trade prints received, by ingest source",
			},
			[]string{"source", "symbol"},
		),
		darkPoolTrades: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkpull_dark_pool_trades_total",
				Help: "Trade prints classified as dark pool",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "darkpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		activityRatio: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "darkpull_activity_ratio",
				Help: "Current-day dark pool volume vs historical daily average",
			},
			[]string{"symbol"},
		),
		opportunityScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "darkpull_opportunity_score",
				Help: "Latest opportunity score per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "darkpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTradeIngested records a trade received from an ingest source.
func (r *Recorder) RecordTradeIngested(source, symbol string) {
	r.tradesIngested.WithLabelValues(source, symbol).Inc()
}

// RecordDarkPoolTrade records a print classified as dark pool.
func (r *Recorder) RecordDarkPoolTrade(symbol string) {
	r.darkPoolTrades.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordActivityRatio records the recomputed activity ratio for a symbol.
func (r *Recorder) RecordActivityRatio(symbol string, ratio float64) {
	r.activityRatio.WithLabelValues(symbol).Set(ratio)
}

// RecordOpportunityScore records the latest score for a symbol.
func (r *Recorder) RecordOpportunityScore(symbol string, score float64) {
	r.opportunityScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
