//go:build wireinject
// +build wireinject

package di

import (
	"DarkPull/pkg/config"
	"DarkPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideOpportunityPublisher,
		ProvideKafkaConsumer,
		ProvideBackfillQueue,

		// Repositories
		ProvideTradeStore,
		ProvidePositionStore,
		ProvideOpportunityStore,

		// Market data
		ProvideMarketDataAPI,
		ProvideOracle,
		ProvideStream,

		// Use cases
		ProvideClassifier,
		ProvideScorer,
		ProvideAggregator,
		ProvideOpportunityManager,
		ProvideEngine,
		ProvideCollector,
		ProvideKafkaTradesHandler,
		ProvideBackfiller,
		ProvideAnalyticsReader,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
