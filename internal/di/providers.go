package di

import (
	"context"
	"fmt"
	"time"

	domrepo "DarkPull/internal/domain/repository"
	domsvc "DarkPull/internal/domain/service"
	"DarkPull/internal/handler/api"
	mid "DarkPull/internal/middleware"
	internalrepo "DarkPull/internal/repository"
	"DarkPull/internal/service/polygon"
	"DarkPull/internal/usecase"
	"DarkPull/pkg/cache"
	pkgch "DarkPull/pkg/clickhouse"
	"DarkPull/pkg/config"
	xhttp "DarkPull/pkg/http"
	pkgkafka "DarkPull/pkg/kafka"
	"DarkPull/pkg/logger"
	"DarkPull/pkg/metrics"
	"DarkPull/pkg/queue"
	"DarkPull/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dark_pool_trades (
			symbol String,
			trade_id String,
			price Float64,
			size Int64,
			venue_id Int32,
			trf_id Nullable(Int64),
			trf_ts Nullable(DateTime64(3, 'UTC')),
			sip_ts DateTime64(3, 'UTC'),
			conditions Array(Int32),
			tape Nullable(Int32),
			seq Nullable(Int64)
		) ENGINE = MergeTree ORDER BY (symbol, sip_ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.positions (
			symbol String,
			current_volume Int64,
			current_trades Int32,
			current_avg_price Float64,
			historical_volume Int64,
			historical_trades Int32,
			historical_avg_price Float64,
			activity_ratio Float64,
			implied_vol Float64,
			historical_vol Float64,
			vol_spread Float64,
			is_opportunity UInt8,
			opportunity_score Float64,
			last_updated DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree(last_updated) ORDER BY symbol`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.opportunities (
			id String,
			symbol String,
			strategy_type String,
			vol_spread Float64,
			implied_vol Float64,
			realized_vol Float64,
			expected_profit Float64,
			confidence Float64,
			risk_level String,
			activity_ratio Float64,
			created_at DateTime64(3, 'UTC'),
			last_updated DateTime64(3, 'UTC'),
			expires_at DateTime64(3, 'UTC'),
			is_active UInt8,
			meta_activity_ratio Float64,
			meta_total_volume Int64,
			meta_total_trades Int32
		) ENGINE = ReplacingMergeTree(last_updated) ORDER BY symbol`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideTradeStore creates the dark-pool trade store.
func ProvideTradeStore(chClient *pkgch.Client, cfg *config.Config) domrepo.TradeStore {
	return internalrepo.NewClickHouseTradeStore(chClient.DB(), cfg.ClickHouse.Database+".dark_pool_trades")
}

// ProvidePositionStore creates the per-symbol position store.
func ProvidePositionStore(chClient *pkgch.Client, cfg *config.Config) domrepo.PositionStore {
	return internalrepo.NewClickHousePositionStore(chClient.DB(), cfg.ClickHouse.Database+".positions")
}

// ProvideOpportunityStore creates the opportunity store.
func ProvideOpportunityStore(chClient *pkgch.Client, cfg *config.Config) domrepo.OpportunityStore {
	return internalrepo.NewClickHouseOpportunityStore(chClient.DB(), cfg.ClickHouse.Database+".opportunities")
}

// ProvideOpportunityPublisher creates the Kafka publisher, or nil when no
// brokers are configured.
func ProvideOpportunityPublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.OpportunityTopic == "" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaOpportunityPublisher(producer, cfg.Kafka.OpportunityTopic), nil
}

// ProvideCache creates the read-path cache: Redis when enabled, in-memory
// otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideMarketDataAPI creates the rate-limited REST client.
func ProvideMarketDataAPI(cfg *config.Config) domsvc.MarketDataAPI {
	return polygon.NewRESTClient(cfg.Polygon.APIKey, cfg.Polygon.RESTURL, cfg.Polygon.RateLimitRPS, 30*time.Second)
}

// ProvideOracle creates the volatility oracle.
func ProvideOracle(apiClient domsvc.MarketDataAPI, cfg *config.Config, lgr *logger.Logger) domsvc.VolatilityOracle {
	return polygon.NewOracle(apiClient, cfg.Polygon.VolatilityDays, cfg.Polygon.VolCacheTTL, lgr)
}

// ProvideClassifier creates the dark-pool classifier.
func ProvideClassifier(cfg *config.Config) *usecase.Classifier {
	return usecase.NewClassifier(cfg.DarkPool.VenueID)
}

// ProvideScorer creates the opportunity scorer.
func ProvideScorer(cfg *config.Config) *usecase.Scorer {
	return usecase.NewScorer(cfg.DarkPool.ActivityThresholdPercent, cfg.DarkPool.VolatilityThreshold)
}

// ProvideAggregator creates the position aggregator.
func ProvideAggregator(positions domrepo.PositionStore, trades domrepo.TradeStore, cfg *config.Config, m domrepo.Metrics) *usecase.PositionAggregator {
	return usecase.NewPositionAggregator(positions, trades, cfg.DarkPool.LookbackDays, m)
}

// ProvideOpportunityManager creates the opportunity lifecycle manager.
func ProvideOpportunityManager(store domrepo.OpportunityStore, pub domrepo.Publisher, cfg *config.Config, m domrepo.Metrics, lgr *logger.Logger) *usecase.OpportunityManager {
	return usecase.NewOpportunityManager(store, pub, cfg.DarkPool.OpportunityTTL, m, lgr)
}

// ProvideEngine creates the trade processing engine.
func ProvideEngine(
	classifier *usecase.Classifier,
	aggregator *usecase.PositionAggregator,
	scorer *usecase.Scorer,
	opps *usecase.OpportunityManager,
	oracle domsvc.VolatilityOracle,
	positions domrepo.PositionStore,
	trades domrepo.TradeStore,
	m domrepo.Metrics,
	lgr *logger.Logger,
	cfg *config.Config,
) *usecase.Engine {
	return usecase.NewEngine(classifier, aggregator, scorer, opps, oracle, positions, trades, m, lgr, cfg.DarkPool.OracleTimeout)
}

// ProvideStream creates the Polygon WebSocket stream, or nil for kafka
// ingest.
func ProvideStream(cfg *config.Config, lgr *logger.Logger) domrepo.MarketStream {
	if cfg.Ingest.Type != "websocket" {
		return nil
	}
	return polygon.NewStream(cfg.Polygon.APIKey, cfg.Polygon.WebSocketURL, cfg.Polygon.ReconnectDelay, cfg.Polygon.PingInterval, lgr)
}

// ProvideCollector creates the trade collector, or nil for kafka ingest.
func ProvideCollector(stream domrepo.MarketStream, engine *usecase.Engine, cfg *config.Config, m domrepo.Metrics) *usecase.TradeCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewRealtimePipeline(engine, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTradeCollector(stream, cfg.Polygon.Symbols, m, pipe)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil for websocket
// ingest.
func ProvideKafkaConsumer(cfg *config.Config, m domrepo.Metrics) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(internalrepo.NewConsumerMetricsHook(m))
	return consumer, nil
}

// ProvideKafkaTradesHandler registers the trades topic handler, or nil
// for websocket ingest.
func ProvideKafkaTradesHandler(engine *usecase.Engine, cfg *config.Config, m domrepo.Metrics) pkgkafka.MessageHandler {
	if cfg.Ingest.Type != "kafka" {
		return nil
	}
	return usecase.NewKafkaTradesHandler(cfg.Kafka.TradesTopic, engine, m)
}

// ProvideBackfillQueue creates the Redis-backed job queue, or nil when
// backfill or Redis is disabled.
func ProvideBackfillQueue(cfg *config.Config, lgr *logger.Logger) *queue.RedisQueue {
	if !cfg.Backfill.Enabled || !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    cfg.Backfill.Workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("darkpull:backfill"))
}

// ProvideBackfiller creates the historical backfiller and registers its
// job on the queue when one exists.
func ProvideBackfiller(
	apiClient domsvc.MarketDataAPI,
	classifier *usecase.Classifier,
	trades domrepo.TradeStore,
	engine *usecase.Engine,
	backfillQ *queue.RedisQueue,
	cfg *config.Config,
	lgr *logger.Logger,
) *usecase.Backfiller {
	var publisher queue.QueueService
	if backfillQ != nil {
		publisher = backfillQ
	}
	b := usecase.NewBackfiller(apiClient, classifier, trades, engine, publisher, cfg.Backfill.Workers, lgr)
	if backfillQ != nil {
		backfillQ.RegisterJob(b)
	}
	return b
}

// ProvideAnalyticsReader creates the read-path aggregator.
func ProvideAnalyticsReader(positions domrepo.PositionStore, trades domrepo.TradeStore, opps *usecase.OpportunityManager, c cache.Service, cfg *config.Config) *usecase.AnalyticsReader {
	ttl := cfg.Redis.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return usecase.NewAnalyticsReader(positions, trades, opps, c, ttl)
}

// ProvideHTTPHandler creates the Echo handler with its route group.
func ProvideHTTPHandler(
	lgr *logger.Logger,
	analytics *usecase.AnalyticsReader,
	backfiller *usecase.Backfiller,
	stream domrepo.MarketStream,
	trades domrepo.TradeStore,
	cfg *config.Config,
) xhttp.Handler {
	var sub api.Subscriber
	if stream != nil {
		sub = stream
	}
	return api.NewDarkPoolHandler(lgr, analytics, backfiller, sub, trades, api.ConfigView{
		DarkPoolVenueID:          cfg.DarkPool.VenueID,
		ActivityThresholdPercent: cfg.DarkPool.ActivityThresholdPercent,
		LookbackDays:             cfg.DarkPool.LookbackDays,
		VolatilityThreshold:      cfg.DarkPool.VolatilityThreshold,
		OpportunityTTLHours:      cfg.DarkPool.OpportunityTTL.Hours(),
		Symbols:                  cfg.Polygon.Symbols,
	})
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	backfillQ *queue.RedisQueue,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, lgr, collector, consumer, kh, backfillQ, chClient, cacheSvc, httpHandler)
}
