package di

import (
	"context"
	"fmt"
	"time"

	"QuantBench/internal/domain/repository"
	"QuantBench/internal/engine/factor"
	"QuantBench/internal/handler/api"
	"QuantBench/internal/handler/ws"
	internalrepo "QuantBench/internal/repository"
	"QuantBench/internal/usecase"
	pkgcache "QuantBench/pkg/cache"
	pkgch "QuantBench/pkg/clickhouse"
	"QuantBench/pkg/config"
	pkgkafka "QuantBench/pkg/kafka"
	applogger "QuantBench/pkg/logger"
	"QuantBench/pkg/metrics"
	pkgqueue "QuantBench/pkg/queue"
	"QuantBench/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.daily_bars (
            market LowCardinality(String), symbol String, trade_date Date,
            open Float64, high Float64, low Float64, close Float64,
            volume Float64, amount Float64, float_mv Float64, adj_factor Float64
        ) ENGINE=ReplacingMergeTree ORDER BY (market, symbol, trade_date)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.financials (
            market LowCardinality(String), symbol String, report_date Date,
            fiscal_period String, field String, value Float64, currency String
        ) ENGINE=ReplacingMergeTree ORDER BY (market, symbol, report_date, field)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.macro (
            region LowCardinality(String), indicator String,
            release_time DateTime, value Float64
        ) ENGINE=ReplacingMergeTree ORDER BY (region, indicator, release_time)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.equity_points (
            run_id String, date Date, return Float64
        ) ENGINE=ReplacingMergeTree ORDER BY (run_id, date)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when brokers are not
// configured (allocations then stay local to the API response).
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
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

	return producer, nil
}

// ProvideKafkaConsumer creates the equity-points consumer, or nil when
// brokers or the equity topic are not configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.EquityTopic == "" {
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
	return consumer, nil
}

// ProvideRedisCache creates the Redis cache client, or nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFactorRegistry creates the built-in factor registry.
func ProvideFactorRegistry() *factor.Registry {
	return factor.NewRegistry()
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, log *applogger.Logger) repository.BarStore {
	store := internalrepo.NewClickHouseBarStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(log)
	return store
}

// ProvideEquityStore creates the ClickHouse equity store.
func ProvideEquityStore(chClient *pkgch.Client, cfg *config.Config) repository.EquityStore {
	return internalrepo.NewClickHouseEquityStore(chClient, cfg.ClickHouse.Database)
}

// ProvideAllocationSink creates the Kafka allocation sink, or nil without a producer.
func ProvideAllocationSink(producer *pkgkafka.Producer, cfg *config.Config) repository.AllocationSink {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAllocationSink(producer, cfg.Kafka.AllocationsTopic)
}

// ProvideRunCache creates the run-result cache. With Redis available results
// sit behind a memory-fronted layered cache; without it they stay in-process.
func ProvideRunCache(rc *pkgcache.RedisCache, cfg *config.Config) repository.RunCache {
	var svc pkgcache.Service
	if rc != nil {
		svc = pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(256))
	} else {
		svc = pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(256))
	}
	return internalrepo.NewCachedRunStore(svc, cfg.Backtest.CacheTTL)
}

// ProvideBacktestRunner creates the run orchestrator.
func ProvideBacktestRunner(
	cfg *config.Config,
	store repository.BarStore,
	sink repository.AllocationSink,
	cache repository.RunCache,
	m repository.Metrics,
	registry *factor.Registry,
	log *applogger.Logger,
) *usecase.BacktestRunner {
	runner := usecase.NewBacktestRunner(store, sink, cache, m, registry, log)
	runner.SetDefaultPublish(cfg.Backtest.PublishResults)
	runner.SetDefaultWorkers(cfg.Backtest.Workers)
	return runner
}

// ProvideJobQueue creates the async backtest queue, or nil without Redis.
func ProvideJobQueue(
	cfg *config.Config,
	rc *pkgcache.RedisCache,
	runner *usecase.BacktestRunner,
	log *applogger.Logger,
) *pkgqueue.RedisQueue {
	if rc == nil {
		return nil
	}
	workers := cfg.Backtest.QueueWorkers
	if workers <= 0 {
		workers = 2
	}
	var opts []pkgqueue.RedisQueueOption
	if cfg.Backtest.QueueName != "" {
		opts = append(opts, pkgqueue.WithKeyPrefix(cfg.Backtest.QueueName))
	}
	q := pkgqueue.NewRedisQueue(log, &pkgqueue.QueueConfig{
		Workers:    workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rc.Client(), pkgqueue.ModeProducerConsumer, opts...)
	q.RegisterJob(usecase.NewBacktestJob(runner, log))
	return q
}

// ProvideEquityHandler registers the handler for the equity-points topic.
func ProvideEquityHandler(cfg *config.Config, store repository.EquityStore, m repository.Metrics) *usecase.KafkaEquityHandler {
	return usecase.NewKafkaEquityHandler(cfg.Kafka.EquityTopic, store, m)
}

// ProvideAPIHandler creates the REST handler.
func ProvideAPIHandler(
	log *applogger.Logger,
	runner *usecase.BacktestRunner,
	registry *factor.Registry,
	equity repository.EquityStore,
	q *pkgqueue.RedisQueue,
) *api.BacktestEchoHandler {
	var qs pkgqueue.QueueService
	if q != nil {
		qs = q
	}
	return api.NewBacktestEchoHandler(log, runner, registry, equity, qs)
}

// ProvideWSHandler creates the WebSocket streaming handler.
func ProvideWSHandler(log *applogger.Logger, runner *usecase.BacktestRunner) *ws.StreamHandler {
	return ws.NewStreamHandler(log, runner)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaEquityHandler,
	chClient *pkgch.Client,
	sink repository.AllocationSink,
	q *pkgqueue.RedisQueue,
	apiHandler *api.BacktestEchoHandler,
	wsHandler *ws.StreamHandler,
) *server.App {
	var mh pkgkafka.MessageHandler
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		mh = kh
	}
	app := server.New(cfg, log, consumer, mh, chClient, sink, q)
	app.AddHTTPHandler(apiHandler)
	app.AddHTTPHandler(wsHandler)
	return app
}
