//go:build wireinject
// +build wireinject

package di

import (
	"QuantBench/pkg/config"
	"QuantBench/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories
		ProvideBarStore,
		ProvideEquityStore,
		ProvideAllocationSink,
		ProvideRunCache,

		// Engine and use cases
		ProvideFactorRegistry,
		ProvideBacktestRunner,
		ProvideJobQueue,
		ProvideEquityHandler,

		// Handlers
		ProvideAPIHandler,
		ProvideWSHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
