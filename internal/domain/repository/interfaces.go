package repository

import (
	"context"
	"time"

	"QuantBench/internal/domain/models"
)

// BarStore loads historical daily bars for a market.
type BarStore interface {
	GetBars(ctx context.Context, market string, from, to time.Time) ([]models.DailyBar, error)
	GetFinancials(ctx context.Context, market string, until time.Time) ([]models.FinancialRecord, error)
	GetMacro(ctx context.Context, region string, until time.Time) ([]models.MacroRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// AllocationSink delivers computed target allocations to the external
// execution simulator. Consumers must treat published allocations as
// immutable.
type AllocationSink interface {
	Publish(ctx context.Context, runID string, a models.TargetAllocation) error
	PublishBatch(ctx context.Context, runID string, allocations []models.TargetAllocation) error
	Close() error
}

// EquityStore persists per-run equity points reported back by the execution
// simulator, feeding the performance analytics endpoints.
type EquityStore interface {
	StoreBatch(ctx context.Context, points []models.EquityPoint) error
	Query(ctx context.Context, runID string) ([]models.EquityPoint, error)
	Health(ctx context.Context) error
	Close() error
}

// RunCache caches completed backtest results keyed by request hash.
type RunCache interface {
	Get(ctx context.Context, key string) (*models.BacktestResult, bool)
	Set(ctx context.Context, key string, result *models.BacktestResult) error
}

// Metrics records operational counters for runs and allocation generation.
type Metrics interface {
	RecordRun(market string)
	RecordAllocations(market string, count int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
