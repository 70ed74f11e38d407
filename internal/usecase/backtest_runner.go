package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"QuantBench/internal/domain/models"
	drepo "QuantBench/internal/domain/repository"
	"QuantBench/internal/engine/factor"
	applogger "QuantBench/pkg/logger"
	"QuantBench/pkg/util"
)

// BacktestRunner executes allocation-generation runs end to end: load bars,
// pivot the bundle, drive the builder, publish allocations to the execution
// simulator and cache the result.
type BacktestRunner struct {
	store    drepo.BarStore
	sink     drepo.AllocationSink
	cache    drepo.RunCache
	metrics  drepo.Metrics
	registry *factor.Registry
	log      *applogger.Logger

	defaultPublish bool
	defaultWorkers int
}

// NewBacktestRunner wires a runner. Sink and cache may be nil when publishing
// or caching is not configured.
func NewBacktestRunner(
	store drepo.BarStore,
	sink drepo.AllocationSink,
	cache drepo.RunCache,
	metrics drepo.Metrics,
	registry *factor.Registry,
	log *applogger.Logger,
) *BacktestRunner {
	return &BacktestRunner{
		store:    store,
		sink:     sink,
		cache:    cache,
		metrics:  metrics,
		registry: registry,
		log:      log,
	}
}

// SetDefaultPublish makes every run publish to the allocation sink even when
// the request does not ask for it.
func (r *BacktestRunner) SetDefaultPublish(on bool) {
	r.defaultPublish = on
}

// SetDefaultWorkers sets the parallelism applied to requests that do not
// specify their own worker count.
func (r *BacktestRunner) SetDefaultWorkers(n int) {
	r.defaultWorkers = n
}

// Run executes one backtest request. Identical requests hit the run cache.
func (r *BacktestRunner) Run(ctx context.Context, req *models.BacktestRequest) (*models.BacktestResult, error) {
	return r.run(ctx, req, nil)
}

// Cached returns the completed result stored under a request key, if any.
// Async runs land here once the queue worker finishes.
func (r *BacktestRunner) Cached(ctx context.Context, key string) (*models.BacktestResult, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache.Get(ctx, key)
}

// RunStream executes sequentially and emits each allocation as computed.
func (r *BacktestRunner) RunStream(ctx context.Context, req *models.BacktestRequest, emit func(models.TargetAllocation)) (*models.BacktestResult, error) {
	return r.run(ctx, req, emit)
}

func (r *BacktestRunner) run(ctx context.Context, req *models.BacktestRequest, emit func(models.TargetAllocation)) (*models.BacktestResult, error) {
	key := RequestKey(req)
	if r.cache != nil && emit == nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			r.log.Debug("run cache hit", applogger.String("key", key))
			return cached, nil
		}
	}

	from, ok := util.ParseDate(req.Start)
	if !ok {
		return nil, fmt.Errorf("invalid start date %q", req.Start)
	}
	to, ok := util.ParseDate(req.End)
	if !ok {
		return nil, fmt.Errorf("invalid end date %q", req.End)
	}

	started := time.Now()
	builder, err := r.buildPipeline(ctx, req, from, to)
	if err != nil {
		r.metrics.RecordError("setup")
		return nil, err
	}

	var allocations []models.TargetAllocation
	if emit != nil {
		allocations, err = builder.BuildStream(ctx, emit)
	} else {
		allocations, err = builder.Build(ctx)
	}
	if err != nil {
		r.metrics.RecordError("build")
		return nil, fmt.Errorf("build allocations: %w", err)
	}

	result := &models.BacktestResult{
		RunID:       uuid.NewString(),
		Market:      req.Market,
		Strategy:    req.Strategy.Name,
		Allocations: allocations,
		Sessions:    len(builder.Schedule()),
		StartedAt:   started,
		Duration:    time.Since(started),
	}
	r.metrics.RecordRun(req.Market)
	r.metrics.RecordAllocations(req.Market, len(allocations))
	r.metrics.RecordLatency("run", time.Since(started).Seconds())
	r.log.Info("backtest run complete",
		applogger.String("run_id", result.RunID),
		applogger.String("market", req.Market),
		applogger.String("strategy", req.Strategy.Name),
		applogger.Int("rebalance_dates", len(builder.Schedule())),
		applogger.Int("allocations", len(allocations)),
		applogger.Duration("duration_ms", result.Duration),
	)

	if (req.Publish || r.defaultPublish) && r.sink != nil {
		if err := r.sink.PublishBatch(ctx, result.RunID, allocations); err != nil {
			r.metrics.RecordError("publish")
			return nil, fmt.Errorf("publish allocations: %w", err)
		}
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, result); err != nil {
			r.log.Warn("run cache set failed", applogger.Error(err))
		}
	}
	return result, nil
}

func (r *BacktestRunner) buildPipeline(ctx context.Context, req *models.BacktestRequest, from, to time.Time) (*AllocationBuilder, error) {
	bars, err := r.store.GetBars(ctx, req.Market, from, to)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	// financial and macro rows are optional inputs; load failures reduce
	// factor coverage instead of aborting the run
	financial, err := r.store.GetFinancials(ctx, req.Market, to)
	if err != nil {
		r.log.Warn("financial load failed", applogger.Error(err))
	}
	macro, err := r.store.GetMacro(ctx, req.Market, to)
	if err != nil {
		r.log.Warn("macro load failed", applogger.Error(err))
	}

	bundle, err := BuildBundle(bars, financial, macro)
	if err != nil {
		return nil, err
	}
	if req.Workers == 0 && r.defaultWorkers > 0 {
		scoped := *req
		scoped.Workers = r.defaultWorkers
		req = &scoped
	}
	return NewAllocationBuilder(r.registry, bundle, req, r.log)
}

// RequestKey derives the deterministic cache key for a request.
func RequestKey(req *models.BacktestRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return "run:" + hex.EncodeToString(sum[:16])
}
