package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/engine/calendar"
	"QuantBench/internal/engine/factor"
	"QuantBench/internal/engine/filter"
	"QuantBench/internal/engine/timing"
	"QuantBench/internal/engine/weight"
	applogger "QuantBench/pkg/logger"
	"QuantBench/pkg/series"
)

// AllocationBuilder drives the allocation-generation pipeline: schedule ->
// factor composite -> filters -> weight composition -> timing multiplier,
// one pass per rebalance date.
//
// All configuration is validated at construction so misconfigured factor
// names, filter rules, or timing overlays fail before any date is processed.
// Per-date data gaps only reduce coverage: dates with an empty eligible set
// emit no allocation and the loop continues.
type AllocationBuilder struct {
	bundle   *models.PricingBundle
	profile  models.MarketProfile
	strategy models.StrategyDefinition
	engine   *factor.Engine
	filters  *filter.Evaluator
	schedule []time.Time
	signal   series.TimeSeries
	hasTimer bool
	workers  int
	log      *applogger.Logger
}

// NewAllocationBuilder validates the request against the registry and bundle
// and precomputes the rebalance schedule and timing signal.
func NewAllocationBuilder(
	registry *factor.Registry,
	bundle *models.PricingBundle,
	req *models.BacktestRequest,
	log *applogger.Logger,
) (*AllocationBuilder, error) {
	profile, err := models.ProfileFor(req.Market)
	if err != nil {
		return nil, fmt.Errorf("resolve market: %w", err)
	}
	engine, err := factor.NewEngine(registry, req.Strategy.Factors)
	if err != nil {
		return nil, fmt.Errorf("build factor engine: %w", err)
	}
	filters, err := filter.NewEvaluator(req.Strategy.Filters)
	if err != nil {
		return nil, fmt.Errorf("build filters: %w", err)
	}
	schedule, err := calendar.Schedule(bundle.Sessions(), req.Strategy.HoldPeriod, req.Strategy.OffsetDays)
	if err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	b := &AllocationBuilder{
		bundle:   bundle,
		profile:  profile,
		strategy: req.Strategy,
		engine:   engine,
		filters:  filters,
		schedule: schedule,
		workers:  req.Workers,
		log:      log,
	}
	if req.Timing != nil && req.Timing.Name != "" {
		overlay, err := timing.New(req.Timing.Name, req.Timing.Params)
		if err != nil {
			return nil, fmt.Errorf("build timing overlay: %w", err)
		}
		// the overlay variants are stateless rolling-window functions, so
		// the whole signal series is computed once and indexed per date
		source := resolveTimingSource(bundle, req.Timing.DataSource)
		if !source.Empty() {
			b.signal = overlay.Signal(source)
			b.hasTimer = true
		}
	}
	return b, nil
}

// Schedule returns the rebalance dates the builder will iterate.
func (b *AllocationBuilder) Schedule() []time.Time {
	return b.schedule
}

// Build runs the pipeline across the schedule and returns allocations sorted
// ascending by date. With Workers > 1 dates are computed concurrently.
func (b *AllocationBuilder) Build(ctx context.Context) ([]models.TargetAllocation, error) {
	if b.workers > 1 {
		return b.buildParallel(ctx)
	}
	return b.BuildStream(ctx, nil)
}

// BuildStream runs the pipeline sequentially, invoking emit for every
// allocation as it is produced. Used by the streaming endpoint.
func (b *AllocationBuilder) BuildStream(ctx context.Context, emit func(models.TargetAllocation)) ([]models.TargetAllocation, error) {
	out := make([]models.TargetAllocation, 0, len(b.schedule))
	for _, date := range b.schedule {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		alloc, ok := b.allocationFor(date)
		if !ok {
			continue
		}
		out = append(out, alloc)
		if emit != nil {
			emit(alloc)
		}
	}
	return out, nil
}

func (b *AllocationBuilder) buildParallel(ctx context.Context) ([]models.TargetAllocation, error) {
	type slot struct {
		alloc models.TargetAllocation
		ok    bool
	}
	slots := make([]slot, len(b.schedule))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				alloc, ok := b.allocationFor(b.schedule[i])
				slots[i] = slot{alloc: alloc, ok: ok}
			}
		}()
	}
	for i := range b.schedule {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]models.TargetAllocation, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.alloc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// allocationFor computes one date's target weights. The bool result is false
// when the date produced no allocation (empty composite or eligible set).
func (b *AllocationBuilder) allocationFor(date time.Time) (models.TargetAllocation, bool) {
	fctx := &factor.Context{
		Pricing:   b.bundle.TruncateFields(date),
		Financial: b.bundle.FinancialAsOf(date),
		Macro:     b.bundle.MacroAsOf(date),
		Universe:  b.strategy.Universe,
		Market:    &b.profile,
	}
	composite, details, err := b.engine.Compute(fctx)
	if err != nil {
		// zero factors is caught at construction; nothing else errors here
		return models.TargetAllocation{}, false
	}
	if len(b.strategy.Universe) > 0 {
		keep := make(map[string]bool, len(b.strategy.Universe))
		for _, code := range b.strategy.Universe {
			keep[code] = true
		}
		composite = composite.Select(keep)
	}
	eligible := b.filters.Apply(date, composite, details, b.bundle)
	if eligible.Empty() {
		if b.log != nil {
			b.log.Debug("no eligible instruments",
				applogger.String("date", date.Format("2006-01-02")),
			)
		}
		return models.TargetAllocation{}, false
	}
	weights := weight.Compose(eligible, b.strategy.SelectCount)
	if b.hasTimer {
		if mult, ok := b.signal.LastAt(date); ok {
			for k, v := range weights {
				weights[k] = v * mult
			}
		}
	}
	return models.TargetAllocation{Date: calendar.Normalize(date), Weights: weights}, true
}

// resolveTimingSource extracts the scalar series a timing overlay reads.
// Supported descriptors: "pricing:<field>:<symbol>" and "macro:<indicator>".
// Anything else yields an empty series and disables the overlay.
func resolveTimingSource(bundle *models.PricingBundle, descriptor string) series.TimeSeries {
	switch {
	case strings.HasPrefix(descriptor, "pricing:"):
		parts := strings.SplitN(descriptor, ":", 3)
		if len(parts) != 3 {
			return series.TimeSeries{}
		}
		table, ok := bundle.Field(parts[1])
		if !ok {
			return series.TimeSeries{}
		}
		return table.Column(parts[2])
	case strings.HasPrefix(descriptor, "macro:"):
		indicator := strings.TrimPrefix(descriptor, "macro:")
		rows := bundle.Macro
		pts := make([]models.MacroRecord, 0, len(rows))
		for _, r := range rows {
			if r.Indicator == indicator {
				pts = append(pts, r)
			}
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].ReleaseTime.Before(pts[j].ReleaseTime) })
		out := series.NewTimeSeries(len(pts))
		for _, r := range pts {
			out.AppendPoint(r.ReleaseTime, r.Value)
		}
		return out
	}
	return series.TimeSeries{}
}
