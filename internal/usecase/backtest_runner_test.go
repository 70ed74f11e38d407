package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/engine/factor"
	applogger "QuantBench/pkg/logger"
)

type fakeBarStore struct {
	bars []models.DailyBar
	err  error
}

func (s *fakeBarStore) GetBars(context.Context, string, time.Time, time.Time) ([]models.DailyBar, error) {
	return s.bars, s.err
}
func (s *fakeBarStore) GetFinancials(context.Context, string, time.Time) ([]models.FinancialRecord, error) {
	return nil, nil
}
func (s *fakeBarStore) GetMacro(context.Context, string, time.Time) ([]models.MacroRecord, error) {
	return nil, nil
}
func (s *fakeBarStore) Health(context.Context) error { return nil }
func (s *fakeBarStore) Close() error                 { return nil }

type fakeSink struct {
	mu        sync.Mutex
	published map[string][]models.TargetAllocation
}

func (s *fakeSink) Publish(_ context.Context, runID string, a models.TargetAllocation) error {
	return s.PublishBatch(context.Background(), runID, []models.TargetAllocation{a})
}

func (s *fakeSink) PublishBatch(_ context.Context, runID string, allocations []models.TargetAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published == nil {
		s.published = map[string][]models.TargetAllocation{}
	}
	s.published[runID] = append(s.published[runID], allocations...)
	return nil
}

func (s *fakeSink) Close() error { return nil }

type fakeRunCache struct {
	mu    sync.Mutex
	store map[string]*models.BacktestResult
}

func (c *fakeRunCache) Get(_ context.Context, key string) (*models.BacktestResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.store[key]
	return r, ok
}

func (c *fakeRunCache) Set(_ context.Context, key string, result *models.BacktestResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]*models.BacktestResult{}
	}
	c.store[key] = result
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	runs   int
	errors map[string]int
}

func (m *fakeMetrics) RecordRun(string) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordAllocations(string, int) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordLatency(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func runnerBars(t *testing.T) []models.DailyBar {
	t.Helper()
	var bars []models.DailyBar
	px := map[string]float64{"aaa": 100, "bbb": 100, "ccc": 100}
	for _, d := range testSessions {
		px["aaa"] *= 1.02
		px["bbb"] *= 1.01
		px["ccc"] *= 0.99
		for symbol, p := range px {
			bars = append(bars, models.DailyBar{
				Symbol: symbol, TradeDate: d,
				Open: p, High: p, Low: p, Close: p,
				Volume: 1000, Amount: p * 1000,
			})
		}
	}
	return bars
}

func TestRunnerEndToEnd(t *testing.T) {
	sink := &fakeSink{}
	cache := &fakeRunCache{}
	metrics := &fakeMetrics{}
	runner := NewBacktestRunner(&fakeBarStore{bars: runnerBars(t)}, sink, cache, metrics, factor.NewRegistry(), testLogger(t))

	req := dailyMomentumRequest()
	req.Publish = true
	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "cn", result.Market)
	assert.NotEmpty(t, result.Allocations)
	assert.Equal(t, 1, metrics.runs)
	assert.Len(t, sink.published[result.RunID], len(result.Allocations))

	// identical request hits the cache and returns the same run
	again, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, again.RunID)
	assert.Equal(t, 1, metrics.runs)
}

func TestRunnerStoreFailure(t *testing.T) {
	metrics := &fakeMetrics{}
	runner := NewBacktestRunner(&fakeBarStore{err: errors.New("clickhouse down")}, nil, nil, metrics, factor.NewRegistry(), testLogger(t))

	_, err := runner.Run(context.Background(), dailyMomentumRequest())
	assert.ErrorContains(t, err, "load bars")
	assert.Equal(t, 1, metrics.errors["setup"])
}

func TestRunnerInvalidDates(t *testing.T) {
	runner := NewBacktestRunner(&fakeBarStore{}, nil, nil, &fakeMetrics{}, factor.NewRegistry(), testLogger(t))

	req := dailyMomentumRequest()
	req.Start = "soon"
	_, err := runner.Run(context.Background(), req)
	assert.ErrorContains(t, err, "invalid start date")
}

func TestRunnerStreamEmits(t *testing.T) {
	runner := NewBacktestRunner(&fakeBarStore{bars: runnerBars(t)}, nil, nil, &fakeMetrics{}, factor.NewRegistry(), testLogger(t))

	var streamed []models.TargetAllocation
	result, err := runner.RunStream(context.Background(), dailyMomentumRequest(), func(a models.TargetAllocation) {
		streamed = append(streamed, a)
	})
	require.NoError(t, err)
	assert.Equal(t, result.Allocations, streamed)
}

func TestRunnerCachedLookup(t *testing.T) {
	cache := &fakeRunCache{}
	runner := NewBacktestRunner(&fakeBarStore{bars: runnerBars(t)}, nil, cache, &fakeMetrics{}, factor.NewRegistry(), testLogger(t))

	req := dailyMomentumRequest()
	_, ok := runner.Cached(context.Background(), RequestKey(req))
	assert.False(t, ok)

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	cached, ok := runner.Cached(context.Background(), RequestKey(req))
	require.True(t, ok)
	assert.Equal(t, result.RunID, cached.RunID)
}

func TestRequestKeyDeterministic(t *testing.T) {
	a := dailyMomentumRequest()
	b := dailyMomentumRequest()
	assert.Equal(t, RequestKey(a), RequestKey(b))

	b.Strategy.SelectCount = 5
	assert.NotEqual(t, RequestKey(a), RequestKey(b))
}
