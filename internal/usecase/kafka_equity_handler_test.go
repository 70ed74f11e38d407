package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
)

type fakeEquityStore struct {
	points []models.EquityPoint
	err    error
}

func (s *fakeEquityStore) StoreBatch(_ context.Context, points []models.EquityPoint) error {
	if s.err != nil {
		return s.err
	}
	s.points = append(s.points, points...)
	return nil
}

func (s *fakeEquityStore) Query(context.Context, string) ([]models.EquityPoint, error) {
	return s.points, nil
}
func (s *fakeEquityStore) Health(context.Context) error { return nil }
func (s *fakeEquityStore) Close() error                 { return nil }

func TestEquityHandlerStoresPoint(t *testing.T) {
	store := &fakeEquityStore{}
	h := NewKafkaEquityHandler("sim.equity", store, &fakeMetrics{})
	assert.Equal(t, "sim.equity", h.Topic())

	msg := []byte(`{"run_id":"r1","date":"2024-01-05","return":0.0123}`)
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Len(t, store.points, 1)
	p := store.points[0]
	assert.Equal(t, "r1", p.RunID)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), p.Date)
	assert.InDelta(t, 0.0123, p.Return, 1e-12)
}

func TestEquityHandlerRejectsBadPayloads(t *testing.T) {
	metrics := &fakeMetrics{}
	h := NewKafkaEquityHandler("sim.equity", &fakeEquityStore{}, metrics)

	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"run_id":"r1","date":"05/01/2024","return":0}`)))
	assert.Equal(t, 1, metrics.errors["consumer_unmarshal"])
	assert.Equal(t, 1, metrics.errors["consumer_date"])
}
