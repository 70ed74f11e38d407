package usecase

import (
	"context"
	"encoding/json"
	"time"

	"QuantBench/internal/domain/models"
	drepo "QuantBench/internal/domain/repository"
	pkgkafka "QuantBench/pkg/kafka"
)

// KafkaEquityHandler consumes equity-curve points the execution simulator
// reports back after replaying published allocations, and persists them for
// the performance analytics endpoints.
type KafkaEquityHandler struct {
	topic   string
	store   drepo.EquityStore
	metrics drepo.Metrics
}

func NewKafkaEquityHandler(topic string, store drepo.EquityStore, metrics drepo.Metrics) *KafkaEquityHandler {
	return &KafkaEquityHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaEquityHandler) Topic() string { return h.topic }

// incoming message schema: {run_id, date, return}
func (h *KafkaEquityHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		RunID  string  `json:"run_id"`
		Date   string  `json:"date"`
		Return float64 `json:"return"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	date, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		h.metrics.RecordError("consumer_date")
		return err
	}

	start := time.Now()
	err = h.store.StoreBatch(ctx, []models.EquityPoint{{RunID: m.RunID, Date: date, Return: m.Return}})
	h.metrics.RecordLatency("equity_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaEquityHandler)(nil)
