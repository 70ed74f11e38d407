package repository

import (
	"context"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/domain/repository"
	pkgkafka "QuantBench/pkg/kafka"
)

// KafkaAllocationSink publishes target allocations to the execution
// simulator's intake topic. Messages are keyed by run ID so one run's
// allocations land on a single partition in order.
type KafkaAllocationSink struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAllocationSink(producer *pkgkafka.Producer, topic string) repository.AllocationSink {
	return &KafkaAllocationSink{producer: producer, topic: topic}
}

func (s *KafkaAllocationSink) Publish(ctx context.Context, runID string, a models.TargetAllocation) error {
	return s.producer.Publish(ctx, s.topic, []byte(runID), allocationMessage(runID, a))
}

func (s *KafkaAllocationSink) PublishBatch(ctx context.Context, runID string, allocations []models.TargetAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(allocations))
	for i, a := range allocations {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(runID),
			Value: allocationMessage(runID, a),
		}
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

func (s *KafkaAllocationSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

func allocationMessage(runID string, a models.TargetAllocation) map[string]interface{} {
	return map[string]interface{}{
		"run_id":  runID,
		"date":    a.Date.Format("2006-01-02"),
		"weights": a.Weights,
	}
}
