package messaging

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/pkg/kafka"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/metrics"
	"github.com/procure-match/reconciliation-service/pkg/resilience"
)

const decisionEventType = "reconciliation.decision.recorded"

// eventPublisher abstracts the Kafka producer for testing
type eventPublisher interface {
	Publish(ctx context.Context, topic, key, eventType string, event interface{}) error
}

// DecisionPublisher publishes decision audit events to Kafka behind a
// circuit breaker. A broker outage trips the breaker and subsequent
// publishes fail fast instead of blocking the decision path.
type DecisionPublisher struct {
	producer eventPublisher
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *logging.Logger
	topic    string
}

// NewDecisionPublisher creates a new DecisionPublisher. Metrics may be nil.
func NewDecisionPublisher(producer *kafka.Producer, m *metrics.Metrics, logger *logging.Logger) *DecisionPublisher {
	p := &DecisionPublisher{
		producer: producer,
		metrics:  m,
		logger:   logger,
		topic:    kafka.Topics.DecisionEvents,
	}

	cfg := resilience.DefaultCircuitBreakerConfig("kafka-decision-events")
	p.breaker = resilience.NewCircuitBreaker(cfg, logger, func(name string, from, to gobreaker.State) {
		if m == nil {
			return
		}
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	})

	return p
}

// PublishDecisionRecorded publishes a decision audit event. The key is
// the PO number so events for the same purchase order stay ordered.
func (p *DecisionPublisher) PublishDecisionRecorded(ctx context.Context, event application.DecisionRecordedEvent) error {
	start := time.Now()

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.Publish(ctx, p.topic, event.PONumber, decisionEventType, event)
	})

	duration := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(p.topic, decisionEventType, err == nil, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, p.topic, decisionEventType, err == nil, duration)
	}

	return err
}
