package application

import (
	"context"
	"time"
)

// DecisionRecordedEvent is published after a decision upsert succeeds,
// for downstream audit consumers. Publishing is best-effort: the
// decision write is already durable when this fires.
type DecisionRecordedEvent struct {
	EventID   string    `json:"event_id"`
	PONumber  string    `json:"po_number"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// DecisionEventPublisher publishes decision audit events
type DecisionEventPublisher interface {
	PublishDecisionRecorded(ctx context.Context, event DecisionRecordedEvent) error
}
