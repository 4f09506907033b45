package ports

import (
	"context"
	"time"

	contractsv1 "funnelforge/contracts/gen/events/v1"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
)

// AssignmentStore is a key-value capability keyed by (visitor, test). An
// injected store keeps test isolation and allows multiple concurrent flow
// instances.
type AssignmentStore interface {
	PutAssignment(ctx context.Context, assignment entities.Assignment) error
	GetAssignment(ctx context.Context, visitorID, testName string) (entities.Assignment, error)
	CountAssignments(ctx context.Context, testName string) (map[string]int, error)
}

type ConversionRepository interface {
	AppendConversion(ctx context.Context, conversion entities.Conversion) error
	CountConversions(ctx context.Context, testName string) (map[string]int, error)
}

// RandomSource abstracts the uniform draw so assignment is deterministic in
// tests.
type RandomSource interface {
	Float64() float64
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber is implemented by the platform bus; the purchase consumer
// registers its handler through it.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}
