package ports

import (
	"context"
	"time"

	contractsv1 "funnelforge/contracts/gen/events/v1"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
)

type SessionRepository interface {
	SaveSession(ctx context.Context, session entities.FlowSession) error
	GetSession(ctx context.Context, sessionID string) (entities.FlowSession, error)
}

// StageReader is the runtime read model over funnel authoring data. Only
// enabled stages participate in a flow, ordered by order index.
type StageReader interface {
	ListEnabledStages(ctx context.Context, funnelID string) ([]entities.Stage, error)
	ListOptionsByStages(ctx context.Context, stageIDs []string) ([]entities.StageOption, error)
	ListCategories(ctx context.Context, funnelID string) ([]entities.StyleCategory, error)
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

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
