package commands

import (
	"context"
	"encoding/json"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"
)

func (uc SessionUseCase) appendSessionCompleted(
	ctx context.Context,
	session entities.FlowSession,
	occurredAt time.Time,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil || session.Result == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"session_id":    session.SessionID,
		"funnel_id":     session.FunnelID,
		"primary_style": session.Result.Primary.CategoryID,
		"total_points":  session.Result.TotalPoints,
		"occurred_at":   occurredAt.Format(time.RFC3339),
	}
	envelope, err := newFlowEnvelope(eventID, "flow.session_completed", session.SessionID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func newFlowEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Runtime events are partitioned by session for stable ordering on
	// session-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "flow-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}
