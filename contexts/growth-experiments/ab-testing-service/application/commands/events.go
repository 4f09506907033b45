package commands

import (
	"context"
	"encoding/json"
	"time"

	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
)

func (uc ExperimentUseCase) appendExposureViewed(ctx context.Context, assignment entities.Assignment) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"visitor_id":  assignment.VisitorID,
		"test_name":   assignment.TestName,
		"variant_id":  assignment.VariantID,
		"event_label": "view",
		"occurred_at": assignment.AssignedAt.Format(time.RFC3339),
	}
	envelope, err := newExperimentEnvelope(eventID, "experiments.exposure_viewed", assignment.TestName, assignment.AssignedAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ExperimentUseCase) appendConversionRecorded(ctx context.Context, conversion entities.Conversion) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"visitor_id":  conversion.VisitorID,
		"test_name":   conversion.TestName,
		"variant_id":  conversion.VariantID,
		"event_label": conversion.Label,
		"occurred_at": conversion.OccurredAt.Format(time.RFC3339),
	}
	envelope, err := newExperimentEnvelope(eventID, "experiments.conversion_recorded", conversion.TestName, conversion.OccurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func newExperimentEnvelope(
	eventID string,
	eventType string,
	testName string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Experiment events are partitioned by test so per-test consumers see a
	// stable order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ab-testing-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "test_name",
		PartitionKey:     testName,
		Data:             payload,
	}, nil
}
