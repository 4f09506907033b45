package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "funnelforge/contexts/growth-experiments/ab-testing-service/application"
	"funnelforge/contexts/growth-experiments/ab-testing-service/application/commands"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
)

const PurchaseCompletedTopic = "payments.purchase_completed"

// PurchaseConsumer turns purchase-completed events from the payment webhook
// pipeline into experiment conversions labeled "purchase".
type PurchaseConsumer struct {
	Experiments commands.ExperimentUseCase
	Logger      *slog.Logger
}

type purchaseCompletedData struct {
	VisitorID string `json:"visitor_id"`
	TestName  string `json:"test_name"`
	VariantID string `json:"variant_id"`
}

// Start registers the consumer on the bus. Handling is at-least-once; repeated
// deliveries just add conversion rows, which TrackConversion permits.
func (c PurchaseConsumer) Start(ctx context.Context, subscriber ports.EventSubscriber) error {
	return subscriber.Subscribe(ctx, PurchaseCompletedTopic, "ab-testing-service", c.Handle)
}

func (c PurchaseConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var data purchaseCompletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.Error("purchase event decode failed",
			"event", "experiment_purchase_decode_failed",
			"module", "growth-experiments/ab-testing-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if data.TestName == "" || data.VariantID == "" {
		// Purchases outside any experiment are expected; nothing to record.
		return nil
	}
	if err := c.Experiments.TrackConversion(ctx, commands.TrackConversionCommand{
		VisitorID: data.VisitorID,
		TestName:  data.TestName,
		VariantID: data.VariantID,
		Label:     "purchase",
	}); err != nil {
		logger.Error("purchase conversion record failed",
			"event", "experiment_purchase_record_failed",
			"module", "growth-experiments/ab-testing-service",
			"layer", "worker",
			"event_id", event.EventID,
			"test_name", data.TestName,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("purchase conversion recorded",
		"event", "experiment_purchase_recorded",
		"module", "growth-experiments/ab-testing-service",
		"layer", "worker",
		"test_name", data.TestName,
		"variant_id", data.VariantID,
	)
	return nil
}
