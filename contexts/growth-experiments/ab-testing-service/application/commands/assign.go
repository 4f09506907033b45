package commands

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	application "funnelforge/contexts/growth-experiments/ab-testing-service/application"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	domainerrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
)

type AssignCommand struct {
	VisitorID string
	TestName  string
	Variants  []entities.Variant
}

type TrackConversionCommand struct {
	VisitorID string
	TestName  string
	VariantID string
	Label     string
}

type ExperimentUseCase struct {
	Assignments ports.AssignmentStore
	Conversions ports.ConversionRepository
	Outbox      ports.OutboxWriter
	Random      ports.RandomSource
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Assign pins the visitor to one weighted variant, once. Repeated calls for
// the same visitor and test return the persisted assignment unchanged. The
// exposure event is appended exactly once, on first assignment.
func (uc ExperimentUseCase) Assign(ctx context.Context, cmd AssignCommand) (entities.Assignment, error) {
	logger := application.ResolveLogger(uc.Logger)
	visitorID := strings.TrimSpace(cmd.VisitorID)
	testName := strings.TrimSpace(cmd.TestName)
	if visitorID == "" || testName == "" {
		return entities.Assignment{}, domainerrors.ErrInvalidExperimentInput
	}
	if len(cmd.Variants) == 0 {
		return entities.Assignment{}, domainerrors.ErrNoVariants
	}

	existing, err := uc.Assignments.GetAssignment(ctx, visitorID, testName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrAssignmentNotFound) {
		return entities.Assignment{}, err
	}

	totalWeight := 0
	for _, variant := range cmd.Variants {
		totalWeight += variant.Weight
	}
	if totalWeight != 100 {
		// Best-effort draw with relative weights; misconfiguration is reported,
		// not corrected.
		logger.Warn("experiment weights do not sum to 100",
			"event", "experiment_weight_sum_invalid",
			"module", "growth-experiments/ab-testing-service",
			"layer", "application",
			"test_name", testName,
			"total_weight", totalWeight,
		)
	}

	draw := uc.draw() * 100
	selected := cmd.Variants[0]
	cumulative := 0.0
	for _, variant := range cmd.Variants {
		cumulative += float64(variant.Weight)
		if draw < cumulative {
			selected = variant
			break
		}
	}

	now := uc.now()
	assignment := entities.Assignment{
		VisitorID:  visitorID,
		TestName:   testName,
		VariantID:  selected.VariantID,
		AssignedAt: now,
	}
	if err := uc.Assignments.PutAssignment(ctx, assignment); err != nil {
		return entities.Assignment{}, err
	}
	if err := uc.appendExposureViewed(ctx, assignment); err != nil {
		return entities.Assignment{}, err
	}

	logger.Info("variant assigned",
		"event", "experiment_variant_assigned",
		"module", "growth-experiments/ab-testing-service",
		"layer", "application",
		"test_name", testName,
		"variant_id", assignment.VariantID,
	)
	return assignment, nil
}

// TrackConversion records a conversion signal. It never consults or mutates
// assignment state and may be called any number of times.
func (uc ExperimentUseCase) TrackConversion(ctx context.Context, cmd TrackConversionCommand) error {
	testName := strings.TrimSpace(cmd.TestName)
	variantID := strings.TrimSpace(cmd.VariantID)
	if testName == "" || variantID == "" {
		return domainerrors.ErrInvalidExperimentInput
	}
	conversionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	conversion := entities.Conversion{
		ConversionID: conversionID,
		VisitorID:    strings.TrimSpace(cmd.VisitorID),
		TestName:     testName,
		VariantID:    variantID,
		Label:        strings.TrimSpace(cmd.Label),
		OccurredAt:   uc.now(),
	}
	if err := uc.Conversions.AppendConversion(ctx, conversion); err != nil {
		return err
	}
	return uc.appendConversionRecorded(ctx, conversion)
}

func (uc ExperimentUseCase) draw() float64 {
	if uc.Random != nil {
		return uc.Random.Float64()
	}
	return rand.Float64()
}

func (uc ExperimentUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
