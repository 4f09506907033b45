package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	domainerrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/stats"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
)

const confidenceLevel = 0.95

type ExperimentQueryUseCase struct {
	Assignments ports.AssignmentStore
	Conversions ports.ConversionRepository
	Clock       ports.Clock
}

// VisitorAssignment returns the persisted assignment for a visitor.
func (uc ExperimentQueryUseCase) VisitorAssignment(ctx context.Context, visitorID, testName string) (entities.Assignment, error) {
	visitorID = strings.TrimSpace(visitorID)
	testName = strings.TrimSpace(testName)
	if visitorID == "" || testName == "" {
		return entities.Assignment{}, domainerrors.ErrInvalidExperimentInput
	}
	return uc.Assignments.GetAssignment(ctx, visitorID, testName)
}

// ExperimentResults computes the per-variant readout for one experiment.
// Views count assignments; confidence is a two-proportion z-test between the
// leading variant and its strongest competitor.
func (uc ExperimentQueryUseCase) ExperimentResults(ctx context.Context, testName string) (entities.ExperimentResult, error) {
	testName = strings.TrimSpace(testName)
	if testName == "" {
		return entities.ExperimentResult{}, domainerrors.ErrInvalidExperimentInput
	}
	views, err := uc.Assignments.CountAssignments(ctx, testName)
	if err != nil {
		return entities.ExperimentResult{}, err
	}
	conversions, err := uc.Conversions.CountConversions(ctx, testName)
	if err != nil {
		return entities.ExperimentResult{}, err
	}

	variantIDs := make([]string, 0, len(views))
	seen := make(map[string]bool, len(views))
	for variantID := range views {
		variantIDs = append(variantIDs, variantID)
		seen[variantID] = true
	}
	for variantID := range conversions {
		if !seen[variantID] {
			variantIDs = append(variantIDs, variantID)
		}
	}
	sort.Strings(variantIDs)

	variants := make([]entities.VariantStats, 0, len(variantIDs))
	leading := 0
	maxRate := 0.0
	for i, variantID := range variantIDs {
		viewCount := views[variantID]
		conversionCount := conversions[variantID]
		rate := 0.0
		if viewCount > 0 {
			rate = float64(conversionCount) / float64(viewCount)
		}
		lower, upper := stats.WilsonInterval(conversionCount, viewCount, confidenceLevel)
		variants = append(variants, entities.VariantStats{
			VariantID:   variantID,
			Views:       viewCount,
			Conversions: conversionCount,
			Rate:        rate,
			CILower:     lower,
			CIUpper:     upper,
		})
		if rate > maxRate {
			maxRate = rate
			leading = i
		}
	}

	result := entities.ExperimentResult{
		TestName:   testName,
		Variants:   variants,
		ComputedAt: uc.now(),
	}
	if len(variants) == 0 {
		return result, nil
	}
	result.LeadingVariantID = variants[leading].VariantID
	if len(variants) >= 2 {
		challenger := strongestCompetitor(variants, leading)
		result.ConfidenceLevel = stats.SignificanceTest(
			variants[leading].Conversions, variants[leading].Views,
			variants[challenger].Conversions, variants[challenger].Views,
		)
		result.Confident = result.ConfidenceLevel >= confidenceLevel
	}
	return result, nil
}

func strongestCompetitor(variants []entities.VariantStats, leading int) int {
	best := -1
	bestRate := -1.0
	for i, variant := range variants {
		if i == leading {
			continue
		}
		if variant.Rate > bestRate {
			bestRate = variant.Rate
			best = i
		}
	}
	return best
}

func (uc ExperimentQueryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
