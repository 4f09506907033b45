package unit

import (
	"context"
	"errors"
	"math"
	"testing"

	abtesting "funnelforge/contexts/growth-experiments/ab-testing-service"
	abmemory "funnelforge/contexts/growth-experiments/ab-testing-service/adapters/memory"
	"funnelforge/contexts/growth-experiments/ab-testing-service/application/commands"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/entities"
	aberrors "funnelforge/contexts/growth-experiments/ab-testing-service/domain/errors"
	"funnelforge/contexts/growth-experiments/ab-testing-service/domain/stats"
)

// fixedRandom pins the variant draw so weight-walk assertions are exact.
type fixedRandom struct {
	value float64
}

func (r fixedRandom) Float64() float64 {
	return r.value
}

func newExperimentModule(draw float64) (abtesting.Module, *abmemory.Store) {
	store := abmemory.NewStore()
	module := abtesting.NewModule(abtesting.Dependencies{
		Assignments: store,
		Conversions: store,
		Outbox:      store,
		Random:      fixedRandom{value: draw},
		Clock:       store,
		IDGen:       store,
	})
	return module, store
}

var twoVariants = []entities.Variant{
	{VariantID: "control", Weight: 30},
	{VariantID: "challenger", Weight: 70},
}

func TestAssignIsStablePerVisitor(t *testing.T) {
	module, store := newExperimentModule(0.1)

	first, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
		Variants:  twoVariants,
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	second, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
		Variants:  twoVariants,
	})
	if err != nil {
		t.Fatalf("repeated assign failed: %v", err)
	}
	if first.VariantID != second.VariantID || first.AssignedAt != second.AssignedAt {
		t.Fatalf("repeated assign must return the stored assignment, got %+v then %+v", first, second)
	}

	counts, err := store.CountAssignments(context.Background(), "headline-test")
	if err != nil {
		t.Fatalf("count assignments failed: %v", err)
	}
	if counts[first.VariantID] != 1 {
		t.Fatalf("repeated assign must not add rows, got %v", counts)
	}
}

func TestAssignWalksCumulativeWeights(t *testing.T) {
	cases := []struct {
		draw string
		at   float64
		want string
	}{
		{draw: "low", at: 0.1, want: "control"},
		{draw: "boundary", at: 0.3, want: "challenger"},
		{draw: "high", at: 0.9, want: "challenger"},
	}
	for _, tc := range cases {
		module, _ := newExperimentModule(tc.at)
		assignment, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
			VisitorID: "visitor-1",
			TestName:  "headline-test",
			Variants:  twoVariants,
		})
		if err != nil {
			t.Fatalf("%s draw: assign failed: %v", tc.draw, err)
		}
		if assignment.VariantID != tc.want {
			t.Fatalf("%s draw: expected %s, got %s", tc.draw, tc.want, assignment.VariantID)
		}
	}
}

func TestAssignProceedsWhenWeightsDoNotSumTo100(t *testing.T) {
	module, _ := newExperimentModule(0.5)
	assignment, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
		Variants: []entities.Variant{
			{VariantID: "a", Weight: 30},
			{VariantID: "b", Weight: 30},
		},
	})
	if err != nil {
		t.Fatalf("assign with off-sum weights failed: %v", err)
	}
	// Draw of 50 lands past a's cumulative 30 and inside b's 60.
	if assignment.VariantID != "b" {
		t.Fatalf("expected b, got %s", assignment.VariantID)
	}
}

func TestAssignExhaustedDrawFallsBackToFirstVariant(t *testing.T) {
	module, _ := newExperimentModule(0.99)
	assignment, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
		Variants: []entities.Variant{
			{VariantID: "a", Weight: 0},
			{VariantID: "b", Weight: 0},
		},
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assignment.VariantID != "a" {
		t.Fatalf("exhausted draw must fall back to the first variant, got %s", assignment.VariantID)
	}
}

func TestAssignValidatesInput(t *testing.T) {
	module, _ := newExperimentModule(0.5)
	if _, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: " ",
		TestName:  "headline-test",
		Variants:  twoVariants,
	}); !errors.Is(err, aberrors.ErrInvalidExperimentInput) {
		t.Fatalf("expected ErrInvalidExperimentInput for blank visitor, got %v", err)
	}
	if _, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
	}); !errors.Is(err, aberrors.ErrNoVariants) {
		t.Fatalf("expected ErrNoVariants for an empty variant list, got %v", err)
	}
}

func TestExposureEventAppendedExactlyOnce(t *testing.T) {
	module, store := newExperimentModule(0.1)
	for i := 0; i < 3; i++ {
		if _, err := module.Handler.Experiments.Assign(context.Background(), commands.AssignCommand{
			VisitorID: "visitor-1",
			TestName:  "headline-test",
			Variants:  twoVariants,
		}); err != nil {
			t.Fatalf("assign %d failed: %v", i, err)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one exposure event, got %d", len(pending))
	}
	if pending[0].EventType != "experiments.exposure_viewed" {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}
	if pending[0].PartitionKey != "headline-test" {
		t.Fatalf("exposure events must partition by test name, got %s", pending[0].PartitionKey)
	}
}

func TestTrackConversionRequiresTestAndVariant(t *testing.T) {
	module, _ := newExperimentModule(0.1)
	err := module.Handler.Experiments.TrackConversion(context.Background(), commands.TrackConversionCommand{
		VisitorID: "visitor-1",
		TestName:  "headline-test",
	})
	if !errors.Is(err, aberrors.ErrInvalidExperimentInput) {
		t.Fatalf("expected ErrInvalidExperimentInput, got %v", err)
	}
}

func TestExperimentResultsRankVariantsWithConfidence(t *testing.T) {
	module, store := newExperimentModule(0.1)
	ctx := context.Background()

	seed := []struct {
		variant     string
		visitors    int
		conversions int
	}{
		{variant: "control", visitors: 10, conversions: 1},
		{variant: "challenger", visitors: 10, conversions: 8},
	}
	for _, group := range seed {
		for i := 0; i < group.visitors; i++ {
			if err := store.PutAssignment(ctx, entities.Assignment{
				VisitorID: group.variant + "-visitor-" + string(rune('a'+i)),
				TestName:  "headline-test",
				VariantID: group.variant,
			}); err != nil {
				t.Fatalf("seed assignment failed: %v", err)
			}
		}
		for i := 0; i < group.conversions; i++ {
			if err := module.Handler.Experiments.TrackConversion(ctx, commands.TrackConversionCommand{
				TestName:  "headline-test",
				VariantID: group.variant,
				Label:     "purchase",
			}); err != nil {
				t.Fatalf("seed conversion failed: %v", err)
			}
		}
	}

	result, err := module.Handler.Queries.ExperimentResults(ctx, "headline-test")
	if err != nil {
		t.Fatalf("experiment results failed: %v", err)
	}
	if len(result.Variants) != 2 {
		t.Fatalf("expected two variant readouts, got %d", len(result.Variants))
	}
	if result.LeadingVariantID != "challenger" {
		t.Fatalf("expected challenger to lead, got %s", result.LeadingVariantID)
	}
	if !result.Confident {
		t.Fatalf("an 80%% vs 10%% split on 10 views each must be significant, got confidence %f", result.ConfidenceLevel)
	}
	for _, variant := range result.Variants {
		if variant.Views != 10 {
			t.Fatalf("expected 10 views per variant, got %+v", variant)
		}
		if variant.CILower < 0 || variant.CIUpper > 1 || variant.CILower > variant.Rate || variant.CIUpper < variant.Rate {
			t.Fatalf("interval must bracket the rate within [0,1], got %+v", variant)
		}
	}
}

func TestExperimentResultsWithNoDataAreEmpty(t *testing.T) {
	module, _ := newExperimentModule(0.1)
	result, err := module.Handler.Queries.ExperimentResults(context.Background(), "never-run")
	if err != nil {
		t.Fatalf("experiment results failed: %v", err)
	}
	if len(result.Variants) != 0 || result.LeadingVariantID != "" || result.Confident {
		t.Fatalf("an experiment with no data must report nothing, got %+v", result)
	}
}

func TestWilsonIntervalShrinksWithSampleSize(t *testing.T) {
	smallLower, smallUpper := stats.WilsonInterval(8, 10, 0.95)
	largeLower, largeUpper := stats.WilsonInterval(800, 1000, 0.95)
	if (smallUpper - smallLower) <= (largeUpper - largeLower) {
		t.Fatalf("larger samples must tighten the interval: small=%f large=%f",
			smallUpper-smallLower, largeUpper-largeLower)
	}
	if lower, upper := stats.WilsonInterval(0, 0, 0.95); lower != 0 || upper != 0 {
		t.Fatalf("no trials must give a degenerate interval, got [%f, %f]", lower, upper)
	}
}

func TestSignificanceTestOrdering(t *testing.T) {
	if got := stats.SignificanceTest(5, 10, 5, 10); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("equal proportions must read 0.5, got %f", got)
	}
	better := stats.SignificanceTest(9, 10, 1, 10)
	worse := stats.SignificanceTest(1, 10, 9, 10)
	if better <= 0.95 {
		t.Fatalf("a 90%% vs 10%% split must be confident, got %f", better)
	}
	if worse >= 0.05 {
		t.Fatalf("the mirrored split must read near zero, got %f", worse)
	}
}
