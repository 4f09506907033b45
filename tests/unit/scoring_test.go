package unit

import (
	"reflect"
	"testing"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/scoring"
)

var scoringFixtureOptions = []entities.StageOption{
	{OptionID: "opt-1", StageID: "stage-1", StyleCategory: "cat-natural", Points: 2},
	{OptionID: "opt-2", StageID: "stage-2", StyleCategory: "cat-classico", Points: 3},
	{OptionID: "opt-3", StageID: "stage-2", StyleCategory: "cat-natural", Points: 1},
}

// Natural listed first so a points tie resolved in Classico's favor can only
// come from the click order, never from input position.
var scoringFixtureCategories = []entities.StyleCategory{
	{CategoryID: "cat-natural", FunnelID: "funnel-1", Name: "Natural"},
	{CategoryID: "cat-classico", FunnelID: "funnel-1", Name: "Classico"},
}

func TestScoringBreaksPointTiesByFirstClick(t *testing.T) {
	answers := map[string][]string{
		"stage-1": {"opt-1"},
		"stage-2": {"opt-2", "opt-3"},
	}
	clickOrder := []string{"opt-2", "opt-1", "opt-3"}

	result := scoring.Calculate(answers, clickOrder, scoringFixtureOptions, scoringFixtureCategories, time.Now())

	if result.TotalPoints != 6 {
		t.Fatalf("expected 6 total points, got %d", result.TotalPoints)
	}
	// Both categories earn 3 points; opt-2 (classico) was clicked first.
	if result.Primary.CategoryID != "cat-classico" {
		t.Fatalf("expected cat-classico to win the tie, got %s", result.Primary.CategoryID)
	}
	if len(result.AllStyles) != 2 {
		t.Fatalf("expected both categories ranked, got %d", len(result.AllStyles))
	}
	for _, style := range result.AllStyles {
		if style.Points != 3 || style.Percentage != 50 {
			t.Fatalf("expected 3 points / 50%% per category, got %+v", style)
		}
	}
	if len(result.Secondaries) != 1 || result.Secondaries[0].CategoryID != "cat-natural" {
		t.Fatalf("expected cat-natural as the sole secondary, got %+v", result.Secondaries)
	}
}

func TestScoringIsDeterministic(t *testing.T) {
	answers := map[string][]string{
		"stage-1": {"opt-1"},
		"stage-2": {"opt-2", "opt-3"},
	}
	clickOrder := []string{"opt-2", "opt-1", "opt-3"}
	computedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := scoring.Calculate(answers, clickOrder, scoringFixtureOptions, scoringFixtureCategories, computedAt)
	second := scoring.Calculate(answers, clickOrder, scoringFixtureOptions, scoringFixtureCategories, computedAt)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestScoringPercentagesRoundPerCategory(t *testing.T) {
	options := []entities.StageOption{
		{OptionID: "opt-a", StyleCategory: "cat-a", Points: 1},
		{OptionID: "opt-b", StyleCategory: "cat-b", Points: 1},
		{OptionID: "opt-c", StyleCategory: "cat-c", Points: 1},
	}
	categories := []entities.StyleCategory{
		{CategoryID: "cat-a", Name: "A"},
		{CategoryID: "cat-b", Name: "B"},
		{CategoryID: "cat-c", Name: "C"},
	}
	answers := map[string][]string{"stage-1": {"opt-a", "opt-b", "opt-c"}}

	result := scoring.Calculate(answers, []string{"opt-a", "opt-b", "opt-c"}, options, categories, time.Now())
	for _, style := range result.AllStyles {
		if style.Percentage != 33 {
			t.Fatalf("expected each third to round to 33, got %d for %s", style.Percentage, style.CategoryID)
		}
	}
}

func TestScoringWithNoAnswersKeepsEveryCategoryAtZero(t *testing.T) {
	result := scoring.Calculate(nil, nil, scoringFixtureOptions, scoringFixtureCategories, time.Now())
	if result.TotalPoints != 0 {
		t.Fatalf("expected zero total, got %d", result.TotalPoints)
	}
	if len(result.AllStyles) != 2 {
		t.Fatalf("zero-selection categories must still rank, got %d entries", len(result.AllStyles))
	}
	for _, style := range result.AllStyles {
		if style.Points != 0 || style.Percentage != 0 {
			t.Fatalf("expected zeroed style entry, got %+v", style)
		}
	}
}

func TestScoringWithNoCategoriesYieldsUndefinedPrimary(t *testing.T) {
	answers := map[string][]string{"stage-1": {"opt-1"}}
	result := scoring.Calculate(answers, []string{"opt-1"}, scoringFixtureOptions, nil, time.Now())
	if result.Primary.CategoryID != scoring.UndefinedCategoryID {
		t.Fatalf("expected undefined primary, got %s", result.Primary.CategoryID)
	}
	if len(result.AllStyles) != 0 || len(result.Secondaries) != 0 {
		t.Fatalf("no categories means no ranking, got %+v", result)
	}
}

func TestScoringSkipsUnresolvableSelections(t *testing.T) {
	options := []entities.StageOption{
		{OptionID: "opt-known", StyleCategory: "cat-a", Points: 2},
		{OptionID: "opt-uncategorized", StyleCategory: ""},
		{OptionID: "opt-stale", StyleCategory: "cat-deleted", Points: 5},
	}
	categories := []entities.StyleCategory{{CategoryID: "cat-a", Name: "A"}}
	answers := map[string][]string{
		"stage-1": {"opt-known", "opt-uncategorized", "opt-stale", "opt-ghost"},
	}

	result := scoring.Calculate(answers, nil, options, categories, time.Now())
	if result.TotalPoints != 2 {
		t.Fatalf("only the resolvable categorized option may score, got total %d", result.TotalPoints)
	}
	if result.Primary.CategoryID != "cat-a" || result.Primary.Points != 2 {
		t.Fatalf("unexpected primary: %+v", result.Primary)
	}
}

func TestScoringDefaultsNonPositivePointsToOne(t *testing.T) {
	options := []entities.StageOption{
		{OptionID: "opt-zero", StyleCategory: "cat-a", Points: 0},
		{OptionID: "opt-negative", StyleCategory: "cat-a", Points: -3},
	}
	categories := []entities.StyleCategory{{CategoryID: "cat-a", Name: "A"}}
	answers := map[string][]string{"stage-1": {"opt-zero", "opt-negative"}}

	result := scoring.Calculate(answers, nil, options, categories, time.Now())
	if result.TotalPoints != 2 {
		t.Fatalf("expected both options to earn the default point, got %d", result.TotalPoints)
	}
}
