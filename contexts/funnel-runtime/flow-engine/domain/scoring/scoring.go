package scoring

import (
	"math"
	"sort"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
)

// UndefinedCategoryID is the sentinel primary result when a funnel defines no
// style categories at all.
const UndefinedCategoryID = "undefined"

// Calculate aggregates weighted points per style category from the collected
// answers and ranks the categories into a quiz result.
//
// Every known category appears in the output, zero-selection categories
// included. Option ids that resolve to nothing and options without a style
// category contribute zero points; funnel data is treated as possibly stale or
// partial, so neither case is an error. Ties on points break by the earliest
// click-order index of any option belonging to the category (first clicked
// wins); categories never clicked keep the input category order. The function
// is pure: identical inputs always produce identical output.
func Calculate(
	answers map[string][]string,
	clickOrder []string,
	options []entities.StageOption,
	categories []entities.StyleCategory,
	computedAt time.Time,
) entities.QuizResult {
	optionByID := make(map[string]entities.StageOption, len(options))
	for _, option := range options {
		optionByID[option.OptionID] = option
	}

	points := make(map[string]int, len(categories))
	for _, category := range categories {
		points[category.CategoryID] = 0
	}

	totalPoints := 0
	for _, optionIDs := range answers {
		for _, optionID := range optionIDs {
			option, found := optionByID[optionID]
			if !found || option.StyleCategory == "" {
				continue
			}
			if _, known := points[option.StyleCategory]; !known {
				continue
			}
			earned := option.EffectivePoints()
			points[option.StyleCategory] += earned
			totalPoints += earned
		}
	}

	clickRank := firstClickRanks(clickOrder, optionByID)

	ranked := make([]entities.StyleResult, 0, len(categories))
	for _, category := range categories {
		earned := points[category.CategoryID]
		percentage := 0
		if totalPoints > 0 {
			percentage = int(math.Round(float64(earned) / float64(totalPoints) * 100))
		}
		ranked = append(ranked, entities.StyleResult{
			CategoryID:   category.CategoryID,
			CategoryName: category.Name,
			Points:       earned,
			Percentage:   percentage,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return clickRank(ranked[i].CategoryID) < clickRank(ranked[j].CategoryID)
	})

	result := entities.QuizResult{
		AllStyles:   ranked,
		TotalPoints: totalPoints,
		ComputedAt:  computedAt.UTC(),
	}
	if len(ranked) == 0 {
		result.Primary = entities.StyleResult{
			CategoryID:   UndefinedCategoryID,
			CategoryName: "Undefined",
		}
		return result
	}

	result.Primary = ranked[0]
	upper := len(ranked)
	if upper > 3 {
		upper = 3
	}
	result.Secondaries = append([]entities.StyleResult(nil), ranked[1:upper]...)
	return result
}

// firstClickRanks maps each category to the earliest click-order position of
// any of its options. Categories never clicked rank after every clicked one,
// which lets the stable sort preserve their input order on 0-0 ties.
func firstClickRanks(
	clickOrder []string,
	optionByID map[string]entities.StageOption,
) func(categoryID string) int {
	ranks := make(map[string]int)
	for index, optionID := range clickOrder {
		option, found := optionByID[optionID]
		if !found || option.StyleCategory == "" {
			continue
		}
		if _, seen := ranks[option.StyleCategory]; !seen {
			ranks[option.StyleCategory] = index
		}
	}
	unclicked := len(clickOrder)
	return func(categoryID string) int {
		rank, seen := ranks[categoryID]
		if !seen {
			return unclicked
		}
		return rank
	}
}
