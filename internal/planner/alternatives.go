package planner

import (
	"sort"

	"diet-planner/internal/catalog"
)

// Alternative is a substitute candidate ranked by protein per unit cost.
// Cost, Protein and Calories are per 100g.
type Alternative struct {
	Name              string  `json:"name"`
	CostEffectiveness float64 `json:"cost_effectiveness"`
	Cost              float64 `json:"cost"`
	Protein           float64 `json:"protein"`
	Calories          float64 `json:"calories"`
}

// AlternativesIndex maps a selected food name to its substitutes.
type AlternativesIndex map[string][]Alternative

// Recommend ranks every food not in selected by protein/cost and gives each
// selected food the top n. Ties keep input order.
func Recommend(foods []catalog.FoodItem, selected []SelectedFood, n int) AlternativesIndex {
	chosen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		chosen[s.Name] = struct{}{}
	}

	ranked := make([]Alternative, 0, len(foods))
	for _, f := range foods {
		if _, ok := chosen[f.Name]; ok {
			continue
		}
		var ce float64
		if f.Cost > 0 {
			ce = f.Protein / f.Cost
		}
		ranked = append(ranked, Alternative{
			Name:              f.Name,
			CostEffectiveness: round(ce, 3),
			Cost:              f.Cost,
			Protein:           f.Protein,
			Calories:          f.Calories,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CostEffectiveness > ranked[j].CostEffectiveness
	})
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	index := make(AlternativesIndex, len(selected))
	for _, s := range selected {
		index[s.Name] = append([]Alternative{}, ranked...)
	}
	return index
}
