package planner

import (
	"context"
	"errors"
	"fmt"
	"math"

	"diet-planner/internal/catalog"
	"diet-planner/internal/lp"
	"diet-planner/internal/nutrition"
)

const (
	// PortionCap is the most grams of any single food allowed per day.
	PortionCap = 500.0
	// SignificanceThreshold drops foods whose solved quantity is at or below it (grams).
	SignificanceThreshold = 1.0
	// PantryDiscount scales the objective cost of foods the user already has.
	PantryDiscount = 0.5
	// CalorieTolerance is the allowed relative deviation from the calorie target.
	CalorieTolerance = 0.05
)

// SelectedFood is a food chosen by the solver with its daily contribution.
type SelectedFood struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// NutritionSummary holds the six macro totals of a plan.
type NutritionSummary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
	Iron     float64 `json:"iron"`
}

// Solution is the outcome of a successful solve.
type Solution struct {
	Foods     []SelectedFood
	Nutrition NutritionSummary
	TotalCost float64
}

// BuildProblem formulates the diet as a linear program with one variable per
// food, measured in grams.
func BuildProblem(foods []catalog.FoodItem, target nutrition.Target, budget float64, pantry []string) lp.Problem {
	inPantry := make(map[string]struct{}, len(pantry))
	for _, name := range pantry {
		inPantry[name] = struct{}{}
	}

	n := len(foods)
	objective := make([]float64, n)
	calories := make([]float64, n)
	protein := make([]float64, n)
	cost := make([]float64, n)
	upper := make([]float64, n)

	for i, f := range foods {
		cost[i] = f.Cost / 100
		objective[i] = cost[i]
		if _, ok := inPantry[f.Name]; ok {
			objective[i] *= PantryDiscount
		}
		calories[i] = f.Calories / 100
		protein[i] = f.Protein / 100
		upper[i] = PortionCap
	}

	kcal := float64(target.Calories)
	return lp.Problem{
		Objective: objective,
		LessEq: []lp.Constraint{
			{Name: "calories_max", Coeffs: calories, Bound: kcal * (1 + CalorieTolerance)},
			{Name: "budget", Coeffs: cost, Bound: budget},
		},
		GreaterEq: []lp.Constraint{
			{Name: "calories_min", Coeffs: calories, Bound: kcal * (1 - CalorieTolerance)},
			{Name: "protein_min", Coeffs: protein, Bound: float64(target.Protein)},
		},
		Upper: upper,
	}
}

// Solve finds the cheapest selection of foods meeting the target within the
// budget. Pantry foods are discounted in the objective only; the budget is
// always checked against their real cost.
func (p *Planner) Solve(ctx context.Context, foods []catalog.FoodItem, target nutrition.Target, budget float64, pantry []string) (Solution, error) {
	if len(foods) == 0 {
		return Solution{}, ErrEmptyCatalogAfterFilter
	}
	prob := BuildProblem(foods, target, budget, pantry)

	type result struct {
		sol lp.Solution
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("solver panicked: %v", r)}
			}
		}()
		sol, err := p.solver.Solve(prob)
		done <- result{sol: sol, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return Solution{}, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, lp.ErrInfeasible) {
			return Solution{}, ErrInfeasible
		}
		return Solution{}, fmt.Errorf("%w: %v", ErrSolverFault, res.err)
	}
	if len(res.sol.X) != len(foods) {
		return Solution{}, fmt.Errorf("%w: got %d quantities for %d foods", ErrSolverFault, len(res.sol.X), len(foods))
	}

	return extract(foods, res.sol.X)
}

func extract(foods []catalog.FoodItem, x []float64) (Solution, error) {
	var (
		selected []SelectedFood
		totals   NutritionSummary
		cost     float64
	)
	for i, f := range foods {
		q := x[i]
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return Solution{}, fmt.Errorf("%w: non-finite quantity for %s", ErrSolverFault, f.Name)
		}
		if q <= SignificanceThreshold {
			continue
		}

		factor := q / 100
		foodCost := factor * f.Cost
		cost += foodCost
		totals.Calories += f.Calories * factor
		totals.Protein += f.Protein * factor
		totals.Fat += f.Fat * factor
		totals.Carbs += f.Carbs * factor
		totals.Fiber += f.Fiber * factor
		totals.Iron += f.Iron * factor

		selected = append(selected, SelectedFood{
			Name:     f.Name,
			Quantity: round(q, 1),
			Cost:     round(foodCost, 2),
			Calories: round(f.Calories*factor, 1),
			Protein:  round(f.Protein*factor, 1),
		})
	}

	if len(selected) == 0 {
		return Solution{}, ErrNoSignificantSelection
	}

	return Solution{
		Foods: selected,
		Nutrition: NutritionSummary{
			Calories: round(totals.Calories, 1),
			Protein:  round(totals.Protein, 1),
			Fat:      round(totals.Fat, 1),
			Carbs:    round(totals.Carbs, 1),
			Fiber:    round(totals.Fiber, 1),
			Iron:     round(totals.Iron, 1),
		},
		TotalCost: round(cost, 2),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
