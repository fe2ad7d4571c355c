package planner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"diet-planner/internal/catalog"
	"diet-planner/internal/logger"
	"diet-planner/internal/lp"
	"diet-planner/internal/nutrition"
)

// Status is the outcome of a planning request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Request is a fully derived planning request.
type Request struct {
	Target     nutrition.Target
	Budget     float64
	Preference Preference
	Pantry     []string
}

// Report is the structured result of a planning request. On error the plan
// fields are left empty and Message explains the failure.
type Report struct {
	ID               string            `json:"id,omitempty"`
	Status           Status            `json:"status"`
	Message          string            `json:"message,omitempty"`
	ErrorKind        string            `json:"error_kind,omitempty"`
	Targets          *nutrition.Target `json:"targets,omitempty"`
	MealPlan         MealPlan          `json:"meal_plan,omitempty"`
	NutritionSummary *NutritionSummary `json:"nutrition_summary,omitempty"`
	TotalCost        float64           `json:"total_cost"`
	Alternatives     AlternativesIndex `json:"alternatives,omitempty"`
	Selected         []SelectedFood    `json:"selected_foods,omitempty"`
	FoodsConsidered  int               `json:"foods_considered,omitempty"`
}

// Planner turns targets into a costed daily meal plan.
type Planner struct {
	catalog *catalog.Catalog
	solver  lp.Solver
	rules   Rules
}

// NewPlanner creates a new Planner instance.
func NewPlanner(c *catalog.Catalog, solver lp.Solver, rules Rules) *Planner {
	return &Planner{
		catalog: c,
		solver:  solver,
		rules:   rules,
	}
}

// Catalog returns the food catalog the planner draws from.
func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// Plan runs filter, solve, allocate and recommend. It never returns an error:
// every failure is folded into a Report with StatusError.
func (p *Planner) Plan(ctx context.Context, req Request) (report Report) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Planner panicked", zap.Any("panic", r))
			report = errorReport(fmt.Errorf("%w: %v", ErrSolverFault, r))
		}
	}()

	foods, err := Filter(p.catalog.Items(), req.Preference, p.rules.Denylists)
	if err != nil {
		return errorReport(err)
	}

	sol, err := p.Solve(ctx, foods, req.Target, req.Budget, req.Pantry)
	if err != nil {
		if Kind(err) == KindSolverFault {
			logger.Error("Error in meal optimization", zap.Error(err))
		} else {
			logger.Debug("No meal plan", zap.String("kind", Kind(err)), zap.Error(err))
		}
		report = errorReport(err)
		report.FoodsConsidered = len(foods)
		return report
	}

	target := req.Target
	summary := sol.Nutrition
	report = Report{
		Status:           StatusSuccess,
		Targets:          &target,
		MealPlan:         Allocate(sol.Foods, p.rules.Affinity),
		NutritionSummary: &summary,
		TotalCost:        sol.TotalCost,
		Alternatives:     Recommend(foods, sol.Foods, p.rules.AlternativesCount),
		Selected:         sol.Foods,
		FoodsConsidered:  len(foods),
	}

	logger.Debug("Meal plan generated",
		zap.Int("foods_considered", len(foods)),
		zap.Int("foods_selected", len(sol.Foods)),
		zap.Float64("total_cost", sol.TotalCost),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report
}

func errorReport(err error) Report {
	return Report{
		Status:    StatusError,
		Message:   Message(err),
		ErrorKind: Kind(err),
	}
}
