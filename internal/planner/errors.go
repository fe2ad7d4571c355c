package planner

import "errors"

var (
	// ErrEmptyCatalogAfterFilter is returned when the dietary preference removes every food.
	ErrEmptyCatalogAfterFilter = errors.New("no foods left after applying dietary preference")
	// ErrInfeasible is returned when no quantities satisfy calories, protein, budget and portion cap together.
	ErrInfeasible = errors.New("no feasible meal plan")
	// ErrNoSignificantSelection is returned when the optimum selects no food above the significance threshold.
	ErrNoSignificantSelection = errors.New("no food selected above significance threshold")
	// ErrSolverFault wraps unexpected failures of the optimization routine.
	ErrSolverFault = errors.New("solver fault")
	// ErrTimeout is returned when the solve outlives its context.
	ErrTimeout = errors.New("solve timed out")
)

// Error kinds reported alongside a failed plan.
const (
	KindEmptyCatalogAfterFilter = "EmptyCatalogAfterFilter"
	KindInfeasible              = "Infeasible"
	KindNoSignificantSelection  = "NoSignificantSelection"
	KindSolverFault             = "SolverFault"
	KindTimeout                 = "Timeout"
)

// Kind maps a planner error to its reported kind. Unknown errors are solver faults.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCatalogAfterFilter):
		return KindEmptyCatalogAfterFilter
	case errors.Is(err, ErrInfeasible):
		return KindInfeasible
	case errors.Is(err, ErrNoSignificantSelection):
		return KindNoSignificantSelection
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindSolverFault
	}
}

// Message returns the user-facing explanation for a planner error.
func Message(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case KindEmptyCatalogAfterFilter:
		return "No foods available for your dietary preference."
	case KindInfeasible:
		return "No feasible meal plan found with current constraints. Try increasing your budget or relaxing dietary restrictions."
	case KindNoSignificantSelection:
		return "No valid meal plan could be generated. Please try increasing your budget."
	case KindTimeout:
		return "The optimization took too long. Please try again with different parameters."
	default:
		return "An error occurred during optimization. Please try again with different parameters."
	}
}
