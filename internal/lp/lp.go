package lp

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInfeasible is returned when no point satisfies every constraint.
	ErrInfeasible = errors.New("lp: problem is infeasible")
	// ErrUnbounded is returned when the objective can decrease without limit.
	ErrUnbounded = errors.New("lp: problem is unbounded")
)

// Constraint is a single linear row: Coeffs · x compared against Bound.
type Constraint struct {
	Name   string
	Coeffs []float64
	Bound  float64
}

// Problem is a minimisation over non-negative variables:
//
//	minimize   Objective · x
//	subject to LessEq[i]    · x <= LessEq[i].Bound
//	           GreaterEq[i] · x >= GreaterEq[i].Bound
//	           0 <= x[j] <= Upper[j]
//
// A nil Upper, or an infinite entry, leaves the variable unbounded above.
type Problem struct {
	Objective []float64
	LessEq    []Constraint
	GreaterEq []Constraint
	Upper     []float64
}

// Solution is an optimal point and its objective value.
type Solution struct {
	X         []float64
	Objective float64
}

// Solver solves a linear program synchronously.
type Solver interface {
	Solve(p Problem) (Solution, error)
}

// NumVars returns the number of decision variables.
func (p Problem) NumVars() int {
	return len(p.Objective)
}

// Validate checks the dimensions of every row.
func (p Problem) Validate() error {
	n := p.NumVars()
	if n == 0 {
		return fmt.Errorf("lp: problem has no variables")
	}
	check := func(kind string, rows []Constraint) error {
		for i, r := range rows {
			if len(r.Coeffs) != n {
				return fmt.Errorf("lp: %s row %d (%s) has %d coefficients, want %d", kind, i, r.Name, len(r.Coeffs), n)
			}
			if math.IsNaN(r.Bound) || math.IsInf(r.Bound, 0) {
				return fmt.Errorf("lp: %s row %d (%s) has non-finite bound", kind, i, r.Name)
			}
		}
		return nil
	}
	if err := check("<=", p.LessEq); err != nil {
		return err
	}
	if err := check(">=", p.GreaterEq); err != nil {
		return err
	}
	if p.Upper != nil && len(p.Upper) != n {
		return fmt.Errorf("lp: %d upper bounds for %d variables", len(p.Upper), n)
	}
	return nil
}

// Value evaluates coeffs · x.
func Value(coeffs, x []float64) float64 {
	var sum float64
	for i, c := range coeffs {
		sum += c * x[i]
	}
	return sum
}
