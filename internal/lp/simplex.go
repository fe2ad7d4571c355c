package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

const defaultTolerance = 1e-10

// Simplex solves problems with gonum's simplex implementation.
type Simplex struct {
	Tol float64
}

// NewSimplex creates a simplex-backed Solver.
func NewSimplex() *Simplex {
	return &Simplex{Tol: defaultTolerance}
}

// Solve converts p to standard form (Ax = b, x >= 0, b >= 0) by adding one
// slack or surplus column per row, then runs the simplex method.
func (s *Simplex) Solve(p Problem) (sol Solution, err error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}

	// gonum panics on malformed input; surface it as an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lp: simplex panicked: %v", r)
		}
	}()

	n := p.NumVars()
	rows, rhs, signs, err := standardRows(p)
	if err != nil {
		return Solution{}, err
	}
	m := len(rows)
	if m == 0 {
		return trivial(p)
	}

	cols := n + m
	data := make([]float64, m*cols)
	for i, row := range rows {
		copy(data[i*cols:i*cols+n], row)
		data[i*cols+n+i] = signs[i]
	}
	A := mat.NewDense(m, cols, data)

	c := make([]float64, cols)
	copy(c, p.Objective)

	tol := s.Tol
	if tol <= 0 {
		tol = defaultTolerance
	}

	optF, optX, err := gonumlp.Simplex(c, A, rhs, tol, nil)
	if err != nil {
		switch {
		case errors.Is(err, gonumlp.ErrInfeasible):
			return Solution{}, ErrInfeasible
		case errors.Is(err, gonumlp.ErrUnbounded):
			return Solution{}, ErrUnbounded
		default:
			return Solution{}, fmt.Errorf("lp: simplex failed: %w", err)
		}
	}

	x := make([]float64, n)
	for j := range x {
		// Clamp tiny negative noise from the factorisation.
		x[j] = math.Max(0, optX[j])
	}
	return Solution{X: x, Objective: optF}, nil
}

// standardRows flattens every constraint into equality rows with a
// non-negative right-hand side. signs holds the coefficient of each row's
// slack column: +1 for a slack, -1 for a surplus.
func standardRows(p Problem) (rows [][]float64, rhs, signs []float64, err error) {
	add := func(coeffs []float64, bound, sign float64) {
		row := make([]float64, len(coeffs))
		copy(row, coeffs)
		if bound < 0 {
			for j := range row {
				row[j] = -row[j]
			}
			bound = -bound
			sign = -sign
		}
		rows = append(rows, row)
		rhs = append(rhs, bound)
		signs = append(signs, sign)
	}

	for _, r := range p.LessEq {
		add(r.Coeffs, r.Bound, 1)
	}
	for _, r := range p.GreaterEq {
		add(r.Coeffs, r.Bound, -1)
	}

	n := p.NumVars()
	for j, u := range p.Upper {
		if math.IsInf(u, 1) {
			continue
		}
		if math.IsNaN(u) {
			return nil, nil, nil, fmt.Errorf("lp: upper bound of variable %d is NaN", j)
		}
		if u < 0 {
			return nil, nil, nil, ErrInfeasible
		}
		row := make([]float64, n)
		row[j] = 1
		add(row, u, 1)
	}
	return rows, rhs, signs, nil
}

// trivial handles a problem with no rows at all: x = 0 is optimal unless some
// objective coefficient is negative.
func trivial(p Problem) (Solution, error) {
	for _, c := range p.Objective {
		if c < 0 {
			return Solution{}, ErrUnbounded
		}
	}
	return Solution{X: make([]float64, p.NumVars())}, nil
}
