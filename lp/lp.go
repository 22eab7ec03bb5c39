// Package lp solves linear programs over bounded variables with a
// two-phase primal simplex method. The solver is self-contained and
// deterministic: pivots follow Bland's smallest-index rule, so the same
// problem always visits the same sequence of bases.
package lp

import (
	"fmt"
	"math"
	"sort"
)

// Direction selects the optimization sense.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Status classifies the outcome of a solve.
type Status int

const (
	// StatusOptimal means an optimal basic solution was found.
	StatusOptimal Status = iota
	// StatusInfeasible means no point satisfies all constraints and bounds.
	StatusInfeasible
	// StatusUnbounded means the objective can improve without limit.
	StatusUnbounded
	// StatusIterationLimit means the pivot budget ran out first.
	StatusIterationLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusIterationLimit:
		return "iteration_limit"
	}
	return "unknown"
}

// Variable is a decision variable with inclusive bounds. Either bound
// may be infinite.
type Variable struct {
	Name  string
	Lower float64
	Upper float64
}

// Constraint bounds a weighted sum of variables: Lower <= sum <= Upper.
// Equal bounds express an equality row.
type Constraint struct {
	Name   string
	Coeffs map[int]float64
	Lower  float64
	Upper  float64
}

// Problem is a linear program over bounded variables. Objective maps
// variable indices to cost coefficients; absent indices cost zero.
type Problem struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   map[int]float64
	Direction   Direction
}

// AddVariable appends a bounded variable and returns its index.
func (p *Problem) AddVariable(name string, lower, upper float64) int {
	p.Variables = append(p.Variables, Variable{Name: name, Lower: lower, Upper: upper})
	return len(p.Variables) - 1
}

// AddConstraint appends a row bounding the weighted sum of variables.
func (p *Problem) AddConstraint(name string, coeffs map[int]float64, lower, upper float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Coeffs: coeffs, Lower: lower, Upper: upper})
}

// Result reports the solve outcome. X holds one value per problem
// variable and is the last iterate even when Status is not optimal.
// Objective is evaluated in the problem's own direction.
type Result struct {
	Status     Status
	X          []float64
	Objective  float64
	Iterations int
	Message    string
}

// Options tunes the solver. Zero values pick the defaults.
type Options struct {
	MaxIterations int
	Tolerance     float64
}

const defaultTolerance = 1e-9

// Solve runs the solver with default options.
func Solve(p *Problem) *Result {
	return SolveWith(p, Options{})
}

// SolveWith runs phase 1 to find a feasible basis, then phase 2 to
// optimize the caller's objective from it.
func SolveWith(p *Problem, opts Options) *Result {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	maxIters := opts.MaxIterations
	if maxIters <= 0 {
		maxIters = 50 * (len(p.Variables) + len(p.Constraints))
		if maxIters < 200 {
			maxIters = 200
		}
	}
	if msg := validate(p); msg != "" {
		return &Result{Status: StatusInfeasible, X: make([]float64, len(p.Variables)), Message: msg}
	}

	s := newSimplex(p, tol, maxIters)
	s.phase = 1
	status := s.optimize()
	if status != StatusOptimal {
		return s.result(p, StatusIterationLimit, "pivot budget exhausted during feasibility search")
	}
	if mass := s.artificialMass(); mass > tol {
		return s.result(p, StatusInfeasible, fmt.Sprintf("constraints cannot all be satisfied (residual %.3g)", mass))
	}
	s.pinArtificials()
	s.refresh()
	s.phase = 2
	switch s.optimize() {
	case StatusOptimal:
		return s.result(p, StatusOptimal, "")
	case StatusUnbounded:
		return s.result(p, StatusUnbounded, fmt.Sprintf("objective improves without limit along %s", s.note))
	default:
		return s.result(p, StatusIterationLimit, "pivot budget exhausted")
	}
}

func validate(p *Problem) string {
	for j, v := range p.Variables {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("x%d", j)
		}
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return fmt.Sprintf("variable %s has a NaN bound", name)
		}
		if v.Lower > v.Upper || math.IsInf(v.Lower, 1) || math.IsInf(v.Upper, -1) {
			return fmt.Sprintf("variable %s has empty domain [%g, %g]", name, v.Lower, v.Upper)
		}
	}
	for i, c := range p.Constraints {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("row%d", i)
		}
		if math.IsNaN(c.Lower) || math.IsNaN(c.Upper) {
			return fmt.Sprintf("constraint %s has a NaN bound", name)
		}
		if c.Lower > c.Upper || math.IsInf(c.Lower, 1) || math.IsInf(c.Upper, -1) {
			return fmt.Sprintf("constraint %s has empty bounds [%g, %g]", name, c.Lower, c.Upper)
		}
		for j := range c.Coeffs {
			if j < 0 || j >= len(p.Variables) {
				return fmt.Sprintf("constraint %s references unknown variable %d", name, j)
			}
		}
	}
	for j := range p.Objective {
		if j < 0 || j >= len(p.Variables) {
			return fmt.Sprintf("objective references unknown variable %d", j)
		}
	}
	return ""
}

// result snapshots the current iterate into a Result. The objective is
// recomputed from the original coefficients so the reported value always
// matches the reported X.
func (s *simplex) result(p *Problem, status Status, message string) *Result {
	s.refresh()
	x := s.solution(len(p.Variables))
	keys := make([]int, 0, len(p.Objective))
	for j := range p.Objective {
		keys = append(keys, j)
	}
	sort.Ints(keys)
	obj := 0.0
	for _, j := range keys {
		obj += p.Objective[j] * x[j]
	}
	if status == StatusUnbounded {
		if p.Direction == Maximize {
			obj = math.Inf(1)
		} else {
			obj = math.Inf(-1)
		}
	}
	return &Result{Status: status, X: x, Objective: obj, Iterations: s.iters, Message: message}
}
