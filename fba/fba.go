// Package fba assembles flux balance analysis problems from
// stoichiometric networks and solves them through a pluggable linear
// programming backend. The assembly step turns each reaction into a
// bounded flux variable and each participating metabolite into a
// steady-state equality row; the solve step maps backend outcomes onto
// a small status vocabulary without repairing or retrying.
package fba

import (
	"fmt"
	"log/slog"

	"github.com/metnet-xyz/go-metnet/lp"
	"github.com/metnet-xyz/go-metnet/metnet"
)

// Term is one weighted reaction flux inside an objective.
type Term struct {
	ReactionID  string
	Coefficient float64
}

// Objective is a linear functional over reaction fluxes together with
// an optimization direction. Terms are ordered and no reaction may
// appear twice.
type Objective struct {
	Direction lp.Direction
	Terms     []Term
}

// Maximize builds an objective maximizing a single reaction's flux.
func Maximize(reactionID string) *Objective {
	return &Objective{Direction: lp.Maximize, Terms: []Term{{ReactionID: reactionID, Coefficient: 1}}}
}

// Minimize builds an objective minimizing a single reaction's flux.
func Minimize(reactionID string) *Objective {
	return &Objective{Direction: lp.Minimize, Terms: []Term{{ReactionID: reactionID, Coefficient: 1}}}
}

// Add appends a weighted term and returns the objective for chaining.
func (o *Objective) Add(reactionID string, coefficient float64) *Objective {
	o.Terms = append(o.Terms, Term{ReactionID: reactionID, Coefficient: coefficient})
	return o
}

// Problem is an assembled linear program plus the mapping from
// reaction ids to LP columns, so solutions can be keyed back by id.
type Problem struct {
	LP      *lp.Problem
	columns map[string]int
	order   []string
}

// Column returns the LP variable index of a reaction.
func (p *Problem) Column(reactionID string) (int, bool) {
	idx, ok := p.columns[reactionID]
	return idx, ok
}

// ReactionIDs returns the reaction ids in column order.
func (p *Problem) ReactionIDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Build translates a network and an objective into a linear program.
// Every reaction becomes one bounded continuous variable in network
// order. Every metabolite with at least one nonzero coefficient becomes
// one equality row pinned to zero; untouched metabolites produce no
// row. Objective terms must reference existing reactions and no
// reaction twice.
func Build(net *metnet.Network, objective *Objective) (*Problem, error) {
	p := &Problem{
		LP:      &lp.Problem{Objective: make(map[int]float64)},
		columns: make(map[string]int, net.Len()),
	}
	for _, rxn := range net.Reactions() {
		idx := p.LP.AddVariable(rxn.ID, rxn.LowerBound, rxn.UpperBound)
		p.columns[rxn.ID] = idx
		p.order = append(p.order, rxn.ID)
	}
	for _, bc := range net.BalanceConstraints() {
		coeffs := make(map[int]float64, len(bc.Terms))
		for _, term := range bc.Terms {
			coeffs[p.columns[term.ReactionID]] += term.Coefficient
		}
		p.LP.AddConstraint(bc.MetaboliteID, coeffs, bc.Target, bc.Target)
	}

	if objective == nil || len(objective.Terms) == 0 {
		return nil, fmt.Errorf("build problem for %q: objective must name at least one reaction", net.Name)
	}
	seen := make(map[string]bool, len(objective.Terms))
	for _, term := range objective.Terms {
		if seen[term.ReactionID] {
			return nil, fmt.Errorf("build problem for %q: reaction %q: %w", net.Name, term.ReactionID, metnet.ErrDuplicateObjective)
		}
		seen[term.ReactionID] = true
		idx, ok := p.columns[term.ReactionID]
		if !ok {
			return nil, fmt.Errorf("build problem for %q: objective reaction %q: %w", net.Name, term.ReactionID, metnet.ErrUnknownReaction)
		}
		p.LP.Objective[idx] = term.Coefficient
	}
	p.LP.Direction = objective.Direction
	return p, nil
}

// Status classifies a solve outcome.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	}
	return "error"
}

// Solution is the outcome of one solve. Fluxes is populated only for
// optimal solutions and maps every reaction id to its flux value.
// Solutions are never mutated after creation; re-solving produces a
// fresh one.
type Solution struct {
	Status    Status
	Objective float64
	Fluxes    map[string]float64
	Message   string
}

// GetFlux returns the flux carried by a reaction in this solution.
func (s *Solution) GetFlux(reactionID string) (float64, bool) {
	flux, ok := s.Fluxes[reactionID]
	return flux, ok
}

// Backend solves an assembled linear program. Any solver that supports
// bounded continuous variables, ranged linear constraints, and a
// directed linear objective can serve.
type Backend interface {
	Solve(p *lp.Problem) (*lp.Result, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(p *lp.Problem) (*lp.Result, error)

func (f BackendFunc) Solve(p *lp.Problem) (*lp.Result, error) {
	return f(p)
}

// Solver runs assembled problems through a backend and normalizes the
// outcome. The zero value is not usable; NewSolver wires the in-repo
// simplex.
type Solver struct {
	Backend Backend
	Logger  *slog.Logger
}

// NewSolver returns a solver backed by the bounded-variable simplex in
// package lp.
func NewSolver() *Solver {
	return &Solver{
		Backend: BackendFunc(func(p *lp.Problem) (*lp.Result, error) {
			return lp.Solve(p), nil
		}),
	}
}

// Solve runs the backend and maps its outcome. Optimal results carry
// the full flux vector and objective value; infeasible and unbounded
// results carry only the backend's explanation. A backend failure
// becomes StatusError with the wrapped cause, never a repair or retry.
func (s *Solver) Solve(p *Problem) *Solution {
	res, err := s.Backend.Solve(p.LP)
	if err != nil {
		return &Solution{Status: StatusError, Message: fmt.Sprintf("solve failed: %v", err)}
	}
	switch res.Status {
	case lp.StatusOptimal:
		fluxes := make(map[string]float64, len(p.order))
		for _, id := range p.order {
			fluxes[id] = res.X[p.columns[id]]
		}
		s.logger().Debug("solved flux balance problem",
			"status", StatusOptimal.String(),
			"objective", res.Objective,
			"iterations", res.Iterations)
		return &Solution{Status: StatusOptimal, Objective: res.Objective, Fluxes: fluxes}
	case lp.StatusInfeasible:
		return &Solution{Status: StatusInfeasible, Message: res.Message}
	case lp.StatusUnbounded:
		return &Solution{Status: StatusUnbounded, Objective: res.Objective, Message: res.Message}
	default:
		return &Solution{Status: StatusError, Message: res.Message}
	}
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
