// Package sensitivity provides tools for analyzing how pathway models
// respond to perturbation. The flux side covers reaction knockouts and
// bound sweeps over a stoichiometric network; the circuit side covers
// parameter sweeps, gradient estimation, and grid search over gene
// circuit rate constants.
package sensitivity

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/metnet"
	"github.com/metnet-xyz/go-metnet/ode"
)

// Impact records the effect of knocking out one reaction.
type Impact struct {
	ReactionID string
	Status     fba.Status
	Objective  float64
	// Delta is the objective lost relative to baseline. An infeasible
	// knockout loses the whole baseline.
	Delta float64
}

// KnockoutReport holds the outcome of a knockout screen.
type KnockoutReport struct {
	Baseline float64
	Impacts  []Impact // network reaction order
}

// Ranked returns the impacts sorted by loss, largest first.
// Ties break on reaction id so the ranking is stable.
func (r *KnockoutReport) Ranked() []Impact {
	ranked := append([]Impact(nil), r.Impacts...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := math.Abs(ranked[i].Delta), math.Abs(ranked[j].Delta)
		if a != b {
			return a > b
		}
		return ranked[i].ReactionID < ranked[j].ReactionID
	})
	return ranked
}

// Analyzer runs flux-based sensitivity analysis on a network.
type Analyzer struct {
	Network   *metnet.Network
	Objective *fba.Objective
	// Backend overrides the LP backend; nil uses the built-in simplex.
	Backend fba.Backend
}

// NewAnalyzer creates an analyzer over the network and objective.
func NewAnalyzer(net *metnet.Network, objective *fba.Objective) *Analyzer {
	return &Analyzer{Network: net, Objective: objective}
}

func (a *Analyzer) solver() *fba.Solver {
	s := fba.NewSolver()
	if a.Backend != nil {
		s.Backend = a.Backend
	}
	return s
}

// baseline solves the unperturbed network.
func (a *Analyzer) baseline() (float64, error) {
	prob, err := fba.Build(a.Network, a.Objective)
	if err != nil {
		return 0, err
	}
	sol := a.solver().Solve(prob)
	if sol.Status != fba.StatusOptimal {
		return 0, fmt.Errorf("baseline solve is %s: %s", sol.Status, sol.Message)
	}
	return sol.Objective, nil
}

// knockout forces one reaction to zero flux and re-solves.
func (a *Analyzer) knockout(reactionID string, baseline float64) Impact {
	net := a.Network.Clone()
	if err := net.SetBounds(reactionID, 0, 0); err != nil {
		return Impact{ReactionID: reactionID, Status: fba.StatusError, Delta: baseline}
	}
	prob, err := fba.Build(net, a.Objective)
	if err != nil {
		return Impact{ReactionID: reactionID, Status: fba.StatusError, Delta: baseline}
	}
	sol := a.solver().Solve(prob)
	impact := Impact{ReactionID: reactionID, Status: sol.Status}
	if sol.Status == fba.StatusOptimal {
		impact.Objective = sol.Objective
		impact.Delta = baseline - sol.Objective
	} else {
		impact.Delta = baseline
	}
	return impact
}

// AnalyzeKnockouts knocks out each reaction in turn and re-solves.
// Impacts follow the network's reaction order.
func (a *Analyzer) AnalyzeKnockouts() (*KnockoutReport, error) {
	baseline, err := a.baseline()
	if err != nil {
		return nil, err
	}

	report := &KnockoutReport{Baseline: baseline}
	for _, rxn := range a.Network.Reactions() {
		report.Impacts = append(report.Impacts, a.knockout(rxn.ID, baseline))
	}
	return report, nil
}

// AnalyzeKnockoutsParallel runs the knockout screen across a worker
// pool. The report is identical to AnalyzeKnockouts: impacts land in
// network reaction order regardless of completion order.
func (a *Analyzer) AnalyzeKnockoutsParallel(workers int) (*KnockoutReport, error) {
	baseline, err := a.baseline()
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reactions := a.Network.Reactions()
	impacts := make([]Impact, len(reactions))
	jobs := make(chan int)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				impact := a.knockout(reactions[i].ID, baseline)
				mu.Lock()
				impacts[i] = impact
				mu.Unlock()
			}
		}()
	}

	for i := range reactions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &KnockoutReport{Baseline: baseline, Impacts: impacts}, nil
}

// Bound selects which flux bound a sweep varies.
type Bound string

const (
	LowerBound Bound = "lower"
	UpperBound Bound = "upper"
)

// BoundSweep holds the objective across a range of one flux bound.
type BoundSweep struct {
	ReactionID string
	Which      Bound
	Values     []float64
	Objectives []float64
	Statuses   []fba.Status
	Best       struct {
		Value     float64
		Objective float64
	}
	Worst struct {
		Value     float64
		Objective float64
	}
	// Feasible counts the optimal points; Best and Worst are only
	// meaningful when it is nonzero.
	Feasible int
}

// SweepBound solves the network at n evenly spaced values of one
// reaction bound, leaving the other bound untouched.
func (a *Analyzer) SweepBound(reactionID string, which Bound, min, max float64, n int) (*BoundSweep, error) {
	if which != LowerBound && which != UpperBound {
		return nil, fmt.Errorf("sweep bound: unknown bound %q", which)
	}
	if n < 1 {
		return nil, fmt.Errorf("sweep bound: need at least one point, got %d", n)
	}
	base, err := a.Network.GetReaction(reactionID)
	if err != nil {
		return nil, fmt.Errorf("sweep bound: %w", err)
	}

	sweep := &BoundSweep{
		ReactionID: reactionID,
		Which:      which,
		Values:     ode.Linspace(min, max, n),
		Objectives: make([]float64, n),
		Statuses:   make([]fba.Status, n),
	}

	bestObj := math.Inf(-1)
	worstObj := math.Inf(1)

	for i, value := range sweep.Values {
		lower, upper := base.LowerBound, base.UpperBound
		if which == LowerBound {
			lower = value
		} else {
			upper = value
		}
		// A swept value crossing the fixed bound is an empty flux
		// range, not a sweep failure.
		if lower > upper {
			sweep.Statuses[i] = fba.StatusInfeasible
			sweep.Objectives[i] = math.NaN()
			continue
		}
		net := a.Network.Clone()
		if err := net.SetBounds(reactionID, lower, upper); err != nil {
			return nil, fmt.Errorf("sweep bound: %w", err)
		}
		prob, err := fba.Build(net, a.Objective)
		if err != nil {
			return nil, fmt.Errorf("sweep bound: %w", err)
		}
		sol := a.solver().Solve(prob)
		sweep.Statuses[i] = sol.Status
		if sol.Status != fba.StatusOptimal {
			sweep.Objectives[i] = math.NaN()
			continue
		}
		sweep.Objectives[i] = sol.Objective
		sweep.Feasible++
		if sol.Objective > bestObj {
			bestObj = sol.Objective
			sweep.Best.Value = value
			sweep.Best.Objective = sol.Objective
		}
		if sol.Objective < worstObj {
			worstObj = sol.Objective
			sweep.Worst.Value = value
			sweep.Worst.Objective = sol.Objective
		}
	}

	return sweep, nil
}
