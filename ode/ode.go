// Package ode implements explicit Runge-Kutta integrators for
// biochemical rate models. Problems carry labeled state at the API and
// are vectorized internally for the stepping loop.
package ode

import (
	"math"
	"sort"
)

// Func computes the derivative du/dt given time t and state u.
// The returned slice must have the same length and layout as u.
type Func func(t float64, u []float64) []float64

// Problem represents an ODE initial value problem.
type Problem struct {
	F      Func
	U0     map[string]float64 // Initial state (label -> value)
	Tspan  [2]float64         // Time span [t0, tf]
	Labels []string           // Vector layout; sorted from U0 keys when empty

	index map[string]int
	u0vec []float64
}

// NewProblem creates a problem whose vector layout is the sorted U0 keys.
// Callers that need a specific layout set Labels on the struct instead.
func NewProblem(f Func, u0 map[string]float64, tspan [2]float64) *Problem {
	prob := &Problem{F: f, U0: u0, Tspan: tspan}
	prob.normalize()
	return prob
}

// normalize fills the vector layout from Labels and U0.
func (p *Problem) normalize() {
	if len(p.Labels) == 0 {
		p.Labels = make([]string, 0, len(p.U0))
		for label := range p.U0 {
			p.Labels = append(p.Labels, label)
		}
		sort.Strings(p.Labels)
	}
	if p.index == nil {
		p.index = make(map[string]int, len(p.Labels))
		for i, label := range p.Labels {
			p.index[label] = i
		}
	}
	if p.u0vec == nil {
		p.u0vec = make([]float64, len(p.Labels))
		for i, label := range p.Labels {
			p.u0vec[i] = p.U0[label]
		}
	}
}

// vec converts a labeled state map to the problem's vector layout.
// Labels missing from the map are zero.
func (p *Problem) vec(state map[string]float64) []float64 {
	u := make([]float64, len(p.Labels))
	for i, label := range p.Labels {
		u[i] = state[label]
	}
	return u
}

// Solution represents the solution to an ODE problem.
type Solution struct {
	T      []float64   // Time points
	U      [][]float64 // State vector at each time point
	Labels []string    // Vector layout
}

// GetVariable extracts the time series for one state variable.
// Returns nil if the label is not part of the solution.
func (s *Solution) GetVariable(label string) []float64 {
	idx := -1
	for i, l := range s.Labels {
		if l == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.U))
	for i, u := range s.U {
		out[i] = u[idx]
	}
	return out
}

// GetState returns the labeled state at time point index i.
func (s *Solution) GetState(i int) map[string]float64 {
	if i < 0 || i >= len(s.U) {
		return nil
	}
	return s.state(s.U[i])
}

// GetFinalState returns the final state of the system.
func (s *Solution) GetFinalState() map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.state(s.U[len(s.U)-1])
}

func (s *Solution) state(u []float64) map[string]float64 {
	m := make(map[string]float64, len(s.Labels))
	for i, label := range s.Labels {
		m[label] = u[i]
	}
	return m
}

// Interpolate returns the state at time t, linearly interpolated
// between the two bracketing time points. Times outside the solved
// range clamp to the first or last state.
func (s *Solution) Interpolate(t float64) map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.state(s.interpolateVec(t))
}

func (s *Solution) interpolateVec(t float64) []float64 {
	if t <= s.T[0] {
		return append([]float64(nil), s.U[0]...)
	}
	last := len(s.T) - 1
	if t >= s.T[last] {
		return append([]float64(nil), s.U[last]...)
	}
	hi := sort.SearchFloat64s(s.T, t)
	lo := hi - 1
	span := s.T[hi] - s.T[lo]
	w := 0.0
	if span > 0 {
		w = (t - s.T[lo]) / span
	}
	u := make([]float64, len(s.U[lo]))
	for i := range u {
		u[i] = s.U[lo][i] + w*(s.U[hi][i]-s.U[lo][i])
	}
	return u
}

// SampleAt resamples a solution onto the given evaluation grid.
func SampleAt(sol *Solution, times []float64) *Solution {
	out := &Solution{
		T:      append([]float64(nil), times...),
		U:      make([][]float64, len(times)),
		Labels: sol.Labels,
	}
	for i, t := range times {
		out.U[i] = sol.interpolateVec(t)
	}
	return out
}

// Linspace returns n evenly spaced points from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Options contains solver configuration parameters.
type Options struct {
	Dt       float64 // Initial time step
	Dtmin    float64 // Minimum time step
	Dtmax    float64 // Maximum time step
	Abstol   float64 // Absolute error tolerance
	Reltol   float64 // Relative error tolerance
	Maxiters int     // Maximum number of steps
	Adaptive bool    // Use adaptive step size control
}

// DefaultOptions returns default solver options.
// These are balanced settings suitable for most problems.
func DefaultOptions() *Options {
	return &Options{
		Dt:       0.01,
		Dtmin:    1e-6,
		Dtmax:    0.1,
		Abstol:   1e-6,
		Reltol:   1e-3,
		Maxiters: 100000,
		Adaptive: true,
	}
}

// FastOptions returns options optimized for speed over accuracy.
// Use these for parameter sweeps or when many simulations are needed
// quickly. Trades precision for roughly a 10x speedup.
func FastOptions() *Options {
	return &Options{
		Dt:       0.1,
		Dtmin:    1e-4,
		Dtmax:    1.0,
		Abstol:   1e-2,
		Reltol:   1e-2,
		Maxiters: 1000,
		Adaptive: true,
	}
}

// AccurateOptions returns options for high-precision simulations.
// Use these when publishing results or when numerical accuracy is
// critical.
func AccurateOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-8,
		Dtmax:    0.1,
		Abstol:   1e-9,
		Reltol:   1e-6,
		Maxiters: 1000000,
		Adaptive: true,
	}
}

// StiffOptions returns options for stiff systems.
// Use these when the rates span widely varying time scales, or when
// the default solver struggles with stability.
func StiffOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-10,
		Dtmax:    0.01,
		Abstol:   1e-8,
		Reltol:   1e-5,
		Maxiters: 500000,
		Adaptive: true,
	}
}

// Solver represents a Runge-Kutta method by its Butcher tableau.
type Solver struct {
	Name  string
	Order int
	C     []float64   // Runge-Kutta nodes
	A     [][]float64 // Runge-Kutta matrix
	B     []float64   // Solution weights
	Bhat  []float64   // Error estimate weights
}

// Solve integrates the problem using the given method and options.
// A nil method defaults to Tsit5, a nil options to DefaultOptions.
func Solve(prob *Problem, solver *Solver, opts *Options) *Solution {
	if solver == nil {
		solver = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	prob.normalize()

	dt := opts.Dt
	dtmin := opts.Dtmin
	dtmax := opts.Dtmax
	abstol := opts.Abstol
	reltol := opts.Reltol
	maxiters := opts.Maxiters
	adaptive := opts.Adaptive

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	f := prob.F
	n := len(prob.u0vec)

	tOut := []float64{t0}
	uOut := [][]float64{append([]float64(nil), prob.u0vec...)}
	tcur := t0
	ucur := append([]float64(nil), prob.u0vec...)
	dtcur := dt
	nsteps := 0

	numStages := len(solver.C)

	for tcur < tf && nsteps < maxiters {
		// Don't overshoot the final time
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		// Compute Runge-Kutta stages
		k := make([][]float64, numStages)
		k[0] = f(tcur, ucur)

		for stage := 1; stage < numStages; stage++ {
			tstage := tcur + solver.C[stage]*dtcur
			ustage := append([]float64(nil), ucur...)
			for j := 0; j < stage; j++ {
				aj := 0.0
				if len(solver.A) > stage && len(solver.A[stage]) > j {
					aj = solver.A[stage][j]
				}
				if aj != 0 {
					scale := dtcur * aj
					for i := 0; i < n; i++ {
						ustage[i] += scale * k[j][i]
					}
				}
			}
			k[stage] = f(tstage, ustage)
		}

		// Compute solution at next step
		unext := append([]float64(nil), ucur...)
		for j := 0; j < len(solver.B); j++ {
			if solver.B[j] != 0 {
				scale := dtcur * solver.B[j]
				for i := 0; i < n; i++ {
					unext[i] += scale * k[j][i]
				}
			}
		}

		// Compute error estimate for adaptive stepping
		err := 0.0
		if adaptive {
			for i := 0; i < n; i++ {
				errest := 0.0
				for j := 0; j < len(solver.Bhat); j++ {
					errest += dtcur * solver.Bhat[j] * k[j][i]
				}
				uc := ucur[i]
				un := unext[i]
				scale := abstol + reltol*math.Max(math.Abs(uc), math.Abs(un))
				if scale == 0 {
					scale = abstol
				}
				val := math.Abs(errest) / scale
				if val > err {
					err = val
				}
			}
		}

		// Accept or reject step
		if !adaptive || err <= 1.0 || dtcur <= dtmin {
			// Accept step
			tcur += dtcur
			ucur = unext
			tOut = append(tOut, tcur)
			uOut = append(uOut, append([]float64(nil), ucur...))
			nsteps++

			// Adapt step size for next iteration
			if adaptive && err > 0 {
				factor := 0.9 * math.Pow(1.0/err, 1.0/float64(solver.Order+1))
				factor = math.Min(factor, 5.0)
				dtcur = math.Min(dtmax, math.Max(dtmin, dtcur*factor))
			}
		} else {
			// Reject step and reduce step size
			factor := 0.9 * math.Pow(1.0/err, 1.0/float64(solver.Order+1))
			factor = math.Max(factor, 0.1)
			dtcur = math.Max(dtmin, dtcur*factor)
		}
	}

	return &Solution{
		T:      tOut,
		U:      uOut,
		Labels: prob.Labels,
	}
}

// CopyState creates a deep copy of a state map.
// Useful when modifying state without affecting the original, such as
// when seeding sweep or knockout variants.
func CopyState(s map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
