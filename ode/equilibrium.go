package ode

import (
	"math"
)

// EquilibriumOptions configures equilibrium detection during solving.
type EquilibriumOptions struct {
	// Tolerance for determining equilibrium (max |du/dt| per check)
	Tolerance float64
	// Number of consecutive checks below tolerance required
	ConsecutiveSteps int
	// Minimum time before checking for equilibrium
	MinTime float64
	// Check interval (check every N steps, 0 = every step)
	CheckInterval int
	// Hard time cap when extending past Tspan[1].
	// Zero means ten times the span width beyond t0.
	MaxTime float64
}

// DefaultEquilibriumOptions returns sensible defaults for equilibrium detection.
func DefaultEquilibriumOptions() *EquilibriumOptions {
	return &EquilibriumOptions{
		Tolerance:        1e-6,
		ConsecutiveSteps: 5,
		MinTime:          0.1,
		CheckInterval:    10,
	}
}

// FastEquilibriumOptions returns options for quick equilibrium detection.
// Use these when you want to stop as soon as the system stabilizes.
func FastEquilibriumOptions() *EquilibriumOptions {
	return &EquilibriumOptions{
		Tolerance:        1e-4,
		ConsecutiveSteps: 3,
		MinTime:          0.01,
		CheckInterval:    5,
	}
}

// StrictEquilibriumOptions returns options for strict equilibrium detection.
// Use these when you need high confidence that equilibrium is reached.
func StrictEquilibriumOptions() *EquilibriumOptions {
	return &EquilibriumOptions{
		Tolerance:        1e-9,
		ConsecutiveSteps: 10,
		MinTime:          1.0,
		CheckInterval:    1,
	}
}

// EquilibriumResult contains information about equilibrium detection.
type EquilibriumResult struct {
	// Whether equilibrium was reached
	Reached bool
	// Time at which equilibrium was detected
	Time float64
	// Final state at equilibrium
	State map[string]float64
	// Maximum rate of change at final state
	MaxChange float64
	// Number of steps taken
	Steps int
	// Reason for termination
	Reason string
}

// SolveUntilEquilibrium integrates until the system reaches equilibrium.
// Unlike Solve, integration continues past Tspan[1] when the system is
// still moving, up to the equilibrium options' time cap.
func SolveUntilEquilibrium(prob *Problem, solver *Solver, opts *Options, eqOpts *EquilibriumOptions) (*Solution, *EquilibriumResult) {
	if solver == nil {
		solver = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if eqOpts == nil {
		eqOpts = DefaultEquilibriumOptions()
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
	tcap := eqOpts.MaxTime
	if tcap <= t0 {
		tcap = t0 + 10*(tf-t0)
	}
	f := prob.F
	n := len(prob.u0vec)

	tOut := []float64{t0}
	uOut := [][]float64{append([]float64(nil), prob.u0vec...)}
	tcur := t0
	ucur := append([]float64(nil), prob.u0vec...)
	dtcur := dt
	nsteps := 0
	consecutiveSmall := 0
	checkCounter := 0

	eqResult := &EquilibriumResult{
		Reached: false,
		Reason:  "time_cap",
	}

	numStages := len(solver.C)

	for tcur < tcap && nsteps < maxiters {
		if tcur+dtcur > tcap {
			dtcur = tcap - tcur
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
				scale := abstol + reltol*math.Max(math.Abs(ucur[i]), math.Abs(unext[i]))
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

			// Check for equilibrium
			checkCounter++
			if tcur >= t0+eqOpts.MinTime && (eqOpts.CheckInterval == 0 || checkCounter >= eqOpts.CheckInterval) {
				checkCounter = 0
				maxChange := maxAbs(k[0])

				if maxChange < eqOpts.Tolerance {
					consecutiveSmall++
					if consecutiveSmall >= eqOpts.ConsecutiveSteps {
						eqResult.Reached = true
						eqResult.Time = tcur
						eqResult.MaxChange = maxChange
						eqResult.Reason = "equilibrium_reached"
						break
					}
				} else {
					consecutiveSmall = 0
				}
			}

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

	if nsteps >= maxiters && !eqResult.Reached {
		eqResult.Reason = "max_iterations"
	}

	sol := &Solution{
		T:      tOut,
		U:      uOut,
		Labels: prob.Labels,
	}

	eqResult.Steps = nsteps
	eqResult.State = sol.state(ucur)
	if !eqResult.Reached {
		eqResult.Time = tcur
		eqResult.MaxChange = maxAbs(f(tcur, ucur))
	}

	return sol, eqResult
}

// maxAbs returns the maximum absolute value in the vector.
func maxAbs(du []float64) float64 {
	maxChange := 0.0
	for _, v := range du {
		if abs := math.Abs(v); abs > maxChange {
			maxChange = abs
		}
	}
	return maxChange
}

// IsEquilibrium checks if a state is at equilibrium for the given problem.
func IsEquilibrium(prob *Problem, state map[string]float64, tolerance float64) bool {
	prob.normalize()
	du := prob.F(0, prob.vec(state))
	return maxAbs(du) < tolerance
}

// FindEquilibrium solves until equilibrium and returns just the final state.
// This is a convenience function for when you only care about the equilibrium.
func FindEquilibrium(prob *Problem) (map[string]float64, bool) {
	_, result := SolveUntilEquilibrium(prob, nil, nil, nil)
	return result.State, result.Reached
}
