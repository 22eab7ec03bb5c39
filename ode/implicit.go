package ode

import (
	"math"
)

// ImplicitEuler solves using the backward Euler method.
// This is an A-stable implicit method suitable for stiff systems.
// It uses fixed-point iteration to solve the implicit equation.
//
// For stiff problems where explicit methods (Tsit5, RK45) require
// extremely small time steps, implicit methods can be much more efficient.
func ImplicitEuler(prob *Problem, opts *Options) *Solution {
	if opts == nil {
		opts = StiffOptions()
	}
	prob.normalize()

	dt := opts.Dt
	maxiters := opts.Maxiters
	abstol := opts.Abstol

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	f := prob.F
	n := len(prob.u0vec)

	tOut := []float64{t0}
	uOut := [][]float64{append([]float64(nil), prob.u0vec...)}
	tcur := t0
	ucur := append([]float64(nil), prob.u0vec...)
	nsteps := 0

	// Fixed-point iteration parameters
	maxFixedPoint := 50
	fixedPointTol := abstol * 10

	for tcur < tf && nsteps < maxiters {
		dtcur := dt
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		tnext := tcur + dtcur

		// Backward Euler: u_{n+1} = u_n + dt * f(t_{n+1}, u_{n+1})
		// Fixed-point iteration: u^{k+1} = u_n + dt * f(t_{n+1}, u^k)
		// Start with explicit Euler guess
		unext := append([]float64(nil), ucur...)
		du := f(tcur, ucur)
		for i := 0; i < n; i++ {
			unext[i] += dtcur * du[i]
		}

		for iter := 0; iter < maxFixedPoint; iter++ {
			dunext := f(tnext, unext)
			unew := append([]float64(nil), ucur...)
			for i := 0; i < n; i++ {
				unew[i] += dtcur * dunext[i]
			}

			// Check convergence
			maxDiff := 0.0
			for i := 0; i < n; i++ {
				if diff := math.Abs(unew[i] - unext[i]); diff > maxDiff {
					maxDiff = diff
				}
			}

			unext = unew

			if maxDiff < fixedPointTol {
				break
			}
		}

		tcur = tnext
		ucur = unext
		tOut = append(tOut, tcur)
		uOut = append(uOut, append([]float64(nil), ucur...))
		nsteps++
	}

	return &Solution{
		T:      tOut,
		U:      uOut,
		Labels: prob.Labels,
	}
}

// SolveImplicit chooses between explicit and implicit methods based on
// a stiffness heuristic at the initial state.
func SolveImplicit(prob *Problem, opts *Options) *Solution {
	if opts == nil {
		opts = DefaultOptions()
	}

	if detectStiffness(prob) {
		implicitOpts := &Options{
			Dt:       opts.Dt,
			Dtmin:    opts.Dtmin,
			Dtmax:    opts.Dtmax,
			Abstol:   opts.Abstol,
			Reltol:   opts.Reltol,
			Maxiters: opts.Maxiters,
			Adaptive: false, // Implicit Euler uses fixed steps
		}
		return ImplicitEuler(prob, implicitOpts)
	}

	return Solve(prob, Tsit5(), opts)
}

// detectStiffness estimates stiffness from the spread of the nonzero
// derivative magnitudes at the initial state.
func detectStiffness(prob *Problem) bool {
	prob.normalize()
	du := prob.F(prob.Tspan[0], prob.u0vec)

	maxDu := 0.0
	minDu := math.MaxFloat64
	for _, v := range du {
		absV := math.Abs(v)
		if absV > 1e-10 {
			if absV > maxDu {
				maxDu = absV
			}
			if absV < minDu {
				minDu = absV
			}
		}
	}

	if minDu < 1e-10 || maxDu < 1e-10 {
		return false
	}

	return maxDu/minDu > 1000
}
