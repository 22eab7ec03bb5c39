package ode

import (
	"math"
	"testing"
)

// relaxationProblem returns du/dt = target - u, which settles at target.
func relaxationProblem(target, u0 float64, tspan [2]float64) *Problem {
	return NewProblem(func(_ float64, u []float64) []float64 {
		return []float64{target - u[0]}
	}, map[string]float64{"P": u0}, tspan)
}

func TestSolveUntilEquilibriumReachesSteadyState(t *testing.T) {
	prob := relaxationProblem(50, 0, [2]float64{0, 10})
	sol, result := SolveUntilEquilibrium(prob, nil, nil, nil)

	if !result.Reached {
		t.Fatalf("Expected equilibrium, got reason %q after %d steps", result.Reason, result.Steps)
	}
	if result.Reason != "equilibrium_reached" {
		t.Errorf("Expected reason equilibrium_reached, got %q", result.Reason)
	}
	// The default tolerance needs |du| < 1e-6, which for this system
	// happens well past the nominal time span.
	if result.Time <= 10 {
		t.Errorf("Expected the horizon to extend past Tspan[1], stopped at t=%g", result.Time)
	}
	if math.Abs(result.State["P"]-50) > 1e-3 {
		t.Errorf("Expected equilibrium near 50, got %g", result.State["P"])
	}
	if result.MaxChange >= 1e-6 {
		t.Errorf("Expected MaxChange below tolerance, got %g", result.MaxChange)
	}
	if len(sol.T) == 0 || sol.T[len(sol.T)-1] != result.Time {
		t.Error("Solution trajectory should end at the equilibrium time")
	}
}

func TestSolveUntilEquilibriumTimeCap(t *testing.T) {
	// Constant growth never settles; the default cap is ten span widths.
	prob := NewProblem(func(_ float64, u []float64) []float64 {
		return []float64{1}
	}, map[string]float64{"x": 100}, [2]float64{0, 1})

	sol, result := SolveUntilEquilibrium(prob, nil, nil, nil)

	if result.Reached {
		t.Fatal("Expected no equilibrium for constant growth")
	}
	if result.Reason != "time_cap" {
		t.Errorf("Expected reason time_cap, got %q", result.Reason)
	}
	if math.Abs(result.Time-10) > 1e-9 {
		t.Errorf("Expected stop at t=10, got %g", result.Time)
	}
	if math.Abs(result.State["x"]-110) > 1e-6 {
		t.Errorf("Expected x=110 at the cap, got %g", result.State["x"])
	}
	if math.Abs(result.MaxChange-1) > 1e-12 {
		t.Errorf("Expected MaxChange=1, got %g", result.MaxChange)
	}
	if got := sol.GetFinalState()["x"]; math.Abs(got-result.State["x"]) > 1e-12 {
		t.Errorf("Result state and trajectory disagree: %g vs %g", result.State["x"], got)
	}
}

func TestSolveUntilEquilibriumExplicitCap(t *testing.T) {
	prob := NewProblem(func(_ float64, u []float64) []float64 {
		return []float64{1}
	}, map[string]float64{"x": 100}, [2]float64{0, 1})

	eqOpts := DefaultEquilibriumOptions()
	eqOpts.MaxTime = 2
	_, result := SolveUntilEquilibrium(prob, nil, nil, eqOpts)

	if result.Reached {
		t.Fatal("Expected no equilibrium")
	}
	if math.Abs(result.Time-2) > 1e-9 {
		t.Errorf("Expected stop at the explicit cap t=2, got %g", result.Time)
	}
}

func TestIsEquilibrium(t *testing.T) {
	// Logistic growth u(1-u) has fixed points at 0 and 1.
	prob := NewProblem(func(_ float64, u []float64) []float64 {
		return []float64{u[0] * (1 - u[0])}
	}, map[string]float64{"u": 0.5}, [2]float64{0, 10})

	if !IsEquilibrium(prob, map[string]float64{"u": 1}, 1e-3) {
		t.Error("Expected u=1 to be an equilibrium")
	}
	if IsEquilibrium(prob, map[string]float64{"u": 0.5}, 1e-3) {
		t.Error("Expected u=0.5 not to be an equilibrium")
	}
}

func TestFindEquilibrium(t *testing.T) {
	prob := relaxationProblem(50, 0, [2]float64{0, 10})
	state, reached := FindEquilibrium(prob)

	if !reached {
		t.Fatal("Expected to find the equilibrium")
	}
	if math.Abs(state["P"]-50) > 1e-3 {
		t.Errorf("Expected equilibrium near 50, got %g", state["P"])
	}
}
