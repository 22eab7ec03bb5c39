package lp

import (
	"math"
	"reflect"
	"testing"
)

const testTol = 1e-6

func checkOptimal(t *testing.T, res *Result, want float64) {
	t.Helper()
	if res.Status != StatusOptimal {
		t.Fatalf("Expected optimal status, got %v (%s)", res.Status, res.Message)
	}
	if math.Abs(res.Objective-want) > testTol {
		t.Errorf("Expected objective %g, got %g", want, res.Objective)
	}
}

func TestMaximizeWithCapacity(t *testing.T) {
	p := &Problem{Direction: Maximize, Objective: map[int]float64{0: 1, 1: 1}}
	p.AddVariable("x", 0, 3)
	p.AddVariable("y", 0, 3)
	p.AddConstraint("cap", map[int]float64{0: 1, 1: 1}, math.Inf(-1), 4)

	res := Solve(p)
	checkOptimal(t, res, 4)
	if sum := res.X[0] + res.X[1]; sum > 4+testTol {
		t.Errorf("Capacity constraint violated: x+y = %g", sum)
	}
}

func TestEqualityCoupling(t *testing.T) {
	p := &Problem{Direction: Maximize, Objective: map[int]float64{1: 1}}
	p.AddVariable("a", 0, 10)
	p.AddVariable("b", 0, math.Inf(1))
	p.AddConstraint("link", map[int]float64{0: 1, 1: -1}, 0, 0)

	res := Solve(p)
	checkOptimal(t, res, 10)
	if math.Abs(res.X[0]-10) > testTol || math.Abs(res.X[1]-10) > testTol {
		t.Errorf("Expected a = b = 10, got a = %g, b = %g", res.X[0], res.X[1])
	}
}

func TestMinimizeRangedConstraint(t *testing.T) {
	p := &Problem{Direction: Minimize, Objective: map[int]float64{0: 2, 1: 3}}
	p.AddVariable("x", 0, 10)
	p.AddVariable("y", 0, 10)
	p.AddConstraint("demand", map[int]float64{0: 1, 1: 1}, 2, math.Inf(1))

	res := Solve(p)
	checkOptimal(t, res, 4)
	if math.Abs(res.X[0]-2) > testTol || math.Abs(res.X[1]) > testTol {
		t.Errorf("Expected x = 2, y = 0, got x = %g, y = %g", res.X[0], res.X[1])
	}
}

func TestChainNetwork(t *testing.T) {
	// A linear pathway at steady state: uptake of A, conversion A -> B,
	// secretion of B. Production is limited by the uptake bound.
	p := &Problem{Direction: Maximize, Objective: map[int]float64{2: 1}}
	p.AddVariable("EX_A", -10, 1000)
	p.AddVariable("R1", 0, 1000)
	p.AddVariable("EX_B", 0, 1000)
	p.AddConstraint("A", map[int]float64{0: -1, 1: -1}, 0, 0)
	p.AddConstraint("B", map[int]float64{1: 1, 2: -1}, 0, 0)

	res := Solve(p)
	checkOptimal(t, res, 10)
	want := []float64{-10, 10, 10}
	for j, x := range res.X {
		if math.Abs(x-want[j]) > testTol {
			t.Errorf("Variable %d: expected %g, got %g", j, want[j], x)
		}
	}
	for i, c := range p.Constraints {
		sum := 0.0
		for j, a := range c.Coeffs {
			sum += a * res.X[j]
		}
		if math.Abs(sum) > testTol {
			t.Errorf("Constraint %d not satisfied: residual %g", i, sum)
		}
	}
}

func TestReversibleFluxCap(t *testing.T) {
	p := &Problem{Direction: Maximize, Objective: map[int]float64{0: 1}}
	p.AddVariable("v", -5, 5)
	p.AddConstraint("cap", map[int]float64{0: 1}, -3, 3)

	res := Solve(p)
	checkOptimal(t, res, 3)
	if math.Abs(res.X[0]-3) > testTol {
		t.Errorf("Expected v = 3, got %g", res.X[0])
	}
}

func TestFixedVariableBlocksFlow(t *testing.T) {
	// v is pinned to zero, so the coupled w cannot carry flux either.
	p := &Problem{Direction: Maximize, Objective: map[int]float64{1: 1}}
	p.AddVariable("v", 0, 0)
	p.AddVariable("w", 0, 5)
	p.AddConstraint("link", map[int]float64{0: 1, 1: -1}, 0, 0)

	res := Solve(p)
	checkOptimal(t, res, 0)
	if math.Abs(res.X[1]) > testTol {
		t.Errorf("Expected w = 0, got %g", res.X[1])
	}
}

func TestInfeasible(t *testing.T) {
	p := &Problem{Direction: Minimize, Objective: map[int]float64{0: 1}}
	p.AddVariable("x", 0, 1)
	p.AddConstraint("demand", map[int]float64{0: 1}, 5, 5)

	res := Solve(p)
	if res.Status != StatusInfeasible {
		t.Fatalf("Expected infeasible status, got %v", res.Status)
	}
	if res.Message == "" {
		t.Error("Expected a message explaining the infeasibility")
	}
}

func TestUnbounded(t *testing.T) {
	p := &Problem{Direction: Maximize, Objective: map[int]float64{0: 1}}
	p.AddVariable("x", 0, math.Inf(1))

	res := Solve(p)
	if res.Status != StatusUnbounded {
		t.Fatalf("Expected unbounded status, got %v", res.Status)
	}
	if !math.IsInf(res.Objective, 1) {
		t.Errorf("Expected +Inf objective for unbounded maximization, got %g", res.Objective)
	}
}

func TestBoundFlipReachesUpper(t *testing.T) {
	p := &Problem{Direction: Maximize, Objective: map[int]float64{0: 1}}
	p.AddVariable("x", 1, 2)

	res := Solve(p)
	checkOptimal(t, res, 2)
	if res.X[0] != 2 {
		t.Errorf("Expected x = 2, got %g", res.X[0])
	}
}

func TestFreeVariableMinimization(t *testing.T) {
	// A free variable coupled to a bounded one through an equality.
	p := &Problem{Direction: Minimize, Objective: map[int]float64{0: 1}}
	p.AddVariable("f", math.Inf(-1), math.Inf(1))
	p.AddVariable("x", -4, 9)
	p.AddConstraint("link", map[int]float64{0: 1, 1: -1}, 0, 0)

	res := Solve(p)
	checkOptimal(t, res, -4)
	if math.Abs(res.X[0]+4) > testTol {
		t.Errorf("Expected f = -4, got %g", res.X[0])
	}
}

func TestEmptyDomainIsInfeasible(t *testing.T) {
	p := &Problem{}
	p.AddVariable("x", 1, 0)

	res := Solve(p)
	if res.Status != StatusInfeasible {
		t.Fatalf("Expected infeasible status for empty domain, got %v", res.Status)
	}
	if res.Message == "" {
		t.Error("Expected a validation message")
	}
}

func TestIterationLimit(t *testing.T) {
	p := &Problem{Direction: Minimize, Objective: map[int]float64{0: 2, 1: 3}}
	p.AddVariable("x", 0, 10)
	p.AddVariable("y", 0, 10)
	p.AddConstraint("demand", map[int]float64{0: 1, 1: 1}, 2, math.Inf(1))

	res := SolveWith(p, Options{MaxIterations: 1})
	if res.Status != StatusIterationLimit {
		t.Fatalf("Expected iteration limit status, got %v", res.Status)
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	build := func() *Problem {
		p := &Problem{Direction: Maximize, Objective: map[int]float64{0: 1, 1: 1}}
		p.AddVariable("x", 0, 3)
		p.AddVariable("y", 0, 3)
		p.AddConstraint("cap", map[int]float64{0: 1, 1: 1}, math.Inf(-1), 4)
		return p
	}
	first := Solve(build())
	second := Solve(build())
	if !reflect.DeepEqual(first.X, second.X) {
		t.Errorf("Expected identical solutions, got %v and %v", first.X, second.X)
	}
	if first.Iterations != second.Iterations {
		t.Errorf("Expected identical pivot counts, got %d and %d", first.Iterations, second.Iterations)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOptimal, "optimal"},
		{StatusInfeasible, "infeasible"},
		{StatusUnbounded, "unbounded"},
		{StatusIterationLimit, "iteration_limit"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
