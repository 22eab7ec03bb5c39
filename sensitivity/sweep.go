package sensitivity

import (
	"fmt"
	"math"

	"github.com/metnet-xyz/go-metnet/circuit"
	"github.com/metnet-xyz/go-metnet/ode"
)

// Scorer evaluates a simulated trajectory and returns a score.
type Scorer func(sol *ode.Solution) float64

// FinalScorer creates a Scorer that returns the final value of a species.
func FinalScorer(label string) Scorer {
	return func(sol *ode.Solution) float64 {
		return sol.GetFinalState()[label]
	}
}

// PeakScorer creates a Scorer that returns the maximum value a species
// reaches anywhere in the trajectory.
func PeakScorer(label string) Scorer {
	return func(sol *ode.Solution) float64 {
		series := sol.GetVariable(label)
		if len(series) == 0 {
			return 0
		}
		peak := series[0]
		for _, v := range series[1:] {
			if v > peak {
				peak = v
			}
		}
		return peak
	}
}

// ParamSweep holds scores across a range of one circuit parameter.
type ParamSweep struct {
	Parameter string
	Values    []float64
	Scores    []float64
	Best      struct {
		Value float64
		Score float64
	}
	Worst struct {
		Value float64
		Score float64
	}
}

// SweepParam simulates the circuit at n evenly spaced values of one
// parameter and scores each trajectory.
func SweepParam(m *circuit.Model, name string, min, max float64, n int, scorer Scorer) (*ParamSweep, error) {
	if n < 1 {
		return nil, fmt.Errorf("sweep %s: need at least one point, got %d", name, n)
	}

	sweep := &ParamSweep{
		Parameter: name,
		Values:    ode.Linspace(min, max, n),
		Scores:    make([]float64, n),
	}

	bestScore := math.Inf(-1)
	worstScore := math.Inf(1)

	for i, value := range sweep.Values {
		params, err := m.Params.Set(name, value)
		if err != nil {
			return nil, err
		}
		sol, err := circuit.Simulate(m.WithParams(params), nil)
		if err != nil {
			return nil, fmt.Errorf("sweep %s at %g: %w", name, value, err)
		}
		score := scorer(sol)
		sweep.Scores[i] = score

		if score > bestScore {
			bestScore = score
			sweep.Best.Value = value
			sweep.Best.Score = score
		}
		if score < worstScore {
			worstScore = score
			sweep.Worst.Value = value
			sweep.Worst.Score = score
		}
	}

	return sweep, nil
}

// Gradient estimates the score's sensitivity to each named parameter
// using central differences with a relative step: (f(x+h) - f(x-h)) / 2h
// where h = rel * x. A zero rel defaults to 1%.
func Gradient(m *circuit.Model, names []string, scorer Scorer, rel float64) (map[string]float64, error) {
	if rel == 0 {
		rel = 0.01
	}

	gradients := make(map[string]float64, len(names))
	for _, name := range names {
		x, ok := m.Params.Get(name)
		if !ok {
			return nil, fmt.Errorf("gradient: unknown parameter %q", name)
		}
		h := rel * x
		if h == 0 {
			h = rel
		}

		plus, err := m.Params.Set(name, x+h)
		if err != nil {
			return nil, err
		}
		solPlus, err := circuit.Simulate(m.WithParams(plus), nil)
		if err != nil {
			return nil, fmt.Errorf("gradient %s: %w", name, err)
		}

		minus, err := m.Params.Set(name, x-h)
		if err != nil {
			return nil, err
		}
		solMinus, err := circuit.Simulate(m.WithParams(minus), nil)
		if err != nil {
			return nil, fmt.Errorf("gradient %s: %w", name, err)
		}

		gradients[name] = (scorer(solPlus) - scorer(solMinus)) / (2 * h)
	}
	return gradients, nil
}

// ParamRange names a parameter and the lattice of values to try.
type ParamRange struct {
	Name  string
	Min   float64
	Max   float64
	Steps int
}

// GridResult holds the full score surface of a two-parameter search.
type GridResult struct {
	P1, P2  ParamRange
	Values1 []float64
	Values2 []float64
	Scores  [][]float64 // Scores[i][j] at Values1[i], Values2[j]
	Best    struct {
		Value1 float64
		Value2 float64
		Score  float64
		I, J   int
	}
}

// GridSearch scores every cell of the two-parameter lattice.
// Ties keep the first cell in row-major order.
func GridSearch(m *circuit.Model, p1, p2 ParamRange, scorer Scorer) (*GridResult, error) {
	if p1.Steps < 1 || p2.Steps < 1 {
		return nil, fmt.Errorf("grid search: both axes need at least one step")
	}

	result := &GridResult{
		P1:      p1,
		P2:      p2,
		Values1: ode.Linspace(p1.Min, p1.Max, p1.Steps),
		Values2: ode.Linspace(p2.Min, p2.Max, p2.Steps),
		Scores:  make([][]float64, p1.Steps),
	}
	result.Best.Score = math.Inf(-1)

	for i, v1 := range result.Values1 {
		result.Scores[i] = make([]float64, p2.Steps)
		for j, v2 := range result.Values2 {
			params, err := m.Params.Set(p1.Name, v1)
			if err != nil {
				return nil, err
			}
			params, err = params.Set(p2.Name, v2)
			if err != nil {
				return nil, err
			}
			sol, err := circuit.Simulate(m.WithParams(params), nil)
			if err != nil {
				return nil, fmt.Errorf("grid search at (%g, %g): %w", v1, v2, err)
			}
			score := scorer(sol)
			result.Scores[i][j] = score
			if score > result.Best.Score {
				result.Best.Value1 = v1
				result.Best.Value2 = v2
				result.Best.Score = score
				result.Best.I = i
				result.Best.J = j
			}
		}
	}

	return result, nil
}
