package results

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/metnet-xyz/go-metnet/balance"
	"github.com/metnet-xyz/go-metnet/circuit"
	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/lp"
	"github.com/metnet-xyz/go-metnet/metnet"
	"github.com/metnet-xyz/go-metnet/ode"
)

// boundTol decides when a flux counts as pinned to its bound.
const boundTol = 1e-9

// Builder assembles a Results artifact from run output.
type Builder struct {
	results Results
}

// NewBuilder creates a builder with a fresh run identity.
func NewBuilder() *Builder {
	return &Builder{
		results: Results{
			Version: SchemaVersion,
			Metadata: Metadata{
				ID:        uuid.NewString(),
				Tool:      "metnet",
				Version:   ToolVersion,
				Timestamp: time.Now(),
			},
		},
	}
}

// WithModel summarizes the network being solved.
func (b *Builder) WithModel(net *metnet.Network) *Builder {
	boundary := 0
	for _, rxn := range net.Reactions() {
		if rxn.IsBoundary() {
			boundary++
		}
	}
	b.results.Model = Model{
		Name:        net.Name,
		Metabolites: net.Registry.Len(),
		Reactions:   net.Len(),
		Boundary:    boundary,
	}
	return b
}

// WithCircuit summarizes the circuit being simulated.
func (b *Builder) WithCircuit(m *circuit.Model) *Builder {
	b.results.Model = Model{
		Name:    m.Name,
		Species: append([]string(nil), m.Species[:]...),
	}
	return b
}

// WithFlux records a solve outcome: objective block and, for optimal
// solves, the flux table in network reaction order with bound markers.
func (b *Builder) WithFlux(net *metnet.Network, objective *fba.Objective, sol *fba.Solution, solverName string, computeTime float64) *Builder {
	b.results.Metadata.Solver = solverName
	b.results.Metadata.Status = sol.Status.String()
	b.results.Metadata.ComputeTime = computeTime
	if sol.Message != "" && sol.Status != fba.StatusOptimal {
		b.results.Metadata.Error = sol.Message
	}

	flux := &Flux{
		Objective: ObjectiveSummary{
			Direction: directionString(objective.Direction),
			Value:     sol.Objective,
			Terms:     make(map[string]float64, len(objective.Terms)),
		},
	}
	for _, term := range objective.Terms {
		flux.Objective.Terms[term.ReactionID] = term.Coefficient
	}

	if sol.Status == fba.StatusOptimal {
		for _, rxn := range net.Reactions() {
			value, _ := sol.GetFlux(rxn.ID)
			flux.Table = append(flux.Table, FluxEntry{
				Reaction: rxn.ID,
				Name:     rxn.Name,
				Flux:     value,
				AtBound:  atBound(value, rxn.LowerBound, rxn.UpperBound),
			})
		}
	}

	b.results.Flux = flux
	return b
}

// WithBalance attaches a conservation summary to the flux block.
func (b *Builder) WithBalance(nr *balance.NetworkReport) *Builder {
	if b.results.Flux == nil {
		b.results.Flux = &Flux{}
	}
	summary := &BalanceSummary{
		Checked:    len(nr.Reports),
		Balanced:   nr.Balanced,
		Imbalanced: nr.Imbalanced,
	}
	for _, report := range nr.Reports {
		if !report.Balanced() {
			summary.Failing = append(summary.Failing, report.ReactionID)
		}
	}
	b.results.Flux.Balance = summary
	return b
}

// WithSimulation records the inputs of a trajectory run.
func (b *Builder) WithSimulation(prob *ode.Problem, opts *ode.Options) *Builder {
	b.results.Simulation = &Simulation{
		Timespan:     prob.Tspan,
		InitialState: copyMap(prob.U0),
	}
	if opts != nil {
		b.results.Simulation.Options = &SolverOptions{
			Dt:       opts.Dt,
			Abstol:   opts.Abstol,
			Reltol:   opts.Reltol,
			Adaptive: opts.Adaptive,
		}
	}
	return b
}

// WithSolution records a trajectory at full and downsampled resolution.
func (b *Builder) WithSolution(sol *ode.Solution, solverName string, computeTime float64, downsampleTarget int) *Builder {
	b.results.Metadata.Solver = solverName
	b.results.Metadata.Status = "success"
	b.results.Metadata.ComputeTime = computeTime

	data := &Data{
		Summary: Summary{
			Points:     len(sol.T),
			FinalTime:  sol.T[len(sol.T)-1],
			FinalState: sol.GetFinalState(),
		},
		Timeseries: Timeseries{
			Time: TimeData{
				Full:        sol.T,
				Downsampled: downsample(sol.T, downsampleTarget),
			},
			Variables: make(map[string]SeriesData, len(sol.Labels)),
		},
	}

	for _, label := range sol.Labels {
		series := sol.GetVariable(label)
		data.Timeseries.Variables[label] = SeriesData{
			Full:        series,
			Downsampled: alignSeries(sol.T, series, data.Timeseries.Time.Downsampled),
		}
	}

	b.results.Data = data
	return b
}

// WithError marks the run as failed.
func (b *Builder) WithError(err error) *Builder {
	b.results.Metadata.Status = "error"
	b.results.Metadata.Error = err.Error()
	return b
}

// Build returns the assembled artifact.
func (b *Builder) Build() *Results {
	return &b.results
}

func directionString(d lp.Direction) string {
	if d == lp.Minimize {
		return "minimize"
	}
	return "maximize"
}

func atBound(flux, lower, upper float64) string {
	atLower := math.Abs(flux-lower) <= boundTol
	atUpper := math.Abs(flux-upper) <= boundTol
	switch {
	case atLower && atUpper:
		return "fixed"
	case atLower:
		return "lower"
	case atUpper:
		return "upper"
	}
	return ""
}

// downsample keeps roughly target points, always retaining the
// endpoints. Short inputs pass through unchanged.
func downsample(data []float64, target int) []float64 {
	if target < 2 || len(data) <= target {
		return data
	}
	out := make([]float64, target)
	out[0] = data[0]
	out[target-1] = data[len(data)-1]
	step := float64(len(data)-1) / float64(target-1)
	for i := 1; i < target-1; i++ {
		out[i] = data[int(math.Round(float64(i)*step))]
	}
	return out
}

// alignSeries picks the sample nearest each downsampled time point.
func alignSeries(times, series, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = series[nearestIndex(times, t)]
	}
	return out
}

func nearestIndex(times []float64, target float64) int {
	i := sort.SearchFloat64s(times, target)
	if i == 0 {
		return 0
	}
	if i >= len(times) {
		return len(times) - 1
	}
	if target-times[i-1] <= times[i]-target {
		return i - 1
	}
	return i
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
