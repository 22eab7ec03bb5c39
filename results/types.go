// Package results defines the structured artifact format for solve and
// simulation runs: one versioned JSON schema covering both a flux
// distribution over a network and a sampled circuit trajectory.
package results

import "time"

const (
	SchemaVersion = "1.0"
	ToolVersion   = "0.3.0"
)

// Results is a complete run artifact. Flux is set for solve runs,
// Simulation and Data for simulate runs.
type Results struct {
	Version    string      `json:"version"`
	Metadata   Metadata    `json:"metadata"`
	Model      Model       `json:"model"`
	Flux       *Flux       `json:"flux,omitempty"`
	Simulation *Simulation `json:"simulation,omitempty"`
	Data       *Data       `json:"results,omitempty"`
	Analysis   *Analysis   `json:"analysis,omitempty"`
}

// Metadata identifies one run.
type Metadata struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Solver      string    `json:"solver,omitempty"`
	Status      string    `json:"status"` // optimal, infeasible, unbounded, success, error
	Error       string    `json:"error,omitempty"`
	ComputeTime float64   `json:"computeTime"` // seconds
}

// Model summarizes what was solved or simulated. Metabolite and
// reaction counts describe networks; Species describes circuits.
type Model struct {
	Name        string   `json:"name,omitempty"`
	Metabolites int      `json:"metabolites,omitempty"`
	Reactions   int      `json:"reactions,omitempty"`
	Boundary    int      `json:"boundary,omitempty"`
	Species     []string `json:"species,omitempty"`
}

// Flux holds the outcome of one solve.
type Flux struct {
	Objective ObjectiveSummary `json:"objective"`
	Table     []FluxEntry      `json:"table,omitempty"`
	Balance   *BalanceSummary  `json:"balance,omitempty"`
}

// ObjectiveSummary records what was optimized and what it reached.
type ObjectiveSummary struct {
	Direction string             `json:"direction"`
	Value     float64            `json:"value"`
	Terms     map[string]float64 `json:"terms"`
}

// FluxEntry is one row of the flux table, in network reaction order.
// AtBound marks fluxes pinned to a bound: "lower", "upper", or "fixed"
// when the bounds coincide.
type FluxEntry struct {
	Reaction string  `json:"reaction"`
	Name     string  `json:"name,omitempty"`
	Flux     float64 `json:"flux"`
	AtBound  string  `json:"atBound,omitempty"`
}

// BalanceSummary condenses a conservation sweep over the network.
type BalanceSummary struct {
	Checked    int      `json:"checked"`
	Balanced   int      `json:"balanced"`
	Imbalanced int      `json:"imbalanced"`
	Failing    []string `json:"failing,omitempty"`
}

// Simulation records the inputs of a trajectory run.
type Simulation struct {
	Timespan     [2]float64         `json:"timespan"`
	InitialState map[string]float64 `json:"initialState"`
	Options      *SolverOptions     `json:"options,omitempty"`
}

// SolverOptions captures the integration settings that shaped the run.
type SolverOptions struct {
	Dt       float64 `json:"dt,omitempty"`
	Abstol   float64 `json:"abstol,omitempty"`
	Reltol   float64 `json:"reltol,omitempty"`
	Adaptive bool    `json:"adaptive"`
}

// Data contains the simulation output.
type Data struct {
	Summary    Summary    `json:"summary"`
	Timeseries Timeseries `json:"timeseries"`
}

// Summary provides a quick overview of the trajectory.
type Summary struct {
	Points     int                `json:"points"`
	FinalTime  float64            `json:"finalTime"`
	FinalState map[string]float64 `json:"finalState"`
}

// Timeseries holds the trajectory at two resolutions.
type Timeseries struct {
	Time      TimeData              `json:"time"`
	Variables map[string]SeriesData `json:"variables"`
}

// TimeData holds time vectors at both resolutions.
type TimeData struct {
	Full        []float64 `json:"full,omitempty"`
	Downsampled []float64 `json:"downsampled"`
}

// SeriesData holds one variable's values at both resolutions.
type SeriesData struct {
	Full        []float64 `json:"full,omitempty"`
	Downsampled []float64 `json:"downsampled"`
}

// Analysis contains insights computed from the downsampled trajectory.
type Analysis struct {
	Statistics  map[string]Stat `json:"statistics,omitempty"`
	SteadyState *SteadyState    `json:"steadyState,omitempty"`
	Crossings   []Crossing      `json:"crossings,omitempty"`
}

// Stat is a statistical summary of one variable.
type Stat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// SteadyState reports whether and when the trajectory settled.
type SteadyState struct {
	Reached   bool               `json:"reached"`
	Time      float64            `json:"time,omitempty"`
	Values    map[string]float64 `json:"values,omitempty"`
	Tolerance float64            `json:"tolerance"`
}

// Crossing marks where two variables intersect.
type Crossing struct {
	Var1  string  `json:"var1"`
	Var2  string  `json:"var2"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}
