// Package circuit simulates inducible repressor gene circuits for
// biofuel pathway expression. A circuit couples a feedstock-driven
// inducer to a Hill-repressed transcription cascade: repressor binds
// inducer, the free repressor level gates mRNA production, and the
// translated enzyme converts substrate into product.
package circuit

import (
	"math"

	"github.com/metnet-xyz/go-metnet/ode"
)

// State layout indices. Every circuit shares this six-species layout.
const (
	Repressor = iota
	Inducer
	Complex
	MRNA
	Enzyme
	Product
)

// EvalPoints is the size of the evaluation grid Simulate resamples onto.
const EvalPoints = 1000

// Model is a named repressor circuit with its species labels, rate
// constants, initial state, and simulation horizon.
type Model struct {
	Name    string
	Species [6]string
	Params  Params
	Y0      [6]float64
	Tspan   [2]float64
}

// FAEE returns the lactose-induced fatty acid ethyl ester circuit.
// LacI represses the AEAT wax ester synthase; allolactose produced from
// the lactose feedstock sequesters LacI and releases expression.
func FAEE() *Model {
	return &Model{
		Name:    "faee",
		Species: [6]string{"LacI", "allolactose", "LacI_allolactose", "AEAT_mRNA", "AEAT", "FAEE"},
		Params:  DefaultFAEEParams(),
		Y0:      [6]float64{10, 0, 0, 0, 0, 0},
		Tspan:   [2]float64{0, 100},
	}
}

// Alkane returns the fatty-acid induced alkane circuit.
// FadR represses the NpADO aldehyde deformylating oxygenase; fatty
// acids freed from the triglyceride feedstock sequester FadR.
func Alkane() *Model {
	return &Model{
		Name:    "alkane",
		Species: [6]string{"FadR", "fatty_acid", "FadR_fatty_acid", "NpADO_mRNA", "NpADO", "alkane"},
		Params:  DefaultAlkaneParams(),
		Y0:      [6]float64{10, 0, 0, 0, 0, 0},
		Tspan:   [2]float64{0, 100},
	}
}

// WithParams returns a copy of the model carrying the given parameters.
func (m *Model) WithParams(p Params) *Model {
	c := *m
	c.Params = p
	return &c
}

// Derivatives computes du/dt for the six-species state vector.
// Free repressor is total repressor minus the bound complex; the
// promoter activity follows Hill repression K^n / (K^n + free^n).
func (m *Model) Derivatives(_ float64, y []float64) []float64 {
	p := m.Params
	rep := y[Repressor]
	ind := y[Inducer]
	cpx := y[Complex]
	mrna := y[MRNA]
	enz := y[Enzyme]
	prod := y[Product]

	free := rep - cpx
	kn := math.Pow(p.RepressionK, p.HillCoefficient)
	promoter := kn / (kn + math.Pow(free, p.HillCoefficient))

	du := make([]float64, 6)
	du[Repressor] = p.RepressorProduction - p.RepressorDecay*rep
	du[Inducer] = p.InducerProduction*p.Feedstock - p.InducerDecay*ind
	du[Complex] = p.BindRate*free*ind - p.UnbindRate*cpx
	du[MRNA] = p.TranscriptionRate*promoter - p.MRNADecay*mrna
	du[Enzyme] = p.TranslationRate*mrna - p.ProteinDecay*enz
	du[Product] = p.CatalysisRate*enz - p.ProductDecay*prod
	return du
}

// Problem yields the ODE initial value problem for this circuit.
// The vector layout follows the model's species order.
func (m *Model) Problem() *ode.Problem {
	u0 := make(map[string]float64, len(m.Species))
	for i, label := range m.Species {
		u0[label] = m.Y0[i]
	}
	return &ode.Problem{
		F:      m.Derivatives,
		U0:     u0,
		Tspan:  m.Tspan,
		Labels: append([]string(nil), m.Species[:]...),
	}
}

// Simulate integrates the circuit and resamples the trajectory onto a
// uniform grid of EvalPoints time points. Nil options integrate with
// the defaults.
func Simulate(m *Model, opts *ode.Options) (*ode.Solution, error) {
	if err := m.Params.Validate(); err != nil {
		return nil, err
	}
	sol := ode.Solve(m.Problem(), ode.Tsit5(), opts)
	grid := ode.Linspace(m.Tspan[0], m.Tspan[1], EvalPoints)
	return ode.SampleAt(sol, grid), nil
}

// SteadyState integrates past the nominal horizon until the circuit
// settles, reporting the equilibrium detection outcome.
func SteadyState(m *Model) (*ode.EquilibriumResult, error) {
	if err := m.Params.Validate(); err != nil {
		return nil, err
	}
	_, result := ode.SolveUntilEquilibrium(m.Problem(), nil, nil, nil)
	return result, nil
}
