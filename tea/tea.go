// Package tea implements the techno-economic model for a biofuel
// production campaign: batch yield from a bioreactor run, annualized
// capital cost, minimum selling price, and the sensitivity of that
// price to substrate cost and product yield.
package tea

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metnet-xyz/go-metnet/ode"
)

// ErrInvalidScenario indicates inputs the model cannot price.
var ErrInvalidScenario = errors.New("tea: invalid scenario")

// sweepPoints is the grid size of the sensitivity sweeps.
const sweepPoints = 50

// Bioreactor describes a single batch fermentation.
type Bioreactor struct {
	Volume      float64 `yaml:"volume"`       // L
	Substrate   float64 `yaml:"substrate"`    // g/L
	YieldFactor float64 `yaml:"yield_factor"` // g product per g substrate
	GrowthRate  float64 `yaml:"growth_rate"`  // 1/h
	BatchTime   float64 `yaml:"batch_time"`   // h
}

// Validate checks the batch inputs against the model's working range.
func (b Bioreactor) Validate() error {
	checks := []struct {
		name  string
		value float64
		min   float64
	}{
		{"volume", b.Volume, 1},
		{"substrate", b.Substrate, 0},
		{"yield_factor", b.YieldFactor, 0.01},
		{"growth_rate", b.GrowthRate, 0.1},
		{"batch_time", b.BatchTime, 1},
	}
	for _, c := range checks {
		if c.value < c.min {
			return fmt.Errorf("%w: %s must be at least %g, got %g", ErrInvalidScenario, c.name, c.min, c.value)
		}
	}
	return nil
}

// TEA holds the capital and operating costs of the plant.
type TEA struct {
	BioreactorCost   float64 `yaml:"bioreactor_cost"`   // $
	DSPCost          float64 `yaml:"dsp_cost"`          // $, downstream processing
	PlantLifetime    float64 `yaml:"plant_lifetime"`    // years
	AnnualProduction float64 `yaml:"annual_production"` // g/year
	SubstrateCost    float64 `yaml:"substrate_cost"`    // $/year
	UtilityCost      float64 `yaml:"utility_cost"`      // $/year
	LaborCost        float64 `yaml:"labor_cost"`        // $/year
}

// Validate checks the cost inputs that the model divides by.
func (t TEA) Validate() error {
	if t.PlantLifetime < 1 {
		return fmt.Errorf("%w: plant_lifetime must be at least 1, got %g", ErrInvalidScenario, t.PlantLifetime)
	}
	if t.AnnualProduction < 1 {
		return fmt.Errorf("%w: annual_production must be at least 1, got %g", ErrInvalidScenario, t.AnnualProduction)
	}
	return nil
}

// Scenario couples a batch model with the plant economics.
type Scenario struct {
	Bioreactor Bioreactor `yaml:"bioreactor"`
	TEA        TEA        `yaml:"tea"`
}

// Validate checks both halves of the scenario.
func (s Scenario) Validate() error {
	if err := s.Bioreactor.Validate(); err != nil {
		return err
	}
	return s.TEA.Validate()
}

// DefaultScenario returns the reference plant: a 100 kL reactor on
// 100 g/L feed at 20% yield, and a $4M plant amortized over 20 years
// producing one tonne a year.
func DefaultScenario() Scenario {
	return Scenario{
		Bioreactor: Bioreactor{
			Volume:      100000,
			Substrate:   100,
			YieldFactor: 0.2,
			GrowthRate:  0.5,
			BatchTime:   48,
		},
		TEA: TEA{
			BioreactorCost:   2500000,
			DSPCost:          1500000,
			PlantLifetime:    20,
			AnnualProduction: 1000000,
			SubstrateCost:    100000,
			UtilityCost:      50000,
			LaborCost:        200000,
		},
	}
}

// LoadScenario reads a scenario from a YAML file.
// Fields absent from the file keep the reference plant defaults.
func LoadScenario(path string) (Scenario, error) {
	scenario := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario, fmt.Errorf("load scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return scenario, fmt.Errorf("load scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return scenario, err
	}
	return scenario, nil
}

// yieldAt is the batch output after t hours. Substrate consumption
// saturates exponentially with the growth rate.
func yieldAt(b Bioreactor, t float64) float64 {
	consumed := b.Substrate * (1 - math.Exp(-b.GrowthRate*t))
	return b.Volume * consumed * b.YieldFactor
}

// BatchYield returns the grams of product from one full batch.
func BatchYield(b Bioreactor) float64 {
	return yieldAt(b, b.BatchTime)
}

// ProductionCurve samples the batch output at n times spanning
// 150% of the batch time, showing where the run saturates.
func ProductionCurve(b Bioreactor, n int) (times, grams []float64) {
	times = ode.Linspace(0, 1.5*b.BatchTime, n)
	grams = make([]float64, len(times))
	for i, t := range times {
		grams[i] = yieldAt(b, t)
	}
	return times, grams
}

// Annualize spreads the one-time capital costs over the plant lifetime.
func Annualize(t TEA) float64 {
	return (t.BioreactorCost + t.DSPCost) / t.PlantLifetime
}

// TotalAnnualCost is the annualized capital plus all operating costs.
func TotalAnnualCost(t TEA) float64 {
	return Annualize(t) + t.SubstrateCost + t.UtilityCost + t.LaborCost
}

// MSP returns the minimum selling price in dollars per gram: the
// price at which annual revenue exactly covers annual cost.
func MSP(t TEA) float64 {
	return TotalAnnualCost(t) / t.AnnualProduction
}

// MSPOverProduction samples the selling price at n production levels
// from half to double the scenario's annual output.
func MSPOverProduction(t TEA, n int) (production, msp []float64) {
	production = ode.Linspace(0.5*t.AnnualProduction, 2*t.AnnualProduction, n)
	msp = make([]float64, len(production))
	total := TotalAnnualCost(t)
	for i, p := range production {
		msp[i] = total / p
	}
	return production, msp
}

// SweepSubstrateCost prices the product across a range of annual
// substrate costs, holding everything else fixed.
func SweepSubstrateCost(t TEA, min, max float64) (costs, msp []float64) {
	costs = ode.Linspace(min, max, sweepPoints)
	msp = make([]float64, len(costs))
	for i, c := range costs {
		v := t
		v.SubstrateCost = c
		msp[i] = MSP(v)
	}
	return costs, msp
}

// SweepYieldFactor prices the product across a range of yields.
// Production scales linearly with yield from the base point, so a
// better strain spreads the same cost over more grams.
func SweepYieldFactor(t TEA, baseYield, min, max float64) (yields, msp []float64) {
	yields = ode.Linspace(min, max, sweepPoints)
	msp = make([]float64, len(yields))
	total := TotalAnnualCost(t)
	for i, y := range yields {
		production := t.AnnualProduction * y / baseYield
		msp[i] = total / production
	}
	return yields, msp
}
