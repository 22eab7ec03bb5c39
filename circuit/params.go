package circuit

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParams indicates a parameter set that cannot drive a simulation.
var ErrInvalidParams = errors.New("circuit: invalid parameters")

// Params holds the rate constants of a repressor circuit.
// All circuits share one shape: a constitutively produced repressor, an
// inducer fed from a feedstock pool, reversible repressor-inducer
// binding, and a Hill-repressed expression cascade down to the product.
type Params struct {
	RepressorProduction float64 `yaml:"repressor_production"`
	RepressorDecay      float64 `yaml:"repressor_decay"`
	InducerProduction   float64 `yaml:"inducer_production"`
	InducerDecay        float64 `yaml:"inducer_decay"`
	BindRate            float64 `yaml:"bind_rate"`
	UnbindRate          float64 `yaml:"unbind_rate"`
	TranscriptionRate   float64 `yaml:"transcription_rate"`
	MRNADecay           float64 `yaml:"mrna_decay"`
	TranslationRate     float64 `yaml:"translation_rate"`
	ProteinDecay        float64 `yaml:"protein_decay"`
	CatalysisRate       float64 `yaml:"catalysis_rate"`
	ProductDecay        float64 `yaml:"product_decay"`
	RepressionK         float64 `yaml:"repression_k"`
	HillCoefficient     float64 `yaml:"hill_coefficient"`
	Feedstock           float64 `yaml:"feedstock"`
}

// DefaultFAEEParams returns the stock constants for the lactose-induced
// FAEE circuit: LacI repressor, allolactose inducer, AEAT enzyme.
func DefaultFAEEParams() Params {
	return Params{
		RepressorProduction: 0.1,
		RepressorDecay:      0.01,
		InducerProduction:   0.5,
		InducerDecay:        0.05,
		BindRate:            0.1,
		UnbindRate:          0.01,
		TranscriptionRate:   1,
		MRNADecay:           0.1,
		TranslationRate:     0.5,
		ProteinDecay:        0.05,
		CatalysisRate:       0.5,
		ProductDecay:        0.005,
		RepressionK:         5,
		HillCoefficient:     2,
		Feedstock:           100,
	}
}

// DefaultAlkaneParams returns the stock constants for the fatty-acid
// induced alkane circuit: FadR repressor, fatty acid inducer, NpADO
// enzyme. The rate constants mirror the FAEE circuit.
func DefaultAlkaneParams() Params {
	return Params{
		RepressorProduction: 0.1,
		RepressorDecay:      0.01,
		InducerProduction:   0.5,
		InducerDecay:        0.05,
		BindRate:            0.1,
		UnbindRate:          0.01,
		TranscriptionRate:   1,
		MRNADecay:           0.1,
		TranslationRate:     0.5,
		ProteinDecay:        0.05,
		CatalysisRate:       0.5,
		ProductDecay:        0.005,
		RepressionK:         5,
		HillCoefficient:     2,
		Feedstock:           100,
	}
}

// Validate reports the first parameter that would break the rate laws.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"repressor_production", p.RepressorProduction},
		{"repressor_decay", p.RepressorDecay},
		{"inducer_production", p.InducerProduction},
		{"inducer_decay", p.InducerDecay},
		{"bind_rate", p.BindRate},
		{"unbind_rate", p.UnbindRate},
		{"transcription_rate", p.TranscriptionRate},
		{"mrna_decay", p.MRNADecay},
		{"translation_rate", p.TranslationRate},
		{"protein_decay", p.ProteinDecay},
		{"catalysis_rate", p.CatalysisRate},
		{"product_decay", p.ProductDecay},
		{"repression_k", p.RepressionK},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidParams, c.name, c.value)
		}
	}
	if p.HillCoefficient < 1 {
		return fmt.Errorf("%w: hill_coefficient must be at least 1, got %g", ErrInvalidParams, p.HillCoefficient)
	}
	if p.Feedstock < 0 {
		return fmt.Errorf("%w: feedstock cannot be negative, got %g", ErrInvalidParams, p.Feedstock)
	}
	return nil
}

// Get returns a parameter by its yaml name.
// Used by sweep and gradient analysis to address parameters generically.
func (p Params) Get(name string) (float64, bool) {
	v, ok := p.fields()[name]
	return v, ok
}

// Set returns a copy of the parameters with one value replaced.
func (p Params) Set(name string, value float64) (Params, error) {
	switch name {
	case "repressor_production":
		p.RepressorProduction = value
	case "repressor_decay":
		p.RepressorDecay = value
	case "inducer_production":
		p.InducerProduction = value
	case "inducer_decay":
		p.InducerDecay = value
	case "bind_rate":
		p.BindRate = value
	case "unbind_rate":
		p.UnbindRate = value
	case "transcription_rate":
		p.TranscriptionRate = value
	case "mrna_decay":
		p.MRNADecay = value
	case "translation_rate":
		p.TranslationRate = value
	case "protein_decay":
		p.ProteinDecay = value
	case "catalysis_rate":
		p.CatalysisRate = value
	case "product_decay":
		p.ProductDecay = value
	case "repression_k":
		p.RepressionK = value
	case "hill_coefficient":
		p.HillCoefficient = value
	case "feedstock":
		p.Feedstock = value
	default:
		return p, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParams, name)
	}
	return p, nil
}

func (p Params) fields() map[string]float64 {
	return map[string]float64{
		"repressor_production": p.RepressorProduction,
		"repressor_decay":      p.RepressorDecay,
		"inducer_production":   p.InducerProduction,
		"inducer_decay":        p.InducerDecay,
		"bind_rate":            p.BindRate,
		"unbind_rate":          p.UnbindRate,
		"transcription_rate":   p.TranscriptionRate,
		"mrna_decay":           p.MRNADecay,
		"translation_rate":     p.TranslationRate,
		"protein_decay":        p.ProteinDecay,
		"catalysis_rate":       p.CatalysisRate,
		"product_decay":        p.ProductDecay,
		"repression_k":         p.RepressionK,
		"hill_coefficient":     p.HillCoefficient,
		"feedstock":            p.Feedstock,
	}
}

// LoadParams reads a parameter set from a YAML file.
// Fields absent from the file keep the stock defaults.
func LoadParams(path string) (Params, error) {
	params := DefaultFAEEParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("load params: %w", err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("load params: %w", err)
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}
