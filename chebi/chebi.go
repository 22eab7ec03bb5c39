// Package chebi provides metabolite metadata lookup backed by a curated
// table of ChEBI compound records. The table covers the compounds of the
// alkane and FAEE production pathways so that models can be annotated
// without network access.
package chebi

import (
	"context"
	"errors"
	"strings"

	"github.com/metnet-xyz/go-metnet/metnet"
)

// ErrNotFound is returned by Fetch when no compound has the given accession.
var ErrNotFound = errors.New("compound not found")

type compound struct {
	id       string
	name     string
	formula  string
	charge   int
	synonyms []string
}

// table is ordered; SearchByName reports candidates in table order so
// lookups are deterministic.
var table = []compound{
	{id: "CHEBI:17600", name: "hexadecanal", formula: "C16H32O", charge: 0, synonyms: []string{"palmitaldehyde"}},
	{id: "CHEBI:15379", name: "oxygen", formula: "O2", charge: 0, synonyms: []string{"dioxygen", "O2"}},
	{id: "CHEBI:16474", name: "NADPH", formula: "C21H29N7O17P3", charge: -4},
	{id: "CHEBI:15378", name: "proton", formula: "H", charge: 1, synonyms: []string{"H+", "hydron"}},
	{id: "CHEBI:10545", name: "electron", formula: "", charge: -1},
	{id: "CHEBI:28897", name: "pentadecane", formula: "C15H32", charge: 0},
	{id: "CHEBI:15740", name: "formate", formula: "CHO2", charge: -1},
	{id: "CHEBI:15377", name: "water", formula: "H2O", charge: 0},
	{id: "CHEBI:18009", name: "NADP(+)", formula: "C21H26N7O17P3", charge: -3, synonyms: []string{"NADP+", "NADP"}},
	{id: "CHEBI:30616", name: "ATP", formula: "C10H16N5O13P3", charge: -4},
	{id: "CHEBI:456216", name: "ADP", formula: "C10H15N5O10P2", charge: -3},
	{id: "CHEBI:43474", name: "phosphate", formula: "H2O4P", charge: -2, synonyms: []string{"hydrogenphosphate"}},
	{id: "CHEBI:16236", name: "ethanol", formula: "C2H6O", charge: 0},
	{id: "CHEBI:15525", name: "hexadecanoyl-CoA", formula: "C27H44N7O17P3S", charge: -5, synonyms: []string{"palmitoyl-CoA"}},
	{id: "CHEBI:84933", name: "ethyl hexadecanoate", formula: "C18H36O2", charge: 0, synonyms: []string{"ethyl palmitate"}},
	{id: "CHEBI:15346", name: "Coenzyme A", formula: "C21H36N7O16P3S", charge: -4, synonyms: []string{"CoA"}},
}

// StaticSource serves compound records from the curated table. It
// implements metnet.MetadataSource.
type StaticSource struct {
	byID map[string]compound
}

var _ metnet.MetadataSource = (*StaticSource)(nil)

// NewStaticSource returns a source backed by the built-in compound table.
func NewStaticSource() *StaticSource {
	byID := make(map[string]compound, len(table))
	for _, c := range table {
		byID[c.id] = c
	}
	return &StaticSource{byID: byID}
}

// SearchByName returns the compounds whose name or a synonym matches the
// query, case-insensitively, in table order. A compound whose name merely
// contains the query is reported after whole-name matches.
func (s *StaticSource) SearchByName(ctx context.Context, name string) ([]metnet.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var exact, partial []metnet.Candidate
	for _, c := range table {
		switch {
		case matchesName(c, name):
			exact = append(exact, metnet.Candidate{ID: c.id, Name: c.name})
		case strings.Contains(strings.ToLower(c.name), strings.ToLower(name)):
			partial = append(partial, metnet.Candidate{ID: c.id, Name: c.name})
		}
	}
	return append(exact, partial...), nil
}

// Fetch returns the formula and charge for an accession returned by
// SearchByName.
func (s *StaticSource) Fetch(ctx context.Context, id string) (metnet.Entry, error) {
	if err := ctx.Err(); err != nil {
		return metnet.Entry{}, err
	}
	c, ok := s.byID[id]
	if !ok {
		return metnet.Entry{}, ErrNotFound
	}
	return metnet.Entry{Formula: c.formula, Charge: c.charge}, nil
}

func matchesName(c compound, name string) bool {
	if strings.EqualFold(c.name, name) {
		return true
	}
	for _, syn := range c.synonyms {
		if strings.EqualFold(syn, name) {
			return true
		}
	}
	return false
}
