// Package balance verifies mass and charge conservation of reactions.
// Deltas are counted as reactants minus products, so a positive entry
// is mass or charge the products fail to account for. The check reads
// only the stoichiometry and the registry; it is independent of bounds,
// objectives, and solve outcomes.
package balance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/metnet-xyz/go-metnet/chem"
	"github.com/metnet-xyz/go-metnet/metnet"
)

const tolerance = 1e-9

// Report holds the conservation deltas of one reaction. Elements only
// contains nonzero entries.
type Report struct {
	ReactionID string
	Elements   map[string]float64
	Charge     float64
}

// Balanced reports whether every element and the charge cancel out.
func (r *Report) Balanced() bool {
	return len(r.Elements) == 0 && r.Charge == 0
}

// String renders the deltas in sorted compact form, e.g. {H: 1, charge: -1}.
func (r *Report) String() string {
	if r.Balanced() {
		return "balanced"
	}
	elements := make([]string, 0, len(r.Elements))
	for el := range r.Elements {
		elements = append(elements, el)
	}
	sort.Strings(elements)
	parts := make([]string, 0, len(elements)+1)
	for _, el := range elements {
		parts = append(parts, fmt.Sprintf("%s: %g", el, r.Elements[el]))
	}
	if r.Charge != 0 {
		parts = append(parts, fmt.Sprintf("charge: %g", r.Charge))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Check verifies one reaction against the registry's formulas and
// charges. Boundary reactions naturally fail: their mass leaves the
// system. Checking the same reaction twice yields identical reports.
func Check(rxn *metnet.Reaction, reg *metnet.Registry) (*Report, error) {
	report := &Report{ReactionID: rxn.ID, Elements: make(map[string]float64)}
	ids := make([]string, 0, len(rxn.Stoichiometry))
	for id := range rxn.Stoichiometry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		coeff := rxn.Stoichiometry[id]
		met, err := reg.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", rxn.ID, err)
		}
		counts, err := chem.Parse(met.Formula)
		if err != nil {
			return nil, fmt.Errorf("check %s: metabolite %s: %w", rxn.ID, id, err)
		}
		for element, count := range counts {
			report.Elements[element] -= coeff * float64(count)
		}
		report.Charge -= coeff * float64(met.Charge)
	}
	for element, delta := range report.Elements {
		if math.Abs(delta) <= tolerance {
			delete(report.Elements, element)
		}
	}
	if math.Abs(report.Charge) <= tolerance {
		report.Charge = 0
	}
	return report, nil
}

// NetworkReport summarizes a conservation sweep over a whole network.
type NetworkReport struct {
	NetworkName string
	Reports     []*Report
	Balanced    int
	Imbalanced  int
}

// AllBalanced reports whether no reaction showed a delta.
func (nr *NetworkReport) AllBalanced() bool {
	return nr.Imbalanced == 0
}

// CheckNetwork checks every reaction in network order, regardless of
// whether it appears in any objective or carries flux.
func CheckNetwork(net *metnet.Network) (*NetworkReport, error) {
	nr := &NetworkReport{NetworkName: net.Name}
	for _, rxn := range net.Reactions() {
		report, err := Check(rxn, net.Registry)
		if err != nil {
			return nil, err
		}
		nr.Reports = append(nr.Reports, report)
		if report.Balanced() {
			nr.Balanced++
		} else {
			nr.Imbalanced++
		}
	}
	return nr, nil
}
