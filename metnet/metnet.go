// Package metnet implements the core stoichiometric network model.
// A network couples a metabolite registry with an ordered set of
// reactions; each metabolite carries a steady-state balance constraint
// (sum of coefficient x flux = 0) that is maintained incrementally as
// reactions are added.
package metnet

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Compartment identifiers shared by the stock models.
const (
	CompartmentIntracellular = "c"
	CompartmentExtracellular = "e"
)

// Metabolite is a canonical species record. Records are immutable once
// registered; Formula may be empty, meaning zero atoms (electrons,
// photons and similar bookkeeping species).
type Metabolite struct {
	ID          string
	Name        string
	Formula     string
	Charge      int
	Compartment string
}

// Reaction is a flux-bounded conversion between registered metabolites.
// Stoichiometry maps metabolite id to a signed coefficient: negative
// means consumed, positive means produced. The flux is the LP decision
// variable bounded by [LowerBound, UpperBound].
type Reaction struct {
	ID            string
	Name          string
	LowerBound    float64
	UpperBound    float64
	Stoichiometry map[string]float64
}

// IsBoundary reports whether the reaction is an exchange/demand/sink:
// a single stoichiometric entry with coefficient +1 or -1, modeling
// transport across the system boundary rather than chemistry.
func (r *Reaction) IsBoundary() bool {
	if len(r.Stoichiometry) != 1 {
		return false
	}
	for _, coeff := range r.Stoichiometry {
		if math.Abs(coeff) == 1 {
			return true
		}
	}
	return false
}

// Reactants returns the consumed metabolite ids in sorted order.
func (r *Reaction) Reactants() []string {
	return r.sidesBySign(false)
}

// Products returns the produced metabolite ids in sorted order.
func (r *Reaction) Products() []string {
	return r.sidesBySign(true)
}

func (r *Reaction) sidesBySign(positive bool) []string {
	var ids []string
	for id, coeff := range r.Stoichiometry {
		if (coeff > 0) == positive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Equation renders the reaction in arrow form, e.g. "a + 2 b -> c".
// Boundary reactions render with an empty side.
func (r *Reaction) Equation() string {
	var sb strings.Builder
	writeSide := func(ids []string) {
		for i, id := range ids {
			if i > 0 {
				sb.WriteString(" + ")
			}
			coeff := math.Abs(r.Stoichiometry[id])
			if coeff != 1 {
				fmt.Fprintf(&sb, "%g ", coeff)
			}
			sb.WriteString(id)
		}
	}
	writeSide(r.Reactants())
	sb.WriteString(" -> ")
	writeSide(r.Products())
	return sb.String()
}

// Participation is one reaction's contribution to a metabolite's
// balance constraint.
type Participation struct {
	ReactionID  string
	Coefficient float64
}

// BalanceConstraint is the steady-state mass balance for one
// metabolite: the sum over Terms of coefficient x flux must equal
// Target. Target is always zero; it is carried explicitly so callers
// can assert the closed-balance invariant.
type BalanceConstraint struct {
	MetaboliteID string
	Terms        []Participation
	Target       float64
}
