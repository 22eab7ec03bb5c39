package metnet

import (
	"fmt"
)

// Network is an ordered set of reactions over a metabolite registry.
// Reaction order is insertion order and is the canonical variable order
// for LP assembly.
type Network struct {
	Name         string
	Registry     *Registry
	Compartments map[string]string

	reactions     []*Reaction
	byID          map[string]*Reaction
	participation map[string][]Participation
}

// NewNetwork creates an empty network over a fresh registry.
func NewNetwork(name string) *Network {
	return &Network{
		Name:          name,
		Registry:      NewRegistry(),
		Compartments:  make(map[string]string),
		byID:          make(map[string]*Reaction),
		participation: make(map[string][]Participation),
	}
}

// AddCompartment records a compartment id with a display name.
func (n *Network) AddCompartment(id, name string) {
	n.Compartments[id] = name
}

// AddReaction validates and appends a reaction, updating every
// referenced metabolite's balance constraint. Validation order: bounds,
// stoichiometry shape, id uniqueness, metabolite references. A failed
// add leaves the network untouched; a partially indexed reaction would
// silently corrupt every downstream solve.
func (n *Network) AddReaction(id, name string, lower, upper float64, stoichiometry map[string]float64) (*Reaction, error) {
	if lower > upper {
		return nil, fmt.Errorf("reaction %q: bounds [%g, %g]: %w", id, lower, upper, ErrInvalidBounds)
	}
	if len(stoichiometry) == 0 {
		return nil, fmt.Errorf("reaction %q: %w", id, ErrEmptyStoichiometry)
	}
	if _, exists := n.byID[id]; exists {
		return nil, fmt.Errorf("reaction %q: %w", id, ErrDuplicateID)
	}
	for metID, coeff := range stoichiometry {
		if coeff == 0 {
			return nil, fmt.Errorf("reaction %q, metabolite %q: %w", id, metID, ErrZeroCoefficient)
		}
		if !n.Registry.Has(metID) {
			return nil, fmt.Errorf("reaction %q references %q: %w", id, metID, ErrUnknownMetabolite)
		}
	}

	stoich := make(map[string]float64, len(stoichiometry))
	for metID, coeff := range stoichiometry {
		stoich[metID] = coeff
	}
	rxn := &Reaction{
		ID:            id,
		Name:          name,
		LowerBound:    lower,
		UpperBound:    upper,
		Stoichiometry: stoich,
	}
	n.reactions = append(n.reactions, rxn)
	n.byID[id] = rxn
	for metID, coeff := range stoich {
		n.participation[metID] = append(n.participation[metID], Participation{
			ReactionID:  id,
			Coefficient: coeff,
		})
	}
	return rxn, nil
}

// AddExchange appends a boundary reaction consuming one unit of the
// metabolite pool. Uptake is modeled as negative flux through the -1
// coefficient, secretion as positive flux.
func (n *Network) AddExchange(id, metID string, lower, upper float64) (*Reaction, error) {
	return n.AddReaction(id, id, lower, upper, map[string]float64{metID: -1})
}

// GetReaction returns the reaction with the given id.
func (n *Network) GetReaction(id string) (*Reaction, error) {
	rxn, ok := n.byID[id]
	if !ok {
		return nil, fmt.Errorf("reaction %q: %w", id, ErrUnknownReaction)
	}
	return rxn, nil
}

// HasReaction reports whether id names a reaction.
func (n *Network) HasReaction(id string) bool {
	_, ok := n.byID[id]
	return ok
}

// Reactions returns all reactions in insertion order.
func (n *Network) Reactions() []*Reaction {
	out := make([]*Reaction, len(n.reactions))
	copy(out, n.reactions)
	return out
}

// Len returns the number of reactions.
func (n *Network) Len() int {
	return len(n.reactions)
}

// SetBounds replaces a reaction's flux bounds.
func (n *Network) SetBounds(id string, lower, upper float64) error {
	rxn, err := n.GetReaction(id)
	if err != nil {
		return err
	}
	if lower > upper {
		return fmt.Errorf("reaction %q: bounds [%g, %g]: %w", id, lower, upper, ErrInvalidBounds)
	}
	rxn.LowerBound = lower
	rxn.UpperBound = upper
	return nil
}

// GetBalanceConstraint returns the steady-state constraint for one
// metabolite. Terms appear in reaction insertion order; Target is
// always zero.
func (n *Network) GetBalanceConstraint(metID string) (*BalanceConstraint, error) {
	if !n.Registry.Has(metID) {
		return nil, fmt.Errorf("balance constraint %q: %w", metID, ErrUnknownMetabolite)
	}
	terms := n.participation[metID]
	out := make([]Participation, len(terms))
	copy(out, terms)
	return &BalanceConstraint{
		MetaboliteID: metID,
		Terms:        out,
		Target:       0,
	}, nil
}

// BalanceConstraints returns constraints for every metabolite with at
// least one participation, in registration order. Metabolites no
// reaction touches are skipped: they contribute no row to the LP.
func (n *Network) BalanceConstraints() []*BalanceConstraint {
	var out []*BalanceConstraint
	for _, met := range n.Registry.Metabolites() {
		if len(n.participation[met.ID]) == 0 {
			continue
		}
		bc, _ := n.GetBalanceConstraint(met.ID)
		out = append(out, bc)
	}
	return out
}

// Clone deep-copies the network, its registry, and all reactions.
// Used by knockout and sweep analysis to vary bounds without touching
// the original.
func (n *Network) Clone() *Network {
	clone := NewNetwork(n.Name)
	clone.Registry.Logger = n.Registry.Logger
	for id, name := range n.Compartments {
		clone.Compartments[id] = name
	}
	for _, m := range n.Registry.Metabolites() {
		clone.Registry.Register(m.ID, m.Name, m.Formula, m.Charge, m.Compartment)
	}
	for _, rxn := range n.reactions {
		clone.AddReaction(rxn.ID, rxn.Name, rxn.LowerBound, rxn.UpperBound, rxn.Stoichiometry)
	}
	return clone
}
