package metnet

import "errors"

// Error types for network construction.
var (
	// ErrDuplicateID is returned when a metabolite or reaction id is already taken.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownMetabolite is returned when a metabolite id is not in the registry.
	ErrUnknownMetabolite = errors.New("unknown metabolite")

	// ErrUnknownReaction is returned when a reaction id is not in the network.
	ErrUnknownReaction = errors.New("unknown reaction")

	// ErrInvalidBounds is returned when a lower bound exceeds an upper bound.
	ErrInvalidBounds = errors.New("invalid bounds: lower exceeds upper")

	// ErrEmptyStoichiometry is returned when a reaction has no participants.
	ErrEmptyStoichiometry = errors.New("empty stoichiometry")

	// ErrZeroCoefficient is returned when a stoichiometric coefficient is zero.
	ErrZeroCoefficient = errors.New("zero stoichiometric coefficient")

	// ErrDuplicateObjective is returned when a reaction appears twice in an objective.
	ErrDuplicateObjective = errors.New("reaction appears twice in objective")
)
