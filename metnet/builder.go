package metnet

// Builder provides a fluent API for constructing networks.
// Structural errors are sticky: the first one aborts all later calls
// and surfaces from Done, so a partially built network is never
// returned.
//
// Example:
//
//	net, err := metnet.Build("toy").
//	    Metabolite("a", "A", "C2H6O", 0, "c").
//	    Metabolite("b", "B", "C2H6O", 0, "c").
//	    Reaction("R1", "A to B", 0, 1000, map[string]float64{"a": -1, "b": 1}).
//	    Exchange("EX_a", "a", -10, 0).
//	    Exchange("EX_b", "b", 0, 1000).
//	    Done()
type Builder struct {
	net *Network
	err error
}

// Build creates a new Builder for the named network.
func Build(name string) *Builder {
	return &Builder{net: NewNetwork(name)}
}

// Compartment records a compartment id with a display name.
func (b *Builder) Compartment(id, name string) *Builder {
	if b.err != nil {
		return b
	}
	b.net.AddCompartment(id, name)
	return b
}

// Metabolite registers a metabolite record.
func (b *Builder) Metabolite(id, name, formula string, charge int, compartment string) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.net.Registry.Register(id, name, formula, charge, compartment)
	return b
}

// Reaction appends a reaction with explicit stoichiometry.
func (b *Builder) Reaction(id, name string, lower, upper float64, stoichiometry map[string]float64) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.net.AddReaction(id, name, lower, upper, stoichiometry)
	return b
}

// Exchange appends a single-metabolite boundary reaction.
func (b *Builder) Exchange(id, metID string, lower, upper float64) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.net.AddExchange(id, metID, lower, upper)
	return b
}

// Done returns the completed network, or the first construction error.
func (b *Builder) Done() (*Network, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.net, nil
}

// MustDone returns the completed network and panics on construction
// errors. Intended for fixtures and examples with literal input.
func (b *Builder) MustDone() *Network {
	net, err := b.Done()
	if err != nil {
		panic(err)
	}
	return net
}
