package metnet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Candidate is one metadata match for a metabolite name.
type Candidate struct {
	ID   string
	Name string
}

// Entry holds the chemistry metadata a source resolves for an id.
type Entry struct {
	Formula string
	Charge  int
}

// MetadataSource supplies formula and charge metadata by name. Lookups
// are an optional enrichment: any failure is recovered by the registry
// through its static fallback, so implementations may be backed by a
// remote service without affecting correctness.
type MetadataSource interface {
	// SearchByName returns candidate matches in source order.
	// An empty result means the name is unknown to the source.
	SearchByName(ctx context.Context, name string) ([]Candidate, error)

	// Fetch returns the metadata entry for a candidate id.
	Fetch(ctx context.Context, id string) (Entry, error)
}

// Registry holds canonical metabolite records keyed by model id.
type Registry struct {
	// Logger receives fallback warnings during Resolve.
	// Nil means slog.Default().
	Logger *slog.Logger

	order []string
	byID  map[string]*Metabolite
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Metabolite),
	}
}

// Register adds a metabolite record. The id must be unused.
func (r *Registry) Register(id, name, formula string, charge int, compartment string) (*Metabolite, error) {
	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("register metabolite %q: %w", id, ErrDuplicateID)
	}
	m := &Metabolite{
		ID:          id,
		Name:        name,
		Formula:     formula,
		Charge:      charge,
		Compartment: compartment,
	}
	r.byID[id] = m
	r.order = append(r.order, id)
	return m, nil
}

// Lookup returns the record for id.
func (r *Registry) Lookup(id string) (*Metabolite, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("lookup metabolite %q: %w", id, ErrUnknownMetabolite)
	}
	return m, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Metabolites returns all records in registration order.
func (r *Registry) Metabolites() []*Metabolite {
	out := make([]*Metabolite, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

// Len returns the number of registered metabolites.
func (r *Registry) Len() int {
	return len(r.order)
}

// Resolve registers a metabolite using metadata from src, falling back
// to the given static entry when the source cannot serve the name.
// Candidate selection: an exact case-insensitive name match wins; with
// no exact match the first candidate is accepted and a warning logged;
// with no candidates at all (or any source failure) the fallback entry
// is used. Source failures never propagate: the only possible error is
// a duplicate id.
func (r *Registry) Resolve(ctx context.Context, id, name, compartment string, fallback Entry, src MetadataSource) (*Metabolite, error) {
	entry, ok := r.resolveEntry(ctx, id, name, src)
	if !ok {
		entry = fallback
	}
	return r.Register(id, name, entry.Formula, entry.Charge, compartment)
}

func (r *Registry) resolveEntry(ctx context.Context, id, name string, src MetadataSource) (Entry, bool) {
	if src == nil {
		return Entry{}, false
	}

	candidates, err := src.SearchByName(ctx, name)
	if err != nil {
		r.logger().Warn("metadata search failed, using fallback",
			"metabolite", id, "name", name, "error", err)
		return Entry{}, false
	}
	if len(candidates) == 0 {
		r.logger().Warn("no metadata match, using fallback",
			"metabolite", id, "name", name)
		return Entry{}, false
	}

	chosen := candidates[0]
	exact := false
	for _, c := range candidates {
		if strings.EqualFold(c.Name, name) {
			chosen = c
			exact = true
			break
		}
	}
	if !exact {
		r.logger().Warn("no exact metadata match, using first result",
			"metabolite", id, "name", name, "candidate", chosen.ID)
	}

	entry, err := src.Fetch(ctx, chosen.ID)
	if err != nil {
		r.logger().Warn("metadata fetch failed, using fallback",
			"metabolite", id, "candidate", chosen.ID, "error", err)
		return Entry{}, false
	}
	return entry, true
}

func (r *Registry) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
