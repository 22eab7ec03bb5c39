package metnet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeSource struct {
	candidates map[string][]Candidate
	entries    map[string]Entry
	searchErr  error
	fetchErr   error
}

func (f *fakeSource) SearchByName(ctx context.Context, name string) ([]Candidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates[name], nil
}

func (f *fakeSource) Fetch(ctx context.Context, id string) (Entry, error) {
	if f.fetchErr != nil {
		return Entry{}, f.fetchErr
	}
	e, ok := f.entries[id]
	if !ok {
		return Entry{}, errors.New("no entry")
	}
	return e, nil
}

func quietRegistry() *Registry {
	r := NewRegistry()
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return r
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register("atp_c", "ATP", "C10H16N5O13P3", -4, CompartmentIntracellular)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.Charge != -4 {
		t.Errorf("Expected charge -4, got %d", m.Charge)
	}

	got, err := r.Lookup("atp_c")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != m {
		t.Error("Expected lookup to return the registered record")
	}

	if _, err := r.Lookup("missing"); !errors.Is(err, ErrUnknownMetabolite) {
		t.Errorf("Expected ErrUnknownMetabolite, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register("h_c", "proton", "H", 1, CompartmentIntracellular)
	_, err := r.Register("h_c", "proton", "H", 1, CompartmentIntracellular)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 record, got %d", r.Len())
	}
}

func TestMetabolitesOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		r.Register(id, id, "", 0, CompartmentIntracellular)
	}
	for i, m := range r.Metabolites() {
		if m.ID != ids[i] {
			t.Errorf("Expected %s at index %d, got %s", ids[i], i, m.ID)
		}
	}
}

func TestResolveExactMatchBeatsOrder(t *testing.T) {
	src := &fakeSource{
		candidates: map[string][]Candidate{
			"ethanol": {
				{ID: "CHEBI:99999", Name: "ethanolamine"},
				{ID: "CHEBI:16236", Name: "Ethanol"},
			},
		},
		entries: map[string]Entry{
			"CHEBI:99999": {Formula: "C2H7NO", Charge: 0},
			"CHEBI:16236": {Formula: "C2H6O", Charge: 0},
		},
	}
	r := quietRegistry()
	m, err := r.Resolve(context.Background(), "ethanol_c", "ethanol", CompartmentIntracellular, Entry{Formula: "FALLBACK"}, src)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Formula != "C2H6O" {
		t.Errorf("Expected exact match formula C2H6O, got %s", m.Formula)
	}
}

func TestResolveFirstCandidateWhenNoExactMatch(t *testing.T) {
	src := &fakeSource{
		candidates: map[string][]Candidate{
			"pentadecane": {
				{ID: "CHEBI:32064", Name: "pentadecane-1-ol"},
				{ID: "CHEBI:28897", Name: "some alkane"},
			},
		},
		entries: map[string]Entry{
			"CHEBI:32064": {Formula: "C15H32O", Charge: 0},
		},
	}
	r := quietRegistry()
	m, err := r.Resolve(context.Background(), "alkane_c", "pentadecane", CompartmentIntracellular, Entry{Formula: "C15H32"}, src)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Formula != "C15H32O" {
		t.Errorf("Expected first candidate formula C15H32O, got %s", m.Formula)
	}
}

func TestResolveFallbackPaths(t *testing.T) {
	fallback := Entry{Formula: "C16H32O", Charge: 0}
	tests := []struct {
		name string
		src  MetadataSource
	}{
		{"nil source", nil},
		{"no candidates", &fakeSource{}},
		{"search error", &fakeSource{searchErr: errors.New("boom")}},
		{"fetch error", &fakeSource{
			candidates: map[string][]Candidate{"hexadecanal": {{ID: "CHEBI:17600", Name: "hexadecanal"}}},
			fetchErr:   errors.New("boom"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := quietRegistry()
			m, err := r.Resolve(context.Background(), "fa_ald_c", "hexadecanal", CompartmentIntracellular, fallback, tt.src)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if m.Formula != fallback.Formula {
				t.Errorf("Expected fallback formula %s, got %s", fallback.Formula, m.Formula)
			}
		})
	}
}

func TestResolveDuplicateStillFails(t *testing.T) {
	r := quietRegistry()
	r.Register("o2_c", "oxygen", "O2", 0, CompartmentIntracellular)
	_, err := r.Resolve(context.Background(), "o2_c", "oxygen", CompartmentIntracellular, Entry{Formula: "O2"}, nil)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
}

type ctxSource struct{}

func (ctxSource) SearchByName(ctx context.Context, name string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Candidate{{ID: "hit", Name: name}}, nil
}

func (ctxSource) Fetch(ctx context.Context, id string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{Formula: "FROM_SOURCE"}, nil
}

func TestResolveCancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := quietRegistry()
	m, err := r.Resolve(ctx, "x_c", "x", CompartmentIntracellular, Entry{Formula: "FALLBACK"}, ctxSource{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Formula != "FALLBACK" {
		t.Errorf("Expected fallback formula after cancellation, got %s", m.Formula)
	}
}
