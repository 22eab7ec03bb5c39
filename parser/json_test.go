package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/lp"
	"github.com/metnet-xyz/go-metnet/metnet"
)

func buildModel(t *testing.T) (*metnet.Network, *fba.Objective) {
	t.Helper()
	net, err := metnet.Build("toy").
		Compartment("c", "cytosol").
		Metabolite("a_c", "A", "C2H6O", 0, "c").
		Metabolite("b_c", "B", "C2H5O", -1, "c").
		Reaction("R1", "A to B", 0, 1000, map[string]float64{"a_c": -1, "b_c": 1}).
		Exchange("EX_a_c", "a_c", -10, 0).
		Exchange("EX_b_c", "b_c", 0, 1000).
		Done()
	if err != nil {
		t.Fatalf("Failed to build network: %v", err)
	}
	return net, fba.Maximize("EX_b_c")
}

func TestRoundTrip(t *testing.T) {
	net, objective := buildModel(t)
	data, err := ToJSON(net, objective)
	if err != nil {
		t.Fatalf("ToJSON returned error: %v", err)
	}

	got, gotObj, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON returned error: %v", err)
	}

	if got.Name != net.Name {
		t.Errorf("Expected name %q, got %q", net.Name, got.Name)
	}
	if got.Compartments["c"] != "cytosol" {
		t.Errorf("Expected compartment c = cytosol, got %q", got.Compartments["c"])
	}
	if got.Registry.Len() != net.Registry.Len() {
		t.Fatalf("Expected %d metabolites, got %d", net.Registry.Len(), got.Registry.Len())
	}
	for _, want := range net.Registry.Metabolites() {
		met, err := got.Registry.Lookup(want.ID)
		if err != nil {
			t.Fatalf("Metabolite %s missing after round trip: %v", want.ID, err)
		}
		if met.Name != want.Name || met.Formula != want.Formula || met.Charge != want.Charge || met.Compartment != want.Compartment {
			t.Errorf("Metabolite %s changed: %+v != %+v", want.ID, met, want)
		}
	}
	if got.Len() != net.Len() {
		t.Fatalf("Expected %d reactions, got %d", net.Len(), got.Len())
	}
	wantRxns := net.Reactions()
	for i, rxn := range got.Reactions() {
		want := wantRxns[i]
		if rxn.ID != want.ID {
			t.Fatalf("Reaction order changed: expected %s at %d, got %s", want.ID, i, rxn.ID)
		}
		if math.Abs(rxn.LowerBound-want.LowerBound) > 1e-9 || math.Abs(rxn.UpperBound-want.UpperBound) > 1e-9 {
			t.Errorf("Reaction %s bounds changed: [%g, %g] != [%g, %g]",
				rxn.ID, rxn.LowerBound, rxn.UpperBound, want.LowerBound, want.UpperBound)
		}
		for metID, coeff := range want.Stoichiometry {
			if math.Abs(rxn.Stoichiometry[metID]-coeff) > 1e-9 {
				t.Errorf("Reaction %s coefficient for %s changed: %g != %g",
					rxn.ID, metID, rxn.Stoichiometry[metID], coeff)
			}
		}
	}
	if gotObj == nil {
		t.Fatal("Expected objective after round trip")
	}
	if gotObj.Direction != lp.Maximize {
		t.Errorf("Expected maximize direction, got %v", gotObj.Direction)
	}
	if len(gotObj.Terms) != 1 || gotObj.Terms[0].ReactionID != "EX_b_c" || gotObj.Terms[0].Coefficient != 1 {
		t.Errorf("Objective terms changed: %+v", gotObj.Terms)
	}
}

func TestRoundTripInfiniteBounds(t *testing.T) {
	net, err := metnet.Build("open").
		Metabolite("a_c", "A", "", 0, "c").
		Exchange("EX_a_c", "a_c", math.Inf(-1), math.Inf(1)).
		Done()
	if err != nil {
		t.Fatalf("Failed to build network: %v", err)
	}
	data, err := ToJSON(net, nil)
	if err != nil {
		t.Fatalf("ToJSON returned error: %v", err)
	}
	if !strings.Contains(string(data), `"-inf"`) || !strings.Contains(string(data), `"inf"`) {
		t.Errorf("Expected infinite bounds as strings, got:\n%s", data)
	}

	got, _, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON returned error: %v", err)
	}
	rxn, err := got.GetReaction("EX_a_c")
	if err != nil {
		t.Fatalf("GetReaction returned error: %v", err)
	}
	if !math.IsInf(rxn.LowerBound, -1) || !math.IsInf(rxn.UpperBound, 1) {
		t.Errorf("Expected infinite bounds, got [%g, %g]", rxn.LowerBound, rxn.UpperBound)
	}
}

func TestFromJSONDefaults(t *testing.T) {
	data := []byte(`{
	  "metabolites": [{"id": "a_c"}],
	  "reactions": [{"id": "EX_a_c", "stoichiometry": {"a_c": -1}}]
	}`)
	net, objective, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON returned error: %v", err)
	}
	if objective != nil {
		t.Errorf("Expected nil objective, got %+v", objective)
	}
	met, err := net.Registry.Lookup("a_c")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if met.Charge != 0 || met.Formula != "" || met.Compartment != metnet.CompartmentIntracellular {
		t.Errorf("Unexpected metabolite defaults: %+v", met)
	}
	rxn, err := net.GetReaction("EX_a_c")
	if err != nil {
		t.Fatalf("GetReaction returned error: %v", err)
	}
	if rxn.LowerBound != 0 || rxn.UpperBound != 1000 {
		t.Errorf("Expected default bounds [0, 1000], got [%g, %g]", rxn.LowerBound, rxn.UpperBound)
	}
}

func TestFromJSONUnknownMetabolite(t *testing.T) {
	data := []byte(`{
	  "metabolites": [{"id": "a_c"}],
	  "reactions": [{"id": "R1", "stoichiometry": {"ghost": -1}}]
	}`)
	_, _, err := FromJSON(data)
	if !errors.Is(err, metnet.ErrUnknownMetabolite) {
		t.Errorf("Expected ErrUnknownMetabolite, got %v", err)
	}
}

func TestFromJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid JSON", `{`},
		{"root not object", `[1, 2]`},
		{"metabolites not array", `{"metabolites": {}}`},
		{"metabolite without id", `{"metabolites": [{"name": "A"}]}`},
		{"reaction without id", `{"reactions": [{"stoichiometry": {"a": 1}}]}`},
		{"reaction without stoichiometry", `{"metabolites": [{"id": "a"}], "reactions": [{"id": "R1"}]}`},
		{"non-numeric coefficient", `{"metabolites": [{"id": "a"}], "reactions": [{"id": "R1", "stoichiometry": {"a": "x"}}]}`},
		{"non-numeric bound", `{"metabolites": [{"id": "a"}], "reactions": [{"id": "R1", "lower": "low", "stoichiometry": {"a": -1}}]}`},
		{"bad direction", `{"objective": {"direction": "sideways"}}`},
	}
	for _, tt := range tests {
		if _, _, err := FromJSON([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error, got none", tt.name)
		}
	}
}

func TestFromJSONObjectiveDirections(t *testing.T) {
	tests := []struct {
		direction string
		want      lp.Direction
	}{
		{"max", lp.Maximize},
		{"maximize", lp.Maximize},
		{"MIN", lp.Minimize},
		{"minimize", lp.Minimize},
	}
	for _, tt := range tests {
		data := `{"objective": {"direction": "` + tt.direction + `", "terms": {"R1": 1}}}`
		_, objective, err := FromJSON([]byte(data))
		if err != nil {
			t.Fatalf("FromJSON(%s) returned error: %v", tt.direction, err)
		}
		if objective == nil || objective.Direction != tt.want {
			t.Errorf("Direction %q: expected %v, got %+v", tt.direction, tt.want, objective)
		}
	}
}

func TestFromJSONDuplicateReaction(t *testing.T) {
	data := []byte(`{
	  "metabolites": [{"id": "a_c"}],
	  "reactions": [
	    {"id": "R1", "stoichiometry": {"a_c": -1}},
	    {"id": "R1", "stoichiometry": {"a_c": 1}}
	  ]
	}`)
	_, _, err := FromJSON(data)
	if !errors.Is(err, metnet.ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
}
