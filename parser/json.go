// Package parser handles JSON import and export for metabolic models.
// A document carries the network plus an optional objective:
//
//	{
//	  "name": "alkane_pathway",
//	  "compartments": {"c": "cytosol"},
//	  "metabolites": [
//	    {"id": "a_c", "name": "A", "formula": "C2H6O", "charge": 0, "compartment": "c"}
//	  ],
//	  "reactions": [
//	    {"id": "R1", "name": "A to B", "lower": 0, "upper": 1000,
//	     "stoichiometry": {"a_c": -1, "b_c": 1}}
//	  ],
//	  "objective": {"direction": "max", "terms": {"EX_b_c": 1}}
//	}
//
// Display fields are optional: name and formula default to "", charge
// to 0, compartment to "c", bounds to [0, 1000], and the objective
// direction to "max". Structural problems (missing ids, non-numeric
// coefficients, references to unregistered metabolites) are errors.
// Infinite bounds are written as the strings "inf" and "-inf".
package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/lp"
	"github.com/metnet-xyz/go-metnet/metnet"
)

// FromJSON parses a network and its objective from JSON bytes. The
// objective is nil when the document has none.
func FromJSON(data []byte) (*metnet.Network, *fba.Objective, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("JSON root must be an object")
	}

	name := ""
	if v, ok := m["name"].(string); ok {
		name = v
	}
	net := metnet.NewNetwork(name)

	if compRaw, found := m["compartments"]; found {
		if compMap, ok := compRaw.(map[string]interface{}); ok {
			for _, id := range sortedKeys(compMap) {
				if label, ok := compMap[id].(string); ok {
					net.AddCompartment(id, label)
				}
			}
		}
	}

	if metsRaw, found := m["metabolites"]; found {
		metsSlice, ok := metsRaw.([]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("metabolites must be an array")
		}
		for i, mi := range metsSlice {
			mmap, ok := mi.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("metabolite %d must be an object", i)
			}
			id, ok := mmap["id"].(string)
			if !ok || id == "" {
				return nil, nil, fmt.Errorf("metabolite %d is missing an id", i)
			}
			metName := ""
			if v, ok := mmap["name"].(string); ok {
				metName = v
			}
			formula := ""
			if v, ok := mmap["formula"].(string); ok {
				formula = v
			}
			charge := 0
			if v, found := mmap["charge"]; found {
				if f, ok := asFloat64(v); ok {
					charge = int(f)
				}
			}
			compartment := metnet.CompartmentIntracellular
			if v, ok := mmap["compartment"].(string); ok {
				compartment = v
			}
			if _, err := net.Registry.Register(id, metName, formula, charge, compartment); err != nil {
				return nil, nil, err
			}
		}
	}

	if rxnsRaw, found := m["reactions"]; found {
		rxnsSlice, ok := rxnsRaw.([]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("reactions must be an array")
		}
		for i, ri := range rxnsSlice {
			rmap, ok := ri.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("reaction %d must be an object", i)
			}
			id, ok := rmap["id"].(string)
			if !ok || id == "" {
				return nil, nil, fmt.Errorf("reaction %d is missing an id", i)
			}
			rxnName := ""
			if v, ok := rmap["name"].(string); ok {
				rxnName = v
			}
			lower := 0.0
			if v, found := rmap["lower"]; found {
				f, ok := asBound(v)
				if !ok {
					return nil, nil, fmt.Errorf("reaction %s: lower bound is not a number", id)
				}
				lower = f
			}
			upper := 1000.0
			if v, found := rmap["upper"]; found {
				f, ok := asBound(v)
				if !ok {
					return nil, nil, fmt.Errorf("reaction %s: upper bound is not a number", id)
				}
				upper = f
			}
			sRaw, found := rmap["stoichiometry"]
			if !found {
				return nil, nil, fmt.Errorf("reaction %s has no stoichiometry", id)
			}
			sMap, ok := sRaw.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("reaction %s: stoichiometry must be an object", id)
			}
			stoich := make(map[string]float64, len(sMap))
			for metID, cv := range sMap {
				f, ok := asFloat64(cv)
				if !ok {
					return nil, nil, fmt.Errorf("reaction %s: coefficient for %s is not a number", id, metID)
				}
				stoich[metID] = f
			}
			if _, err := net.AddReaction(id, rxnName, lower, upper, stoich); err != nil {
				return nil, nil, err
			}
		}
	}

	var objective *fba.Objective
	if objRaw, found := m["objective"]; found {
		omap, ok := objRaw.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("objective must be an object")
		}
		objective = &fba.Objective{Direction: lp.Maximize}
		if v, ok := omap["direction"].(string); ok {
			switch strings.ToLower(v) {
			case "max", "maximize":
				objective.Direction = lp.Maximize
			case "min", "minimize":
				objective.Direction = lp.Minimize
			default:
				return nil, nil, fmt.Errorf("objective direction %q is not max or min", v)
			}
		}
		if tRaw, found := omap["terms"]; found {
			tMap, ok := tRaw.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("objective terms must be an object")
			}
			for _, id := range sortedKeys(tMap) {
				f, ok := asFloat64(tMap[id])
				if !ok {
					return nil, nil, fmt.Errorf("objective coefficient for %s is not a number", id)
				}
				objective.Add(id, f)
			}
		}
	}

	return net, objective, nil
}

// ToJSON serializes a network and an optional objective to indented
// JSON. Metabolites appear in registration order and reactions in
// network order, so a round trip preserves both.
func ToJSON(net *metnet.Network, objective *fba.Objective) ([]byte, error) {
	result := make(map[string]interface{})
	if net.Name != "" {
		result["name"] = net.Name
	}
	if len(net.Compartments) > 0 {
		result["compartments"] = net.Compartments
	}

	mets := make([]interface{}, 0, net.Registry.Len())
	for _, met := range net.Registry.Metabolites() {
		mdata := map[string]interface{}{"id": met.ID}
		if met.Name != "" {
			mdata["name"] = met.Name
		}
		if met.Formula != "" {
			mdata["formula"] = met.Formula
		}
		if met.Charge != 0 {
			mdata["charge"] = met.Charge
		}
		if met.Compartment != "" {
			mdata["compartment"] = met.Compartment
		}
		mets = append(mets, mdata)
	}
	result["metabolites"] = mets

	rxns := make([]interface{}, 0, net.Len())
	for _, rxn := range net.Reactions() {
		rdata := map[string]interface{}{
			"id":            rxn.ID,
			"lower":         boundValue(rxn.LowerBound),
			"upper":         boundValue(rxn.UpperBound),
			"stoichiometry": rxn.Stoichiometry,
		}
		if rxn.Name != "" {
			rdata["name"] = rxn.Name
		}
		rxns = append(rxns, rdata)
	}
	result["reactions"] = rxns

	if objective != nil && len(objective.Terms) > 0 {
		direction := "max"
		if objective.Direction == lp.Minimize {
			direction = "min"
		}
		terms := make(map[string]float64, len(objective.Terms))
		for _, term := range objective.Terms {
			terms[term.ReactionID] = term.Coefficient
		}
		result["objective"] = map[string]interface{}{"direction": direction, "terms": terms}
	}

	return json.MarshalIndent(result, "", "  ")
}

func boundValue(b float64) interface{} {
	switch {
	case math.IsInf(b, 1):
		return "inf"
	case math.IsInf(b, -1):
		return "-inf"
	default:
		return b
	}
}

// asBound converts a bound value, accepting the string forms used for
// infinities.
func asBound(v interface{}) (float64, bool) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "inf", "+inf":
			return math.Inf(1), true
		case "-inf":
			return math.Inf(-1), true
		}
		return 0, false
	}
	return asFloat64(v)
}

// asFloat64 attempts to convert a value to float64.
func asFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
