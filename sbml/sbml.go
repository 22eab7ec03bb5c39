// Package sbml round-trips metabolic models through an SBML level 3
// document with the flux balance constraints (fbc) attributes. Only the
// dialect written by this package is supported on the way back in:
// compartments, species with charge and chemical formula, flux bound
// parameters, reactions with reactant/product species references, and
// a single active objective. Infinite bounds use the INF and -INF
// parameter values.
package sbml

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/lp"
	"github.com/metnet-xyz/go-metnet/metnet"
)

const (
	coreNamespace = "http://www.sbml.org/sbml/level3/version1/core"
	fbcNamespace  = "http://www.sbml.org/sbml/level3/version1/fbc/version2"
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Write serializes a network and an optional objective to SBML bytes.
// Species appear in registration order and reactions in network order,
// so reading the document back reproduces the model exactly.
func Write(net *metnet.Network, objective *fba.Objective) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, "<sbml xmlns=%q xmlns:fbc=%q level=\"3\" version=\"1\" fbc:required=\"false\">\n",
		coreNamespace, fbcNamespace)
	modelID := net.Name
	if modelID == "" {
		modelID = "model"
	}
	fmt.Fprintf(&sb, "  <model id=\"%s\" fbc:strict=\"true\">\n", escaper.Replace(modelID))

	if len(net.Compartments) > 0 {
		sb.WriteString("    <listOfCompartments>\n")
		ids := make([]string, 0, len(net.Compartments))
		for id := range net.Compartments {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&sb, "      <compartment id=\"%s\" name=\"%s\" constant=\"true\"/>\n",
				escaper.Replace(id), escaper.Replace(net.Compartments[id]))
		}
		sb.WriteString("    </listOfCompartments>\n")
	}

	sb.WriteString("    <listOfSpecies>\n")
	for _, met := range net.Registry.Metabolites() {
		fmt.Fprintf(&sb, "      <species id=\"%s\" name=\"%s\" compartment=\"%s\" fbc:charge=\"%d\" fbc:chemicalFormula=\"%s\" hasOnlySubstanceUnits=\"false\" boundaryCondition=\"false\" constant=\"false\"/>\n",
			escaper.Replace(met.ID), escaper.Replace(met.Name), escaper.Replace(met.Compartment),
			met.Charge, escaper.Replace(met.Formula))
	}
	sb.WriteString("    </listOfSpecies>\n")

	// Shared flux bound parameters, one per distinct value.
	paramID := make(map[float64]string)
	var paramOrder []float64
	bound := func(v float64) string {
		if id, ok := paramID[v]; ok {
			return id
		}
		id := fmt.Sprintf("fb_%d", len(paramOrder))
		paramID[v] = id
		paramOrder = append(paramOrder, v)
		return id
	}
	reactions := net.Reactions()
	for _, rxn := range reactions {
		bound(rxn.LowerBound)
		bound(rxn.UpperBound)
	}
	sb.WriteString("    <listOfParameters>\n")
	for _, v := range paramOrder {
		fmt.Fprintf(&sb, "      <parameter id=\"%s\" value=\"%s\" constant=\"true\"/>\n",
			paramID[v], formatBound(v))
	}
	sb.WriteString("    </listOfParameters>\n")

	sb.WriteString("    <listOfReactions>\n")
	for _, rxn := range reactions {
		fmt.Fprintf(&sb, "      <reaction id=\"%s\" name=\"%s\" reversible=\"%t\" fast=\"false\" fbc:lowerFluxBound=\"%s\" fbc:upperFluxBound=\"%s\">\n",
			escaper.Replace(rxn.ID), escaper.Replace(rxn.Name), rxn.LowerBound < 0,
			paramID[rxn.LowerBound], paramID[rxn.UpperBound])
		writeSpeciesRefs(&sb, "listOfReactants", rxn.Reactants(), rxn.Stoichiometry)
		writeSpeciesRefs(&sb, "listOfProducts", rxn.Products(), rxn.Stoichiometry)
		sb.WriteString("      </reaction>\n")
	}
	sb.WriteString("    </listOfReactions>\n")

	if objective != nil && len(objective.Terms) > 0 {
		direction := "maximize"
		if objective.Direction == lp.Minimize {
			direction = "minimize"
		}
		sb.WriteString("    <fbc:listOfObjectives fbc:activeObjective=\"obj\">\n")
		fmt.Fprintf(&sb, "      <fbc:objective fbc:id=\"obj\" fbc:type=\"%s\">\n", direction)
		sb.WriteString("        <fbc:listOfFluxObjectives>\n")
		for _, term := range objective.Terms {
			fmt.Fprintf(&sb, "          <fbc:fluxObjective fbc:reaction=\"%s\" fbc:coefficient=\"%s\"/>\n",
				escaper.Replace(term.ReactionID), formatBound(term.Coefficient))
		}
		sb.WriteString("        </fbc:listOfFluxObjectives>\n")
		sb.WriteString("      </fbc:objective>\n")
		sb.WriteString("    </fbc:listOfObjectives>\n")
	}

	sb.WriteString("  </model>\n")
	sb.WriteString("</sbml>\n")
	return []byte(sb.String()), nil
}

func writeSpeciesRefs(sb *strings.Builder, tag string, ids []string, stoich map[string]float64) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "        <%s>\n", tag)
	for _, id := range ids {
		fmt.Fprintf(sb, "          <speciesReference species=\"%s\" stoichiometry=\"%s\" constant=\"true\"/>\n",
			escaper.Replace(id), formatBound(math.Abs(stoich[id])))
	}
	fmt.Fprintf(sb, "        </%s>\n", tag)
}

func formatBound(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

type sbmlDoc struct {
	XMLName xml.Name  `xml:"sbml"`
	Model   sbmlModel `xml:"model"`
}

type sbmlModel struct {
	ID           string            `xml:"id,attr"`
	Compartments []sbmlCompartment `xml:"listOfCompartments>compartment"`
	Species      []sbmlSpecies     `xml:"listOfSpecies>species"`
	Parameters   []sbmlParameter   `xml:"listOfParameters>parameter"`
	Reactions    []sbmlReaction    `xml:"listOfReactions>reaction"`
	Objectives   sbmlObjectives    `xml:"listOfObjectives"`
}

type sbmlCompartment struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type sbmlSpecies struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Compartment string `xml:"compartment,attr"`
	Charge      int    `xml:"charge,attr"`
	Formula     string `xml:"chemicalFormula,attr"`
}

type sbmlParameter struct {
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type sbmlReaction struct {
	ID        string           `xml:"id,attr"`
	Name      string           `xml:"name,attr"`
	LowerRef  string           `xml:"lowerFluxBound,attr"`
	UpperRef  string           `xml:"upperFluxBound,attr"`
	Reactants []sbmlSpeciesRef `xml:"listOfReactants>speciesReference"`
	Products  []sbmlSpeciesRef `xml:"listOfProducts>speciesReference"`
}

type sbmlSpeciesRef struct {
	Species       string  `xml:"species,attr"`
	Stoichiometry float64 `xml:"stoichiometry,attr"`
}

type sbmlObjectives struct {
	Active string          `xml:"activeObjective,attr"`
	List   []sbmlObjective `xml:"objective"`
}

type sbmlObjective struct {
	ID             string              `xml:"id,attr"`
	Type           string              `xml:"type,attr"`
	FluxObjectives []sbmlFluxObjective `xml:"listOfFluxObjectives>fluxObjective"`
}

type sbmlFluxObjective struct {
	Reaction    string  `xml:"reaction,attr"`
	Coefficient float64 `xml:"coefficient,attr"`
}

// Read parses a document written by Write back into a network and its
// objective. The objective is nil when the document has none.
func Read(data []byte) (*metnet.Network, *fba.Objective, error) {
	var doc sbmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("invalid SBML: %w", err)
	}

	net := metnet.NewNetwork(doc.Model.ID)
	for _, c := range doc.Model.Compartments {
		net.AddCompartment(c.ID, c.Name)
	}
	for _, sp := range doc.Model.Species {
		if sp.ID == "" {
			return nil, nil, fmt.Errorf("species without an id")
		}
		if _, err := net.Registry.Register(sp.ID, sp.Name, sp.Formula, sp.Charge, sp.Compartment); err != nil {
			return nil, nil, err
		}
	}

	params := make(map[string]float64, len(doc.Model.Parameters))
	for _, p := range doc.Model.Parameters {
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: bad value %q", p.ID, p.Value)
		}
		params[p.ID] = v
	}

	for _, rx := range doc.Model.Reactions {
		if rx.ID == "" {
			return nil, nil, fmt.Errorf("reaction without an id")
		}
		lower, ok := params[rx.LowerRef]
		if !ok {
			return nil, nil, fmt.Errorf("reaction %s: unknown flux bound parameter %q", rx.ID, rx.LowerRef)
		}
		upper, ok := params[rx.UpperRef]
		if !ok {
			return nil, nil, fmt.Errorf("reaction %s: unknown flux bound parameter %q", rx.ID, rx.UpperRef)
		}
		stoich := make(map[string]float64, len(rx.Reactants)+len(rx.Products))
		for _, ref := range rx.Reactants {
			stoich[ref.Species] -= ref.Stoichiometry
		}
		for _, ref := range rx.Products {
			stoich[ref.Species] += ref.Stoichiometry
		}
		for id, coeff := range stoich {
			if coeff == 0 {
				delete(stoich, id)
			}
		}
		if _, err := net.AddReaction(rx.ID, rx.Name, lower, upper, stoich); err != nil {
			return nil, nil, err
		}
	}

	objective := readObjective(doc.Model.Objectives)
	return net, objective, nil
}

func readObjective(objs sbmlObjectives) *fba.Objective {
	if len(objs.List) == 0 {
		return nil
	}
	chosen := objs.List[0]
	for _, o := range objs.List {
		if o.ID == objs.Active {
			chosen = o
			break
		}
	}
	objective := &fba.Objective{Direction: lp.Maximize}
	if chosen.Type == "minimize" {
		objective.Direction = lp.Minimize
	}
	for _, fo := range chosen.FluxObjectives {
		objective.Add(fo.Reaction, fo.Coefficient)
	}
	return objective
}
