package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/metnet"
	"github.com/metnet-xyz/go-metnet/parser"
	"github.com/metnet-xyz/go-metnet/sbml"
)

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	modelFile := fs.String("model", "", "Model JSON file (required)")
	format := fs.String("format", "sbml", "Output format: sbml or json")
	output := fs.String("out", "", "Output file (default: stdout)")
	verify := fs.Bool("verify", true, "Parse the output back and compare against the model")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet export -model <model.json> [options]

Write a model in another format. SBML output carries the fbc package
for bounds and objectives.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # SBML to stdout
  metnet export -model ecoli_core.json

  # Normalized JSON to a file, skipping the round trip
  metnet export -model ecoli_core.json -format json -out clean.json -verify=false
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelFile == "" {
		fs.Usage()
		return fmt.Errorf("-model required")
	}

	net, objective, err := loadModel(*modelFile)
	if err != nil {
		return err
	}

	var data []byte
	switch *format {
	case "sbml":
		data, err = sbml.Write(net, objective)
	case "json":
		data, err = parser.ToJSON(net, objective)
	default:
		return fmt.Errorf("unknown format: %s", *format)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if *verify {
		var parsed *metnet.Network
		var parsedObjective *fba.Objective
		switch *format {
		case "sbml":
			parsed, parsedObjective, err = sbml.Read(data)
		case "json":
			parsed, parsedObjective, err = parser.FromJSON(data)
		}
		if err != nil {
			return fmt.Errorf("round trip: %w", err)
		}
		if err := verifyRoundTrip(net, parsed, objective, parsedObjective); err != nil {
			return fmt.Errorf("round trip: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Round trip verified: %d metabolites, %d reactions\n",
			net.Registry.Len(), net.Len())
	}

	if *output != "" {
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Model written to %s\n", *output)
		return nil
	}
	fmt.Print(string(data))
	return nil
}

// verifyRoundTrip compares the re-parsed model against the original:
// same reactions, bounds, stoichiometry, and objective terms.
func verifyRoundTrip(orig, parsed *metnet.Network, origObjective, parsedObjective *fba.Objective) error {
	if parsed.Len() != orig.Len() {
		return fmt.Errorf("reaction count changed: %d != %d", parsed.Len(), orig.Len())
	}
	if parsed.Registry.Len() != orig.Registry.Len() {
		return fmt.Errorf("metabolite count changed: %d != %d", parsed.Registry.Len(), orig.Registry.Len())
	}
	for _, rxn := range orig.Reactions() {
		got, err := parsed.GetReaction(rxn.ID)
		if err != nil {
			return fmt.Errorf("lost reaction %s", rxn.ID)
		}
		if got.LowerBound != rxn.LowerBound || got.UpperBound != rxn.UpperBound {
			return fmt.Errorf("%s: bounds changed [%g, %g] != [%g, %g]",
				rxn.ID, got.LowerBound, got.UpperBound, rxn.LowerBound, rxn.UpperBound)
		}
		if len(got.Stoichiometry) != len(rxn.Stoichiometry) {
			return fmt.Errorf("%s: stoichiometry changed", rxn.ID)
		}
		for id, coeff := range rxn.Stoichiometry {
			if got.Stoichiometry[id] != coeff {
				return fmt.Errorf("%s: coefficient of %s changed: %g != %g",
					rxn.ID, id, got.Stoichiometry[id], coeff)
			}
		}
	}
	if (origObjective == nil) != (parsedObjective == nil) {
		return fmt.Errorf("objective lost in translation")
	}
	if origObjective != nil && len(origObjective.Terms) != len(parsedObjective.Terms) {
		return fmt.Errorf("objective terms changed: %d != %d",
			len(parsedObjective.Terms), len(origObjective.Terms))
	}
	return nil
}
