package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/metnet-xyz/go-metnet/balance"
)

func checkBalance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	modelFile := fs.String("model", "", "Model JSON file (required)")
	failOnly := fs.Bool("failing", false, "Only print imbalanced reactions")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet balance -model <model.json> [options]

Check every reaction for mass and charge conservation using the
metabolite formulas in the model. Boundary reactions exchange matter
with the environment and are expected to fail.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full report
  metnet balance -model ecoli_core.json

  # Just the problems
  metnet balance -model ecoli_core.json -failing
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelFile == "" {
		fs.Usage()
		return fmt.Errorf("-model required")
	}

	net, _, err := loadModel(*modelFile)
	if err != nil {
		return err
	}
	nr, err := balance.CheckNetwork(net)
	if err != nil {
		return err
	}

	boundary := make(map[string]bool, net.Len())
	for _, rxn := range net.Reactions() {
		boundary[rxn.ID] = rxn.IsBoundary()
	}

	for _, report := range nr.Reports {
		if report.Balanced() {
			if !*failOnly {
				fmt.Printf("%-20s OK\n", report.ReactionID)
			}
			continue
		}
		tag := "FAILED"
		if boundary[report.ReactionID] {
			tag = "FAILED (boundary)"
		}
		fmt.Printf("%-20s %-18s %s\n", report.ReactionID, tag, report.String())
	}

	fmt.Fprintf(os.Stderr, "%d of %d reactions balanced\n", nr.Balanced, len(nr.Reports))
	return nil
}
