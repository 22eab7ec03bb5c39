package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/metnet-xyz/go-metnet/balance"
	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/plotter"
	"github.com/metnet-xyz/go-metnet/results"
)

func solve(args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	modelFile := fs.String("model", "", "Model JSON file (required)")
	objectiveFlag := fs.String("objective", "", "Reaction to maximize (overrides the model objective)")
	output := fs.String("out", "", "Write the results artifact to this file")
	format := fs.String("format", "text", "Console output: text or json")
	plotFile := fs.String("plot", "", "Write a flux bar chart SVG to this file")
	dbFlag := fs.String("db", "", "History database (default: METNET_DB)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet solve -model <model.json> [options]

Run flux balance analysis: maximize the objective reaction subject to
steady-state mass balance and the flux bounds in the model.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Solve with the model's own objective
  metnet solve -model ecoli_core.json

  # Maximize a different exchange and keep the artifact
  metnet solve -model ecoli_core.json -objective EX_etoh -out results.json

  # Flux distribution as SVG
  metnet solve -model ecoli_core.json -plot fluxes.svg
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelFile == "" {
		fs.Usage()
		return fmt.Errorf("-model required")
	}

	net, modelObjective, err := loadModel(*modelFile)
	if err != nil {
		return err
	}
	objective, err := resolveObjective(net, modelObjective, *objectiveFlag)
	if err != nil {
		return err
	}

	prob, err := fba.Build(net, objective)
	if err != nil {
		return fmt.Errorf("build problem: %w", err)
	}

	start := time.Now()
	sol := fba.NewSolver().Solve(prob)
	elapsed := time.Since(start).Seconds()

	report, err := balance.CheckNetwork(net)
	if err != nil {
		return fmt.Errorf("check balance: %w", err)
	}

	res := results.NewBuilder().
		WithModel(net).
		WithFlux(net, objective, sol, "simplex", elapsed).
		WithBalance(report).
		Build()

	switch *format {
	case "text":
		printSolution(res)
	case "json":
		data, err := results.ToJSON(res)
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("unknown format: %s", *format)
	}

	if *output != "" {
		if err := results.WriteJSON(res, *output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", *output)
	}

	if *plotFile != "" {
		svg := plotter.PlotFluxes(net, sol, 800, net.Name+" flux distribution")
		if err := os.WriteFile(*plotFile, []byte(svg), 0o644); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Plot written to %s\n", *plotFile)
	}

	saveRun(historyPath(*dbFlag), "solve", res, sol.Objective)
	return nil
}

// printSolution renders the flux table on stdout.
func printSolution(res *results.Results) {
	fmt.Printf("Model: %s (%d metabolites, %d reactions)\n",
		res.Model.Name, res.Model.Metabolites, res.Model.Reactions)
	fmt.Printf("Status: %s\n", res.Metadata.Status)
	if res.Metadata.Error != "" {
		fmt.Printf("Message: %s\n", res.Metadata.Error)
		return
	}
	fmt.Printf("Objective: %.6g (%s)\n\n", res.Flux.Objective.Value, res.Flux.Objective.Direction)

	fmt.Println("Fluxes:")
	for _, entry := range res.Flux.Table {
		line := fmt.Sprintf("  %-16s %12.6g", entry.Reaction, entry.Flux)
		if entry.AtBound != "" {
			line += "  (" + entry.AtBound + ")"
		}
		fmt.Println(line)
	}

	if b := res.Flux.Balance; b != nil {
		fmt.Printf("\nBalance: %d/%d reactions balanced", b.Balanced, b.Checked)
		if b.Imbalanced > 0 {
			fmt.Printf(", %d imbalanced (run metnet balance for details)", b.Imbalanced)
		}
		fmt.Println()
	}
}
