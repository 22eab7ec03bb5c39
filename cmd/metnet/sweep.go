package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/metnet-xyz/go-metnet/sensitivity"
)

func sweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	modelFile := fs.String("model", "", "Model JSON file (flux bound sweep)")
	reaction := fs.String("reaction", "", "Reaction whose bound is swept")
	bound := fs.String("bound", "lower", "Which bound to sweep: lower or upper")
	objectiveFlag := fs.String("objective", "", "Reaction to maximize (overrides the model objective)")
	circuitFlag := fs.String("circuit", "", "Circuit: faee, alkane, or a parameters YAML file (parameter sweep)")
	param := fs.String("param", "", "Circuit parameter to sweep")
	score := fs.String("score", "final", "Circuit score: final or peak value of the product")
	minVal := fs.Float64("min", 0, "Low end of the sweep (required)")
	maxVal := fs.Float64("max", 0, "High end of the sweep (required)")
	points := fs.Int("points", 11, "Number of sweep points")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet sweep [options]

Sweep one knob and report the objective at each value. Two modes:
  -model + -reaction   re-solve FBA across a range of one flux bound
  -circuit + -param    re-simulate the circuit across a parameter range

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # How does restricting glucose uptake cost product?
  metnet sweep -model ecoli_core.json -reaction EX_glc -bound lower -min -20 -max 0

  # Which catalysis rate maximizes FAEE titer?
  metnet sweep -circuit faee -param catalysis_rate -min 0.1 -max 5 -points 25
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["min"] || !set["max"] {
		fs.Usage()
		return fmt.Errorf("-min and -max required")
	}

	switch {
	case *modelFile != "" && *circuitFlag != "":
		return fmt.Errorf("pass either -model or -circuit, not both")
	case *modelFile != "":
		if *reaction == "" {
			fs.Usage()
			return fmt.Errorf("-reaction required with -model")
		}
		return sweepFlux(*modelFile, *objectiveFlag, *reaction, *bound, *minVal, *maxVal, *points)
	case *circuitFlag != "":
		if *param == "" {
			fs.Usage()
			return fmt.Errorf("-param required with -circuit")
		}
		return sweepCircuit(*circuitFlag, *param, *score, *minVal, *maxVal, *points)
	default:
		fs.Usage()
		return fmt.Errorf("-model or -circuit required")
	}
}

func sweepFlux(modelFile, objectiveFlag, reaction, bound string, min, max float64, points int) error {
	net, modelObjective, err := loadModel(modelFile)
	if err != nil {
		return err
	}
	objective, err := resolveObjective(net, modelObjective, objectiveFlag)
	if err != nil {
		return err
	}

	analyzer := sensitivity.NewAnalyzer(net, objective)
	result, err := analyzer.SweepBound(reaction, sensitivity.Bound(bound), min, max, points)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %14s\n", reaction+" "+bound, "OBJECTIVE")
	for i, value := range result.Values {
		if math.IsNaN(result.Objectives[i]) {
			fmt.Printf("%-14.6g %14s\n", value, result.Statuses[i].String())
			continue
		}
		fmt.Printf("%-14.6g %14.6g\n", value, result.Objectives[i])
	}

	fmt.Fprintf(os.Stderr, "%d/%d points feasible\n", result.Feasible, len(result.Values))
	if result.Feasible > 0 {
		fmt.Fprintf(os.Stderr, "Best:  %.6g at %s = %.6g\n", result.Best.Objective, reaction, result.Best.Value)
		fmt.Fprintf(os.Stderr, "Worst: %.6g at %s = %.6g\n", result.Worst.Objective, reaction, result.Worst.Value)
	}
	return nil
}

func sweepCircuit(circuitFlag, param, score string, min, max float64, points int) error {
	model, err := loadCircuit(circuitFlag)
	if err != nil {
		return err
	}

	product := model.Species[5]
	var scorer sensitivity.Scorer
	switch score {
	case "final":
		scorer = sensitivity.FinalScorer(product)
	case "peak":
		scorer = sensitivity.PeakScorer(product)
	default:
		return fmt.Errorf("unknown score: %s", score)
	}

	result, err := sensitivity.SweepParam(model, param, min, max, points, scorer)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %14s\n", param, score+" "+product)
	for i, value := range result.Values {
		fmt.Printf("%-14.6g %14.6g\n", value, result.Scores[i])
	}

	fmt.Fprintf(os.Stderr, "Best:  %.6g at %s = %.6g\n", result.Best.Score, param, result.Best.Value)
	fmt.Fprintf(os.Stderr, "Worst: %.6g at %s = %.6g\n", result.Worst.Score, param, result.Worst.Value)
	return nil
}
