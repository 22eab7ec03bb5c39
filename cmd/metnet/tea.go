package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/metnet-xyz/go-metnet/plotter"
	"github.com/metnet-xyz/go-metnet/tea"
)

func teaMenu(args []string) error {
	fs := flag.NewFlagSet("tea", flag.ExitOnError)
	scenarioFile := fs.String("scenario", "", "Scenario YAML file (default: built-in reference plant)")
	plotFile := fs.String("plot", "", "Write the production curve SVG to this file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet tea [options]

Interactive bioreactor and techno-economic analysis. Walks a menu of
batch yield, annual cost, and sensitivity calculations; numeric
prompts re-ask until the input parses and is in range.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Reference plant
  metnet tea

  # Custom plant, keep the production curve
  metnet tea -scenario plant.yaml -plot curve.svg
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	scenario := tea.DefaultScenario()
	if *scenarioFile != "" {
		loaded, err := tea.LoadScenario(*scenarioFile)
		if err != nil {
			return err
		}
		scenario = loaded
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\n=== Techno-Economic Analysis ===")
		fmt.Println("  1. Bioreactor batch yield")
		fmt.Println("  2. Annual cost and minimum selling price")
		fmt.Println("  3. Sensitivity: substrate cost and yield factor")
		fmt.Println("  4. Exit")
		choice, ok := promptInt(in, "Select an option [1-4]: ", 1, 4)
		if !ok {
			return nil
		}
		switch choice {
		case 1:
			if !runBioreactor(in, &scenario, *plotFile) {
				return nil
			}
		case 2:
			if !runEconomics(in, &scenario) {
				return nil
			}
		case 3:
			runSensitivity(&scenario)
		case 4:
			fmt.Println("Goodbye.")
			return nil
		}
	}
}

// runBioreactor prompts for batch conditions and reports the yield.
// Returns false when input ran out.
func runBioreactor(in *bufio.Scanner, scenario *tea.Scenario, plotFile string) bool {
	b := scenario.Bioreactor
	fmt.Println("\n--- Bioreactor batch yield ---")

	var ok bool
	if b.Volume, ok = promptFloat(in, fmt.Sprintf("Reactor volume in L [%g]: ", b.Volume), 1, 1e7, b.Volume); !ok {
		return false
	}
	if b.Substrate, ok = promptFloat(in, fmt.Sprintf("Substrate feed in g/L [%g]: ", b.Substrate), 0.1, 1e4, b.Substrate); !ok {
		return false
	}
	if b.BatchTime, ok = promptFloat(in, fmt.Sprintf("Batch time in h [%g]: ", b.BatchTime), 1, 1e4, b.BatchTime); !ok {
		return false
	}
	scenario.Bioreactor = b

	grams := tea.BatchYield(b)
	fmt.Printf("\nBatch yield: %.2f g (%.2f kg)\n", grams, grams/1000)

	times, curve := tea.ProductionCurve(b, 100)
	fmt.Printf("Saturation: %.1f%% of reactor maximum at harvest\n",
		100*grams/(b.Volume*b.Substrate*b.YieldFactor))

	if plotFile != "" {
		p := plotter.NewSVGPlotter(800, 500)
		p.SetTitle("Batch production curve")
		p.SetXLabel("time (h)")
		p.SetYLabel("product (g)")
		p.AddSeries(times, curve, "product", "")
		if err := os.WriteFile(plotFile, []byte(p.Render()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write plot: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Curve written to %s\n", plotFile)
		}
	}
	return true
}

// runEconomics prompts for plant economics and prices the product.
func runEconomics(in *bufio.Scanner, scenario *tea.Scenario) bool {
	t := scenario.TEA
	fmt.Println("\n--- Annual cost and minimum selling price ---")

	var ok bool
	if t.AnnualProduction, ok = promptFloat(in, fmt.Sprintf("Annual production in g [%g]: ", t.AnnualProduction), 1, 1e12, t.AnnualProduction); !ok {
		return false
	}
	if t.SubstrateCost, ok = promptFloat(in, fmt.Sprintf("Substrate cost in $/yr [%g]: ", t.SubstrateCost), 0, 1e9, t.SubstrateCost); !ok {
		return false
	}
	scenario.TEA = t

	fmt.Printf("\nAnnualized capital:    $%.2f/yr\n", tea.Annualize(t))
	fmt.Printf("Total annual cost:     $%.2f/yr\n", tea.TotalAnnualCost(t))
	fmt.Printf("Minimum selling price: $%.4f/g\n", tea.MSP(t))

	production, msp := tea.MSPOverProduction(t, 5)
	fmt.Println("\nPrice vs production:")
	for i := range production {
		fmt.Printf("  %12.4g g/yr  ->  $%.4f/g\n", production[i], msp[i])
	}
	return true
}

// runSensitivity sweeps the two dominant cost drivers around the
// scenario values.
func runSensitivity(scenario *tea.Scenario) {
	t := scenario.TEA
	yf := scenario.Bioreactor.YieldFactor
	fmt.Println("\n--- Sensitivity ---")

	costs, msp := tea.SweepSubstrateCost(t, 0.5*t.SubstrateCost, 2*t.SubstrateCost)
	fmt.Println("Substrate cost:")
	printSweepRows(costs, msp, "$%.0f/yr", "$%.4f/g")

	yields, msp2 := tea.SweepYieldFactor(t, yf, 0.5*yf, 2*yf)
	fmt.Println("Yield factor:")
	printSweepRows(yields, msp2, "%.3f g/g", "$%.4f/g")
}

// printSweepRows prints six evenly spaced rows of a sweep.
func printSweepRows(values, msp []float64, valueFormat, mspFormat string) {
	step := len(values) / 6
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(values); i += step {
		fmt.Printf("  %-16s ->  %s\n",
			fmt.Sprintf(valueFormat, values[i]),
			fmt.Sprintf(mspFormat, msp[i]))
	}
}

// promptFloat reads a number, re-prompting until it parses and falls
// inside [min, max]. Empty input takes the default; the second return
// is false once stdin is exhausted.
func promptFloat(in *bufio.Scanner, prompt string, min, max, def float64) (float64, bool) {
	for {
		fmt.Print(prompt)
		if !in.Scan() {
			fmt.Println()
			return 0, false
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			return def, true
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			fmt.Printf("Not a number: %q\n", text)
			continue
		}
		if v < min || v > max {
			fmt.Printf("Value must be between %g and %g\n", min, max)
			continue
		}
		return v, true
	}
}

// promptInt is promptFloat for menu choices.
func promptInt(in *bufio.Scanner, prompt string, min, max int) (int, bool) {
	for {
		fmt.Print(prompt)
		if !in.Scan() {
			fmt.Println()
			return 0, false
		}
		text := strings.TrimSpace(in.Text())
		v, err := strconv.Atoi(text)
		if err != nil {
			fmt.Printf("Not a number: %q\n", text)
			continue
		}
		if v < min || v > max {
			fmt.Printf("Choose between %d and %d\n", min, max)
			continue
		}
		return v, true
	}
}
