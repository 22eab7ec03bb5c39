package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/metnet-xyz/go-metnet/plotter"
	"github.com/metnet-xyz/go-metnet/results"
)

func plot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	resultsFile := fs.String("results", "", "Results artifact JSON (required)")
	output := fs.String("out", "", "Output SVG file (required)")
	width := fs.Int("width", 800, "Plot width in pixels")
	height := fs.Int("height", 500, "Plot height in pixels")
	title := fs.String("title", "", "Plot title (default: model name)")
	varsFlag := fs.String("vars", "", "Comma-separated variables to plot (default: all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet plot -results <results.json> -out <plot.svg> [options]

Render an SVG from a stored artifact: a timecourse for simulation
artifacts, a flux bar chart for solve artifacts.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full timecourse
  metnet plot -results faee.json -out faee.svg

  # Just the product and enzyme
  metnet plot -results faee.json -out faee.svg -vars FAEE,AEAT

  # Flux distribution
  metnet plot -results solve.json -out fluxes.svg
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *resultsFile == "" {
		fs.Usage()
		return fmt.Errorf("-results required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("-out required")
	}

	res, err := results.ReadJSON(*resultsFile)
	if err != nil {
		return err
	}

	plotTitle := *title
	if plotTitle == "" {
		plotTitle = res.Model.Name
	}

	var svg string
	switch {
	case res.Data != nil && len(res.Data.Timeseries.Variables) > 0:
		svg, err = plotTimeseries(res, plotTitle, *varsFlag, *width, *height)
	case res.Flux != nil && len(res.Flux.Table) > 0:
		svg = plotFluxTable(res, plotTitle, *width)
	default:
		return fmt.Errorf("artifact has no plottable data")
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(*output, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Plot written to %s\n", *output)
	return nil
}

func plotTimeseries(res *results.Results, title, varsFlag string, width, height int) (string, error) {
	timeVec := res.Data.Timeseries.Time.Downsampled

	var names []string
	if varsFlag != "" {
		for _, name := range strings.Split(varsFlag, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	} else {
		for name := range res.Data.Timeseries.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	p := plotter.NewSVGPlotter(float64(width), float64(height))
	p.SetTitle(title)
	p.SetXLabel("time")
	p.SetYLabel("value")
	for _, name := range names {
		series, ok := res.Data.Timeseries.Variables[name]
		if !ok {
			return "", fmt.Errorf("unknown variable: %s", name)
		}
		p.AddSeries(timeVec, series.Downsampled, name, "")
	}
	return p.Render(), nil
}

func plotFluxTable(res *results.Results, title string, width int) string {
	chart := plotter.NewFluxChart(float64(width))
	chart.SetTitle(title)
	for _, entry := range res.Flux.Table {
		chart.AddBar(entry.Reaction, entry.Flux, entry.AtBound)
	}
	return chart.Render()
}
