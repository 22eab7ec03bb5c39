package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/metnet-xyz/go-metnet/prettylog"
	"github.com/metnet-xyz/go-metnet/results"
)

func main() {
	// A .env file is optional; real environment variables win over it.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(prettylog.NewHandler(os.Stderr, prettylog.Options{
		SlogOpts: slog.HandlerOptions{Level: prettylog.Level(os.Getenv("METNET_LOG"))},
	})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "solve":
		if err := solve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "balance":
		if err := checkBalance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "knockout":
		if err := knockout(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sweep":
		if err := sweep(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "tea":
		if err := teaMenu(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := export(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "plot":
		if err := plot(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "history":
		if err := history(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("metnet version " + results.ToolVersion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`metnet - metabolic network analysis and pathway simulation tool

Usage:
  metnet <command> [options]

Commands:
  solve      Run flux balance analysis on a model
  balance    Check mass and charge conservation of every reaction
  simulate   Integrate a gene circuit ODE model
  knockout   Rank single-reaction knockouts by objective impact
  sweep      Sweep a flux bound or a circuit parameter
  tea        Interactive bioreactor and techno-economic analysis
  export     Write a model as SBML or JSON
  plot       Generate an SVG plot from a results artifact
  history    List stored runs
  serve      Serve stored runs over HTTP
  help       Show this help message
  version    Show version information

Examples:
  # Solve FBA and keep the artifact
  metnet solve -model ecoli_core.json -out results.json

  # Check conservation
  metnet balance -model ecoli_core.json

  # Simulate the FAEE circuit and plot it
  metnet simulate -circuit faee -plot faee.svg

  # Screen knockouts in parallel
  metnet knockout -model ecoli_core.json -workers 8

  # Interactive plant economics
  metnet tea

Environment:
  METNET_DB    Default history database (overridden by -db)
  METNET_LOG   Log level: debug, info, warn, error

For command-specific help, run:
  metnet <command> -h`)
}
