package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/metnet-xyz/go-metnet/store"
)

func history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbFlag := fs.String("db", "", "History database (default: METNET_DB)")
	limit := fs.Int("n", 10, "Number of runs to list (0 lists all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet history [options]

List stored runs, newest first. Runs are recorded whenever a command
is given a history database via -db or METNET_DB.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Last ten runs
  metnet history -db runs.db

  # Everything
  METNET_DB=runs.db metnet history -n 0
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	path := historyPath(*dbFlag)
	if path == "" {
		return fmt.Errorf("no history database; pass -db or set METNET_DB")
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-10s %-10s %-18s %-12s %12s  %s\n",
		"ID", "KIND", "MODEL", "STATUS", "OBJECTIVE", "CREATED")
	for _, run := range runs {
		fmt.Printf("%-10s %-10s %-18s %-12s %12.6g  %s\n",
			shortID(run.ID), run.Kind, run.Model, run.Status, run.Objective,
			run.Created.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// shortID truncates a UUID to its first block for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
