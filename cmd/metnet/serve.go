package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/metnet-xyz/go-metnet/api"
	"github.com/metnet-xyz/go-metnet/store"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "Listen address")
	dbFlag := fs.String("db", "", "History database (default: METNET_DB)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: metnet serve [options]

Serve the run history over HTTP as JSON:
  GET    /api/runs       list runs (?limit=N)
  GET    /api/runs/{id}  one run with its full artifact
  DELETE /api/runs/{id}  drop a run
  GET    /healthz        liveness

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  metnet serve -db runs.db
  metnet serve -db runs.db -addr :9090
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

	srv := api.NewServer(api.WithStore(st))
	slog.Info("serving run history", "addr", *addr, "db", path)
	return http.ListenAndServe(*addr, srv.Mux())
}
