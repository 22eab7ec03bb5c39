package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/metnet-xyz/go-metnet/circuit"
	"github.com/metnet-xyz/go-metnet/fba"
	"github.com/metnet-xyz/go-metnet/metnet"
	"github.com/metnet-xyz/go-metnet/parser"
	"github.com/metnet-xyz/go-metnet/results"
	"github.com/metnet-xyz/go-metnet/store"
)

// loadModel reads a network model from a JSON file. The returned
// objective is the one embedded in the model, which may be nil.
func loadModel(path string) (*metnet.Network, *fba.Objective, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read model: %w", err)
	}
	net, objective, err := parser.FromJSON(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse model: %w", err)
	}
	return net, objective, nil
}

// resolveObjective picks the objective for a solve: the -objective flag
// wins, then the model's own objective.
func resolveObjective(net *metnet.Network, fromModel *fba.Objective, override string) (*fba.Objective, error) {
	if override != "" {
		if _, err := net.GetReaction(override); err != nil {
			return nil, fmt.Errorf("objective: %w", err)
		}
		return fba.Maximize(override), nil
	}
	if fromModel != nil {
		return fromModel, nil
	}
	return nil, fmt.Errorf("model has no objective; pass -objective <reaction>")
}

// loadCircuit resolves the -circuit flag: a builtin name, or a path to
// a parameters YAML applied over the FAEE circuit.
func loadCircuit(name string) (*circuit.Model, error) {
	switch name {
	case "faee":
		return circuit.FAEE(), nil
	case "alkane":
		return circuit.Alkane(), nil
	}
	params, err := circuit.LoadParams(name)
	if err != nil {
		return nil, err
	}
	return circuit.FAEE().WithParams(params), nil
}

// historyPath resolves the history database path: the -db flag wins,
// then METNET_DB. Empty means no history.
func historyPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("METNET_DB")
}

// saveRun records an artifact in the history database. Persistence
// failures are logged rather than fatal: the primary output exists.
func saveRun(path, kind string, res *results.Results, objective float64) {
	if path == "" {
		return
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		slog.Error("open history database", "path", path, "error", err)
		return
	}
	defer st.Close()

	payload, err := results.ToJSON(res)
	if err != nil {
		slog.Error("encode run", "error", err)
		return
	}
	run := &store.Run{
		ID:        res.Metadata.ID,
		Kind:      kind,
		Model:     res.Model.Name,
		Status:    res.Metadata.Status,
		Objective: objective,
		Created:   res.Metadata.Timestamp,
		Payload:   payload,
	}
	if err := st.SaveRun(context.Background(), run); err != nil {
		slog.Error("save run", "id", run.ID, "error", err)
		return
	}
	slog.Info("run saved", "id", run.ID, "kind", kind, "db", path)
}
