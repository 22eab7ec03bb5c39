package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metnet-xyz/go-metnet/api"
	"github.com/metnet-xyz/go-metnet/store"
)

// seedStore fills a memory store with three runs, oldest first.
func seedStore(t *testing.T) (store.Store, []string) {
	t.Helper()
	st := store.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i, kind := range []string{"solve", "simulate", "tea"} {
		run := store.NewRun(kind, "toy")
		run.Status = "optimal"
		run.Objective = float64(10 * (i + 1))
		run.Created = base.Add(time.Duration(i) * time.Minute)
		run.Payload = []byte(`{"version":"1.0"}`)
		if err := st.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
		ids = append(ids, run.ID)
	}
	return st, ids
}

func TestListRuns(t *testing.T) {
	st, ids := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var list api.RunList
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(list.Runs))
	}
	// Newest first
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if list.Runs[i].ID != want {
			t.Errorf("expected run %d to be %s, got %s", i, want, list.Runs[i].ID)
		}
	}
	// Listings omit the artifact payload
	if list.Runs[0].Results != nil {
		t.Error("expected listing to omit results payload")
	}
}

func TestListRunsLimit(t *testing.T) {
	st, ids := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var list api.RunList
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(list.Runs))
	}
	if list.Runs[0].ID != ids[2] {
		t.Errorf("expected newest run %s, got %s", ids[2], list.Runs[0].ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs?limit=bogus", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad limit, got %d", w.Code)
	}
}

func TestGetRun(t *testing.T) {
	st, ids := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+ids[0], nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var run api.RunSummary
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if run.ID != ids[0] {
		t.Errorf("expected id %s, got %s", ids[0], run.ID)
	}
	if run.Kind != "solve" {
		t.Errorf("expected kind solve, got %s", run.Kind)
	}
	if run.Objective != 10 {
		t.Errorf("expected objective 10, got %g", run.Objective)
	}
	if string(run.Results) != `{"version":"1.0"}` {
		t.Errorf("expected results payload, got %s", run.Results)
	}
}

func TestGetRunNotFound(t *testing.T) {
	st, _ := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	req := httptest.NewRequest(http.MethodGet, "/api/runs/no-such-run", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestDeleteRun(t *testing.T) {
	st, ids := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	req := httptest.NewRequest(http.MethodDelete, "/api/runs/"+ids[1], nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	// The run is gone
	req = httptest.NewRequest(http.MethodGet, "/api/runs/"+ids[1], nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}

	// Deleting again reports not found
	req = httptest.NewRequest(http.MethodDelete, "/api/runs/"+ids[1], nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	mux := api.NewServer().Mux()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	st, ids := seedStore(t)
	mux := api.NewServer(api.WithStore(st)).Mux()

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/runs"},
		{http.MethodPost, "/api/runs/" + ids[0]},
		{http.MethodPost, "/healthz"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status 405, got %d", tc.method, tc.path, w.Code)
		}
	}
}
