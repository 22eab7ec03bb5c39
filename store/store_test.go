package store_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/metnet-xyz/go-metnet/store"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func() store.Store {
		return store.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func() store.Store {
		s, err := store.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		return s
	})
}

func runStoreTests(t *testing.T, newStore func() store.Store) {
	t.Run("SaveAndGet", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		ctx := context.Background()

		run := store.NewRun("solve", "toy")
		run.Status = "optimal"
		run.Objective = 10
		run.Payload = []byte(`{"version":"1.0"}`)

		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := s.GetRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Kind != "solve" {
			t.Errorf("expected kind solve, got %s", got.Kind)
		}
		if got.Model != "toy" {
			t.Errorf("expected model toy, got %s", got.Model)
		}
		if got.Status != "optimal" {
			t.Errorf("expected status optimal, got %s", got.Status)
		}
		if got.Objective != 10 {
			t.Errorf("expected objective 10, got %g", got.Objective)
		}
		if !got.Created.Equal(run.Created) {
			t.Errorf("expected created %v, got %v", run.Created, got.Created)
		}
		if !bytes.Equal(got.Payload, run.Payload) {
			t.Errorf("expected payload %s, got %s", run.Payload, got.Payload)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		_, err := s.GetRun(context.Background(), "no-such-run")
		if !errors.Is(err, store.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got: %v", err)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		ctx := context.Background()

		run := store.NewRun("simulate", "faee")
		run.Status = "running"
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		run.Status = "success"
		run.Objective = 42
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("resave failed: %v", err)
		}

		got, err := s.GetRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != "success" {
			t.Errorf("expected status success, got %s", got.Status)
		}
		if got.Objective != 42 {
			t.Errorf("expected objective 42, got %g", got.Objective)
		}

		runs, err := s.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after resave, got %d", len(runs))
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		ctx := context.Background()

		// Save three runs with increasing timestamps.
		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		var ids []string
		for i := 0; i < 3; i++ {
			run := store.NewRun("solve", "toy")
			run.Created = base.Add(time.Duration(i) * time.Minute)
			if err := s.SaveRun(ctx, run); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			ids = append(ids, run.ID)
		}

		runs, err := s.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		for i, want := range []string{ids[2], ids[1], ids[0]} {
			if runs[i].ID != want {
				t.Errorf("expected run %d to be %s, got %s", i, want, runs[i].ID)
			}
		}

		// Limit keeps only the newest.
		runs, err = s.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
			t.Errorf("expected newest two runs, got %s, %s", runs[0].ID, runs[1].ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore()
		defer s.Close()
		ctx := context.Background()

		run := store.NewRun("sweep", "toy")
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		if err := s.DeleteRun(ctx, run.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := s.GetRun(ctx, run.ID); !errors.Is(err, store.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got: %v", err)
		}
		if err := s.DeleteRun(ctx, run.ID); !errors.Is(err, store.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got: %v", err)
		}
	})

	t.Run("EmptyID", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		err := s.SaveRun(context.Background(), &store.Run{Kind: "solve"})
		if err == nil {
			t.Error("expected error saving run with empty id")
		}
	})
}

func TestSQLiteStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	run := store.NewRun("tea", "default")
	run.Status = "success"
	run.Payload = []byte(`{"msp":0.55}`)
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Reopen the same file and read the run back.
	reopened, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get after reopen failed: %v", err)
	}
	if got.Status != "success" {
		t.Errorf("expected status success, got %s", got.Status)
	}
	if !bytes.Equal(got.Payload, run.Payload) {
		t.Errorf("expected payload %s, got %s", run.Payload, got.Payload)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	run := store.NewRun("solve", "toy")
	run.Payload = []byte("original")
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Mutating the caller's run must not affect the stored copy.
	run.Payload[0] = 'X'
	run.Status = "mutated"

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got.Payload) != "original" {
		t.Errorf("expected payload original, got %s", got.Payload)
	}
	if got.Status != "" {
		t.Errorf("expected empty status, got %s", got.Status)
	}
}
