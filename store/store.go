// Package store persists run history. Two implementations share one
// contract: an in-process map for tests and tools, and a SQLite file
// for durable history.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound marks lookups and deletes of unknown run ids.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one persisted run: identity, a summary for listings, and the
// full artifact JSON as payload.
type Run struct {
	ID        string
	Kind      string // solve, simulate, sweep, tea
	Model     string
	Status    string
	Objective float64
	Created   time.Time
	Payload   []byte
}

// NewRun creates a run with a fresh id and timestamp.
func NewRun(kind, model string) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Kind:    kind,
		Model:   model,
		Created: time.Now().UTC(),
	}
}

// Store is the run history boundary.
type Store interface {
	// SaveRun persists a run, replacing any run with the same id.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by id.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs newest first. A non-positive limit
	// returns everything.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// DeleteRun removes a run by id.
	DeleteRun(ctx context.Context, id string) error

	// Close releases the underlying resources.
	Close() error
}

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// SaveRun persists a run, replacing any run with the same id.
func (s *MemoryStore) SaveRun(_ context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("save run: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = cloneRun(run)
	return nil
}

// GetRun retrieves a run by id.
func (s *MemoryStore) GetRun(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	return cloneRun(run), nil
}

// ListRuns returns runs newest first.
func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	runs := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, cloneRun(run))
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Created.Equal(runs[j].Created) {
			return runs[i].Created.After(runs[j].Created)
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteRun removes a run by id.
func (s *MemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func cloneRun(run *Run) *Run {
	c := *run
	if run.Payload != nil {
		c.Payload = append([]byte(nil), run.Payload...)
	}
	return &c
}

var _ Store = (*MemoryStore)(nil)
