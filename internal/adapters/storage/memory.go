package storage

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/eleven-am/cadence/internal/domain"
)

// MemoryStore keeps execution snapshots in process memory. It is the default
// store when no data directory is configured, and doubles as the store used
// throughout the test suite. Snapshots round-trip through the same encoding
// as the durable store so both enforce identical serializability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	logger  *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryStore{
		records: make(map[string][]byte),
		logger:  logger.With("component", "memory-store"),
	}
}

func (s *MemoryStore) Save(ctx context.Context, state *domain.WorkflowState) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "save", Err: err}
	}

	data, err := encodeSnapshot(state)
	if err != nil {
		return &domain.StoreError{Op: "save", Err: err}
	}

	s.mu.Lock()
	s.records[state.ExecutionID] = data
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Load(ctx context.Context, executionID string) (*domain.WorkflowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "load", Err: err}
	}

	s.mu.RLock()
	data, exists := s.records[executionID]
	s.mu.RUnlock()

	if !exists {
		return nil, domain.ErrExecutionNotFound
	}

	state, err := decodeSnapshot(data)
	if err != nil {
		return nil, &domain.StoreError{Op: "load", Err: err}
	}

	return state, nil
}

func (s *MemoryStore) List(ctx context.Context, workflowID string) ([]*domain.WorkflowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var states []*domain.WorkflowState
	for _, data := range s.records {
		state, err := decodeSnapshot(data)
		if err != nil {
			continue
		}
		if state.WorkflowID == workflowID {
			states = append(states, state)
		}
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})

	return states, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.records = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}
