package ports

import (
	"context"

	"github.com/eleven-am/cadence/internal/domain"
)

// StateStore persists read-only workflow state snapshots. The engine saves at
// minimum when a run reaches terminal status, optionally after every task
// completion. Stores never mutate the snapshots they receive.
type StateStore interface {
	Save(ctx context.Context, state *domain.WorkflowState) error
	Load(ctx context.Context, executionID string) (*domain.WorkflowState, error)
	List(ctx context.Context, workflowID string) ([]*domain.WorkflowState, error)
	Close() error
}
