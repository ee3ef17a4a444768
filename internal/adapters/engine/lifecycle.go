package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// LifecycleManager dispatches a workflow's configured error reactions to the
// handlers registered for their types. Handlers run with a bounded timeout;
// a handler may direct the engine to cancel the whole execution.
type LifecycleManager struct {
	handlers       map[string]ports.ErrorHandler
	handlerTimeout time.Duration
	logger         *slog.Logger
	mu             sync.RWMutex
}

func NewLifecycleManager(logger *slog.Logger, handlerTimeout time.Duration) *LifecycleManager {
	if logger == nil {
		logger = slog.Default()
	}
	if handlerTimeout <= 0 {
		handlerTimeout = 30 * time.Second
	}

	return &LifecycleManager{
		handlers:       make(map[string]ports.ErrorHandler),
		handlerTimeout: handlerTimeout,
		logger:         logger.With("component", "lifecycle-manager"),
	}
}

func (lm *LifecycleManager) RegisterHandler(reactionType string, handler ports.ErrorHandler) error {
	if reactionType == "" || handler == nil {
		return domain.ErrInvalidDefinition
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.handlers[reactionType] = handler
	lm.logger.Debug("error handler registered",
		"reaction_type", reactionType,
		"total_handlers", len(lm.handlers))

	return nil
}

// DispatchFailure runs every configured reaction for a terminal task failure
// and reports whether any handler requested full cancellation. Handler errors
// are logged, never propagated: reactions must not change the run's computed
// status.
func (lm *LifecycleManager) DispatchFailure(ctx context.Context, def *domain.WorkflowDefinition, state *domain.WorkflowState, taskID string, taskErr error) bool {
	if len(def.OnError) == 0 {
		return false
	}

	lm.mu.RLock()
	handlers := make(map[string]ports.ErrorHandler, len(lm.handlers))
	for reactionType, handler := range lm.handlers {
		handlers[reactionType] = handler
	}
	lm.mu.RUnlock()

	cancelRequested := false
	for _, reaction := range def.OnError {
		handler, exists := handlers[reaction.Type]
		if !exists {
			lm.logger.Warn("no handler registered for error reaction",
				"workflow", def.Name,
				"execution_id", state.ExecutionID,
				"reaction_type", reaction.Type)
			continue
		}

		event := ports.ErrorEvent{
			WorkflowName: def.Name,
			ExecutionID:  state.ExecutionID,
			TaskID:       taskID,
			Err:          taskErr,
			Reaction:     reaction,
		}

		handlerCtx, cancel := context.WithTimeout(ctx, lm.handlerTimeout)
		directive, err := handler.Handle(handlerCtx, event)
		cancel()

		if err != nil {
			lm.logger.Error("error handler failed",
				"workflow", def.Name,
				"execution_id", state.ExecutionID,
				"reaction_type", reaction.Type,
				"error", err)
			continue
		}

		if directive == ports.DirectiveCancelWorkflow {
			lm.logger.Info("error handler requested workflow cancellation",
				"workflow", def.Name,
				"execution_id", state.ExecutionID,
				"reaction_type", reaction.Type)
			cancelRequested = true
		}
	}

	return cancelRequested
}
