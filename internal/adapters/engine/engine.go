package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
	"github.com/google/uuid"
)

// Engine is the orchestration entry point: it holds loaded workflow
// definitions, drives executions through schedulers, and answers inspection
// queries for both in-flight and persisted runs.
type Engine struct {
	config    *domain.Config
	registry  ports.ExecutorRegistry
	store     ports.StateStore
	builder   *GraphBuilder
	evaluator *ConditionEvaluator
	lifecycle *LifecycleManager
	logger    *slog.Logger

	mu          sync.RWMutex
	definitions map[string]*loadedWorkflow
	active      map[string]*scheduler
}

type loadedWorkflow struct {
	def   *domain.WorkflowDefinition
	graph *ExecutionGraph
}

func NewEngine(config *domain.Config, registry ports.ExecutorRegistry, store ports.StateStore) *Engine {
	config = config.Normalized()
	logger := config.Logger.With("component", "engine")

	return &Engine{
		config:      config,
		registry:    registry,
		store:       store,
		builder:     NewGraphBuilder(config.Logger),
		evaluator:   NewConditionEvaluator(config.Logger),
		lifecycle:   NewLifecycleManager(config.Logger, config.HandlerTimeout),
		logger:      logger,
		definitions: make(map[string]*loadedWorkflow),
		active:      make(map[string]*scheduler),
	}
}

// RegisterExecutor binds a task type tag to its executor.
func (e *Engine) RegisterExecutor(taskType string, executor ports.TaskExecutor) error {
	return e.registry.Register(taskType, executor)
}

// RegisterErrorHandler binds a reaction type from workflow on_error blocks to
// its handler.
func (e *Engine) RegisterErrorHandler(reactionType string, handler ports.ErrorHandler) error {
	return e.lifecycle.RegisterHandler(reactionType, handler)
}

// LoadDefinition validates a workflow definition, builds its execution graph,
// and stores it for execution. Loading again under the same id replaces the
// previous definition; in-flight executions keep the graph they started with.
func (e *Engine) LoadDefinition(def *domain.WorkflowDefinition) (string, error) {
	if def == nil {
		return "", domain.ErrInvalidDefinition
	}
	if def.ID == "" {
		return "", fmt.Errorf("%w: workflow has no id", domain.ErrInvalidDefinition)
	}

	graph, err := e.builder.Build(def)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.definitions[def.ID] = &loadedWorkflow{def: def, graph: graph}
	e.mu.Unlock()

	e.logger.Info("workflow definition loaded",
		"workflow_id", def.ID,
		"workflow_name", def.Name,
		"version", def.Version,
		"task_count", len(def.Tasks))

	return def.ID, nil
}

// Execute runs a loaded workflow synchronously and returns its summary.
// Execute is total: an unknown workflow id or any runtime failure produces a
// FAILED summary, never a panic or error return.
func (e *Engine) Execute(ctx context.Context, workflowID string, variables map[string]interface{}) domain.ExecutionSummary {
	executionID := uuid.New().String()

	e.mu.RLock()
	loaded, exists := e.definitions[workflowID]
	e.mu.RUnlock()

	if !exists {
		e.logger.Error("execute requested for unknown workflow", "workflow_id", workflowID)
		return domain.ExecutionSummary{
			ExecutionID: executionID,
			WorkflowID:  workflowID,
			Status:      domain.WorkflowStatusFailed,
			Error:       domain.ErrWorkflowNotFound.Error(),
		}
	}

	merged, err := domain.OverlayVariables(loaded.def.Variables, variables)
	if err != nil {
		return domain.ExecutionSummary{
			ExecutionID: executionID,
			WorkflowID:  workflowID,
			Status:      domain.WorkflowStatusFailed,
			Error:       err.Error(),
		}
	}

	state := domain.NewWorkflowState(workflowID, executionID, merged)
	run := newScheduler(loaded.def, loaded.graph, state, e.registry, e.store, e.evaluator, e.lifecycle, e.config, e.config.Logger)

	e.mu.Lock()
	e.active[executionID] = run
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, executionID)
		e.mu.Unlock()
	}()

	return run.run(ctx)
}

// GetExecutionStatus returns a snapshot of an execution's state, live when the
// run is in flight, otherwise from the state store.
func (e *Engine) GetExecutionStatus(ctx context.Context, executionID string) (*domain.WorkflowState, error) {
	e.mu.RLock()
	run, inFlight := e.active[executionID]
	e.mu.RUnlock()

	if inFlight {
		return run.snapshot(), nil
	}

	return e.store.Load(ctx, executionID)
}

// ListExecutions returns summaries of every known execution of a workflow,
// most recent first. In-flight runs shadow their persisted checkpoints.
func (e *Engine) ListExecutions(ctx context.Context, workflowID string) ([]domain.ExecutionSummary, error) {
	stored, err := e.store.List(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	live := make(map[string]*domain.WorkflowState)
	for executionID, run := range e.active {
		snap := run.snapshot()
		if snap.WorkflowID == workflowID {
			live[executionID] = snap
		}
	}
	e.mu.RUnlock()

	states := make([]*domain.WorkflowState, 0, len(stored)+len(live))
	for _, state := range stored {
		if _, shadowed := live[state.ExecutionID]; shadowed {
			continue
		}
		states = append(states, state)
	}
	for _, state := range live {
		states = append(states, state)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})

	summaries := make([]domain.ExecutionSummary, 0, len(states))
	for _, state := range states {
		summaries = append(summaries, domain.SummaryOf(state))
	}

	return summaries, nil
}

// Approve resolves a pending approval gate on an in-flight execution. A false
// decision rejects the gate and fails the task.
func (e *Engine) Approve(executionID, taskID string, approved bool) error {
	e.mu.RLock()
	run, inFlight := e.active[executionID]
	e.mu.RUnlock()

	if !inFlight {
		return domain.ErrExecutionNotFound
	}

	if err := run.approve(taskID, approved); err != nil {
		return err
	}

	e.logger.Info("approval decision recorded",
		"execution_id", executionID,
		"task_id", taskID,
		"approved", approved)

	return nil
}

// CancelExecution requests cancellation of an in-flight execution. Already
// finished executions report ErrExecutionFinished.
func (e *Engine) CancelExecution(ctx context.Context, executionID string) error {
	e.mu.RLock()
	run, inFlight := e.active[executionID]
	e.mu.RUnlock()

	if inFlight {
		run.cancel()
		e.logger.Info("execution cancellation requested", "execution_id", executionID)
		return nil
	}

	state, err := e.store.Load(ctx, executionID)
	if err != nil {
		return err
	}
	if state.Status == domain.WorkflowStatusCompleted ||
		state.Status == domain.WorkflowStatusFailed ||
		state.Status == domain.WorkflowStatusCancelled {
		return domain.ErrExecutionFinished
	}

	return domain.ErrExecutionNotFound
}

// ListWorkflows returns the ids of all loaded definitions, sorted.
func (e *Engine) ListWorkflows() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.definitions))
	for id := range e.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Close cancels any in-flight executions, waits briefly for them to settle,
// and closes the state store.
func (e *Engine) Close() error {
	e.mu.RLock()
	running := make([]*scheduler, 0, len(e.active))
	for _, run := range e.active {
		running = append(running, run)
	}
	e.mu.RUnlock()

	for _, run := range running {
		run.cancel()
	}

	deadline := time.After(5 * time.Second)
	for len(running) > 0 {
		e.mu.RLock()
		remaining := len(e.active)
		e.mu.RUnlock()
		if remaining == 0 {
			break
		}

		select {
		case <-deadline:
			e.logger.Warn("closing engine with executions still settling", "count", remaining)
			running = nil
		case <-time.After(10 * time.Millisecond):
		}
	}

	return e.store.Close()
}
