package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
	"golang.org/x/sync/errgroup"
)

// scheduler drives one execution through the task state machine:
//
//	PENDING → RUNNING → {COMPLETED, FAILED, SKIPPED, CANCELLED}
//	FAILED  → RETRYING → RUNNING while attempts remain
//	RUNNING → WAITING_APPROVAL → RUNNING once approved
//
// Each scheduling cycle computes the ready set, fans out parallel tasks,
// runs sequential tasks one at a time in topological order, and joins before
// recomputing readiness. The scheduler exclusively owns its WorkflowState;
// everything handed outside is a snapshot.
type scheduler struct {
	def       *domain.WorkflowDefinition
	graph     *ExecutionGraph
	state     *domain.WorkflowState
	registry  ports.ExecutorRegistry
	store     ports.StateStore
	evaluator *ConditionEvaluator
	lifecycle *LifecycleManager
	config    *domain.Config
	logger    *slog.Logger

	mu        sync.Mutex
	approvals map[string]chan bool
	cancelRun context.CancelFunc
	cancelled bool
	storeErr  error
}

func newScheduler(def *domain.WorkflowDefinition, graph *ExecutionGraph, state *domain.WorkflowState, registry ports.ExecutorRegistry, store ports.StateStore, evaluator *ConditionEvaluator, lifecycle *LifecycleManager, config *domain.Config, logger *slog.Logger) *scheduler {
	return &scheduler{
		def:       def,
		graph:     graph,
		state:     state,
		registry:  registry,
		store:     store,
		evaluator: evaluator,
		lifecycle: lifecycle,
		config:    config,
		logger: logger.With("component", "scheduler",
			"workflow_id", state.WorkflowID,
			"execution_id", state.ExecutionID),
		approvals: make(map[string]chan bool),
	}
}

// run executes the workflow to quiescence and returns its summary. It never
// returns an error: failures are recorded on the state and summary.
func (s *scheduler) run(ctx context.Context) domain.ExecutionSummary {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancelRun = cancel
	s.state.Status = domain.WorkflowStatusRunning
	s.mu.Unlock()

	s.logger.Info("execution started", "task_count", s.graph.Size())

	for {
		if s.isCancelled() || runCtx.Err() != nil {
			break
		}

		s.mu.Lock()
		ready := s.graph.Ready(s.state)
		s.mu.Unlock()

		if len(ready) == 0 {
			break
		}

		s.runCycle(runCtx, ready)
	}

	return s.finalize(ctx)
}

// runCycle dispatches one ready set: conditions first, then parallel fan-out
// alongside the sequential lane, then a join before readiness is recomputed.
func (s *scheduler) runCycle(ctx context.Context, ready []*domain.TaskDefinition) {
	var parallel, sequential []*domain.TaskDefinition

	for _, task := range ready {
		proceed, err := s.checkConditions(task)
		if err != nil {
			result := s.beginTask(task)
			s.finishTask(ctx, task, result, nil, &domain.TaskExecutionError{TaskID: task.ID, Err: err})
			continue
		}

		if !proceed {
			s.skipTask(ctx, task)
			continue
		}

		if task.Parallel {
			parallel = append(parallel, task)
		} else {
			sequential = append(sequential, task)
		}
	}

	group := new(errgroup.Group)
	group.SetLimit(s.config.MaxConcurrentTasks)

	for _, task := range parallel {
		task := task
		group.Go(func() error {
			s.runTask(ctx, task)
			return nil
		})
	}

	for _, task := range sequential {
		if s.isCancelled() || ctx.Err() != nil {
			break
		}
		s.runTask(ctx, task)
	}

	group.Wait()
}

func (s *scheduler) checkConditions(task *domain.TaskDefinition) (bool, error) {
	for _, spec := range task.Conditions {
		holds, err := s.evaluator.Evaluate(spec, s.state)
		if err != nil {
			return false, err
		}
		if !holds {
			return false, nil
		}
	}

	return true, nil
}

// runTask takes one task from dispatch to a terminal status, including the
// approval gate and the retry loop. Only this task's continuation is
// suspended during backoff; the rest of the graph proceeds.
func (s *scheduler) runTask(ctx context.Context, task *domain.TaskDefinition) {
	result := s.beginTask(task)

	s.logger.Debug("task started", "task_id", task.ID, "task_type", task.Type)

	if task.ApprovalRequired {
		if err := s.awaitApproval(ctx, task, result); err != nil {
			s.finishTask(ctx, task, result, nil, err)
			return
		}
	}

	executor, err := s.registry.Get(task.Type)
	if err != nil {
		s.finishTask(ctx, task, result, nil, &domain.UnknownTaskTypeError{TaskID: task.ID, Type: task.Type})
		return
	}

	if err := executor.ValidateConfig(task.Config); err != nil {
		s.finishTask(ctx, task, result, nil, &domain.InvalidTaskConfigError{TaskID: task.ID, Type: task.Type, Err: err})
		return
	}

	for {
		output, invokeErr := s.invoke(ctx, executor, task, result)
		if invokeErr == nil {
			s.finishTask(ctx, task, result, output, nil)
			return
		}

		if errors.Is(invokeErr, context.Canceled) || !task.Retry.Eligible(result.RetryCount) {
			s.finishTask(ctx, task, result, nil, invokeErr)
			return
		}

		s.mu.Lock()
		result.Status = domain.TaskStatusRetrying
		result.RetryCount++
		retry := result.RetryCount
		s.mu.Unlock()

		delay := task.Retry.Delay(retry)
		s.logger.Debug("task retry scheduled",
			"task_id", task.ID,
			"retry", retry,
			"delay", delay,
			"error", invokeErr)

		select {
		case <-ctx.Done():
			s.finishTask(ctx, task, result, nil, ctx.Err())
			return
		case <-time.After(delay):
		}

		s.mu.Lock()
		result.Status = domain.TaskStatusRunning
		s.mu.Unlock()
	}
}

// invoke runs the executor under the task's timeout. When the deadline passes
// the scheduler stops waiting and fails the task; the executor goroutine is
// only cancelled best-effort through its context.
func (s *scheduler) invoke(ctx context.Context, executor ports.TaskExecutor, task *domain.TaskDefinition, result *domain.TaskResult) (*ports.ExecutionResult, error) {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = s.config.DefaultTaskTimeout
	}

	execCtx := s.executionContext(task, result)
	taskCtx, cancel := context.WithTimeout(domain.WithExecutionContext(ctx, execCtx), timeout)
	defer cancel()

	type outcome struct {
		output *ports.ExecutionResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		output, err := executor.Execute(taskCtx, execCtx)
		done <- outcome{output: output, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			if errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, &domain.TaskTimeoutError{TaskID: task.ID, Timeout: timeout}
			}
			return nil, &domain.TaskExecutionError{TaskID: task.ID, Err: o.err}
		}
		return o.output, nil
	case <-taskCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TaskTimeoutError{TaskID: task.ID, Timeout: timeout}
	}
}

// awaitApproval suspends only the gated task until an external signal or the
// configured wait elapses. A rejection is terminal: retrying a human "no"
// is meaningless.
func (s *scheduler) awaitApproval(ctx context.Context, task *domain.TaskDefinition, result *domain.TaskResult) error {
	decision := make(chan bool, 1)

	s.mu.Lock()
	result.Status = domain.TaskStatusWaitingApproval
	s.approvals[task.ID] = decision
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.approvals, task.ID)
		s.mu.Unlock()
	}()

	s.logger.Info("task awaiting approval",
		"task_id", task.ID,
		"approval_timeout", s.config.ApprovalTimeout)

	select {
	case approved := <-decision:
		if !approved {
			return &domain.TaskExecutionError{TaskID: task.ID, Err: domain.ErrApprovalRejected}
		}
		s.mu.Lock()
		result.Status = domain.TaskStatusRunning
		s.mu.Unlock()
		return nil
	case <-time.After(s.config.ApprovalTimeout):
		return &domain.ApprovalTimeoutError{TaskID: task.ID, Waited: s.config.ApprovalTimeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// approve resolves a pending approval gate for this execution.
func (s *scheduler) approve(taskID string, approved bool) error {
	s.mu.Lock()
	decision, exists := s.approvals[taskID]
	s.mu.Unlock()

	if !exists {
		return domain.ErrNotAwaitingApproval
	}

	select {
	case decision <- approved:
	default:
	}

	return nil
}

// cancel requests workflow-level cancellation: no new dispatch, best-effort
// interruption of in-flight executors.
func (s *scheduler) cancel() {
	s.mu.Lock()
	s.cancelled = true
	cancelRun := s.cancelRun
	s.mu.Unlock()

	if cancelRun != nil {
		cancelRun()
	}
}

func (s *scheduler) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *scheduler) beginTask(task *domain.TaskDefinition) *domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &domain.TaskResult{
		TaskID:    task.ID,
		Status:    domain.TaskStatusRunning,
		StartedAt: time.Now(),
	}
	s.state.Tasks[task.ID] = result
	s.state.Running[task.ID] = true

	return result
}

func (s *scheduler) skipTask(ctx context.Context, task *domain.TaskDefinition) {
	s.mu.Lock()
	now := time.Now()
	s.state.Tasks[task.ID] = &domain.TaskResult{
		TaskID:      task.ID,
		Status:      domain.TaskStatusSkipped,
		StartedAt:   now,
		CompletedAt: &now,
	}
	s.mu.Unlock()

	s.logger.Debug("task skipped by condition", "task_id", task.ID)

	if s.config.CheckpointEveryTask {
		s.checkpoint(ctx)
	}
}

// finishTask records a task's terminal status and merges declared variable
// updates. Merges apply in completion order across parallel siblings:
// last-writer-wins, the documented race.
func (s *scheduler) finishTask(ctx context.Context, task *domain.TaskDefinition, result *domain.TaskResult, output *ports.ExecutionResult, taskErr error) {
	s.mu.Lock()
	now := time.Now()
	result.CompletedAt = &now
	delete(s.state.Running, task.ID)

	switch {
	case taskErr == nil:
		result.Status = domain.TaskStatusCompleted
		if output != nil {
			result.Output = output.Output
			if err := domain.MergeVariables(s.state.Variables, output.Variables); err != nil {
				result.Status = domain.TaskStatusFailed
				result.Error = err.Error()
				taskErr = &domain.TaskExecutionError{TaskID: task.ID, Err: err}
			}
		}
	case errors.Is(taskErr, context.Canceled) || s.cancelled:
		result.Status = domain.TaskStatusCancelled
		result.Error = "execution cancelled"
	default:
		result.Status = domain.TaskStatusFailed
		result.Error = taskErr.Error()
	}

	failed := result.Status == domain.TaskStatusFailed
	s.mu.Unlock()

	if failed {
		s.logger.Error("task failed",
			"task_id", task.ID,
			"retry_count", result.RetryCount,
			"error", taskErr)

		if s.lifecycle.DispatchFailure(ctx, s.def, s.state, task.ID, taskErr) {
			s.cancel()
		}
	} else {
		s.logger.Debug("task finished",
			"task_id", task.ID,
			"status", result.Status,
			"duration", now.Sub(result.StartedAt))
	}

	if s.config.CheckpointEveryTask {
		s.checkpoint(ctx)
	}
}

// finalize computes the run's terminal status, marks leftovers of a cancelled
// run, and performs the mandatory terminal checkpoint.
func (s *scheduler) finalize(ctx context.Context) domain.ExecutionSummary {
	s.mu.Lock()
	now := time.Now()
	s.state.CompletedAt = &now
	s.state.Running = make(map[string]bool)

	if s.cancelled {
		for _, id := range s.graph.Order() {
			if result, exists := s.state.Tasks[id]; exists {
				if !result.Status.Terminal() {
					result.Status = domain.TaskStatusCancelled
					completedAt := now
					result.CompletedAt = &completedAt
				}
				continue
			}
			s.state.Tasks[id] = &domain.TaskResult{
				TaskID:      id,
				Status:      domain.TaskStatusCancelled,
				StartedAt:   now,
				CompletedAt: &now,
			}
		}
		s.state.Status = domain.WorkflowStatusCancelled
		s.state.Error = "execution cancelled"
	} else {
		completed := true
		firstError := ""
		for _, id := range s.graph.Order() {
			status := s.state.TaskStatusOf(id)
			if status.SatisfiesDependency() {
				continue
			}
			completed = false
			if result, exists := s.state.Tasks[id]; exists && firstError == "" {
				firstError = result.Error
			}
		}

		if completed {
			s.state.Status = domain.WorkflowStatusCompleted
		} else {
			s.state.Status = domain.WorkflowStatusFailed
			if firstError == "" {
				firstError = "one or more tasks did not complete"
			}
			s.state.Error = firstError
		}
	}
	s.mu.Unlock()

	s.checkpoint(context.WithoutCancel(ctx))

	s.mu.Lock()
	summary := domain.SummaryOf(s.state)
	if s.storeErr != nil {
		summary.StoreError = s.storeErr.Error()
	}
	s.mu.Unlock()

	s.logger.Info("execution finished",
		"status", summary.Status,
		"completed_tasks", summary.CompletedTaskCount,
		"duration", summary.Duration)

	return summary
}

// checkpoint persists a snapshot. Store failures are surfaced on the summary
// and never alter the computed workflow status.
func (s *scheduler) checkpoint(ctx context.Context) {
	s.mu.Lock()
	snapshot := s.state.Snapshot()
	s.mu.Unlock()

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.mu.Lock()
		if s.storeErr == nil {
			s.storeErr = &domain.StoreError{Op: "save", Err: err}
		}
		s.mu.Unlock()

		s.logger.Error("failed to persist state snapshot", "error", err)
	}
}

// snapshot returns a copy of the current state for inspection.
func (s *scheduler) snapshot() *domain.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// executionContext builds the read-only view handed to an executor.
func (s *scheduler) executionContext(task *domain.TaskDefinition, result *domain.TaskResult) *domain.ExecutionContext {
	s.mu.Lock()
	snap := s.state.Snapshot()
	retryCount := result.RetryCount
	s.mu.Unlock()

	outputs := make(map[string]map[string]interface{})
	for id, taskResult := range snap.Tasks {
		if len(taskResult.Output) > 0 {
			outputs[id] = taskResult.Output
		}
	}

	return &domain.ExecutionContext{
		WorkflowID:  snap.WorkflowID,
		ExecutionID: snap.ExecutionID,
		TaskID:      task.ID,
		TaskName:    task.Name,
		Config:      task.Config,
		Variables:   snap.Variables,
		Outputs:     outputs,
		RetryCount:  retryCount,
		StartedAt:   result.StartedAt,
	}
}
