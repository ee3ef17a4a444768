package domain

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending         TaskStatus = "pending"
	TaskStatusRunning         TaskStatus = "running"
	TaskStatusWaitingApproval TaskStatus = "waiting_approval"
	TaskStatusRetrying        TaskStatus = "retrying"
	TaskStatusCompleted       TaskStatus = "completed"
	TaskStatusFailed          TaskStatus = "failed"
	TaskStatusSkipped         TaskStatus = "skipped"
	TaskStatusCancelled       TaskStatus = "cancelled"
)

// Terminal reports whether the status can no longer change within a run.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusSkipped, TaskStatusCancelled:
		return true
	}
	return false
}

// SatisfiesDependency reports whether a predecessor in this status unblocks
// its successors. FAILED and CANCELLED predecessors permanently block.
func (s TaskStatus) SatisfiesDependency() bool {
	return s == TaskStatusCompleted || s == TaskStatusSkipped
}

type WorkflowStatus string

const (
	WorkflowStatusPending   WorkflowStatus = "pending"
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// TaskResult records one task's progress through its lifecycle. It is created
// when the task begins and is immutable once the status is terminal.
type TaskResult struct {
	TaskID      string                 `json:"task_id"`
	Status      TaskStatus             `json:"status"`
	Output      map[string]interface{} `json:"output,omitempty"`
	Error       string                 `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	RetryCount  int                    `json:"retry_count"`
}

// WorkflowState is the mutable record of one execution's progress. It is
// exclusively owned by the scheduler driving that run; everything handed
// outside the scheduler is a snapshot copy.
type WorkflowState struct {
	WorkflowID  string                 `json:"workflow_id"`
	ExecutionID string                 `json:"execution_id"`
	Status      WorkflowStatus         `json:"status"`
	Running     map[string]bool        `json:"running,omitempty"`
	Tasks       map[string]*TaskResult `json:"tasks"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

func NewWorkflowState(workflowID, executionID string, variables map[string]interface{}) *WorkflowState {
	return &WorkflowState{
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		Status:      WorkflowStatusPending,
		Running:     make(map[string]bool),
		Tasks:       make(map[string]*TaskResult),
		Variables:   variables,
		StartedAt:   time.Now(),
	}
}

// TaskStatusOf returns the current status of a task, PENDING if it has not
// produced a result yet.
func (ws *WorkflowState) TaskStatusOf(taskID string) TaskStatus {
	if result, ok := ws.Tasks[taskID]; ok {
		return result.Status
	}
	return TaskStatusPending
}

// Snapshot returns a deep copy safe to hand outside the owning scheduler.
func (ws *WorkflowState) Snapshot() *WorkflowState {
	copied := *ws
	copied.Running = make(map[string]bool, len(ws.Running))
	for id := range ws.Running {
		copied.Running[id] = true
	}
	copied.Tasks = make(map[string]*TaskResult, len(ws.Tasks))
	for id, result := range ws.Tasks {
		r := *result
		copied.Tasks[id] = &r
	}
	copied.Variables = copyValues(ws.Variables)
	return &copied
}

func copyValues(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]interface{}); ok {
			dst[k] = copyValues(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}

// ExecutionSummary is the structured result of Execute. Execute is total: even
// validation failures produce a zero-task FAILED summary instead of an error.
type ExecutionSummary struct {
	ExecutionID        string                            `json:"execution_id"`
	WorkflowID         string                            `json:"workflow_id"`
	Status             WorkflowStatus                    `json:"status"`
	Duration           time.Duration                     `json:"duration"`
	CompletedTaskCount int                               `json:"completed_task_count"`
	Outputs            map[string]map[string]interface{} `json:"outputs,omitempty"`
	Error              string                            `json:"error,omitempty"`
	StoreError         string                            `json:"store_error,omitempty"`
}

// SummaryOf condenses a workflow state into its execution summary.
func SummaryOf(state *WorkflowState) ExecutionSummary {
	summary := ExecutionSummary{
		ExecutionID: state.ExecutionID,
		WorkflowID:  state.WorkflowID,
		Status:      state.Status,
		Error:       state.Error,
		Outputs:     make(map[string]map[string]interface{}),
	}

	end := time.Now()
	if state.CompletedAt != nil {
		end = *state.CompletedAt
	}
	summary.Duration = end.Sub(state.StartedAt)

	for id, result := range state.Tasks {
		if result.Status == TaskStatusCompleted {
			summary.CompletedTaskCount++
		}
		if len(result.Output) > 0 {
			summary.Outputs[id] = result.Output
		}
	}

	return summary
}
