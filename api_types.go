package cadence

import (
	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// Definition types.
type (
	WorkflowDefinition = domain.WorkflowDefinition
	TaskDefinition     = domain.TaskDefinition
	ConditionSpec      = domain.ConditionSpec
	ConditionType      = domain.ConditionType
	RetrySpec          = domain.RetrySpec
	ErrorReaction      = domain.ErrorReaction
)

const (
	ConditionExpression = domain.ConditionExpression
	ConditionTaskStatus = domain.ConditionTaskStatus
)

// State and result types.
type (
	WorkflowState    = domain.WorkflowState
	WorkflowStatus   = domain.WorkflowStatus
	TaskResult       = domain.TaskResult
	TaskStatus       = domain.TaskStatus
	ExecutionSummary = domain.ExecutionSummary
	ExecutionContext = domain.ExecutionContext
)

const (
	TaskStatusPending         = domain.TaskStatusPending
	TaskStatusRunning         = domain.TaskStatusRunning
	TaskStatusWaitingApproval = domain.TaskStatusWaitingApproval
	TaskStatusRetrying        = domain.TaskStatusRetrying
	TaskStatusCompleted       = domain.TaskStatusCompleted
	TaskStatusFailed          = domain.TaskStatusFailed
	TaskStatusSkipped         = domain.TaskStatusSkipped
	TaskStatusCancelled       = domain.TaskStatusCancelled

	WorkflowStatusPending   = domain.WorkflowStatusPending
	WorkflowStatusRunning   = domain.WorkflowStatusRunning
	WorkflowStatusCompleted = domain.WorkflowStatusCompleted
	WorkflowStatusFailed    = domain.WorkflowStatusFailed
	WorkflowStatusCancelled = domain.WorkflowStatusCancelled
)

// Extension points.
type (
	TaskExecutor    = ports.TaskExecutor
	ExecutionResult = ports.ExecutionResult
	ErrorHandler    = ports.ErrorHandler
	ErrorEvent      = ports.ErrorEvent
	Directive       = ports.Directive
	StateStore      = ports.StateStore
)

const (
	DirectiveContinue       = ports.DirectiveContinue
	DirectiveCancelWorkflow = ports.DirectiveCancelWorkflow
)

// Errors.
var (
	ErrWorkflowNotFound    = domain.ErrWorkflowNotFound
	ErrExecutionNotFound   = domain.ErrExecutionNotFound
	ErrExecutionFinished   = domain.ErrExecutionFinished
	ErrApprovalRejected    = domain.ErrApprovalRejected
	ErrNotAwaitingApproval = domain.ErrNotAwaitingApproval
	ErrInvalidDefinition   = domain.ErrInvalidDefinition
)

type (
	CyclicDependencyError  = domain.CyclicDependencyError
	UnknownDependencyError = domain.UnknownDependencyError
	UnknownTaskTypeError   = domain.UnknownTaskTypeError
	InvalidTaskConfigError = domain.InvalidTaskConfigError
	TaskTimeoutError       = domain.TaskTimeoutError
	ApprovalTimeoutError   = domain.ApprovalTimeoutError
	TaskExecutionError     = domain.TaskExecutionError
	StoreError             = domain.StoreError
)

// Error predicates.
var (
	IsCyclicDependency  = domain.IsCyclicDependency
	IsUnknownDependency = domain.IsUnknownDependency
	IsTaskTimeout       = domain.IsTaskTimeout
	IsApprovalTimeout   = domain.IsApprovalTimeout
	IsStoreError        = domain.IsStoreError
)
