package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWorkflowNotFound   = errors.New("workflow not found")
	ErrExecutionNotFound  = errors.New("execution not found")
	ErrExecutionFinished  = errors.New("execution already finished")
	ErrApprovalRejected   = errors.New("approval rejected")
	ErrNotAwaitingApproval = errors.New("task is not awaiting approval")
	ErrInvalidDefinition  = errors.New("invalid workflow definition")
)

// CyclicDependencyError is a definition-time error: the declared dependencies
// do not form a DAG.
type CyclicDependencyError struct {
	From string
	To   string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency from %s to %s would create a cycle", e.From, e.To)
}

// UnknownDependencyError is a definition-time error: a task depends on an id
// that does not exist in the workflow.
type UnknownDependencyError struct {
	TaskID    string
	DependsOn string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %s depends on unknown task %s", e.TaskID, e.DependsOn)
}

// UnknownTaskTypeError is raised at dispatch time when no executor is
// registered for a task's type tag.
type UnknownTaskTypeError struct {
	TaskID string
	Type   string
}

func (e *UnknownTaskTypeError) Error() string {
	return fmt.Sprintf("no executor registered for type %q (task %s)", e.Type, e.TaskID)
}

// InvalidTaskConfigError is raised at dispatch time when an executor rejects
// a task's configuration.
type InvalidTaskConfigError struct {
	TaskID string
	Type   string
	Err    error
}

func (e *InvalidTaskConfigError) Error() string {
	return fmt.Sprintf("invalid config for task %s (type %s): %v", e.TaskID, e.Type, e.Err)
}

func (e *InvalidTaskConfigError) Unwrap() error {
	return e.Err
}

// TaskTimeoutError marks a task whose executor did not return within the
// configured timeout. Executor cancellation is best-effort only.
type TaskTimeoutError struct {
	TaskID  string
	Timeout time.Duration
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s did not complete within %s", e.TaskID, e.Timeout)
}

// ApprovalTimeoutError marks an approval gate that was not resolved within the
// configured wait.
type ApprovalTimeoutError struct {
	TaskID string
	Waited time.Duration
}

func (e *ApprovalTimeoutError) Error() string {
	return fmt.Sprintf("task %s approval not received within %s", e.TaskID, e.Waited)
}

// TaskExecutionError wraps an error raised by an executor.
type TaskExecutionError struct {
	TaskID string
	Err    error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task %s execution failed: %v", e.TaskID, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure. Store failures are surfaced on the
// execution summary without altering the computed workflow status.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsCyclicDependency(err error) bool {
	var target *CyclicDependencyError
	return errors.As(err, &target)
}

func IsUnknownDependency(err error) bool {
	var target *UnknownDependencyError
	return errors.As(err, &target)
}

func IsTaskTimeout(err error) bool {
	var target *TaskTimeoutError
	return errors.As(err, &target)
}

func IsApprovalTimeout(err error) bool {
	var target *ApprovalTimeoutError
	return errors.As(err, &target)
}

func IsStoreError(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
