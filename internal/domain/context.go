package domain

import (
	"context"
	"time"
)

// ExecutionContext carries everything an executor may read about the task it
// is running. Variables and Outputs are snapshot copies; executors report
// changes through their result, never by mutating the context.
type ExecutionContext struct {
	WorkflowID  string
	ExecutionID string
	TaskID      string
	TaskName    string
	Config      map[string]interface{}
	Variables   map[string]interface{}
	Outputs     map[string]map[string]interface{}
	RetryCount  int
	StartedAt   time.Time
}

type executionContextKey struct{}

func WithExecutionContext(ctx context.Context, execCtx *ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, execCtx)
}

func GetExecutionContext(ctx context.Context) (*ExecutionContext, bool) {
	execCtx, ok := ctx.Value(executionContextKey{}).(*ExecutionContext)
	return execCtx, ok
}
