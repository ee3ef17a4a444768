package ports

import (
	"context"
	"fmt"

	"github.com/eleven-am/cadence/internal/domain"
)

// TaskExecutor is the per-type-tag execution capability. Implementations are
// external collaborators looked up through an ExecutorRegistry at dispatch
// time; the engine never hardcodes task behavior.
type TaskExecutor interface {
	Execute(ctx context.Context, execCtx *domain.ExecutionContext) (*ExecutionResult, error)
	ValidateConfig(config map[string]interface{}) error
}

// ExecutionResult is what an executor hands back. Output is recorded on the
// task's result; Variables are merged into the workflow's variable bindings.
type ExecutionResult struct {
	Output    map[string]interface{} `json:"output,omitempty"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// ExecutorRegistry maps type tags to executor implementations. Each engine
// owns its own registry; there is no ambient global state.
type ExecutorRegistry interface {
	Register(taskType string, executor TaskExecutor) error
	Get(taskType string) (TaskExecutor, error)
	List() []string
}

type ExecutorRegistrationError struct {
	TaskType string
	Reason   string
}

func (e *ExecutorRegistrationError) Error() string {
	return fmt.Sprintf("cannot register executor %q: %s", e.TaskType, e.Reason)
}
