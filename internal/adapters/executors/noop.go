package executors

import (
	"context"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// NoopExecutor succeeds immediately without side effects. Useful as the body
// of approval gates and as a join point for fan-in dependencies.
type NoopExecutor struct{}

func NewNoopExecutor() *NoopExecutor {
	return &NoopExecutor{}
}

func (e *NoopExecutor) ValidateConfig(config map[string]interface{}) error {
	return nil
}

func (e *NoopExecutor) Execute(ctx context.Context, execCtx *domain.ExecutionContext) (*ports.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &ports.ExecutionResult{}, nil
}
