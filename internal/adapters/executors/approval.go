package executors

import (
	"context"
	"fmt"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// ApprovalExecutor is the body of an approval-gated task. The gate itself is
// enforced by the scheduler before the executor runs, so by the time Execute
// is called the approval has already been granted; the executor just records
// that fact, with an optional message from config.
type ApprovalExecutor struct{}

func NewApprovalExecutor() *ApprovalExecutor {
	return &ApprovalExecutor{}
}

func (e *ApprovalExecutor) ValidateConfig(config map[string]interface{}) error {
	if raw, exists := config["message"]; exists {
		if _, ok := raw.(string); !ok {
			return fmt.Errorf("message must be a string, got %T", raw)
		}
	}
	return nil
}

func (e *ApprovalExecutor) Execute(ctx context.Context, execCtx *domain.ExecutionContext) (*ports.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output := map[string]interface{}{
		"approved": true,
	}
	if message, ok := execCtx.Config["message"].(string); ok {
		output["message"] = message
	}

	return &ports.ExecutionResult{Output: output}, nil
}
