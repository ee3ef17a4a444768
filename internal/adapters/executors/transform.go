package executors

import (
	"context"
	"fmt"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// TransformExecutor publishes configured values into workflow variables and
// copies selected variables into its output. Config:
//
//	{"set": {"region": "eu-west-1"}, "export": ["region", "build_id"]}
//
// "set" entries are merged into the workflow's variables; "export" names are
// read from the merged view and recorded as the task's output.
type TransformExecutor struct{}

func NewTransformExecutor() *TransformExecutor {
	return &TransformExecutor{}
}

func (e *TransformExecutor) ValidateConfig(config map[string]interface{}) error {
	if raw, exists := config["set"]; exists {
		if _, ok := raw.(map[string]interface{}); !ok {
			return fmt.Errorf("set must be an object, got %T", raw)
		}
	}

	if raw, exists := config["export"]; exists {
		names, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("export must be a list of variable names, got %T", raw)
		}
		for _, name := range names {
			if _, ok := name.(string); !ok {
				return fmt.Errorf("export entries must be strings, got %T", name)
			}
		}
	}

	return nil
}

func (e *TransformExecutor) Execute(ctx context.Context, execCtx *domain.ExecutionContext) (*ports.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ports.ExecutionResult{
		Output:    make(map[string]interface{}),
		Variables: make(map[string]interface{}),
	}

	if raw, exists := execCtx.Config["set"]; exists {
		if updates, ok := raw.(map[string]interface{}); ok {
			for key, value := range updates {
				result.Variables[key] = value
			}
		}
	}

	if raw, exists := execCtx.Config["export"]; exists {
		names, _ := raw.([]interface{})
		for _, entry := range names {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if value, pending := result.Variables[name]; pending {
				result.Output[name] = value
				continue
			}
			if value, bound := execCtx.Variables[name]; bound {
				result.Output[name] = value
			}
		}
	}

	return result, nil
}
