package executors

import (
	"context"
	"fmt"
	"time"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// WaitExecutor pauses for a configured duration, respecting cancellation and
// the task timeout. Config: {"duration": "2s"} or {"duration_ms": 250}.
type WaitExecutor struct{}

func NewWaitExecutor() *WaitExecutor {
	return &WaitExecutor{}
}

func (e *WaitExecutor) ValidateConfig(config map[string]interface{}) error {
	_, err := waitDuration(config)
	return err
}

func (e *WaitExecutor) Execute(ctx context.Context, execCtx *domain.ExecutionContext) (*ports.ExecutionResult, error) {
	duration, err := waitDuration(execCtx.Config)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(duration):
	}

	return &ports.ExecutionResult{
		Output: map[string]interface{}{
			"waited": duration.String(),
		},
	}, nil
}

func waitDuration(config map[string]interface{}) (time.Duration, error) {
	if raw, exists := config["duration"]; exists {
		text, ok := raw.(string)
		if !ok {
			return 0, fmt.Errorf("duration must be a string, got %T", raw)
		}
		duration, err := time.ParseDuration(text)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", text, err)
		}
		if duration < 0 {
			return 0, fmt.Errorf("duration must not be negative")
		}
		return duration, nil
	}

	if raw, exists := config["duration_ms"]; exists {
		switch value := raw.(type) {
		case float64:
			if value < 0 {
				return 0, fmt.Errorf("duration_ms must not be negative")
			}
			return time.Duration(value) * time.Millisecond, nil
		case int:
			if value < 0 {
				return 0, fmt.Errorf("duration_ms must not be negative")
			}
			return time.Duration(value) * time.Millisecond, nil
		default:
			return 0, fmt.Errorf("duration_ms must be a number, got %T", raw)
		}
	}

	return 0, fmt.Errorf("wait task requires a duration or duration_ms config key")
}
