package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/cadence/internal/domain"
)

func conditionState() *domain.WorkflowState {
	state := domain.NewWorkflowState("wf", "exec", map[string]interface{}{
		"env":     "production",
		"retries": float64(3),
		"limits": map[string]interface{}{
			"max_rows": float64(1000),
		},
	})
	state.Tasks["fetch"] = &domain.TaskResult{
		TaskID: "fetch",
		Status: domain.TaskStatusCompleted,
		Output: map[string]interface{}{
			"rows": float64(42),
			"ok":   true,
		},
	}
	return state
}

func TestEvaluateExpressionConditions(t *testing.T) {
	evaluator := NewConditionEvaluator(nil)
	state := conditionState()

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{"variable equality", `variables.env == "production"`, true},
		{"variable inequality", `variables.env != "production"`, false},
		{"numeric comparison", `variables.retries >= 3`, true},
		{"nested variable path", `variables.limits.max_rows > 500`, true},
		{"task output lookup", `tasks.fetch.rows > 40`, true},
		{"boolean task output", `tasks.fetch.ok == true`, true},
		{"compound expression", `variables.retries > 1 && tasks.fetch.rows < 100`, true},
		{"missing variable never equals a value", `variables.ghost == "anything"`, false},
		{"missing task output never equals a value", `tasks.fetch.missing == 1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Evaluate(domain.ConditionSpec{
				Type:       domain.ConditionExpression,
				Expression: tt.expression,
			}, state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateExpressionErrors(t *testing.T) {
	evaluator := NewConditionEvaluator(nil)
	state := conditionState()

	tests := []struct {
		name       string
		expression string
	}{
		{"empty expression", "   "},
		{"unparseable expression", `variables.env ==`},
		{"non boolean result", `variables.retries + 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Evaluate(domain.ConditionSpec{
				Type:       domain.ConditionExpression,
				Expression: tt.expression,
			}, state)
			assert.Error(t, err)
		})
	}
}

func TestEvaluateTaskStatusCondition(t *testing.T) {
	evaluator := NewConditionEvaluator(nil)
	state := conditionState()

	got, err := evaluator.Evaluate(domain.ConditionSpec{
		Type:     domain.ConditionTaskStatus,
		TaskID:   "fetch",
		Expected: domain.TaskStatusCompleted,
	}, state)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evaluator.Evaluate(domain.ConditionSpec{
		Type:     domain.ConditionTaskStatus,
		TaskID:   "fetch",
		Expected: domain.TaskStatusSkipped,
	}, state)
	require.NoError(t, err)
	assert.False(t, got)

	// Tasks with no result yet read as pending.
	got, err = evaluator.Evaluate(domain.ConditionSpec{
		Type:     domain.ConditionTaskStatus,
		TaskID:   "never-ran",
		Expected: domain.TaskStatusPending,
	}, state)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluateUnknownConditionType(t *testing.T) {
	evaluator := NewConditionEvaluator(nil)

	_, err := evaluator.Evaluate(domain.ConditionSpec{Type: "mystery"}, conditionState())
	assert.Error(t, err)
}
