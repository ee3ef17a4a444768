package cadence

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngineRunsBuiltinsEndToEnd(t *testing.T) {
	engine, err := New(NewConfigBuilder().
		WithLogger(quietLogger()).
		WithDefaultTaskTimeout(5 * time.Second).
		Build())
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	def := &WorkflowDefinition{
		ID:        "release",
		Name:      "Release Pipeline",
		Variables: map[string]interface{}{"channel": "beta"},
		Tasks: []TaskDefinition{
			{
				ID:   "stamp",
				Type: TaskTypeTransform,
				Config: map[string]interface{}{
					"set":    map[string]interface{}{"build": "b-7"},
					"export": []interface{}{"channel", "build"},
				},
			},
			{
				ID:           "soak",
				Type:         TaskTypeWait,
				Config:       map[string]interface{}{"duration": "20ms"},
				Dependencies: []string{"stamp"},
			},
			{
				ID:           "publish",
				Type:         TaskTypeNoop,
				Dependencies: []string{"soak"},
				Conditions: []ConditionSpec{
					{Type: ConditionExpression, Expression: `variables.channel == "beta"`},
				},
			},
		},
	}

	workflowID, err := engine.LoadDefinition(def)
	require.NoError(t, err)
	assert.Equal(t, []string{"release"}, engine.ListWorkflows())

	summary := engine.Execute(context.Background(), workflowID, map[string]interface{}{
		"requested_by": "ci",
	})

	require.Equal(t, WorkflowStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.CompletedTaskCount)
	assert.Equal(t, "beta", summary.Outputs["stamp"]["channel"])
	assert.Equal(t, "b-7", summary.Outputs["stamp"]["build"])

	state, err := engine.GetExecutionStatus(context.Background(), summary.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, "b-7", state.Variables["build"], "transform writes reach workflow variables")
	assert.Equal(t, "ci", state.Variables["requested_by"])
}

func TestEngineDurableStateSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()

	config := NewConfigBuilder().
		WithLogger(quietLogger()).
		WithDataDir(dataDir).
		Build()

	engine, err := New(config)
	require.NoError(t, err)

	def := &WorkflowDefinition{
		ID:    "durable",
		Tasks: []TaskDefinition{{ID: "only", Type: TaskTypeNoop}},
	}
	workflowID, err := engine.LoadDefinition(def)
	require.NoError(t, err)

	summary := engine.Execute(context.Background(), workflowID, nil)
	require.Equal(t, WorkflowStatusCompleted, summary.Status)
	require.NoError(t, engine.Close())

	reopened, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	state, err := reopened.GetExecutionStatus(context.Background(), summary.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, WorkflowStatusCompleted, state.Status)

	summaries, err := reopened.ListExecutions(context.Background(), workflowID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, summary.ExecutionID, summaries[0].ExecutionID)
}

func TestNewRejectsUnopenableDataDir(t *testing.T) {
	_, err := New(NewConfigBuilder().
		WithLogger(quietLogger()).
		WithDataDir("/proc/definitely-not-writable").
		Build())
	assert.Error(t, err)
}
