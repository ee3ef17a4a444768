package executors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/cadence/internal/domain"
)

func TestWaitExecutorValidateConfig(t *testing.T) {
	executor := NewWaitExecutor()

	tests := []struct {
		name    string
		config  map[string]interface{}
		wantErr bool
	}{
		{"duration string", map[string]interface{}{"duration": "100ms"}, false},
		{"duration_ms number", map[string]interface{}{"duration_ms": float64(50)}, false},
		{"missing keys", map[string]interface{}{}, true},
		{"unparseable duration", map[string]interface{}{"duration": "soon"}, true},
		{"negative duration", map[string]interface{}{"duration": "-1s"}, true},
		{"wrong type", map[string]interface{}{"duration_ms": "50"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executor.ValidateConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWaitExecutorWaits(t *testing.T) {
	executor := NewWaitExecutor()

	started := time.Now()
	result, err := executor.Execute(context.Background(), &domain.ExecutionContext{
		Config: map[string]interface{}{"duration": "30ms"},
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(started), 30*time.Millisecond)
	assert.Equal(t, "30ms", result.Output["waited"])
}

func TestWaitExecutorHonorsCancellation(t *testing.T) {
	executor := NewWaitExecutor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := executor.Execute(ctx, &domain.ExecutionContext{
		Config: map[string]interface{}{"duration": "5s"},
	})

	assert.Error(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

func TestTransformExecutorSetAndExport(t *testing.T) {
	executor := NewTransformExecutor()

	config := map[string]interface{}{
		"set":    map[string]interface{}{"region": "eu-west-1"},
		"export": []interface{}{"region", "build_id", "ghost"},
	}
	require.NoError(t, executor.ValidateConfig(config))

	result, err := executor.Execute(context.Background(), &domain.ExecutionContext{
		Config:    config,
		Variables: map[string]interface{}{"build_id": "b-42"},
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", result.Variables["region"])
	assert.Equal(t, "eu-west-1", result.Output["region"], "pending writes win over prior bindings")
	assert.Equal(t, "b-42", result.Output["build_id"])
	assert.NotContains(t, result.Output, "ghost")
}

func TestTransformExecutorValidateConfig(t *testing.T) {
	executor := NewTransformExecutor()

	assert.NoError(t, executor.ValidateConfig(map[string]interface{}{}))
	assert.Error(t, executor.ValidateConfig(map[string]interface{}{"set": "not-a-map"}))
	assert.Error(t, executor.ValidateConfig(map[string]interface{}{"export": "not-a-list"}))
	assert.Error(t, executor.ValidateConfig(map[string]interface{}{"export": []interface{}{1}}))
}

func TestApprovalExecutor(t *testing.T) {
	executor := NewApprovalExecutor()

	require.NoError(t, executor.ValidateConfig(nil))
	assert.Error(t, executor.ValidateConfig(map[string]interface{}{"message": 1}))

	result, err := executor.Execute(context.Background(), &domain.ExecutionContext{
		Config: map[string]interface{}{"message": "release signed off"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, result.Output["approved"])
	assert.Equal(t, "release signed off", result.Output["message"])
}

func TestNoopExecutor(t *testing.T) {
	executor := NewNoopExecutor()

	require.NoError(t, executor.ValidateConfig(nil))

	result, err := executor.Execute(context.Background(), &domain.ExecutionContext{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
