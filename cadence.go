// Package cadence is a single-process workflow orchestration engine. A
// workflow is a DAG of typed tasks with dependencies, conditions, retries,
// timeouts, and approval gates; cadence schedules the tasks, persists state
// snapshots, and exposes every execution for inspection.
//
// Basic usage:
//
//	engine, err := cadence.New(cadence.NewConfigBuilder().WithDataDir("./data").Build())
//	if err != nil { ... }
//	defer engine.Close()
//
//	engine.RegisterExecutor("deploy", deployExecutor)
//	id, err := engine.LoadDefinition(def)
//	summary := engine.Execute(ctx, id, map[string]interface{}{"env": "staging"})
package cadence

import (
	engineadapter "github.com/eleven-am/cadence/internal/adapters/engine"
	"github.com/eleven-am/cadence/internal/adapters/executors"
	"github.com/eleven-am/cadence/internal/adapters/registry"
	"github.com/eleven-am/cadence/internal/adapters/storage"
	"github.com/eleven-am/cadence/internal/ports"
)

// Engine orchestrates workflow executions. Create one with New.
type Engine = engineadapter.Engine

// Built-in task type tags registered by New.
const (
	TaskTypeWait      = "wait"
	TaskTypeTransform = "transform"
	TaskTypeNoop      = "noop"
	TaskTypeApproval  = "approval"
)

// New wires an engine from the given config: a badger-backed state store when
// a data directory is configured, an in-memory store otherwise, plus the
// built-in executors.
func New(config *Config) (*Engine, error) {
	config = config.Normalized()

	var store ports.StateStore
	if config.DataDir != "" {
		badgerStore, err := storage.NewBadgerStore(config.DataDir, config.Logger)
		if err != nil {
			return nil, err
		}
		store = badgerStore
	} else {
		store = storage.NewMemoryStore(config.Logger)
	}

	executorRegistry := registry.NewAdapter(config.Logger)
	engine := engineadapter.NewEngine(config, executorRegistry, store)

	builtins := map[string]ports.TaskExecutor{
		TaskTypeWait:      executors.NewWaitExecutor(),
		TaskTypeTransform: executors.NewTransformExecutor(),
		TaskTypeNoop:      executors.NewNoopExecutor(),
		TaskTypeApproval:  executors.NewApprovalExecutor(),
	}
	for tag, executor := range builtins {
		if err := executorRegistry.Register(tag, executor); err != nil {
			return nil, err
		}
	}

	return engine, nil
}
