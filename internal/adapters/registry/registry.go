package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/eleven-am/cadence/internal/ports"
)

// Adapter is a mutex-guarded type-tag → TaskExecutor map. Each engine owns
// one instance; registration happens before executions start.
type Adapter struct {
	executors map[string]ports.TaskExecutor
	mu        sync.RWMutex
	logger    *slog.Logger
}

func NewAdapter(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		executors: make(map[string]ports.TaskExecutor),
		logger:    logger.With("component", "executor-registry"),
	}
}

func (r *Adapter) Register(taskType string, executor ports.TaskExecutor) error {
	if taskType == "" {
		r.logger.Error("attempted to register executor with empty type tag")
		return &ports.ExecutorRegistrationError{
			TaskType: taskType,
			Reason:   "type tag cannot be empty",
		}
	}

	if executor == nil {
		r.logger.Error("attempted to register nil executor", "task_type", taskType)
		return &ports.ExecutorRegistrationError{
			TaskType: taskType,
			Reason:   "executor cannot be nil",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[taskType]; exists {
		r.logger.Debug("executor registration failed - already registered", "task_type", taskType)
		return &ports.ExecutorRegistrationError{
			TaskType: taskType,
			Reason:   "executor already registered",
		}
	}

	r.executors[taskType] = executor
	r.logger.Debug("executor registered", "task_type", taskType, "total_executors", len(r.executors))
	return nil
}

func (r *Adapter) Get(taskType string) (ports.TaskExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, exists := r.executors[taskType]
	if !exists {
		return nil, &domain.UnknownTaskTypeError{Type: taskType}
	}

	return executor, nil
}

func (r *Adapter) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.executors))
	for taskType := range r.executors {
		types = append(types, taskType)
	}
	sort.Strings(types)

	return types
}
