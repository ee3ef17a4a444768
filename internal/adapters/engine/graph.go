package engine

import (
	"fmt"
	"log/slog"

	"github.com/eleven-am/cadence/internal/domain"
	"github.com/heimdalr/dag"
)

// GraphBuilder validates a workflow definition's dependency structure and
// produces the execution graph the scheduler walks. Pure and deterministic:
// the same definition always yields the same graph.
type GraphBuilder struct {
	logger *slog.Logger
}

func NewGraphBuilder(logger *slog.Logger) *GraphBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	return &GraphBuilder{
		logger: logger.With("component", "graph-builder"),
	}
}

// ExecutionGraph is a validated, immutable view of a workflow's dependencies.
type ExecutionGraph struct {
	tasks      map[string]*domain.TaskDefinition
	order      []string
	deps       map[string][]string
	dependents map[string][]string
}

// Build constructs one node per task plus one edge dependency→task per
// declared dependency. Fails with UnknownDependencyError when a dependency
// references a nonexistent task id and CyclicDependencyError when the edges
// do not form a DAG.
func (gb *GraphBuilder) Build(def *domain.WorkflowDefinition) (*ExecutionGraph, error) {
	if len(def.Tasks) == 0 {
		return nil, fmt.Errorf("%w: workflow %s has no tasks", domain.ErrInvalidDefinition, def.ID)
	}

	graph := &ExecutionGraph{
		tasks:      make(map[string]*domain.TaskDefinition, len(def.Tasks)),
		deps:       make(map[string][]string, len(def.Tasks)),
		dependents: make(map[string][]string),
	}

	workflowDAG := dag.NewDAG()

	for i := range def.Tasks {
		task := &def.Tasks[i]
		if task.ID == "" {
			return nil, fmt.Errorf("%w: task at index %d has no id", domain.ErrInvalidDefinition, i)
		}
		if _, exists := graph.tasks[task.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate task id %s", domain.ErrInvalidDefinition, task.ID)
		}

		graph.tasks[task.ID] = task
		if err := workflowDAG.AddVertexByID(task.ID, task.ID); err != nil {
			return nil, fmt.Errorf("add vertex %s: %w", task.ID, err)
		}
	}

	for i := range def.Tasks {
		task := &def.Tasks[i]
		for _, depID := range task.Dependencies {
			if _, exists := graph.tasks[depID]; !exists {
				gb.logger.Debug("unknown dependency in definition",
					"workflow_id", def.ID,
					"task_id", task.ID,
					"depends_on", depID)
				return nil, &domain.UnknownDependencyError{TaskID: task.ID, DependsOn: depID}
			}

			if err := workflowDAG.AddEdge(depID, task.ID); err != nil {
				if _, ok := err.(dag.EdgeLoopError); ok {
					gb.logger.Debug("cycle detected in definition",
						"workflow_id", def.ID,
						"from", depID,
						"to", task.ID)
					return nil, &domain.CyclicDependencyError{From: depID, To: task.ID}
				}
				if _, ok := err.(dag.EdgeDuplicateError); ok {
					continue
				}
				return nil, fmt.Errorf("add edge %s->%s: %w", depID, task.ID, err)
			}

			graph.deps[task.ID] = append(graph.deps[task.ID], depID)
			graph.dependents[depID] = append(graph.dependents[depID], task.ID)
		}
	}

	graph.order = topologicalOrder(def, graph.deps)

	gb.logger.Debug("execution graph built",
		"workflow_id", def.ID,
		"vertices", workflowDAG.GetOrder(),
		"roots", len(workflowDAG.GetRoots()))

	return graph, nil
}

// topologicalOrder runs Kahn's algorithm scanning tasks in declaration order
// each round, so ties are broken by position in the definition. That is a
// determinism choice: true ordering constraints come solely from the graph.
func topologicalOrder(def *domain.WorkflowDefinition, deps map[string][]string) []string {
	placed := make(map[string]bool, len(def.Tasks))
	order := make([]string, 0, len(def.Tasks))

	for len(order) < len(def.Tasks) {
		for i := range def.Tasks {
			id := def.Tasks[i].ID
			if placed[id] {
				continue
			}

			satisfied := true
			for _, depID := range deps[id] {
				if !placed[depID] {
					satisfied = false
					break
				}
			}

			if satisfied {
				placed[id] = true
				order = append(order, id)
			}
		}
	}

	return order
}

// Task returns the definition for a task id.
func (g *ExecutionGraph) Task(id string) *domain.TaskDefinition {
	return g.tasks[id]
}

// Order returns task ids in topological order.
func (g *ExecutionGraph) Order() []string {
	return g.order
}

// Size returns the number of tasks in the graph.
func (g *ExecutionGraph) Size() int {
	return len(g.tasks)
}

// Ready returns, in topological order, the tasks that are eligible to start:
// still pending, with every predecessor in a dependency-satisfying terminal
// status. Tasks behind a FAILED or CANCELLED predecessor are permanently
// blocked and never become ready.
func (g *ExecutionGraph) Ready(state *domain.WorkflowState) []*domain.TaskDefinition {
	var ready []*domain.TaskDefinition

	for _, id := range g.order {
		if state.TaskStatusOf(id) != domain.TaskStatusPending || state.Running[id] {
			continue
		}

		eligible := true
		for _, depID := range g.deps[id] {
			if !state.TaskStatusOf(depID).SatisfiesDependency() {
				eligible = false
				break
			}
		}

		if eligible {
			ready = append(ready, g.tasks[id])
		}
	}

	return ready
}

// Blocked reports whether a task can never run because a predecessor
// (transitively) reached FAILED or CANCELLED.
func (g *ExecutionGraph) Blocked(id string, state *domain.WorkflowState) bool {
	for _, depID := range g.deps[id] {
		status := state.TaskStatusOf(depID)
		if status.Terminal() && !status.SatisfiesDependency() {
			return true
		}
		if !status.Terminal() && g.Blocked(depID, state) {
			return true
		}
	}

	return false
}
