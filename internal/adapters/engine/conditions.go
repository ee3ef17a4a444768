package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/eleven-am/cadence/internal/domain"
)

// ConditionEvaluator decides task eligibility. Expression conditions run
// through a sandboxed evaluator over a read-only context exposing only
// `variables` and `tasks` lookups: no host functions, no I/O, no imports.
type ConditionEvaluator struct {
	logger *slog.Logger
}

func NewConditionEvaluator(logger *slog.Logger) *ConditionEvaluator {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConditionEvaluator{
		logger: logger.With("component", "condition-evaluator"),
	}
}

// referencePattern matches variables.<path> and tasks.<id>.<path> lookups
// inside a condition expression.
var referencePattern = regexp.MustCompile(`\b(variables|tasks)((?:\.[A-Za-z_][A-Za-z0-9_]*)+)`)

// Evaluate returns whether the condition holds against the current state.
func (ce *ConditionEvaluator) Evaluate(spec domain.ConditionSpec, state *domain.WorkflowState) (bool, error) {
	switch spec.Type {
	case domain.ConditionTaskStatus:
		return state.TaskStatusOf(spec.TaskID) == spec.Expected, nil
	case domain.ConditionExpression:
		return ce.evaluateExpression(spec.Expression, state)
	default:
		return false, fmt.Errorf("unknown condition type %q", spec.Type)
	}
}

func (ce *ConditionEvaluator) evaluateExpression(expression string, state *domain.WorkflowState) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, fmt.Errorf("empty condition expression")
	}

	parameters := make(map[string]interface{})
	rewritten := referencePattern.ReplaceAllStringFunc(expression, func(reference string) string {
		matches := referencePattern.FindStringSubmatch(reference)
		root := matches[1]
		segments := strings.Split(strings.TrimPrefix(matches[2], "."), ".")

		name := root + "__" + strings.Join(segments, "__")
		parameters[name] = resolveReference(root, segments, state)
		return name
	})

	parsed, err := govaluate.NewEvaluableExpression(rewritten)
	if err != nil {
		return false, fmt.Errorf("parse condition %q: %w", expression, err)
	}

	result, err := parsed.Evaluate(parameters)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", expression, err)
	}

	verdict, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, want bool", expression, result)
	}

	ce.logger.Debug("condition evaluated",
		"execution_id", state.ExecutionID,
		"expression", expression,
		"result", verdict)

	return verdict, nil
}

// resolveReference walks a dotted path against the restricted evaluation
// context. Missing paths resolve to nil rather than erroring, so conditions
// can probe optional values.
func resolveReference(root string, segments []string, state *domain.WorkflowState) interface{} {
	var current interface{}

	switch root {
	case "variables":
		current = mapToInterface(state.Variables)
	case "tasks":
		outputs := make(map[string]interface{}, len(state.Tasks))
		for id, result := range state.Tasks {
			outputs[id] = mapToInterface(result.Output)
		}
		current = outputs
	}

	for _, segment := range segments {
		values, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = values[segment]
		if !ok {
			return nil
		}
	}

	return current
}

func mapToInterface(values map[string]interface{}) interface{} {
	if values == nil {
		return map[string]interface{}{}
	}
	return values
}
