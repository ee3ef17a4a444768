package domain

import (
	"time"
)

type TaskDefinition struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	Config           map[string]interface{} `json:"config,omitempty"`
	Dependencies     []string               `json:"dependencies,omitempty"`
	Conditions       []ConditionSpec        `json:"conditions,omitempty"`
	Retry            RetrySpec              `json:"retry"`
	Timeout          time.Duration          `json:"timeout,omitempty"`
	Parallel         bool                   `json:"parallel"`
	ApprovalRequired bool                   `json:"approval_required"`
}

type ConditionType string

const (
	ConditionExpression ConditionType = "expression"
	ConditionTaskStatus ConditionType = "task_status"
)

// ConditionSpec gates task execution. Expression conditions are evaluated over a
// read-only context exposing workflow variables and prior task outputs; task_status
// conditions compare a named task's current status to an expected value.
type ConditionSpec struct {
	Type       ConditionType `json:"type"`
	Expression string        `json:"expression,omitempty"`
	TaskID     string        `json:"task_id,omitempty"`
	Expected   TaskStatus    `json:"expected,omitempty"`
}

type ErrorReaction struct {
	Type   string                 `json:"type"`
	Config map[string]interface{} `json:"config,omitempty"`
}

type WorkflowDefinition struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Version   string                 `json:"version,omitempty"`
	Tasks     []TaskDefinition       `json:"tasks"`
	Variables map[string]interface{} `json:"variables,omitempty"`
	OnError   []ErrorReaction        `json:"on_error,omitempty"`
}

// Task returns the definition for the given task id, or nil.
func (wd *WorkflowDefinition) Task(id string) *TaskDefinition {
	for i := range wd.Tasks {
		if wd.Tasks[i].ID == id {
			return &wd.Tasks[i]
		}
	}
	return nil
}
