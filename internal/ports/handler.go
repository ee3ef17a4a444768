package ports

import (
	"context"

	"github.com/eleven-am/cadence/internal/domain"
)

// Directive is an error handler's verdict on how the run should proceed.
type Directive int

const (
	// DirectiveContinue leaves the failed branch blocked and lets sibling
	// branches keep running.
	DirectiveContinue Directive = iota
	// DirectiveCancelWorkflow cancels the whole execution.
	DirectiveCancelWorkflow
)

// ErrorEvent describes a terminal task failure handed to error handlers.
type ErrorEvent struct {
	WorkflowName string
	ExecutionID  string
	TaskID       string
	Err          error
	Reaction     domain.ErrorReaction
}

// ErrorHandler reacts to terminal task failures. Handlers are registered per
// reaction type and invoked with the workflow's configured reaction list.
type ErrorHandler interface {
	Handle(ctx context.Context, event ErrorEvent) (Directive, error)
}
