// Package protocol defines the interfaces and contracts for pluggable
// step handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// StepHandler executes one step of a scenario workflow. Handlers read
// their inputs from the step parameters and from results of upstream
// steps in the execution context.
type StepHandler interface {
	Execute(ctx context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error)
}

// RollbackHandler is implemented by handlers whose completed work can
// be compensated when a later step fails. Rollback errors are logged
// by the executor, never re-raised.
type RollbackHandler interface {
	Rollback(ctx context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) error
}

// HandlerFactory creates handler instances for one step kind and
// provides metadata about it.
type HandlerFactory interface {
	// Create builds a handler for a single step execution from the
	// step's parameters.
	Create(parameters map[string]any) (StepHandler, error)

	// Kind returns the step kind this factory serves.
	Kind() models.StepKind

	// Name returns the human-readable name for this handler type.
	Name() string

	// Description returns a description of what this handler does.
	Description() string

	// Schema returns the JSON schema step parameters are validated
	// against before execution starts.
	Schema() map[string]any
}
