// Package cleanup provides the step handler that clears staged state
// at the end of a scenario.
package cleanup

import (
	"context"
	"log/slog"

	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/params"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

type HandlerFactory struct{}

func NewHandlerFactory() *HandlerFactory {
	return &HandlerFactory{}
}

func (*HandlerFactory) Kind() models.StepKind {
	return models.StepKindCleanup
}

func (*HandlerFactory) Name() string {
	return "State Cleanup"
}

func (*HandlerFactory) Description() string {
	return "Removes named keys from the global state. With no keys configured, removes every key."
}

func (*HandlerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keys": map[string]any{
				"type":        "array",
				"description": "Global state keys to remove. Empty means all keys.",
				"items":       map[string]any{"type": "string"},
			},
		},
	}
}

func (*HandlerFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	return &Handler{
		keys: params.Strings(parameters, "keys"),
	}, nil
}

type Handler struct {
	keys []string
}

func (h *Handler) Execute(_ context.Context, _ *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("handler", "cleanup")

	removed := make([]string, 0, len(h.keys))

	if len(h.keys) == 0 {
		for key := range executionCtx.GlobalState {
			removed = append(removed, key)
		}
	} else {
		for _, key := range h.keys {
			if _, exists := executionCtx.GlobalState[key]; exists {
				removed = append(removed, key)
			}
		}
	}

	for _, key := range removed {
		delete(executionCtx.GlobalState, key)
	}

	logger.Info("Global state cleaned", "removed", len(removed))

	return map[string]any{
		"removed": removed,
	}, nil
}
