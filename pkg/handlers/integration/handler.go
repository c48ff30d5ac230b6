// Package integration provides the step handler that submits a step
// result to the monitoring system under test. The submission is
// simulated; the endpoint's request and response shapes are
// incidental, only the bookkeeping matters here.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/params"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

type HandlerFactory struct{}

func NewHandlerFactory() *HandlerFactory {
	return &HandlerFactory{}
}

func (*HandlerFactory) Kind() models.StepKind {
	return models.StepKindIntegration
}

func (*HandlerFactory) Name() string {
	return "Result Submission"
}

func (*HandlerFactory) Description() string {
	return "Submits an upstream step result to the configured target and records the acknowledgement. Supports rollback by withdrawing the submission marker."
}

func (*HandlerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "ID of the upstream step whose result is submitted",
			},
			"target": map[string]any{
				"type":        "string",
				"description": "Logical name of the receiving system",
				"default":     "imf",
			},
		},
		"required": []string{"source"},
	}
}

func (*HandlerFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	source := params.String(parameters, "source", "")
	if source == "" {
		return nil, fmt.Errorf("integration step requires a source step id")
	}

	return &Handler{
		source: source,
		target: params.String(parameters, "target", "imf"),
	}, nil
}

type Handler struct {
	source string
	target string
}

func (h *Handler) Execute(_ context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("handler", "integration", "source", h.source, "target", h.target)

	raw, ok := executionCtx.StepResults[h.source]
	if !ok {
		return nil, fmt.Errorf("integration step %s: no result from step %q", step.ID, h.source)
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("integration step %s: failed to encode result of %q: %w", step.ID, h.source, err)
	}

	executionCtx.GlobalState[h.submissionKey()] = true

	logger.Info("Result submitted", "bytes", len(payload))

	return map[string]any{
		"submitted":    true,
		"source":       h.source,
		"target":       h.target,
		"bytes":        len(payload),
		"submitted_at": time.Now().UTC(),
	}, nil
}

// Rollback withdraws the submission marker. Compensating only: the
// simulated target keeps whatever it already received.
func (h *Handler) Rollback(_ context.Context, _ *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) error {
	delete(executionCtx.GlobalState, h.submissionKey())
	logger.Info("Submission withdrawn", "source", h.source, "target", h.target)

	return nil
}

func (h *Handler) submissionKey() string {
	return "submitted:" + h.target + ":" + h.source
}
