// Package validation provides the step handler that checks an upstream
// analysis report against expected bounds.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/params"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

type HandlerFactory struct{}

func NewHandlerFactory() *HandlerFactory {
	return &HandlerFactory{}
}

func (*HandlerFactory) Kind() models.StepKind {
	return models.StepKindValidation
}

func (*HandlerFactory) Name() string {
	return "Report Validation"
}

func (*HandlerFactory) Description() string {
	return "Validates an upstream analysis report against expected bounds. The step fails when any bound is violated."
}

func (*HandlerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "ID of the upstream analysis step",
			},
			"max_avg": map[string]any{
				"type":        "number",
				"description": "Upper bound on the reported average",
			},
			"min_avg": map[string]any{
				"type":        "number",
				"description": "Lower bound on the reported average",
			},
			"max_breach_ratio": map[string]any{
				"type":        "number",
				"description": "Upper bound on the fraction of threshold breaches",
			},
			"min_points": map[string]any{
				"type":        "number",
				"description": "Minimum number of points the stream must contain",
			},
		},
		"required": []string{"source"},
	}
}

func (*HandlerFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	source := params.String(parameters, "source", "")
	if source == "" {
		return nil, fmt.Errorf("validation step requires a source step id")
	}

	return &Handler{
		source:         source,
		maxAvg:         params.Float(parameters, "max_avg", 0),
		minAvg:         params.Float(parameters, "min_avg", 0),
		maxBreachRatio: params.Float(parameters, "max_breach_ratio", 0),
		minPoints:      params.Int(parameters, "min_points", 0),
	}, nil
}

type Handler struct {
	source         string
	maxAvg         float64
	minAvg         float64
	maxBreachRatio float64
	minPoints      int
}

func (h *Handler) Execute(_ context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("handler", "validation", "source", h.source)

	raw, ok := executionCtx.StepResults[h.source]
	if !ok {
		return nil, fmt.Errorf("validation step %s: no result from step %q", step.ID, h.source)
	}

	report, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("validation step %s: result of step %q is not an analysis report", step.ID, h.source)
	}

	violations := h.check(report)
	if len(violations) > 0 {
		return nil, fmt.Errorf("validation step %s failed: %s", step.ID, strings.Join(violations, "; "))
	}

	logger.Info("Report validated")

	return map[string]any{
		"source": h.source,
		"passed": true,
	}, nil
}

func (h *Handler) check(report map[string]any) []string {
	var violations []string

	avg := params.Float(report, "avg", 0)
	breachRatio := params.Float(report, "breach_ratio", 0)
	pointCount := params.Int(report, "point_count", 0)

	if h.maxAvg > 0 && avg > h.maxAvg {
		violations = append(violations, fmt.Sprintf("avg %.2f above max_avg %.2f", avg, h.maxAvg))
	}

	if h.minAvg > 0 && avg < h.minAvg {
		violations = append(violations, fmt.Sprintf("avg %.2f below min_avg %.2f", avg, h.minAvg))
	}

	if h.maxBreachRatio > 0 && breachRatio > h.maxBreachRatio {
		violations = append(violations, fmt.Sprintf("breach ratio %.2f above max %.2f", breachRatio, h.maxBreachRatio))
	}

	if h.minPoints > 0 && pointCount < h.minPoints {
		violations = append(violations, fmt.Sprintf("only %d points, expected at least %d", pointCount, h.minPoints))
	}

	return violations
}
