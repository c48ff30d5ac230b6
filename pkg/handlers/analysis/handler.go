// Package analysis provides the step handler that derives statistics
// from a previously generated metric stream.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/params"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

type HandlerFactory struct{}

func NewHandlerFactory() *HandlerFactory {
	return &HandlerFactory{}
}

func (*HandlerFactory) Kind() models.StepKind {
	return models.StepKindAnalysis
}

func (*HandlerFactory) Name() string {
	return "Stream Analysis"
}

func (*HandlerFactory) Description() string {
	return "Computes summary statistics and threshold breaches over the metric stream produced by an upstream generation step."
}

func (*HandlerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "ID of the upstream step whose result holds the metric stream",
			},
			"threshold": map[string]any{
				"type":        "number",
				"description": "Values above this count as breaches. Zero disables breach counting.",
			},
		},
		"required": []string{"source"},
	}
}

func (*HandlerFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	source := params.String(parameters, "source", "")
	if source == "" {
		return nil, fmt.Errorf("analysis step requires a source step id")
	}

	return &Handler{
		source:    source,
		threshold: params.Float(parameters, "threshold", 0),
	}, nil
}

type Handler struct {
	source    string
	threshold float64
}

func (h *Handler) Execute(_ context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("handler", "analysis", "source", h.source)

	raw, ok := executionCtx.StepResults[h.source]
	if !ok {
		return nil, fmt.Errorf("analysis step %s: no result from step %q", step.ID, h.source)
	}

	stream, ok := raw.(*models.MetricStream)
	if !ok {
		return nil, fmt.Errorf("analysis step %s: result of step %q is not a metric stream", step.ID, h.source)
	}

	if len(stream.Points) == 0 {
		return nil, fmt.Errorf("analysis step %s: stream %q has no points", step.ID, stream.Name)
	}

	report := h.analyze(stream)

	logger.Info("Stream analyzed",
		"points", report["point_count"],
		"breaches", report["breaches"],
	)

	return report, nil
}

func (h *Handler) analyze(stream *models.MetricStream) map[string]any {
	count := len(stream.Points)

	sum := 0.0
	minValue := stream.Points[0].Value
	maxValue := stream.Points[0].Value
	breaches := 0

	for _, p := range stream.Points {
		sum += p.Value

		if p.Value < minValue {
			minValue = p.Value
		}

		if p.Value > maxValue {
			maxValue = p.Value
		}

		if h.threshold > 0 && p.Value > h.threshold {
			breaches++
		}
	}

	mean := sum / float64(count)

	variance := 0.0
	for _, p := range stream.Points {
		variance += (p.Value - mean) * (p.Value - mean)
	}

	stddev := math.Sqrt(variance / float64(count))

	return map[string]any{
		"source":       h.source,
		"stream":       stream.Name,
		"pattern":      string(stream.Metadata.Pattern),
		"point_count":  count,
		"avg":          mean,
		"min":          minValue,
		"max":          maxValue,
		"stddev":       stddev,
		"threshold":    h.threshold,
		"breaches":     breaches,
		"breach_ratio": float64(breaches) / float64(count),
	}
}
