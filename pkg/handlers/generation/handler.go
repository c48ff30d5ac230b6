// Package generation provides the step handler that produces synthetic
// metric streams for downstream analysis steps.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sijadev/IMF-Test-Manager/pkg/generator"
	"github.com/sijadev/IMF-Test-Manager/pkg/handlers/params"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
)

type HandlerFactory struct {
	generator *generator.Generator
}

func NewHandlerFactory(gen *generator.Generator) *HandlerFactory {
	return &HandlerFactory{generator: gen}
}

func (*HandlerFactory) Kind() models.StepKind {
	return models.StepKindGeneration
}

func (*HandlerFactory) Name() string {
	return "Metric Stream Generation"
}

func (*HandlerFactory) Description() string {
	return "Generates a synthetic time-series metric stream with a named statistical pattern. The stream is stored as the step result for downstream analysis steps."
}

func (*HandlerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metric": map[string]any{
				"type":        "string",
				"description": "Simulated metric type, determines the sampling interval",
				"enum":        []string{"cpu", "memory", "disk", "network"},
			},
			"pattern": map[string]any{
				"type":        "string",
				"description": "Statistical shape of the generated stream",
				"enum":        []string{"stable", "spike", "degradation", "leak", "fragmentation", "congestion"},
			},
			"duration_seconds": map[string]any{
				"type":        "number",
				"description": "Length of the generated stream in seconds",
				"minimum":     1,
			},
			"base_value": map[string]any{
				"type":        "number",
				"description": "Baseline value the pattern evolves around",
				"minimum":     0,
			},
			"variance": map[string]any{
				"type":        "number",
				"description": "Jitter amplitude as a fraction of the base value",
				"minimum":     0,
			},
			"name": map[string]any{
				"type":        "string",
				"description": "Stream name, defaults to <metric>-<pattern>",
			},
			"seed": map[string]any{
				"type":        "number",
				"description": "Random seed for reproducible streams",
			},
		},
		"required": []string{"metric", "pattern", "duration_seconds"},
	}
}

func (f *HandlerFactory) Create(parameters map[string]any) (protocol.StepHandler, error) {
	if parameters == nil {
		return nil, fmt.Errorf("generation step requires parameters")
	}

	return &Handler{
		generator: f.generator,
		request: generator.Request{
			Name:      params.String(parameters, "name", ""),
			Type:      models.MetricType(params.String(parameters, "metric", "cpu")),
			Pattern:   models.PatternType(params.String(parameters, "pattern", "stable")),
			Duration:  time.Duration(params.Float(parameters, "duration_seconds", 0) * float64(time.Second)),
			BaseValue: params.Float(parameters, "base_value", 50),
			Variance:  params.Float(parameters, "variance", 0.1),
			Params: generator.PatternParams{
				SpikeFrequency:  params.Int(parameters, "spike_frequency", 0),
				SpikeIntensity:  params.Float(parameters, "spike_intensity", 0),
				DegradationRate: params.Float(parameters, "degradation_rate", 0),
				LeakRate:        params.Float(parameters, "leak_rate", 0),
				Seed:            int64(params.Int(parameters, "seed", 0)),
			},
		},
	}, nil
}

type Handler struct {
	generator *generator.Generator
	request   generator.Request
}

func (h *Handler) Execute(_ context.Context, step *models.ExecutionStep, _ *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("handler", "generation", "pattern", h.request.Pattern, "metric", h.request.Type)
	logger.Info("Generating metric stream")

	stream, err := h.generator.GenerateStream(h.request)
	if err != nil {
		return nil, fmt.Errorf("generation step %s: %w", step.ID, err)
	}

	logger.Info("Metric stream generated",
		"points", stream.Metadata.PointCount,
		"avg", stream.Metadata.AvgValue,
	)

	return stream, nil
}
