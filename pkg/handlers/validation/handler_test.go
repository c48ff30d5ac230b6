package validation

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/testutil"
)

func executeValidation(t *testing.T, parameters map[string]any, report any) (any, error) {
	t.Helper()

	handler, err := NewHandlerFactory().Create(parameters)
	require.NoError(t, err)

	step := testutil.CreateTestStep(testutil.WithID("validate"))
	executionCtx := models.NewExecutionContext("exec-1", "wf-1", nil)

	if report != nil {
		executionCtx.StepResults["analyze"] = report
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return handler.Execute(context.Background(), step, executionCtx, logger)
}

func healthyReport() map[string]any {
	return map[string]any{
		"avg":          50.0,
		"breach_ratio": 0.05,
		"point_count":  100,
	}
}

func TestExecute_PassesWithinBounds(t *testing.T) {
	result, err := executeValidation(t, map[string]any{
		"source":           "analyze",
		"max_avg":          float64(60),
		"min_avg":          float64(40),
		"max_breach_ratio": 0.1,
		"min_points":       float64(50),
	}, healthyReport())
	require.NoError(t, err)

	outcome, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, outcome["passed"])
	assert.Equal(t, "analyze", outcome["source"])
}

func TestExecute_FailsAboveMaxAvg(t *testing.T) {
	_, err := executeValidation(t, map[string]any{
		"source":  "analyze",
		"max_avg": float64(40),
	}, healthyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above max_avg")
}

func TestExecute_FailsBelowMinAvg(t *testing.T) {
	_, err := executeValidation(t, map[string]any{
		"source":  "analyze",
		"min_avg": float64(60),
	}, healthyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below min_avg")
}

func TestExecute_FailsOnBreachRatio(t *testing.T) {
	_, err := executeValidation(t, map[string]any{
		"source":           "analyze",
		"max_breach_ratio": 0.01,
	}, healthyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breach ratio")
}

func TestExecute_FailsOnTooFewPoints(t *testing.T) {
	_, err := executeValidation(t, map[string]any{
		"source":     "analyze",
		"min_points": float64(500),
	}, healthyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected at least 500")
}

func TestExecute_ChecksPointCountAfterJSONRoundTrip(t *testing.T) {
	// Reports loaded from JSON carry float64 numbers, not ints.
	report := map[string]any{
		"avg":          50.0,
		"breach_ratio": 0.05,
		"point_count":  float64(10),
	}

	_, err := executeValidation(t, map[string]any{
		"source":     "analyze",
		"min_points": float64(50),
	}, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 10 points, expected at least 50")
}

func TestExecute_CollectsAllViolations(t *testing.T) {
	_, err := executeValidation(t, map[string]any{
		"source":     "analyze",
		"max_avg":    float64(40),
		"min_points": float64(500),
	}, healthyReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above max_avg")
	assert.Contains(t, err.Error(), "expected at least 500")
}

func TestExecute_MissingReport(t *testing.T) {
	_, err := executeValidation(t, map[string]any{"source": "analyze"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no result from step "analyze"`)
}

func TestExecute_ReportHasWrongShape(t *testing.T) {
	_, err := executeValidation(t, map[string]any{"source": "analyze"}, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an analysis report")
}

func TestCreate_RequiresSource(t *testing.T) {
	_, err := NewHandlerFactory().Create(map[string]any{})
	assert.Error(t, err)
}
