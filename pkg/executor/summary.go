package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// bottleneckFactor marks a step as a bottleneck when its duration
// exceeds this multiple of the mean step duration.
const bottleneckFactor = 2.0

const maxBottlenecks = 3

func synthesizeResult(wf *models.ScenarioWorkflow, executionCtx *models.ExecutionContext, duration time.Duration, runErrors []string) *models.WorkflowResult {
	results := make(map[string]any, len(executionCtx.StepResults))
	for id, value := range executionCtx.StepResults {
		results[id] = value
	}

	success := len(executionCtx.FailedSteps) == 0

	for _, required := range wf.Validation.RequiredResults {
		if _, present := results[required]; !present {
			success = false
			runErrors = append(runErrors, fmt.Sprintf("required result %q missing", required))
		}
	}

	if success && wf.Validation.SuccessCriteria != nil && !wf.Validation.SuccessCriteria(results) {
		success = false
		runErrors = append(runErrors, "success criteria not satisfied")
	}

	return &models.WorkflowResult{
		WorkflowID:     wf.ID,
		ExecutionID:    executionCtx.ExecutionID,
		Success:        success,
		Duration:       duration,
		CompletedSteps: append([]string{}, executionCtx.CompletedSteps...),
		FailedSteps:    append([]string{}, executionCtx.FailedSteps...),
		SkippedSteps:   append([]string{}, executionCtx.SkippedSteps...),
		Results:        results,
		Summary:        summarize(wf, executionCtx),
		Errors:         runErrors,
	}
}

func summarize(wf *models.ScenarioWorkflow, executionCtx *models.ExecutionContext) models.ResultSummary {
	metrics := executionCtx.Metrics

	executed := metrics.CompletedCount + metrics.FailedCount

	successRate := 1.0
	if executed > 0 {
		successRate = float64(metrics.CompletedCount) / float64(executed)
	}

	average := averageDuration(metrics.StepDurations)
	bottlenecks := findBottlenecks(metrics.StepDurations, average)

	return models.ResultSummary{
		SuccessRate:         successRate,
		AverageStepDuration: average,
		Bottlenecks:         bottlenecks,
		Recommendations:     recommend(wf, metrics, bottlenecks, successRate),
	}
}

func averageDuration(durations map[string]time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return total / time.Duration(len(durations))
}

// findBottlenecks returns the ids of steps whose duration exceeds
// twice the mean, slowest first, capped at three.
func findBottlenecks(durations map[string]time.Duration, average time.Duration) []string {
	if average <= 0 {
		return nil
	}

	threshold := time.Duration(float64(average) * bottleneckFactor)

	var slow []string

	for id, d := range durations {
		if d > threshold {
			slow = append(slow, id)
		}
	}

	sort.Slice(slow, func(i, j int) bool {
		return durations[slow[i]] > durations[slow[j]]
	})

	if len(slow) > maxBottlenecks {
		slow = slow[:maxBottlenecks]
	}

	return slow
}

// recommend derives advisory text from the run shape. Heuristic and
// non-exhaustive.
func recommend(wf *models.ScenarioWorkflow, metrics models.ExecutionMetrics, bottlenecks []string, successRate float64) []string {
	var recommendations []string

	if metrics.FailedCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d step(s) failed; inspect the errors list and consider raising max_retries or timeouts", metrics.FailedCount))
	}

	if successRate < 0.5 && metrics.FailedCount > 0 {
		recommendations = append(recommendations,
			"more than half of the executed steps failed; the scenario definition likely has a systemic problem")
	}

	if metrics.SkippedCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d step(s) were skipped by their conditions; verify the conditions match the intended scenario", metrics.SkippedCount))
	}

	if len(bottlenecks) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("steps %s took more than twice the average duration; consider splitting their work", strings.Join(bottlenecks, ", ")))
	}

	if len(recommendations) == 0 && len(wf.Steps) > 0 {
		recommendations = append(recommendations, "scenario executed cleanly; no adjustments suggested")
	}

	return recommendations
}
