package models

import "time"

// ExecutionMetrics holds per-run counters and step timings.
type ExecutionMetrics struct {
	CompletedCount int                      `json:"completed_count"`
	FailedCount    int                      `json:"failed_count"`
	SkippedCount   int                      `json:"skipped_count"`
	StepDurations  map[string]time.Duration `json:"step_durations"`
}

// ExecutionContext is the mutable run-time state for one workflow
// execution. It is owned exclusively by the executor for the lifetime
// of the run and must not be shared across runs.
type ExecutionContext struct {
	ExecutionID    string           `json:"execution_id"`
	WorkflowID     string           `json:"workflow_id"`
	CompletedSteps []string         `json:"completed_steps"`
	FailedSteps    []string         `json:"failed_steps"`
	SkippedSteps   []string         `json:"skipped_steps"`
	StepResults    map[string]any   `json:"step_results"`
	GlobalState    map[string]any   `json:"global_state"`
	Metrics        ExecutionMetrics `json:"metrics"`
	StartedAt      time.Time        `json:"started_at"`
}

// NewExecutionContext creates the context for one run, seeding the
// global state from the workflow-level configuration.
func NewExecutionContext(executionID, workflowID string, globalConfig map[string]any) *ExecutionContext {
	state := make(map[string]any, len(globalConfig))
	for k, v := range globalConfig {
		state[k] = v
	}

	return &ExecutionContext{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		StepResults: make(map[string]any),
		GlobalState: state,
		Metrics: ExecutionMetrics{
			StepDurations: make(map[string]time.Duration),
		},
		StartedAt: time.Now(),
	}
}

// MarkCompleted records a successful step with its result and duration.
func (c *ExecutionContext) MarkCompleted(stepID string, result any, duration time.Duration) {
	c.CompletedSteps = append(c.CompletedSteps, stepID)
	c.StepResults[stepID] = result
	c.Metrics.CompletedCount++
	c.Metrics.StepDurations[stepID] = duration
}

// MarkFailed records a failed step. Failed and completed sets stay
// disjoint.
func (c *ExecutionContext) MarkFailed(stepID string) {
	c.FailedSteps = append(c.FailedSteps, stepID)
	c.Metrics.FailedCount++
}

// MarkSkipped records a step whose condition evaluated false.
func (c *ExecutionContext) MarkSkipped(stepID string) {
	c.SkippedSteps = append(c.SkippedSteps, stepID)
	c.Metrics.SkippedCount++
}

// Snapshot returns a copy that shares no maps or slices with the
// receiver. Attempt goroutines work on a snapshot; the live context is
// only ever touched by the goroutine that owns the run.
func (c *ExecutionContext) Snapshot() *ExecutionContext {
	snap := &ExecutionContext{
		ExecutionID:    c.ExecutionID,
		WorkflowID:     c.WorkflowID,
		CompletedSteps: append([]string(nil), c.CompletedSteps...),
		FailedSteps:    append([]string(nil), c.FailedSteps...),
		SkippedSteps:   append([]string(nil), c.SkippedSteps...),
		StepResults:    make(map[string]any, len(c.StepResults)),
		GlobalState:    make(map[string]any, len(c.GlobalState)),
		Metrics: ExecutionMetrics{
			CompletedCount: c.Metrics.CompletedCount,
			FailedCount:    c.Metrics.FailedCount,
			SkippedCount:   c.Metrics.SkippedCount,
			StepDurations:  make(map[string]time.Duration, len(c.Metrics.StepDurations)),
		},
		StartedAt: c.StartedAt,
	}

	for k, v := range c.StepResults {
		snap.StepResults[k] = v
	}

	for k, v := range c.GlobalState {
		snap.GlobalState[k] = v
	}

	for k, v := range c.Metrics.StepDurations {
		snap.Metrics.StepDurations[k] = v
	}

	return snap
}

// IsCompleted reports whether a step finished successfully and has not
// been rolled back.
func (c *ExecutionContext) IsCompleted(stepID string) bool {
	for _, id := range c.CompletedSteps {
		if id == stepID {
			return true
		}
	}

	return false
}

// Unmark removes a rolled-back step from the completed set and drops
// its result.
func (c *ExecutionContext) Unmark(stepID string) {
	for i, id := range c.CompletedSteps {
		if id == stepID {
			c.CompletedSteps = append(c.CompletedSteps[:i], c.CompletedSteps[i+1:]...)

			break
		}
	}

	delete(c.StepResults, stepID)
	c.Metrics.CompletedCount--
}
