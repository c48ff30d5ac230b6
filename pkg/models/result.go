package models

import "time"

// ResultSummary carries derived run statistics and advisory text.
type ResultSummary struct {
	SuccessRate         float64       `json:"success_rate"`
	AverageStepDuration time.Duration `json:"average_step_duration"`
	Bottlenecks         []string      `json:"bottlenecks,omitempty"`
	Recommendations     []string      `json:"recommendations,omitempty"`
}

// WorkflowResult is the immutable snapshot produced once a workflow
// execution ends, whether it succeeded, failed, or was rolled back.
type WorkflowResult struct {
	WorkflowID     string         `json:"workflow_id"`
	ExecutionID    string         `json:"execution_id"`
	Success        bool           `json:"success"`
	Duration       time.Duration  `json:"duration"`
	CompletedSteps []string       `json:"completed_steps"`
	FailedSteps    []string       `json:"failed_steps"`
	SkippedSteps   []string       `json:"skipped_steps"`
	Results        map[string]any `json:"results"`
	Summary        ResultSummary  `json:"summary"`
	Errors         []string       `json:"errors,omitempty"`
}
