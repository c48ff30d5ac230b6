// Package models defines the core domain models for scenario workflows
// and synthetic metric generation.
package models

import "time"

// StepKind identifies which registered handler executes a step.
type StepKind string

// Built-in step kinds. Custom kinds may be registered at setup time.
const (
	StepKindGeneration  StepKind = "generation"
	StepKindAnalysis    StepKind = "analysis"
	StepKindValidation  StepKind = "validation"
	StepKindIntegration StepKind = "integration"
	StepKindCleanup     StepKind = "cleanup"
)

// StepCondition decides whether a step runs against the current
// execution context. A nil condition always runs.
type StepCondition func(executionCtx *ExecutionContext) bool

// ExecutionStep is one unit of work in a scenario workflow.
type ExecutionStep struct {
	ID         string         `json:"id"          validate:"required"`
	Name       string         `json:"name"        validate:"required"`
	Kind       StepKind       `json:"kind"        validate:"required"`
	DependsOn  []string       `json:"depends_on,omitempty"`
	Timeout    time.Duration  `json:"timeout"`
	MaxRetries int            `json:"max_retries"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Condition  StepCondition  `json:"-"`
}

// SuccessCriteria evaluates the final step results of a run. A nil
// criteria is treated as always satisfied.
type SuccessCriteria func(results map[string]any) bool

// ValidationConfig declares what a workflow run must produce to count
// as successful, and whether completed steps are rolled back when a
// later step fails.
type ValidationConfig struct {
	RequiredResults   []string        `json:"required_results,omitempty"`
	SuccessCriteria   SuccessCriteria `json:"-"`
	RollbackOnFailure bool            `json:"rollback_on_failure"`
}

// ScenarioWorkflow is a directed acyclic graph of execution steps plus
// global configuration and success criteria.
type ScenarioWorkflow struct {
	ID           string           `json:"id"          validate:"required"`
	Name         string           `json:"name"        validate:"required,min=3"`
	Description  string           `json:"description,omitempty"`
	Steps        []*ExecutionStep `json:"steps"       validate:"required,min=1,dive"`
	GlobalConfig map[string]any   `json:"global_config,omitempty"`
	Validation   ValidationConfig `json:"validation"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// StepByID returns the step with the given id, if present.
func (w *ScenarioWorkflow) StepByID(id string) (*ExecutionStep, bool) {
	for _, step := range w.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return nil, false
}
