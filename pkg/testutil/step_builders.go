// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// CreateTestStep creates a test ExecutionStep with default values that can be overridden.
func CreateTestStep(overrides ...func(*models.ExecutionStep)) *models.ExecutionStep {
	step := &models.ExecutionStep{
		ID:         uuid.New().String(),
		Name:       "Test Step",
		Kind:       models.StepKindGeneration,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		Parameters: map[string]any{
			"metric":           "cpu",
			"pattern":          "stable",
			"duration_seconds": 10,
		},
	}

	for _, override := range overrides {
		override(step)
	}

	return step
}

// WithID sets the step ID.
func WithID(id string) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.ID = id
	}
}

// WithName sets the step name.
func WithName(name string) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.Name = name
	}
}

// WithKind sets the step kind.
func WithKind(kind models.StepKind) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.Kind = kind
	}
}

// WithDependsOn sets the step dependencies.
func WithDependsOn(ids ...string) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.DependsOn = ids
	}
}

// WithTimeout sets the step timeout.
func WithTimeout(d time.Duration) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.Timeout = d
	}
}

// WithMaxRetries sets the allowed retry count.
func WithMaxRetries(n int) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.MaxRetries = n
	}
}

// WithParameters sets the step parameters.
func WithParameters(params map[string]any) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.Parameters = params
	}
}

// WithCondition sets the step condition.
func WithCondition(cond models.StepCondition) func(*models.ExecutionStep) {
	return func(s *models.ExecutionStep) {
		s.Condition = cond
	}
}

// CreateTestWorkflow creates a test workflow with the given steps. With
// no steps it contains a single default generation step.
func CreateTestWorkflow(steps ...*models.ExecutionStep) *models.ScenarioWorkflow {
	if len(steps) == 0 {
		steps = []*models.ExecutionStep{CreateTestStep()}
	}

	now := time.Now().UTC()

	return &models.ScenarioWorkflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Description: "A workflow for testing",
		Steps:       steps,
		GlobalConfig: map[string]any{
			"env": "test",
		},
		Metadata:  map[string]any{"category": "test"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
