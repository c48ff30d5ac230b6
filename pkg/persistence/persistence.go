// Package persistence provides the storage abstraction for scenario
// workflow definitions.
package persistence

import (
	"context"
	"errors"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// ErrWorkflowNotFound indicates a workflow was not found by the given
// identifier.
var ErrWorkflowNotFound = errors.New("workflow not found")

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.ScenarioWorkflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.ScenarioWorkflow) error
	WorkflowByID(ctx context.Context, id string) (*models.ScenarioWorkflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
