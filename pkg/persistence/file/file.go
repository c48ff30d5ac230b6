// Package file provides file-based persistence for scenario workflow
// definitions, one JSON document per workflow.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
// Function-valued workflow fields (conditions, success criteria) are
// not serialized; loaded definitions run with nil predicates.
type Persistence struct {
	root string
}

func NewPersistence(root string) *Persistence {
	return &Persistence{
		root: strings.Replace(root, "file://", "", 1),
	}
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.ScenarioWorkflow, error) {
	dir := p.workflowsDir()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.ScenarioWorkflow{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.ScenarioWorkflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		workflow, err := p.WorkflowByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.ScenarioWorkflow, error) {
	filePath := filepath.Clean(path.Join(p.workflowsDir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrWorkflowNotFound, id)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	var workflow models.ScenarioWorkflow

	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.ScenarioWorkflow) error {
	if err := os.MkdirAll(p.workflowsDir(), 0750); err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	filePath := filepath.Clean(path.Join(p.workflowsDir(), workflow.ID+".json"))

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	filePath := filepath.Clean(path.Join(p.workflowsDir(), id+".json"))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", persistence.ErrWorkflowNotFound, id)
		}

		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to clean up for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) workflowsDir() string {
	return path.Join(p.root, "workflows")
}
