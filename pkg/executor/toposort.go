package executor

import (
	"errors"
	"fmt"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

var (
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrUnknownDependency = errors.New("dependency references unknown step")
	ErrDuplicateStepID   = errors.New("duplicate step id")
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// topologicalOrder computes the execution order via a depth-first
// post-order walk over the dependency graph. Steps with no dependency
// relationship keep the deterministic order the walk produces; they
// are never reordered for throughput.
func topologicalOrder(wf *models.ScenarioWorkflow) ([]string, error) {
	steps := make(map[string]*models.ExecutionStep, len(wf.Steps))

	for _, step := range wf.Steps {
		if _, exists := steps[step.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStepID, step.ID)
		}

		steps[step.ID] = step
	}

	states := make(map[string]visitState, len(steps))
	order := make([]string, 0, len(steps))

	var visit func(id string) error

	visit = func(id string) error {
		switch states[id] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("%w involving step %q", ErrCyclicDependency, id)
		}

		states[id] = visiting

		for _, dep := range steps[id].DependsOn {
			if _, known := steps[dep]; !known {
				return fmt.Errorf("%w: step %q depends on %q", ErrUnknownDependency, id, dep)
			}

			if err := visit(dep); err != nil {
				return err
			}
		}

		states[id] = visited
		order = append(order, id)

		return nil
	}

	for _, step := range wf.Steps {
		if err := visit(step.ID); err != nil {
			return nil, err
		}
	}

	return order, nil
}
