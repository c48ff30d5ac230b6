package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// BatchPolicy selects how a batch of independent workflows is run.
type BatchPolicy string

const (
	// PolicySequential runs definitions one after another; a failure
	// in one does not block the next.
	PolicySequential BatchPolicy = "sequential"

	// PolicyConcurrent runs all definitions in parallel and waits for
	// all to settle, capturing each outcome independently.
	PolicyConcurrent BatchPolicy = "concurrent"
)

// BatchOutcome is the settled result of one workflow in a batch. Err
// is non-nil only for structural errors or panics; ordinary step
// failures are inside Result.
type BatchOutcome struct {
	WorkflowID string
	Result     *models.WorkflowResult
	Err        error
}

// ExecuteBatch runs multiple independent workflow definitions. Each
// run gets its own private execution context; outcomes are isolated so
// one workflow's structural error or panic never aborts its siblings.
func (e *Executor) ExecuteBatch(ctx context.Context, workflows []*models.ScenarioWorkflow, policy BatchPolicy) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(workflows))

	switch policy {
	case PolicyConcurrent:
		var wg sync.WaitGroup

		for i, wf := range workflows {
			i, wf := i, wf

			wg.Add(1)

			go func() {
				defer wg.Done()

				outcomes[i] = e.runIsolated(ctx, wf)
			}()
		}

		wg.Wait()
	default:
		for i, wf := range workflows {
			outcomes[i] = e.runIsolated(ctx, wf)
		}
	}

	return outcomes
}

func (e *Executor) runIsolated(ctx context.Context, wf *models.ScenarioWorkflow) (outcome BatchOutcome) {
	outcome.WorkflowID = wf.ID

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("workflow %s panicked: %v", wf.ID, r)
		}
	}()

	outcome.Result, outcome.Err = e.ExecuteWorkflow(ctx, wf)

	return outcome
}
