// Package executor runs scenario workflows: dependency-ordered step
// execution with per-step timeout and retry, conditional skipping,
// best-effort rollback, and result synthesis.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sijadev/IMF-Test-Manager/pkg/eventbus"
	"github.com/sijadev/IMF-Test-Manager/pkg/events"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
	"github.com/sijadev/IMF-Test-Manager/pkg/otelhelper"
	"github.com/sijadev/IMF-Test-Manager/pkg/protocol"
	"github.com/sijadev/IMF-Test-Manager/pkg/registry"
)

var (
	ErrInvalidWorkflow    = errors.New("invalid workflow definition")
	ErrExecutionCancelled = errors.New("execution cancelled")
)

const (
	defaultStepTimeout    = 30 * time.Second
	defaultBaseRetryDelay = 100 * time.Millisecond
)

type Executor struct {
	registry       *registry.Registry
	logger         *slog.Logger
	publisher      eventbus.EventPublisher
	tracer         trace.Tracer
	validate       *validator.Validate
	baseRetryDelay time.Duration

	mu     sync.RWMutex
	active map[string]context.CancelFunc
}

type Option func(*Executor)

// WithEventPublisher wires execution lifecycle events to a bus.
// Publish failures are logged, never fatal.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

// WithTracer enables span creation per workflow run and per step.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithBaseRetryDelay sets the unit for the linear retry backoff
// (attempt number times this delay).
func WithBaseRetryDelay(delay time.Duration) Option {
	return func(e *Executor) {
		e.baseRetryDelay = delay
	}
}

func New(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		registry:       reg,
		logger:         logger.With("module", "scenario_executor"),
		tracer:         noop.NewTracerProvider().Tracer("executor"),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		baseRetryDelay: defaultBaseRetryDelay,
		active:         make(map[string]context.CancelFunc),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExecuteWorkflow runs one workflow to completion. Ordinary step
// failures never surface as an error; they are recorded in the result.
// A non-nil error means the workflow was never validly constructed
// (malformed definition, unregistered kind, invalid parameters, or a
// dependency cycle) and no step ran.
func (e *Executor) ExecuteWorkflow(ctx context.Context, wf *models.ScenarioWorkflow) (*models.WorkflowResult, error) {
	if err := e.preflight(wf); err != nil {
		return nil, err
	}

	order, err := topologicalOrder(wf)
	if err != nil {
		return nil, err
	}

	executionID := "exec-" + uuid.New().String()[:8]

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.active[executionID] = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, executionID)
		e.mu.Unlock()
	}()

	logger := e.logger.With("workflow_id", wf.ID, "execution_id", executionID)
	logger.Info("Starting execution of workflow", "steps", len(order))

	runCtx, span := otelhelper.StartSpan(runCtx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	executionCtx := models.NewExecutionContext(executionID, wf.ID, wf.GlobalConfig)

	e.publish(runCtx, wf.ID, events.ExecutionStarted{
		BaseEvent: events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID, executionID),
		StepCount: len(order),
	})

	start := time.Now()

	var runErrors []string

	for _, stepID := range order {
		if runCtx.Err() != nil {
			runErrors = append(runErrors, ErrExecutionCancelled.Error())
			logger.Warn("Execution cancelled, not advancing to remaining steps")

			break
		}

		step, _ := wf.StepByID(stepID)
		stepLogger := logger.With("step_id", step.ID, "step_kind", step.Kind)

		if step.Condition != nil && !step.Condition(executionCtx) {
			stepLogger.Info("Step condition evaluated to false, skipping")
			executionCtx.MarkSkipped(step.ID)
			e.publish(runCtx, wf.ID, events.StepSkipped{
				BaseEvent: events.NewBaseEvent(events.StepSkippedEvent, wf.ID, executionID),
				StepID:    step.ID,
			})

			continue
		}

		if unmet := unmetDependencies(step, executionCtx); len(unmet) > 0 {
			err := fmt.Errorf("dependencies not met for step %s: %v", step.ID, unmet)
			stepLogger.Warn("Skipping handler, dependencies not met", "unmet", unmet)
			executionCtx.MarkFailed(step.ID)
			runErrors = append(runErrors, err.Error())
			e.publish(runCtx, wf.ID, events.StepFailed{
				BaseEvent: events.NewBaseEvent(events.StepFailedEvent, wf.ID, executionID),
				StepID:    step.ID,
				Error:     err.Error(),
			})

			continue
		}

		result, duration, err := e.runStep(runCtx, step, executionCtx, stepLogger)
		if err != nil {
			stepLogger.Error("Step failed", "error", err, "duration", duration)
			executionCtx.MarkFailed(step.ID)
			runErrors = append(runErrors, fmt.Sprintf("step %s: %v", step.ID, err))
			e.publish(runCtx, wf.ID, events.StepFailed{
				BaseEvent: events.NewBaseEvent(events.StepFailedEvent, wf.ID, executionID),
				StepID:    step.ID,
				Error:     err.Error(),
			})

			if wf.Validation.RollbackOnFailure {
				e.rollback(runCtx, wf, executionCtx, step.ID, logger)

				break
			}

			continue
		}

		stepLogger.Info("Step completed", "duration", duration)
		executionCtx.MarkCompleted(step.ID, result, duration)
		e.publish(runCtx, wf.ID, events.StepCompleted{
			BaseEvent: events.NewBaseEvent(events.StepCompletedEvent, wf.ID, executionID),
			StepID:    step.ID,
			Duration:  duration,
		})
	}

	result := synthesizeResult(wf, executionCtx, time.Since(start), runErrors)

	if !result.Success {
		otelhelper.SetError(span, fmt.Errorf("workflow %s did not succeed", wf.ID))
	}

	e.publish(runCtx, wf.ID, events.ExecutionFinished{
		BaseEvent: events.NewBaseEvent(events.ExecutionFinishedEvent, wf.ID, executionID),
		Success:   result.Success,
		Duration:  result.Duration,
	})

	logger.Info("Completed execution of workflow",
		"success", result.Success,
		"completed", len(result.CompletedSteps),
		"failed", len(result.FailedSteps),
		"skipped", len(result.SkippedSteps),
	)

	return result, nil
}

// Cancel removes a running execution from the active registry and
// cancels its context. In-flight handler work is not forcibly
// interrupted; handlers that honor their context stop early, others
// have their eventual outcome discarded.
func (e *Executor) Cancel(executionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cancel, ok := e.active[executionID]
	if !ok {
		return false
	}

	cancel()
	delete(e.active, executionID)

	return true
}

// ActiveExecutions lists the ids of currently running executions.
func (e *Executor) ActiveExecutions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}

	return ids
}

// preflight raises every structural error before any step runs:
// malformed definition, unregistered kinds, schema-invalid parameters.
func (e *Executor) preflight(wf *models.ScenarioWorkflow) error {
	if err := e.validate.Struct(wf); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}

	for _, step := range wf.Steps {
		if err := e.registry.ValidateStep(step); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) runStep(ctx context.Context, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, time.Duration, error) {
	handler, err := e.registry.CreateHandler(step)
	if err != nil {
		return nil, 0, err
	}

	stepCtx, span := otelhelper.StartSpan(ctx, e.tracer, "step.execute",
		attribute.String(otelhelper.StepIDKey, step.ID),
		attribute.String(otelhelper.StepKindKey, string(step.Kind)),
	)
	defer span.End()

	start := time.Now()

	var lastErr error

	for attempt := 0; attempt <= step.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * e.baseRetryDelay

			select {
			case <-time.After(delay):
			case <-stepCtx.Done():
				return nil, time.Since(start), stepCtx.Err()
			}

			logger.Debug("Retrying step", "attempt", attempt, "backoff", delay)
		}

		result, err := e.runAttempt(stepCtx, handler, step, executionCtx, logger)
		if err == nil {
			return result, time.Since(start), nil
		}

		lastErr = err
		span.AddEvent("attempt_failed")
	}

	otelhelper.SetError(span, lastErr)

	return nil, time.Since(start), lastErr
}

// runAttempt races the handler against the step timeout. The handler
// runs against a snapshot of the execution context, so an abandoned
// attempt can never touch the live context; its state changes are
// adopted only after the attempt settles first and succeeds.
func (e *Executor) runAttempt(ctx context.Context, handler protocol.StepHandler, step *models.ExecutionStep, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}

	done := make(chan outcome, 1)
	scratch := executionCtx.Snapshot()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()

		result, err := handler.Execute(attemptCtx, step, scratch, logger)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			// The attempt goroutine has settled, nothing else
			// aliases the scratch state.
			executionCtx.GlobalState = scratch.GlobalState
		}

		return out.result, out.err
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("step %s timed out after %s", step.ID, timeout)
		}

		return nil, attemptCtx.Err()
	}
}

// rollback undoes every currently completed step in reverse completion
// order. Compensating-action model: rollback hook failures are logged,
// not re-raised, and the step's result is removed regardless.
func (e *Executor) rollback(ctx context.Context, wf *models.ScenarioWorkflow, executionCtx *models.ExecutionContext, failedStepID string, logger *slog.Logger) {
	completed := make([]string, len(executionCtx.CompletedSteps))
	copy(completed, executionCtx.CompletedSteps)

	logger.Warn("Rolling back completed steps", "failed_step", failedStepID, "count", len(completed))

	e.publish(ctx, wf.ID, events.RollbackStarted{
		BaseEvent:    events.NewBaseEvent(events.RollbackStartedEvent, wf.ID, executionCtx.ExecutionID),
		FailedStepID: failedStepID,
		StepsToUndo:  completed,
	})

	for i := len(completed) - 1; i >= 0; i-- {
		stepID := completed[i]

		step, found := wf.StepByID(stepID)
		if found {
			if handler, err := e.registry.CreateHandler(step); err == nil {
				if rb, ok := handler.(protocol.RollbackHandler); ok {
					if err := rb.Rollback(ctx, step, executionCtx, logger); err != nil {
						logger.Warn("Rollback hook failed", "step_id", stepID, "error", err)
					}
				}
			}
		}

		executionCtx.Unmark(stepID)
	}
}

func unmetDependencies(step *models.ExecutionStep, executionCtx *models.ExecutionContext) []string {
	var unmet []string

	for _, dep := range step.DependsOn {
		if !executionCtx.IsCompleted(dep) {
			unmet = append(unmet, dep)
		}
	}

	return unmet
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish execution event", "event_type", event.GetType(), "error", err)
	}
}
