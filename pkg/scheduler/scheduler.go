// Package scheduler runs stored scenario workflows on cron schedules.
// Each firing is an independent execution with its own context.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/executor"
	"github.com/sijadev/IMF-Test-Manager/pkg/persistence"
)

type Scheduler struct {
	executor    *executor.Executor
	persistence persistence.Persistence
	logger      *slog.Logger
	cron        *cron.Cron

	mu      sync.Mutex
	started bool
	entries map[string]cron.EntryID
}

func NewScheduler(exec *executor.Executor, store persistence.Persistence, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		executor:    exec,
		persistence: store,
		logger:      logger.With("module", "scheduler"),
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(
				cron.SkipIfStillRunning(cron.DiscardLogger),
				cron.Recover(cron.DiscardLogger),
			),
		),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a recurring execution of a stored workflow. Cron
// expressions use seconds granularity; @every durations also work.
func (s *Scheduler) Add(ctx context.Context, spec, workflowID string) error {
	if workflowID == "" {
		return errors.New("workflow id is required")
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		s.fire(ctx, workflowID)
	})
	if err != nil {
		return fmt.Errorf("failed to add schedule %q for workflow %s: %w", spec, workflowID, err)
	}

	s.mu.Lock()
	s.entries[workflowID] = entryID
	s.mu.Unlock()

	s.logger.Info("Scheduled workflow", "workflow_id", workflowID, "cron", spec)

	return nil
}

// Remove drops the schedule for a workflow, if one exists.
func (s *Scheduler) Remove(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[workflowID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, workflowID)
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("Scheduler started")
}

// Stop halts scheduling and waits for in-flight firings to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	<-s.cron.Stop().Done()
	s.started = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) fire(ctx context.Context, workflowID string) {
	logger := s.logger.With("workflow_id", workflowID)

	workflow, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		logger.Error("Failed to load scheduled workflow", "error", err)

		return
	}

	result, err := s.executor.ExecuteWorkflow(ctx, workflow)
	if err != nil {
		logger.Error("Scheduled execution failed structurally", "error", err)

		return
	}

	logger.Info("Scheduled execution finished",
		"execution_id", result.ExecutionID,
		"success", result.Success,
		"duration", result.Duration,
	)
}
