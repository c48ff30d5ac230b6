package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/cmd"
	"github.com/sijadev/IMF-Test-Manager/pkg/executor"
	"github.com/sijadev/IMF-Test-Manager/pkg/generator"
	"github.com/sijadev/IMF-Test-Manager/pkg/log"
	"github.com/sijadev/IMF-Test-Manager/pkg/scheduler"
)

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"s"},
		Usage:   "Run a workflow repeatedly on a cron schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow-id",
				Aliases:  []string{"w"},
				Usage:    "ID of the workflow to schedule",
				Required: true,
				Sources:  cli.EnvVars("IMF_WORKFLOW_ID"),
			},
			&cli.StringFlag{
				Name:     "cron",
				Aliases:  []string{"c"},
				Usage:    "Cron expression with seconds field, or @every syntax",
				Required: true,
				Sources:  cli.EnvVars("IMF_CRON"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("schedule")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := cmd.NewPersistence(command.String("data-path"))
			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(logger)
			if err != nil {
				return fmt.Errorf("create event bus: %w", err)
			}
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			gen := generator.New(logger)
			registry := cmd.NewRegistry(logger, gen)
			exec := executor.New(registry, logger, executor.WithEventPublisher(eventBus))

			sched := scheduler.NewScheduler(exec, store, logger)

			workflowID := command.String("workflow-id")
			if err := sched.Add(ctx, command.String("cron"), workflowID); err != nil {
				return fmt.Errorf("schedule workflow %s: %w", workflowID, err)
			}

			sched.Start()
			logger.InfoContext(ctx, "Scheduler started", "workflow_id", workflowID, "cron", command.String("cron"))

			<-ctx.Done()

			logger.Info("Shutting down scheduler")
			sched.Stop()

			return nil
		},
	}
}
