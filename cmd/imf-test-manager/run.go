package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/cmd"
	"github.com/sijadev/IMF-Test-Manager/pkg/executor"
	"github.com/sijadev/IMF-Test-Manager/pkg/generator"
	"github.com/sijadev/IMF-Test-Manager/pkg/log"
	"github.com/sijadev/IMF-Test-Manager/pkg/otelhelper"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute a stored scenario workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow-id",
				Aliases:  []string{"w"},
				Usage:    "ID of the workflow to execute",
				Required: true,
				Sources:  cli.EnvVars("IMF_WORKFLOW_ID"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP",
				Value:   false,
				Sources: cli.EnvVars("IMF_TRACING"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("run")

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

			opts := []executor.Option{executor.WithEventPublisher(eventBus)}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "imf-test-manager")
				if err != nil {
					return fmt.Errorf("initialize tracer: %w", err)
				}

				opts = append(opts, executor.WithTracer(tracer))
			}

			exec := executor.New(registry, logger, opts...)

			workflow, err := store.WorkflowByID(ctx, command.String("workflow-id"))
			if err != nil {
				return fmt.Errorf("load workflow: %w", err)
			}

			result, err := exec.ExecuteWorkflow(ctx, workflow)
			if err != nil {
				return fmt.Errorf("execute workflow: %w", err)
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}

			fmt.Println(string(encoded))

			if !result.Success {
				return fmt.Errorf("workflow %s finished unsuccessfully", workflow.ID)
			}

			return nil
		},
	}
}
