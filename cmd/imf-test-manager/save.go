package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/cmd"
	"github.com/sijadev/IMF-Test-Manager/pkg/log"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

func saveCommand() *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Store a scenario workflow from a JSON definition file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the workflow definition JSON",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("save")

			raw, err := os.ReadFile(command.String("file"))
			if err != nil {
				return fmt.Errorf("read workflow file: %w", err)
			}

			var workflow models.ScenarioWorkflow
			if err := json.Unmarshal(raw, &workflow); err != nil {
				return fmt.Errorf("decode workflow file: %w", err)
			}

			store := cmd.NewPersistence(command.String("data-path"))
			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if err := store.SaveWorkflow(ctx, &workflow); err != nil {
				return fmt.Errorf("save workflow: %w", err)
			}

			fmt.Printf("Saved workflow %s (%s)\n", workflow.ID, workflow.Name)

			return nil
		},
	}
}
