package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/cmd"
	"github.com/sijadev/IMF-Test-Manager/pkg/log"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List stored scenario workflows",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("list")

			store := cmd.NewPersistence(command.String("data-path"))
			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			workflows, err := store.Workflows(ctx)
			if err != nil {
				return fmt.Errorf("list workflows: %w", err)
			}

			if len(workflows) == 0 {
				fmt.Println("No workflows found.")

				return nil
			}

			for _, workflow := range workflows {
				fmt.Printf("%s\t%s\t%d steps\n", workflow.ID, workflow.Name, len(workflow.Steps))
			}

			return nil
		},
	}
}
