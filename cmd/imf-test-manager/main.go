package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/log"
)

func main() {
	cmd := &cli.Command{
		Name:                  "imf-test-manager",
		Usage:                 "Generate synthetic test data and run test scenario workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Directory where workflow definitions are stored",
				Value:   "./data",
				Sources: cli.EnvVars("IMF_DATA_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			generateCommand(),
			listCommand(),
			saveCommand(),
			scheduleCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Setup("error")
		log.WithModule("imf-test-manager").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
