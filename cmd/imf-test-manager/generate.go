package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/sijadev/IMF-Test-Manager/pkg/generator"
	"github.com/sijadev/IMF-Test-Manager/pkg/log"
	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Generate a synthetic metric stream and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metric",
				Aliases: []string{"m"},
				Usage:   "Metric type (cpu, memory, disk, network)",
				Value:   "cpu",
			},
			&cli.StringFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Usage:   "Pattern (stable, spike, degradation, leak, fragmentation, congestion)",
				Value:   "stable",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Simulated time span covered by the stream",
				Value:   time.Minute,
			},
			&cli.FloatFlag{
				Name:  "base-value",
				Usage: "Baseline value the pattern shapes around",
				Value: 50,
			},
			&cli.FloatFlag{
				Name:  "variance",
				Usage: "Relative jitter amplitude",
				Value: 0.1,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed for reproducible streams (0 means random)",
				Value: 0,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write the stream to instead of stdout",
				Value:   "",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("generate")

			gen := generator.New(logger)

			stream, err := gen.GenerateStream(generator.Request{
				Type:      models.MetricType(command.String("metric")),
				Pattern:   models.PatternType(command.String("pattern")),
				Duration:  command.Duration("duration"),
				BaseValue: command.Float("base-value"),
				Variance:  command.Float("variance"),
				Params: generator.PatternParams{
					Seed: int64(command.Int("seed")),
				},
			})
			if err != nil {
				return fmt.Errorf("generate stream: %w", err)
			}

			encoded, err := json.MarshalIndent(stream, "", "  ")
			if err != nil {
				return fmt.Errorf("encode stream: %w", err)
			}

			if output := command.String("output"); output != "" {
				return os.WriteFile(output, encoded, 0o600)
			}

			fmt.Println(string(encoded))

			return nil
		},
	}
}
