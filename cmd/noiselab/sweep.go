package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dkempner/noiselab/internal/sweep"
)

func sweepCmd() *cli.Command {
	var (
		gridPath string
		outPath  string
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "grid",
			Aliases:     []string{"g"},
			Usage:       "path to sweep grid yaml (prompts, spans, scales)",
			Destination: &gridPath,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "output JSONL path (default stdout)",
			Destination: &outPath,
		},
	)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run a window/scale grid and stream one JSONL record per cell prompt",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			applyConfig(c, LoadConfig())
			log := newLogger()

			if gridPath == "" {
				return cli.Exit("error: --grid is required", 1)
			}
			data, err := os.ReadFile(gridPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read grid: %v", err), 1)
			}
			var cfg sweep.Config
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cli.Exit(fmt.Sprintf("error: parse grid: %v", err), 1)
			}

			rendered, err := renderPrompts(cfg.Prompts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			cfg.Prompts = rendered

			var w io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: create output: %v", err), 1)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			d, err := buildDriver(ctx, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			sum, err := sweep.NewRunner(d, log).Run(ctx, cfg, w)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: sweep: %v", err), 1)
			}
			fmt.Fprintf(os.Stderr, "run %s: %d cells, %d failures\n", sum.RunID, sum.Cells, sum.Failures)
			return nil
		},
	}
}
