package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func scoreCmd() *cli.Command {
	var prompts []string

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "prompt text, repeatable",
			Destination: &prompts,
		},
	)

	return &cli.Command{
		Name:  "score",
		Usage: "Print per-token next-token probabilities for each prompt",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			applyConfig(c, LoadConfig())
			log := newLogger()

			if len(prompts) == 0 {
				return cli.Exit("error: at least one --prompt is required", 1)
			}

			d, err := buildDriver(ctx, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			rendered, err := renderPrompts(prompts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			probs, err := d.ScoreTexts(ctx, rendered)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: score: %v", err), 1)
			}

			enc := json.NewEncoder(os.Stdout)
			for i := 0; i < probs.Rows; i++ {
				if err := enc.Encode(map[string]any{
					"prompt": prompts[i],
					"probs":  probs.Row(i),
				}); err != nil {
					return cli.Exit(fmt.Sprintf("error: write output: %v", err), 1)
				}
			}
			return nil
		},
	}
}
