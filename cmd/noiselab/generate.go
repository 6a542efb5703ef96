package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/model"
)

func generateCmd() *cli.Command {
	var (
		prompts      []string
		extraPrompt  string
		maxNewTokens int64
		start        int64
		end          int64
		scale        float64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags, windowFlags(&start, &end, &scale)...)
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "prompt text, repeatable",
			Destination: &prompts,
		},
		&cli.StringFlag{
			Name:        "extra-prompt",
			Usage:       "extra unperturbed baseline prompt appended to the batch",
			Destination: &extraPrompt,
		},
		&cli.Int64Flag{
			Name:        "max-new-tokens",
			Aliases:     []string{"n"},
			Usage:       "number of tokens to generate",
			Value:       driver.DefaultMaxNewTokens,
			Destination: &maxNewTokens,
		},
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate noise-injected continuations for a prompt batch",
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

			outputs, err := d.Generate(ctx, driver.GenerateRequest{
				Prompts: rendered,
				Window: model.NoiseWindow{
					Start: int(start),
					End:   int(end),
					Scale: scale,
				},
				ExtraPrompt:  extraPrompt,
				MaxNewTokens: int(maxNewTokens),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: generate: %v", err), 1)
			}

			for i, out := range outputs {
				if len(outputs) > 1 {
					fmt.Printf("[%d] %s\n", i, out)
				} else {
					fmt.Println(out)
				}
			}
			return nil
		},
	}
}
