package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/model"
)

func choicesCmd() *cli.Command {
	var (
		prompt       string
		answerIDs    []int64
		numCopies    int64
		subBatchSize int64
		level        int64
		start        int64
		end          int64
		scale        float64
	)

	flags := append(commonModelFlags(), loggingFlags()...)
	flags = append(flags, windowFlags(&start, &end, &scale)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "prompt text",
			Destination: &prompt,
		},
		&cli.Int64SliceFlag{
			Name:        "answer-id",
			Usage:       "candidate answer token id, repeatable, order preserved",
			Destination: &answerIDs,
		},
		&cli.Int64Flag{
			Name:        "num-copies",
			Usage:       "replica count",
			Value:       driver.DefaultNumCopies,
			Destination: &numCopies,
		},
		&cli.Int64Flag{
			Name:        "sub-batch",
			Usage:       "replicas per forward chunk (0 = pick from free memory)",
			Destination: &subBatchSize,
		},
		&cli.Int64Flag{
			Name:        "level",
			Usage:       "noise level passed alongside the window",
			Destination: &level,
		},
	)

	return &cli.Command{
		Name:  "choices",
		Usage: "Score candidate answer tokens over noise-injected replicas",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			applyConfig(c, LoadConfig())
			log := newLogger()

			if prompt == "" {
				return cli.Exit("error: --prompt is required", 1)
			}
			if len(answerIDs) == 0 {
				return cli.Exit("error: at least one --answer-id is required", 1)
			}

			d, err := buildDriver(ctx, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			rendered, err := renderPrompts([]string{prompt})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			input, err := d.Tokenizer().EncodeBatch(rendered)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
			}

			ids := make([]int, len(answerIDs))
			for i, id := range answerIDs {
				ids[i] = int(id)
			}

			res, err := d.ForwardReplicated(ctx, driver.ReplicateRequest{
				Input: input,
				Window: model.NoiseWindow{
					Start: int(start),
					End:   int(end),
					Scale: scale,
				},
				Level:          int(level),
				NumCopies:      int(numCopies),
				SubBatchSize:   int(subBatchSize),
				AnswerTokenIDs: ids,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: forward: %v", err), 1)
			}

			enc := json.NewEncoder(os.Stdout)
			for i := 0; i < res.Choices.Rows; i++ {
				if err := enc.Encode(map[string]any{
					"replica": i,
					"logits":  res.Choices.Row(i),
				}); err != nil {
					return cli.Exit(fmt.Sprintf("error: write output: %v", err), 1)
				}
			}
			return nil
		},
	}
}
