// Package sweep runs grids of noise-injection experiments and records the
// outcome of every cell as a JSONL stream. A failed cell is recorded and
// skipped; it never aborts the remaining grid.
package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/logger"
	"github.com/dkempner/noiselab/internal/model"
)

// Span is one noise position interval of the grid, before scales are
// applied.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Config describes a sweep grid: every span is run at every scale over
// the full prompt batch.
type Config struct {
	Prompts      []string  `yaml:"prompts"`
	Spans        []Span    `yaml:"spans"`
	Scales       []float64 `yaml:"scales"`
	MaxNewTokens int       `yaml:"max_new_tokens"`
}

func (c Config) validate() error {
	if len(c.Prompts) == 0 {
		return fmt.Errorf("sweep: no prompts")
	}
	if len(c.Spans) == 0 {
		return fmt.Errorf("sweep: no noise spans")
	}
	if len(c.Scales) == 0 {
		return fmt.Errorf("sweep: no scales")
	}
	for _, s := range c.Spans {
		if err := (model.NoiseWindow{Start: s.Start, End: s.End}).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Record is one output line: a single prompt under a single window/scale
// cell. Error is set when the whole cell failed; Output is then empty.
type Record struct {
	RunID     string  `json:"run_id"`
	Prompt    string  `json:"prompt"`
	Start     int     `json:"start_noise_idx"`
	End       int     `json:"end_noise_idx"`
	Scale     float64 `json:"noise_scale"`
	Output    string  `json:"output,omitempty"`
	Error     string  `json:"error,omitempty"`
	ElapsedMS int64   `json:"elapsed_ms"`
}

// Summary reports the sweep as a whole.
type Summary struct {
	RunID    string
	Cells    int
	Failures int
}

// Runner drives sweeps over one driver instance.
type Runner struct {
	driver *driver.Driver
	log    logger.Logger
}

func NewRunner(d *driver.Driver, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{driver: d, log: log}
}

// Run executes the grid and streams one JSON record per prompt per cell
// to w. Cell failures are recorded and the sweep continues; only context
// cancellation or a write error stops it early.
func (r *Runner) Run(ctx context.Context, cfg Config, w io.Writer) (Summary, error) {
	if err := cfg.validate(); err != nil {
		return Summary{}, err
	}

	sum := Summary{RunID: uuid.NewString()}
	enc := json.NewEncoder(w)
	log := r.log.With("run_id", sum.RunID)
	log.Info("starting sweep",
		"prompts", len(cfg.Prompts),
		"spans", len(cfg.Spans),
		"scales", len(cfg.Scales))

	for _, span := range cfg.Spans {
		for _, scale := range cfg.Scales {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			sum.Cells++

			window := model.NoiseWindow{Start: span.Start, End: span.End, Scale: scale}
			start := time.Now()
			outputs, err := r.driver.Generate(ctx, driver.GenerateRequest{
				Prompts:      cfg.Prompts,
				Window:       window,
				MaxNewTokens: cfg.MaxNewTokens,
			})
			elapsed := time.Since(start).Milliseconds()

			if err != nil {
				sum.Failures++
				log.Warn("sweep cell failed",
					"start", span.Start, "end", span.End, "scale", scale, "err", err)
				for _, p := range cfg.Prompts {
					rec := Record{
						RunID:     sum.RunID,
						Prompt:    p,
						Start:     span.Start,
						End:       span.End,
						Scale:     scale,
						Error:     err.Error(),
						ElapsedMS: elapsed,
					}
					if err := enc.Encode(rec); err != nil {
						return sum, fmt.Errorf("sweep: write record: %w", err)
					}
				}
				continue
			}

			for i, p := range cfg.Prompts {
				rec := Record{
					RunID:     sum.RunID,
					Prompt:    p,
					Start:     span.Start,
					End:       span.End,
					Scale:     scale,
					Output:    outputs[i],
					ElapsedMS: elapsed,
				}
				if err := enc.Encode(rec); err != nil {
					return sum, fmt.Errorf("sweep: write record: %w", err)
				}
			}
		}
	}

	log.Info("sweep complete", "cells", sum.Cells, "failures", sum.Failures)
	return sum, nil
}
