package driver

import (
	"context"
	"fmt"

	"github.com/dkempner/noiselab/internal/model"
)

// DefaultMaxNewTokens bounds generation length when a request leaves it
// unset.
const DefaultMaxNewTokens = 100

// GenerateRequest asks for noise-injected continuations of a prompt
// batch.
//
// Window applies to every row. Windows, when non-empty, supplies one
// window per prompt (same order) and takes precedence. ExtraPrompt, when
// set, is appended as one more row before tokenization; it shares Window
// in shared mode and gets an empty (no-noise) window in per-row mode,
// serving as the unperturbed baseline.
type GenerateRequest struct {
	Prompts      []string
	Window       model.NoiseWindow
	Windows      []model.NoiseWindow
	ExtraPrompt  string
	MaxNewTokens int
}

// Generate runs one noise-injected generate call and returns the newly
// generated continuation text for each row, prompt echo stripped, in
// prompt order. A model failure is logged and returned as a
// *GenerationError; no partial output survives it.
func (d *Driver) Generate(ctx context.Context, req GenerateRequest) ([]string, error) {
	if len(req.Prompts) == 0 {
		return nil, fmt.Errorf("driver: no prompts")
	}
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}

	prompts := append([]string(nil), req.Prompts...)
	windows := append([]model.NoiseWindow(nil), req.Windows...)
	if len(windows) > 0 {
		if len(windows) != len(prompts) {
			return nil, fmt.Errorf("driver: %d windows for %d prompts", len(windows), len(prompts))
		}
		for _, w := range windows {
			if err := w.Validate(); err != nil {
				return nil, err
			}
		}
	}

	if req.ExtraPrompt != "" {
		prompts = append(prompts, req.ExtraPrompt)
		if len(windows) > 0 {
			windows = append(windows, model.NoiseWindow{})
		}
	}

	batch, err := d.tok.EncodeBatch(prompts)
	if err != nil {
		return nil, err
	}

	maxNew := req.MaxNewTokens
	if maxNew <= 0 {
		maxNew = DefaultMaxNewTokens
	}

	outputs, err := safeGenerate(ctx, d.model, batch, model.GenerateOptions{
		MaxNewTokens: maxNew,
		Window:       req.Window,
		Windows:      windows,
	})
	if err != nil {
		d.log.Error("generation failed",
			"err", err,
			"rows", len(prompts),
			"window_start", req.Window.Start,
			"window_end", req.Window.End,
			"scale", req.Window.Scale)
		return nil, &GenerationError{Err: err}
	}
	if len(outputs) != len(prompts) {
		return nil, &GenerationError{
			Err: fmt.Errorf("model returned %d rows for %d prompts", len(outputs), len(prompts)),
		}
	}

	// Strip each row's echoed prompt using that row's own input ids, so
	// unequal prompt lengths trim independently.
	results := make([]string, len(outputs))
	for i, ids := range outputs {
		text, err := d.tok.Decode(ids)
		if err != nil {
			return nil, fmt.Errorf("driver: decode output row %d: %w", i, err)
		}
		boundary, err := d.tok.GenerationBoundary(batch.InputIDs[i])
		if err != nil {
			return nil, err
		}
		if boundary > len(text) {
			boundary = len(text)
		}
		results[i] = text[boundary:]
	}
	return results, nil
}
