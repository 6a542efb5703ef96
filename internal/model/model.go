package model

import (
	"context"
	"fmt"

	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// NoiseWindow directs the model to perturb internal activations for token
// positions in the half-open interval [Start, End), scaled by Scale. The
// zero window covers no positions and leaves the forward pass untouched.
type NoiseWindow struct {
	Start int
	End   int
	Scale float64
}

// Validate checks the interval bounds.
func (w NoiseWindow) Validate() error {
	if w.Start < 0 {
		return fmt.Errorf("model: noise window start %d is negative", w.Start)
	}
	if w.End < w.Start {
		return fmt.Errorf("model: noise window [%d,%d) is inverted", w.Start, w.End)
	}
	return nil
}

// Contains reports whether position p falls inside the window.
func (w NoiseWindow) Contains(p int) bool {
	return p >= w.Start && p < w.End
}

// Empty reports whether the window covers no positions.
func (w NoiseWindow) Empty() bool {
	return w.End <= w.Start
}

// GenerateOptions parameterizes one noise-injected generate call. When
// Windows is non-empty it supplies one window per batch row and overrides
// Window; otherwise Window is shared by every row.
type GenerateOptions struct {
	MaxNewTokens int
	Window       NoiseWindow
	Windows      []NoiseWindow
}

// WindowFor resolves the effective window for batch row i.
func (o GenerateOptions) WindowFor(i int) NoiseWindow {
	if len(o.Windows) > 0 {
		return o.Windows[i]
	}
	return o.Window
}

// ForwardOptions parameterizes one noise-injected single-step forward
// pass. Level is an integer perturbation intensity used by replicated
// forward sweeps; its interpretation belongs to the model.
type ForwardOptions struct {
	Window NoiseWindow
	Level  int
}

// Model is the externally supplied generation-and-scoring engine. Both
// entry points accept a noise directive; how the perturbation is applied
// inside the network is opaque to this layer.
//
// Generate returns one token sequence per batch row, each echoing the
// (padded) input followed by newly generated tokens. Forward returns raw
// logits for every input position. Neither call mutates the batch.
type Model interface {
	Generate(ctx context.Context, batch *tokenizer.Batch, opts GenerateOptions) ([][]int, error)
	Forward(ctx context.Context, batch *tokenizer.Batch, opts ForwardOptions) (*tensor.Logits, error)
}

// Provider loads a model and its matching tokenizer codec. Weight formats
// and device placement are the provider's concern.
type Provider interface {
	Load(ctx context.Context, cfg Config) (Model, tokenizer.Codec, error)
}
