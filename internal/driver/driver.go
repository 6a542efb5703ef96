// Package driver orchestrates noise-injected generation and scoring over
// an externally supplied model. One Driver replaces the historical zoo of
// near-duplicate wrappers: the noise window may be shared or per-row, the
// output may be generated text, raw logits or answer-choice logits, and
// replication/chunking is a request parameter rather than a separate type.
package driver

import (
	"context"
	"fmt"

	"github.com/dkempner/noiselab/internal/logger"
	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// Driver issues generate and forward calls against one model/tokenizer
// pair. It holds no per-call state; concurrent use of one instance must be
// externally serialized.
type Driver struct {
	model model.Model
	tok   *tokenizer.Adapter
	log   logger.Logger
}

// Options configures a Driver.
type Options struct {
	Logger logger.Logger
}

// New builds a Driver over the given model and tokenization adapter.
func New(m model.Model, tok *tokenizer.Adapter, opts Options) (*Driver, error) {
	if m == nil {
		return nil, fmt.Errorf("driver: model is required")
	}
	if tok == nil {
		return nil, fmt.Errorf("driver: tokenization adapter is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Driver{model: m, tok: tok, log: log}, nil
}

// Tokenizer exposes the adapter for callers that pre-tokenize input.
func (d *Driver) Tokenizer() *tokenizer.Adapter {
	return d.tok
}

// safeGenerate shields the driver from panics inside the model; a panic
// surfaces as an error like any other generation failure.
func safeGenerate(ctx context.Context, m model.Model, batch *tokenizer.Batch, opts model.GenerateOptions) (out [][]int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Generate: %v", rec)
		}
	}()
	return m.Generate(ctx, batch, opts)
}

func safeForward(ctx context.Context, m model.Model, batch *tokenizer.Batch, opts model.ForwardOptions) (out *tensor.Logits, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in Forward: %v", rec)
		}
	}()
	return m.Forward(ctx, batch, opts)
}
