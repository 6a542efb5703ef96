package driver

import (
	"context"

	"github.com/dkempner/noiselab/internal/logits"
	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// Score runs one clean (no noise) forward pass over the batch and returns
// the per-position probability the model assigned to each realized token:
// column 0 is the sentinel 1, column j is the probability given to token j
// by the distribution at position j-1. A model failure is logged and
// returned as a *ForwardError.
func (d *Driver) Score(ctx context.Context, batch *tokenizer.Batch) (*tensor.Grid, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	out, err := safeForward(ctx, d.model, batch, model.ForwardOptions{})
	if err != nil {
		d.log.Error("scoring forward failed", "err", err, "rows", batch.Len())
		return nil, &ForwardError{Chunk: 0, Err: err}
	}

	tensor.Softmax(out)
	return logits.SelectNextTokenProbs(out, batch.InputIDs)
}

// ScoreTexts tokenizes the prompts and scores them in one call.
func (d *Driver) ScoreTexts(ctx context.Context, prompts []string) (*tensor.Grid, error) {
	batch, err := d.tok.EncodeBatch(prompts)
	if err != nil {
		return nil, err
	}
	return d.Score(ctx, batch)
}
