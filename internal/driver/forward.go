package driver

import (
	"context"
	"fmt"

	"github.com/dkempner/noiselab/internal/logits"
	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// DefaultNumCopies is the replica count used when a request leaves it
// unset.
const DefaultNumCopies = 8

// ReplicateRequest asks for noise-injected logits over NumCopies identical
// replicas of a single tokenized prompt, evaluated in sub-batches of
// SubBatchSize to bound peak memory. AnswerTokenIDs, when set, reduces
// each replica's final-position logits to that candidate set.
type ReplicateRequest struct {
	Input          *tokenizer.Batch
	Window         model.NoiseWindow
	Level          int
	NumCopies      int
	SubBatchSize   int
	AnswerTokenIDs []int
}

// ReplicateResult carries either full logits or answer-choice logits,
// depending on whether the request named candidates. Exactly one field is
// set.
type ReplicateResult struct {
	Logits  *tensor.Logits
	Choices *tensor.Grid
}

// Rows returns the number of replica rows in the result.
func (r *ReplicateResult) Rows() int {
	if r.Choices != nil {
		return r.Choices.Rows
	}
	if r.Logits != nil {
		return r.Logits.Batch
	}
	return 0
}

// ForwardReplicated replicates the input, evaluates consecutive full
// chunks of SubBatchSize replicas and concatenates the results in chunk
// order.
//
// The chunk count is NumCopies/SubBatchSize: a final partial chunk is
// dropped, not padded, so NumCopies=10 with SubBatchSize=4 yields 8 rows.
// Downstream analyses depend on this truncated count, so it is preserved
// rather than fixed; see DESIGN.md.
//
// A failure in any chunk aborts the call and discards chunks already
// computed.
func (d *Driver) ForwardReplicated(ctx context.Context, req ReplicateRequest) (*ReplicateResult, error) {
	if req.Input == nil || req.Input.Len() != 1 {
		return nil, fmt.Errorf("driver: replicated forward requires a single-sequence batch")
	}
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}

	numCopies := req.NumCopies
	if numCopies <= 0 {
		numCopies = DefaultNumCopies
	}
	subBatch := req.SubBatchSize
	if subBatch <= 0 {
		subBatch = defaultSubBatchSize()
	}

	chunks := numCopies / subBatch
	if chunks == 0 {
		return nil, fmt.Errorf("driver: %d copies yield no full chunk of %d", numCopies, subBatch)
	}

	replicated, err := req.Input.Replicate(numCopies)
	if err != nil {
		return nil, err
	}

	opts := model.ForwardOptions{Window: req.Window, Level: req.Level}

	var (
		logitParts  []*tensor.Logits
		choiceParts []*tensor.Grid
	)
	for i := 0; i < chunks; i++ {
		chunk := replicated.Slice(i*subBatch, (i+1)*subBatch)
		out, err := safeForward(ctx, d.model, chunk, opts)
		if err != nil {
			d.log.Error("forward failed",
				"err", err,
				"chunk", i,
				"chunks", chunks,
				"sub_batch", subBatch)
			return nil, &ForwardError{Chunk: i, Err: err}
		}
		if len(req.AnswerTokenIDs) > 0 {
			grid, err := logits.Project(out, req.AnswerTokenIDs)
			if err != nil {
				return nil, err
			}
			choiceParts = append(choiceParts, grid)
		} else {
			logitParts = append(logitParts, out)
		}
	}

	if len(req.AnswerTokenIDs) > 0 {
		return &ReplicateResult{Choices: tensor.ConcatGrids(choiceParts)}, nil
	}
	return &ReplicateResult{Logits: tensor.ConcatLogits(logitParts)}, nil
}
