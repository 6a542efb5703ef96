package logits

import (
	"fmt"

	"github.com/dkempner/noiselab/internal/tensor"
)

// SelectNextTokenProbs recovers, for every position j >= 1 of every row,
// the probability the model assigned at position j-1 to the token that
// actually occurs at position j. Position 0 has no predictor and is fixed
// at 1. probs must already be softmax-normalized over the vocabulary axis
// and inputIDs must match its batch and position dimensions.
//
// The shift-by-one alignment is the correctness invariant here: a token's
// probability always comes from the distribution computed one position
// earlier.
func SelectNextTokenProbs(probs *tensor.Logits, inputIDs [][]int) (*tensor.Grid, error) {
	if len(inputIDs) != probs.Batch {
		return nil, fmt.Errorf("logits: %d id rows for batch of %d", len(inputIDs), probs.Batch)
	}

	out := tensor.NewGrid(probs.Batch, probs.Positions)
	for i, ids := range inputIDs {
		if len(ids) != probs.Positions {
			return nil, fmt.Errorf("logits: row %d has %d tokens, logits have %d positions",
				i, len(ids), probs.Positions)
		}
		row := out.Row(i)
		row[0] = 1
		for j := 1; j < len(ids); j++ {
			tok := ids[j]
			if tok < 0 || tok >= probs.Vocab {
				return nil, fmt.Errorf("logits: token id %d out of vocab range %d at [%d %d]",
					tok, probs.Vocab, i, j)
			}
			row[j] = probs.At(i, j-1, tok)
		}
	}
	return out, nil
}
