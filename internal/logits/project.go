// Package logits holds the score-space reductions shared by the drivers:
// projecting final-position logits onto a candidate token set and aligning
// probabilities against realized next tokens.
package logits

import (
	"fmt"

	"github.com/dkempner/noiselab/internal/tensor"
)

// Project reduces each sequence's final-position logits to the values at
// the caller's candidate token ids, for multiple-choice scoring. Candidate
// order is preserved exactly; ids are not sorted or deduplicated. The
// result is [rows x len(answerIDs)].
func Project(l *tensor.Logits, answerIDs []int) (*tensor.Grid, error) {
	if len(answerIDs) == 0 {
		return nil, fmt.Errorf("logits: no answer token ids")
	}
	for _, id := range answerIDs {
		if id < 0 || id >= l.Vocab {
			return nil, fmt.Errorf("logits: answer token id %d out of vocab range %d", id, l.Vocab)
		}
	}

	out := tensor.NewGrid(l.Batch, len(answerIDs))
	for b := 0; b < l.Batch; b++ {
		last := l.LastRow(b)
		row := out.Row(b)
		for j, id := range answerIDs {
			row[j] = last[id]
		}
	}
	return out, nil
}
