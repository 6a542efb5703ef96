package tokenizer

import "fmt"

// Batch is a left-padded token batch: InputIDs and AttentionMask are
// equal-shape [rows x seqLen] grids, with mask value 1 for real tokens and
// 0 for padding. Row order matches the prompt order it was encoded from.
type Batch struct {
	InputIDs      [][]int
	AttentionMask [][]int
}

// Len returns the number of sequences in the batch.
func (b *Batch) Len() int {
	return len(b.InputIDs)
}

// SeqLen returns the common (padded) sequence length, or 0 for an empty
// batch.
func (b *Batch) SeqLen() int {
	if len(b.InputIDs) == 0 {
		return 0
	}
	return len(b.InputIDs[0])
}

// Validate checks the equal-shape invariant.
func (b *Batch) Validate() error {
	if len(b.InputIDs) != len(b.AttentionMask) {
		return fmt.Errorf("tokenizer: %d id rows but %d mask rows",
			len(b.InputIDs), len(b.AttentionMask))
	}
	seqLen := b.SeqLen()
	for i := range b.InputIDs {
		if len(b.InputIDs[i]) != seqLen || len(b.AttentionMask[i]) != seqLen {
			return fmt.Errorf("tokenizer: row %d has ragged length", i)
		}
	}
	return nil
}

// Replicate returns a new batch holding n identical copies of the single
// sequence in b. It is used to sample noise effects over one prompt.
func (b *Batch) Replicate(n int) (*Batch, error) {
	if b.Len() != 1 {
		return nil, fmt.Errorf("tokenizer: replicate requires a single-sequence batch, got %d", b.Len())
	}
	if n <= 0 {
		return nil, fmt.Errorf("tokenizer: replicate count must be positive, got %d", n)
	}
	out := &Batch{
		InputIDs:      make([][]int, n),
		AttentionMask: make([][]int, n),
	}
	for i := 0; i < n; i++ {
		out.InputIDs[i] = append([]int(nil), b.InputIDs[0]...)
		out.AttentionMask[i] = append([]int(nil), b.AttentionMask[0]...)
	}
	return out, nil
}

// Slice returns the half-open row range [lo, hi) as a batch. The returned
// rows alias the original storage.
func (b *Batch) Slice(lo, hi int) *Batch {
	return &Batch{
		InputIDs:      b.InputIDs[lo:hi],
		AttentionMask: b.AttentionMask[lo:hi],
	}
}
