package tokenizer

import (
	"fmt"
	"strings"
)

// Adapter wraps a Codec with the batch-level policies the drivers depend
// on: left padding to a common length, attention masks, skip-special
// decoding and generation-boundary computation.
//
// The pad token is resolved exactly once at construction. An explicit pad
// token wins; LLaMA-family tokenizers fall back to the unknown token; the
// final fallback is the end-of-sequence token.
type Adapter struct {
	codec Codec
	padID int
}

// NewAdapter builds an Adapter for the given codec. name is the tokenizer
// path or identifier, used only to detect LLaMA-family tokenizers for the
// pad fallback.
func NewAdapter(codec Codec, name string) (*Adapter, error) {
	pad := codec.PadID()
	if pad < 0 && strings.Contains(strings.ToLower(name), "llama") {
		pad = codec.UnkID()
	}
	if pad < 0 {
		pad = codec.EOSID()
	}
	if pad < 0 {
		return nil, fmt.Errorf("tokenizer: %q has no pad, unk or eos token to pad with", name)
	}
	return &Adapter{codec: codec, padID: pad}, nil
}

// PadID returns the resolved padding token id.
func (a *Adapter) PadID() int {
	return a.padID
}

// EncodeBatch tokenizes the prompts and left-pads them to a common length.
// Prompts are never truncated. Row order is preserved.
func (a *Adapter) EncodeBatch(prompts []string) (*Batch, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("tokenizer: empty prompt batch")
	}
	rows := make([][]int, len(prompts))
	maxLen := 0
	for i, p := range prompts {
		ids, err := a.codec.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: encode prompt %d: %w", i, err)
		}
		rows[i] = ids
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}

	batch := &Batch{
		InputIDs:      make([][]int, len(rows)),
		AttentionMask: make([][]int, len(rows)),
	}
	for i, ids := range rows {
		padded := make([]int, maxLen)
		mask := make([]int, maxLen)
		pad := maxLen - len(ids)
		for j := 0; j < pad; j++ {
			padded[j] = a.padID
		}
		copy(padded[pad:], ids)
		for j := pad; j < maxLen; j++ {
			mask[j] = 1
		}
		batch.InputIDs[i] = padded
		batch.AttentionMask[i] = mask
	}
	return batch, nil
}

// Decode converts ids back to text, skipping special/control tokens.
func (a *Adapter) Decode(ids []int) (string, error) {
	kept := make([]int, 0, len(ids))
	for _, id := range ids {
		if a.codec.IsSpecial(id) {
			continue
		}
		kept = append(kept, id)
	}
	return a.codec.Decode(kept)
}

// GenerationBoundary returns the byte length of the decoded input row. The
// model echoes the prompt in its output, so decoded generations are trimmed
// by slicing off this many leading bytes.
func (a *Adapter) GenerationBoundary(inputRow []int) (int, error) {
	text, err := a.Decode(inputRow)
	if err != nil {
		return 0, fmt.Errorf("tokenizer: decode input row: %w", err)
	}
	return len(text), nil
}
