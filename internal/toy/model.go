package toy

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// Model is a deterministic stand-in for a real causal LM: logits at each
// position are a pure function of the visible token prefix, the seed and
// the noise directive. Determinism is what makes it useful: identical
// replicas produce identical rows, and a given window/scale always
// perturbs the same way.
//
// The noise application here is a toy rendition of the opaque capability a
// production engine exposes; nothing outside this package depends on its
// internals.
type Model struct {
	Seed int64

	// UnstableScale simulates numerical blow-up: a noise scale at or above
	// this threshold makes Forward and Generate fail the way a real engine
	// does when the probability tensor degenerates. Zero disables it.
	UnstableScale float64
}

func NewModel(seed int64) *Model {
	return &Model{Seed: seed}
}

func (m *Model) checkStable(scale float64) error {
	if m.UnstableScale > 0 && scale >= m.UnstableScale {
		return fmt.Errorf("toy: probability tensor contains inf or nan at scale %g", scale)
	}
	return nil
}

// Forward computes logits for every input position of every row.
func (m *Model) Forward(ctx context.Context, batch *tokenizer.Batch, opts model.ForwardOptions) (*tensor.Logits, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if err := m.checkStable(opts.Window.Scale); err != nil {
		return nil, err
	}

	out := tensor.NewLogits(batch.Len(), batch.SeqLen(), vocabSize)
	for i := 0; i < batch.Len(); i++ {
		ids := batch.InputIDs[i]
		mask := batch.AttentionMask[i]
		for p := 0; p < len(ids); p++ {
			m.fillLogits(out.Row(i, p), ids[:p+1], mask[:p+1], p, opts.Window, float64(opts.Level))
		}
	}
	return out, nil
}

// Generate greedily extends each row by up to MaxNewTokens tokens,
// stopping early at eos. Returned rows echo the padded input, matching
// the contract of the real engine.
func (m *Model) Generate(ctx context.Context, batch *tokenizer.Batch, opts model.GenerateOptions) ([][]int, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	steps := opts.MaxNewTokens
	if steps <= 0 {
		steps = 100
	}

	out := make([][]int, batch.Len())
	for i := 0; i < batch.Len(); i++ {
		win := opts.WindowFor(i)
		if err := m.checkStable(win.Scale); err != nil {
			return nil, err
		}

		ids := append([]int(nil), batch.InputIDs[i]...)
		mask := append([]int(nil), batch.AttentionMask[i]...)
		row := make([]float32, vocabSize)
		for s := 0; s < steps; s++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p := len(ids) - 1
			m.fillLogits(row, ids, mask, p, win, 0)
			next := argmax(row)
			if next == eosID {
				break
			}
			ids = append(ids, next)
			mask = append(mask, 1)
		}
		out[i] = ids
	}
	return out, nil
}

// fillLogits derives a vocabulary row from the visible prefix. Positions
// inside the noise window mix the scale and level into the hash, shifting
// the whole distribution deterministically.
func (m *Model) fillLogits(row []float32, ids, mask []int, pos int, win model.NoiseWindow, level float64) {
	h := fnv.New64a()
	var buf [8]byte
	writeU64 := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}

	writeU64(uint64(m.Seed))
	for j, id := range ids {
		if j < len(mask) && mask[j] == 0 {
			continue
		}
		writeU64(uint64(id) + 1)
	}
	if win.Contains(pos) {
		writeU64(math.Float64bits(win.Scale))
		writeU64(math.Float64bits(level))
	}

	state := h.Sum64()
	for v := range row {
		state = state*6364136223846793005 + 1442695040888963407
		// Map the top bits onto [-4, 4).
		row[v] = float32(int64(state>>40)%8192)/1024 - 4
	}
}

func argmax(row []float32) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

// Provider loads a toy engine pair. The seed is derived from the model
// path so distinct "models" disagree, and the precision rule is resolved
// even though the toy weights ignore it.
type Provider struct{}

func (Provider) Load(_ context.Context, cfg model.Config) (model.Model, tokenizer.Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	_ = model.ResolvePrecision(cfg.ModelPath, cfg.Precision)

	h := fnv.New64a()
	h.Write([]byte(cfg.ModelPath))
	return NewModel(int64(h.Sum64())), NewCodec(), nil
}
