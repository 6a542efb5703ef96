package model

import (
	"context"
	"errors"
	"testing"

	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// markerModel fills every logit with its own tag so gather order is
// observable in the output rows.
type markerModel struct {
	tag float32
	err error
}

func (m markerModel) Generate(context.Context, *tokenizer.Batch, GenerateOptions) ([][]int, error) {
	return nil, errors.New("not used")
}

func (m markerModel) Forward(_ context.Context, batch *tokenizer.Batch, _ ForwardOptions) (*tensor.Logits, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := tensor.NewLogits(batch.Len(), batch.SeqLen(), 2)
	for i := range out.Data {
		out.Data[i] = m.tag
	}
	return out, nil
}

func fourRowBatch() *tokenizer.Batch {
	b := &tokenizer.Batch{}
	for i := 0; i < 4; i++ {
		b.InputIDs = append(b.InputIDs, []int{1, 2})
		b.AttentionMask = append(b.AttentionMask, []int{1, 1})
	}
	return b
}

func TestDataParallelGatherPreservesRowOrder(t *testing.T) {
	t.Parallel()

	dp, err := NewDataParallel([]Model{markerModel{tag: 1}, markerModel{tag: 2}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := dp.Forward(context.Background(), fourRowBatch(), ForwardOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Batch != 4 {
		t.Fatalf("expected 4 rows, got %d", out.Batch)
	}
	// Rows 0-1 from replica 0, rows 2-3 from replica 1.
	for b := 0; b < 2; b++ {
		if out.At(b, 0, 0) != 1 {
			t.Fatalf("row %d not from replica 0", b)
		}
	}
	for b := 2; b < 4; b++ {
		if out.At(b, 0, 0) != 2 {
			t.Fatalf("row %d not from replica 1", b)
		}
	}
}

func TestDataParallelShardFailureFailsCall(t *testing.T) {
	t.Parallel()

	boom := errors.New("device lost")
	dp, err := NewDataParallel([]Model{markerModel{tag: 1}, markerModel{err: boom}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = dp.Forward(context.Background(), fourRowBatch(), ForwardOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected shard failure to propagate, got %v", err)
	}
}

func TestDataParallelMoreReplicasThanRows(t *testing.T) {
	t.Parallel()

	replicas := []Model{markerModel{tag: 1}, markerModel{tag: 2}, markerModel{tag: 3}}
	dp, err := NewDataParallel(replicas)
	if err != nil {
		t.Fatal(err)
	}
	b := &tokenizer.Batch{
		InputIDs:      [][]int{{1}, {2}},
		AttentionMask: [][]int{{1}, {1}},
	}
	out, err := dp.Forward(context.Background(), b, ForwardOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Batch != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Batch)
	}
}

func TestShardRows(t *testing.T) {
	t.Parallel()

	shards := shardRows(10, 3)
	if len(shards) != 3 {
		t.Fatalf("expected 3 shards, got %d", len(shards))
	}
	total := 0
	prev := 0
	for _, s := range shards {
		if s.lo != prev {
			t.Fatalf("shards not contiguous at %d", s.lo)
		}
		if s.hi <= s.lo {
			t.Fatalf("empty shard [%d,%d)", s.lo, s.hi)
		}
		total += s.hi - s.lo
		prev = s.hi
	}
	if total != 10 {
		t.Fatalf("shards cover %d rows, want 10", total)
	}
}
