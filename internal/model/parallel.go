package model

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dkempner/noiselab/internal/tensor"
	"github.com/dkempner/noiselab/internal/tokenizer"
)

// DataParallel mirrors one model across several devices and splits each
// forward batch into contiguous shards, one per replica. Shard outputs are
// gathered back in row order before returning, so callers observe the same
// contract as a single-device Forward. Generation is not sharded; it runs
// on the first replica.
type DataParallel struct {
	replicas []Model
}

// NewDataParallel wraps the given per-device replicas.
func NewDataParallel(replicas []Model) (*DataParallel, error) {
	if len(replicas) == 0 {
		return nil, fmt.Errorf("model: data parallel requires at least one replica")
	}
	return &DataParallel{replicas: replicas}, nil
}

func (dp *DataParallel) Generate(ctx context.Context, batch *tokenizer.Batch, opts GenerateOptions) ([][]int, error) {
	return dp.replicas[0].Generate(ctx, batch, opts)
}

// Forward shards the batch rows across the replicas. Each replica computes
// its shard independently; any shard failure fails the whole call.
func (dp *DataParallel) Forward(ctx context.Context, batch *tokenizer.Batch, opts ForwardOptions) (*tensor.Logits, error) {
	if batch.Len() == 0 {
		return nil, fmt.Errorf("model: empty batch")
	}
	shards := shardRows(batch.Len(), len(dp.replicas))
	outputs := make([]*tensor.Logits, len(shards))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range shards {
		chunk := batch.Slice(s.lo, s.hi)
		replica := dp.replicas[i]
		g.Go(func() error {
			out, err := replica.Forward(ctx, chunk, opts)
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tensor.ConcatLogits(outputs), nil
}

type rowRange struct {
	lo, hi int
}

// shardRows splits n rows into at most k contiguous non-empty ranges,
// spreading the remainder over the leading shards.
func shardRows(n, k int) []rowRange {
	if k > n {
		k = n
	}
	shards := make([]rowRange, 0, k)
	base := n / k
	rem := n % k
	lo := 0
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}
		shards = append(shards, rowRange{lo: lo, hi: lo + size})
		lo += size
	}
	return shards
}
