package tensor

import (
	"math"
	"testing"
)

func TestLogitsRowIndexing(t *testing.T) {
	t.Parallel()

	l := NewLogits(2, 3, 4)
	for i := range l.Data {
		l.Data[i] = float32(i)
	}

	row := l.Row(1, 2)
	if len(row) != 4 {
		t.Fatalf("expected vocab-sized row, got %d", len(row))
	}
	// Offset of [1,2,0] is (1*3+2)*4 = 20.
	if row[0] != 20 {
		t.Fatalf("expected row to start at 20, got %f", row[0])
	}
	if l.At(1, 2, 3) != 23 {
		t.Fatalf("expected At(1,2,3)=23, got %f", l.At(1, 2, 3))
	}
}

func TestLastRowIsFinalPosition(t *testing.T) {
	t.Parallel()

	l := NewLogits(1, 2, 3)
	copy(l.Row(0, 1), []float32{7, 8, 9})
	last := l.LastRow(0)
	if last[0] != 7 || last[2] != 9 {
		t.Fatalf("unexpected last row: %v", last)
	}
}

func TestConcatLogitsPreservesOrder(t *testing.T) {
	t.Parallel()

	a := NewLogits(2, 1, 2)
	copy(a.Data, []float32{1, 2, 3, 4})
	b := NewLogits(1, 1, 2)
	copy(b.Data, []float32{5, 6})

	out := ConcatLogits([]*Logits{a, b})
	if out.Batch != 3 {
		t.Fatalf("expected batch 3, got %d", out.Batch)
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i, v := range want {
		if out.Data[i] != v {
			t.Fatalf("expected %v at %d, got %v", v, i, out.Data[i])
		}
	}
}

func TestConcatLogitsShapeMismatchPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on shape mismatch")
		}
	}()
	ConcatLogits([]*Logits{NewLogits(1, 2, 3), NewLogits(1, 2, 4)})
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	t.Parallel()

	l := NewLogits(2, 3, 5)
	for i := range l.Data {
		l.Data[i] = float32(i%7) - 3
	}
	Softmax(l)

	for b := 0; b < l.Batch; b++ {
		for p := 0; p < l.Positions; p++ {
			var sum float64
			for _, v := range l.Row(b, p) {
				if v < 0 || v > 1 {
					t.Fatalf("probability out of range: %f", v)
				}
				sum += float64(v)
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Fatalf("row [%d %d] sums to %f, want 1", b, p, sum)
			}
		}
	}
}

func TestSoftmaxStableForLargeScores(t *testing.T) {
	t.Parallel()

	l := NewLogits(1, 1, 3)
	copy(l.Data, []float32{1000, 1000, 999})
	Softmax(l)
	for _, v := range l.Row(0, 0) {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("softmax not stable: %v", l.Row(0, 0))
		}
	}
}

func TestConcatGrids(t *testing.T) {
	t.Parallel()

	a := NewGrid(1, 2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	b := NewGrid(2, 2)
	b.Set(0, 0, 3)
	b.Set(1, 1, 4)

	out := ConcatGrids([]*Grid{a, b})
	if out.Rows != 3 || out.Cols != 2 {
		t.Fatalf("unexpected shape [%d %d]", out.Rows, out.Cols)
	}
	if out.At(0, 1) != 2 || out.At(1, 0) != 3 || out.At(2, 1) != 4 {
		t.Fatalf("unexpected data: %v", out.Data)
	}
}
