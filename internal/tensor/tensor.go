package tensor

import "fmt"

// Logits is a dense row-major [Batch x Positions x Vocab] grid of float32
// scores produced by one forward evaluation. The values are raw scores, not
// probabilities.
//
// Logits performs no memory safety beyond the checks done by Go's slice
// types; out-of-range indices panic. Shape mismatches in constructors and
// concatenation also panic, mirroring programmer error rather than runtime
// failure.
type Logits struct {
	Batch     int
	Positions int
	Vocab     int
	Data      []float32
}

// NewLogits allocates a zeroed logits grid with the given shape.
func NewLogits(batch, positions, vocab int) *Logits {
	if batch < 0 || positions < 0 || vocab < 0 {
		panic("tensor: negative dimension for logits")
	}
	return &Logits{
		Batch:     batch,
		Positions: positions,
		Vocab:     vocab,
		Data:      make([]float32, batch*positions*vocab),
	}
}

// NewLogitsFromData wraps existing flat data. The data length must match
// the product of the dimensions.
func NewLogitsFromData(batch, positions, vocab int, data []float32) *Logits {
	if batch*positions*vocab != len(data) {
		panic(fmt.Sprintf("tensor: data length %d does not match shape [%d %d %d]",
			len(data), batch, positions, vocab))
	}
	return &Logits{Batch: batch, Positions: positions, Vocab: vocab, Data: data}
}

// Row returns the vocab-sized slice of scores for sequence b at position p.
// The slice aliases the underlying storage.
func (l *Logits) Row(b, p int) []float32 {
	if b < 0 || b >= l.Batch || p < 0 || p >= l.Positions {
		panic(fmt.Sprintf("tensor: index [%d %d] out of range for shape [%d %d %d]",
			b, p, l.Batch, l.Positions, l.Vocab))
	}
	off := (b*l.Positions + p) * l.Vocab
	return l.Data[off : off+l.Vocab]
}

// LastRow returns the scores at the final position of sequence b.
func (l *Logits) LastRow(b int) []float32 {
	return l.Row(b, l.Positions-1)
}

// At returns the score for sequence b, position p, vocab entry v.
func (l *Logits) At(b, p, v int) float32 {
	return l.Row(b, p)[v]
}

// ConcatLogits concatenates parts along the batch axis, preserving part
// order. All parts must agree on Positions and Vocab.
func ConcatLogits(parts []*Logits) *Logits {
	if len(parts) == 0 {
		panic("tensor: concat of zero logits parts")
	}
	positions, vocab := parts[0].Positions, parts[0].Vocab
	batch := 0
	for _, p := range parts {
		if p.Positions != positions || p.Vocab != vocab {
			panic(fmt.Sprintf("tensor: concat shape mismatch: [%d %d] vs [%d %d]",
				p.Positions, p.Vocab, positions, vocab))
		}
		batch += p.Batch
	}
	out := NewLogits(batch, positions, vocab)
	off := 0
	for _, p := range parts {
		off += copy(out.Data[off:], p.Data)
	}
	return out
}

// Grid is a dense row-major [Rows x Cols] grid of float32 values. It backs
// both selected-probability outputs and answer-choice logits.
type Grid struct {
	Rows int
	Cols int
	Data []float32
}

// NewGrid allocates a zeroed grid.
func NewGrid(rows, cols int) *Grid {
	if rows < 0 || cols < 0 {
		panic("tensor: negative dimension for grid")
	}
	return &Grid{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Row returns row r as a slice aliasing the underlying storage.
func (g *Grid) Row(r int) []float32 {
	if r < 0 || r >= g.Rows {
		panic(fmt.Sprintf("tensor: row %d out of range for %d rows", r, g.Rows))
	}
	return g.Data[r*g.Cols : (r+1)*g.Cols]
}

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float32 {
	return g.Row(r)[c]
}

// Set stores x at row r, column c.
func (g *Grid) Set(r, c int, x float32) {
	g.Row(r)[c] = x
}

// ConcatGrids concatenates parts along the row axis, preserving part order.
// All parts must agree on Cols.
func ConcatGrids(parts []*Grid) *Grid {
	if len(parts) == 0 {
		panic("tensor: concat of zero grid parts")
	}
	cols := parts[0].Cols
	rows := 0
	for _, p := range parts {
		if p.Cols != cols {
			panic(fmt.Sprintf("tensor: concat column mismatch: %d vs %d", p.Cols, cols))
		}
		rows += p.Rows
	}
	out := NewGrid(rows, cols)
	off := 0
	for _, p := range parts {
		off += copy(out.Data[off:], p.Data)
	}
	return out
}
