package tensor

import "math"

// Softmax normalizes the vocabulary axis of l in place, turning each
// [position] row of scores into a probability distribution. The maximum
// value is subtracted before exponentiation for numerical stability and the
// sum is accumulated in float64.
func Softmax(l *Logits) {
	for b := 0; b < l.Batch; b++ {
		for p := 0; p < l.Positions; p++ {
			softmaxRow(l.Row(b, p))
		}
	}
}

func softmaxRow(row []float32) {
	if len(row) == 0 {
		return
	}
	maxv := row[0]
	for _, v := range row[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for i, v := range row {
		e := math.Exp(float64(v - maxv))
		row[i] = float32(e)
		sum += e
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / sum
	for i := range row {
		row[i] = float32(float64(row[i]) * inv)
	}
}
