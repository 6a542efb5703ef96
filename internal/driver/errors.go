package driver

import "fmt"

// GenerationError wraps a failure raised by the model's generate entry
// point, commonly a degenerate probability distribution under heavy noise.
// The call that produced it returned no usable output.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("driver: generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ForwardError wraps a failure raised by a single-step forward pass.
// Chunk identifies which sub-batch of a replicated call failed; it is 0
// for non-replicated passes. Chunks computed before the failure are
// discarded; there is no partial-success contract.
type ForwardError struct {
	Chunk int
	Err   error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("driver: forward failed on chunk %d: %v", e.Chunk, e.Err)
}

func (e *ForwardError) Unwrap() error { return e.Err }
