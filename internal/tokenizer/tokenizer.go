package tokenizer

// Codec is the externally supplied tokenizer. Implementations translate
// between text and token ids; padding, masking and prompt trimming are
// layered on top by the Adapter.
type Codec interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)

	// IsSpecial reports whether id is a special/control token that should
	// be skipped when decoding model output.
	IsSpecial(id int) bool

	// PadID, UnkID and EOSID return the corresponding special token id, or
	// -1 when the vocabulary has none.
	PadID() int
	UnkID() int
	EOSID() int
}
