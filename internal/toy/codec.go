package toy

import "strings"

// Token id layout: 0 unk, 1 bos, 2 eos, then one id per byte value.
const (
	unkID       = 0
	bosID       = 1
	eosID       = 2
	byteOffset  = 3
	vocabSize   = byteOffset + 256
)

// Codec is a byte-level tokenizer for the toy engine. It has no explicit
// pad token, so the adapter's fallback chain resolves padding to eos.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

func (c *Codec) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for _, b := range []byte(text) {
		ids = append(ids, int(b)+byteOffset)
	}
	return ids, nil
}

func (c *Codec) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if id >= byteOffset && id < vocabSize {
			sb.WriteByte(byte(id - byteOffset))
		}
	}
	return sb.String(), nil
}

func (c *Codec) IsSpecial(id int) bool { return id < byteOffset }
func (c *Codec) PadID() int            { return -1 }
func (c *Codec) UnkID() int            { return unkID }
func (c *Codec) EOSID() int            { return eosID }
