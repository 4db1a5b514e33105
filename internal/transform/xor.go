package transform

import (
	"fmt"
)

// XOR is a toy transform: out[i] = in[i] ^ key[i]. It works with any block
// size, is its own inverse and offers no security at all. Useful for
// demonstrating and testing the modes, where the chaining is easy to follow
// by hand.
type XOR struct{}

var _ Transform = XOR{}

// Name returns "xor".
func (XOR) Name() string {
	return "xor"
}

// BlockSize returns 0: any block size works.
func (XOR) BlockSize() int {
	return 0
}

// EncryptBlock XORs "block" with the first len(block) key bytes.
func (XOR) EncryptBlock(block []byte, key []byte) ([]byte, error) {
	if len(key) < len(block) {
		return nil, fmt.Errorf("xor: key length %d < block length %d", len(key), len(block))
	}
	out := make([]byte, len(block))
	for i := range block {
		out[i] = block[i] ^ key[i%len(block)]
	}
	return out, nil
}

// DecryptBlock is the same as EncryptBlock.
func (x XOR) DecryptBlock(block []byte, key []byte) ([]byte, error) {
	return x.EncryptBlock(block, key)
}
