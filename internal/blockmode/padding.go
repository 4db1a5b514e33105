package blockmode

import (
	"fmt"
	"log"
)

// PaddedLen returns the smallest multiple of blockSize that is >= n.
func PaddedLen(n int, blockSize int) int {
	if blockSize <= 0 {
		log.Panicf("PaddedLen: invalid block size %d", blockSize)
	}
	return (n + blockSize - 1) / blockSize * blockSize
}

// Pad zero-fills "msg" up to the next block boundary. A message that is
// already aligned (including the empty message) gets no extra block.
//
// Zero padding is not self-describing: a message ending in zero bytes
// cannot be told apart from its padding. The caller has to carry the
// original length next to the ciphertext.
func Pad(msg []byte, blockSize int) []byte {
	padded := make([]byte, PaddedLen(len(msg), blockSize))
	copy(padded, msg)
	return padded
}

// Unpad cuts "padded" back to "originalLength" bytes.
func Unpad(padded []byte, originalLength int) ([]byte, error) {
	if originalLength < 0 || originalLength > len(padded) {
		return nil, fmt.Errorf("%w: original length %d, padded length %d",
			ErrInvalidLength, originalLength, len(padded))
	}
	return padded[:originalLength], nil
}
