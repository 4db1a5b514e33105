package blockmode

import (
	"log"
)

// ToBlocks splits "padded" into blockSize-sized blocks. The blocks share
// memory with "padded". The length must be a multiple of blockSize, which
// Pad guarantees.
func ToBlocks(padded []byte, blockSize int) [][]byte {
	if blockSize <= 0 || len(padded)%blockSize != 0 {
		log.Panicf("ToBlocks: length %d is not a multiple of block size %d", len(padded), blockSize)
	}
	blocks := make([][]byte, 0, len(padded)/blockSize)
	for off := 0; off < len(padded); off += blockSize {
		blocks = append(blocks, padded[off:off+blockSize:off+blockSize])
	}
	return blocks
}

// FromBlocks concatenates "blocks" into a fresh slice.
func FromBlocks(blocks [][]byte) []byte {
	n := 0
	for _, b := range blocks {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
