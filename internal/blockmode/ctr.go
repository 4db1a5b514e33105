package blockmode

import (
	"context"
)

// ctr XORs block i with the transformed counter IV+i. Encryption and
// decryption are the same operation and only use EncryptBlock.
func (e *Engine) ctr(ctx context.Context, cfg *Config, in [][]byte) ([][]byte, error) {
	out := make([][]byte, len(in))
	err := e.forEachBlock(ctx, len(in), func(i int) error {
		ks, err := e.apply(dirEncrypt, counterAdd(cfg.IV, uint64(i)), cfg.Key, i)
		if err != nil {
			return err
		}
		out[i] = xorBlocks(in[i], ks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// counterAdd returns iv+n, treating iv as a big-endian integer that wraps
// around at the block size.
func counterAdd(iv []byte, n uint64) []byte {
	c := make([]byte, len(iv))
	copy(c, iv)
	carry := n
	for i := len(c) - 1; i >= 0 && carry > 0; i-- {
		sum := uint64(c[i]) + carry&0xff
		c[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}
	return c
}
