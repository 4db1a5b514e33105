package blockmode

import (
	"context"
)

// cbcState is the chaining value of one CBC encryption pass. It starts as
// the IV and becomes each emitted ciphertext block. It is owned by the pass
// and never shared.
type cbcState struct {
	prev []byte
}

// step encrypts one plaintext block and returns the ciphertext block and the
// state for the next block.
func (s cbcState) step(e *Engine, b []byte, key []byte, blockNo int) ([]byte, cbcState, error) {
	c, err := e.apply(dirEncrypt, xorBlocks(b, s.prev), key, blockNo)
	if err != nil {
		return nil, s, err
	}
	return c, cbcState{prev: c}, nil
}

// cbcEncrypt is strictly sequential: the input of block i depends on the
// ciphertext of block i-1.
func (e *Engine) cbcEncrypt(ctx context.Context, cfg *Config, in [][]byte) ([][]byte, error) {
	out := make([][]byte, len(in))
	state := cbcState{prev: cfg.IV}
	for i, b := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, next, err := state.step(e, b, cfg.Key, i)
		if err != nil {
			return nil, err
		}
		out[i] = c
		state = next
	}
	return out, nil
}

// cbcDecrypt has no sequential dependency: the chaining value for block i
// is ciphertext block i-1 (the input, not a result), which is known up front.
func (e *Engine) cbcDecrypt(ctx context.Context, cfg *Config, in [][]byte) ([][]byte, error) {
	out := make([][]byte, len(in))
	err := e.forEachBlock(ctx, len(in), func(i int) error {
		prev := cfg.IV
		if i > 0 {
			prev = in[i-1]
		}
		d, err := e.apply(dirDecrypt, in[i], cfg.Key, i)
		if err != nil {
			return err
		}
		out[i] = xorBlocks(d, prev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
