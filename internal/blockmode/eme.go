package blockmode

import (
	"context"

	"github.com/rfjakob/eme"
)

// eme runs the whole message through one EME wide-block transform with the
// IV as tweak. Changing any plaintext byte changes every ciphertext block.
func (e *Engine) eme(ctx context.Context, cfg *Config, in [][]byte, dir direction) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bc := &keyedBlock{e: e, key: cfg.Key, size: cfg.BlockSize}
	d := eme.DirectionEncrypt
	if dir == dirDecrypt {
		d = eme.DirectionDecrypt
	}
	out := eme.Transform(bc, cfg.IV, FromBlocks(in), d)
	if bc.err != nil {
		return nil, bc.err
	}
	return ToBlocks(out, cfg.BlockSize), nil
}
