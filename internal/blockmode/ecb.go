package blockmode

import (
	"context"
)

// ecb transforms every block on its own. There is no state between blocks,
// so block order does not matter and large inputs run in parallel.
func (e *Engine) ecb(ctx context.Context, cfg *Config, in [][]byte, dir direction) ([][]byte, error) {
	out := make([][]byte, len(in))
	err := e.forEachBlock(ctx, len(in), func(i int) error {
		b, err := e.apply(dir, in[i], cfg.Key, i)
		if err != nil {
			return err
		}
		out[i] = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
