package blockmode

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/modecrypt/modecrypt/internal/tlog"
)

// forEachBlock calls fn(i) for every i in [0, n). Inputs of at least
// parallelThreshold blocks are split into contiguous ranges, one goroutine
// per range. fn must only touch index i of shared slices.
//
// The context is checked before every block. After the first error the
// remaining ranges stop at their next block boundary.
func (e *Engine) forEachBlock(ctx context.Context, n int, fn func(i int) error) error {
	workers := e.workers
	if workers > n {
		workers = n
	}
	if n < e.parallelThreshold || workers < 2 {
		return blockRange(ctx, 0, n, fn)
	}
	per := (n + workers - 1) / workers
	tlog.Debug.Printf("blockmode: splitting %d blocks into ranges of %d", n, per)
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += per {
		lo := lo
		hi := lo + per
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			return blockRange(gctx, lo, hi, fn)
		})
	}
	return g.Wait()
}

func blockRange(ctx context.Context, lo int, hi int, fn func(i int) error) error {
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}
