// Package blockmode turns a single-block transform into a scheme for
// messages of any length: pad, partition, chain (or not), transform,
// reassemble.
//
// Supported modes are ECB, CBC, CTR and EME. ECB and CBC are provided for
// what they are: ECB leaks repeated blocks, and neither mode authenticates
// anything.
package blockmode

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"github.com/modecrypt/modecrypt/internal/tlog"
)

// DefaultParallelThreshold is the block count from which data-parallel
// modes are split across goroutines.
const DefaultParallelThreshold = 32

// Engine drives a BlockTransform over a message. It holds no per-call state
// and is safe for concurrent use if the transform is.
type Engine struct {
	transform BlockTransform
	// Maximum number of goroutines for one call
	workers int
	// Messages with fewer blocks are processed on the calling goroutine
	parallelThreshold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers limits the number of goroutines used for one call. n <= 1
// disables parallel processing.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithParallelThreshold sets the minimum number of blocks for parallel
// processing.
func WithParallelThreshold(blocks int) Option {
	return func(e *Engine) {
		e.parallelThreshold = blocks
	}
}

// New returns an Engine using "t" or panics if "t" is nil.
func New(t BlockTransform, opts ...Option) *Engine {
	if t == nil {
		log.Panic("blockmode.New: nil transform")
	}
	e := &Engine{
		transform:         t,
		workers:           runtime.NumCPU(),
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Encrypt pads "plaintext" with zeros to a multiple of blockSize and
// encrypts it. The result has the padded length. "iv" is only needed by
// modes where Mode.NeedsIV() is true.
func (e *Engine) Encrypt(mode Mode, plaintext, key, iv []byte, blockSize int) ([]byte, error) {
	return e.EncryptContext(context.Background(), mode, plaintext, key, iv, blockSize)
}

// EncryptContext is Encrypt with cancellation. The context is checked
// before every block, never in the middle of one.
func (e *Engine) EncryptContext(ctx context.Context, mode Mode, plaintext, key, iv []byte, blockSize int) ([]byte, error) {
	cfg := Config{Mode: mode, BlockSize: blockSize, Key: key, IV: iv}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	padded := Pad(plaintext, blockSize)
	blocks := ToBlocks(padded, blockSize)
	if err := cfg.checkBlockCount(len(blocks)); err != nil {
		return nil, err
	}
	out, err := e.run(ctx, &cfg, blocks, dirEncrypt)
	if err != nil {
		return nil, err
	}
	return FromBlocks(out), nil
}

// Decrypt decrypts "ciphertext" and cuts the result to "originalLength"
// bytes. Zero padding cannot be removed without knowing the original length,
// so the caller has to supply it. Pass a negative originalLength to get the
// padded plaintext back.
func (e *Engine) Decrypt(mode Mode, ciphertext, key, iv []byte, blockSize int, originalLength int) ([]byte, error) {
	return e.DecryptContext(context.Background(), mode, ciphertext, key, iv, blockSize, originalLength)
}

// DecryptContext is Decrypt with cancellation.
func (e *Engine) DecryptContext(ctx context.Context, mode Mode, ciphertext, key, iv []byte, blockSize int, originalLength int) ([]byte, error) {
	cfg := Config{Mode: mode, BlockSize: blockSize, Key: key, IV: iv}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of block size %d",
			ErrInvalidLength, len(ciphertext), blockSize)
	}
	if originalLength >= 0 && PaddedLen(originalLength, blockSize) != len(ciphertext) {
		return nil, fmt.Errorf("%w: original length %d does not match ciphertext length %d",
			ErrInvalidLength, originalLength, len(ciphertext))
	}
	blocks := ToBlocks(ciphertext, blockSize)
	if err := cfg.checkBlockCount(len(blocks)); err != nil {
		return nil, err
	}
	out, err := e.run(ctx, &cfg, blocks, dirDecrypt)
	if err != nil {
		return nil, err
	}
	plaintext := FromBlocks(out)
	if originalLength < 0 {
		return plaintext, nil
	}
	return Unpad(plaintext, originalLength)
}

func (e *Engine) run(ctx context.Context, cfg *Config, blocks [][]byte, dir direction) (out [][]byte, err error) {
	tlog.Debug.Printf("blockmode: %s %s: %d blocks of %d bytes", cfg.Mode, dir, len(blocks), cfg.BlockSize)
	switch cfg.Mode {
	case ModeECB:
		out, err = e.ecb(ctx, cfg, blocks, dir)
	case ModeCBC:
		if dir == dirEncrypt {
			out, err = e.cbcEncrypt(ctx, cfg, blocks)
		} else {
			out, err = e.cbcDecrypt(ctx, cfg, blocks)
		}
	case ModeCTR:
		out, err = e.ctr(ctx, cfg, blocks)
	case ModeEME:
		out, err = e.eme(ctx, cfg, blocks, dir)
	default:
		log.Panicf("blockmode: unhandled mode %d", int(cfg.Mode))
	}
	if err != nil {
		tlog.Warn.Printf("blockmode: %s %s failed: %v", cfg.Mode, dir, err)
		return nil, err
	}
	return out, nil
}
