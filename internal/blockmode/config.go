package blockmode

import (
	"fmt"
)

// Config describes one encryption or decryption call. Key and IV are
// borrowed read-only for the duration of the call.
type Config struct {
	Mode      Mode
	BlockSize int
	Key       []byte
	// IV is only used by modes where Mode.NeedsIV() is true and ignored
	// otherwise.
	IV []byte
}

// Validate checks the configuration before any data is touched.
// It has no side effects.
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if c.Mode == ModeEME && c.BlockSize != emeBlockSize {
		return fmt.Errorf("%w: eme needs block size %d, have %d", ErrInvalidConfig, emeBlockSize, c.BlockSize)
	}
	if len(c.Key) < c.BlockSize {
		return fmt.Errorf("%w: key length %d, block size %d", ErrInvalidKey, len(c.Key), c.BlockSize)
	}
	if c.Mode.NeedsIV() {
		if c.IV == nil {
			return fmt.Errorf("%w: mode %s needs an IV", ErrInvalidIV, c.Mode)
		}
		if len(c.IV) != c.BlockSize {
			return fmt.Errorf("%w: IV length %d, block size %d", ErrInvalidIV, len(c.IV), c.BlockSize)
		}
	}
	return nil
}

// checkBlockCount rejects messages the mode cannot process.
func (c *Config) checkBlockCount(n int) error {
	if c.Mode == ModeEME && (n == 0 || n > emeMaxBlocks) {
		return fmt.Errorf("%w: eme operates on 1 to %d blocks, have %d", ErrInvalidLength, emeMaxBlocks, n)
	}
	return nil
}
