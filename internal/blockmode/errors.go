package blockmode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig means the block size is not positive, the mode is
	// unknown, or the mode cannot work with the given block size.
	ErrInvalidConfig = errors.New("invalid mode configuration")
	// ErrInvalidKey means the key is shorter than the block size.
	ErrInvalidKey = errors.New("key too short for block size")
	// ErrInvalidIV means the mode needs an IV and it is missing or its
	// length differs from the block size.
	ErrInvalidIV = errors.New("IV length must equal block size")
	// ErrTransformFailure is matched by every error coming out of the
	// BlockTransform. Use errors.As with *TransformError for details.
	ErrTransformFailure = errors.New("block transform failed")
	// ErrInvalidLength means the ciphertext is not block-aligned, or the
	// original length does not fit the ciphertext, or the mode cannot
	// process this many blocks.
	ErrInvalidLength = errors.New("invalid data length")
)

// TransformError wraps an error returned by the BlockTransform. The engine
// does not interpret it.
type TransformError struct {
	Op      string
	BlockNo int
	Err     error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s block %d: %v", e.Op, e.BlockNo, e.Err)
}

// Unwrap returns the transform's own error.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransformFailure) true.
func (e *TransformError) Is(target error) bool {
	return target == ErrTransformFailure
}
