package blockmode

import (
	"crypto/cipher"
	"fmt"
)

// BlockTransform is the block primitive the modes are built on, for example
// AES. Both methods must be pure functions of (block, key): no hidden state,
// same inputs give the same output. The output must have the length of the
// input block.
//
// The engine guarantees len(key) >= len(block). How much of the key is used
// is up to the transform.
type BlockTransform interface {
	EncryptBlock(block []byte, key []byte) ([]byte, error)
	DecryptBlock(block []byte, key []byte) ([]byte, error)
}

type direction bool

const (
	dirEncrypt direction = false
	dirDecrypt direction = true
)

func (d direction) String() string {
	if d == dirDecrypt {
		return "decrypt"
	}
	return "encrypt"
}

// apply runs the transform on one block and checks the result length.
func (e *Engine) apply(dir direction, block []byte, key []byte, blockNo int) ([]byte, error) {
	var out []byte
	var err error
	if dir == dirDecrypt {
		out, err = e.transform.DecryptBlock(block, key)
	} else {
		out, err = e.transform.EncryptBlock(block, key)
	}
	if err == nil && len(out) != len(block) {
		err = fmt.Errorf("output length %d, want %d", len(out), len(block))
	}
	if err != nil {
		return nil, &TransformError{Op: dir.String(), BlockNo: blockNo, Err: err}
	}
	return out, nil
}

// keyedBlock binds a BlockTransform to a key so it can be used where a
// cipher.Block is expected. cipher.Block cannot return errors, so the first
// failure is recorded in "err" and later calls become no-ops.
type keyedBlock struct {
	e    *Engine
	key  []byte
	size int
	// Number of transform calls so far, reported in TransformError
	calls int
	err   error
}

var _ cipher.Block = &keyedBlock{}

func (k *keyedBlock) BlockSize() int {
	return k.size
}

func (k *keyedBlock) Encrypt(dst, src []byte) {
	k.crypt(dirEncrypt, dst, src)
}

func (k *keyedBlock) Decrypt(dst, src []byte) {
	k.crypt(dirDecrypt, dst, src)
}

func (k *keyedBlock) crypt(dir direction, dst, src []byte) {
	if k.err != nil {
		return
	}
	out, err := k.e.apply(dir, src[:k.size], k.key, k.calls)
	k.calls++
	if err != nil {
		k.err = err
		return
	}
	copy(dst[:k.size], out)
}

func xorBlocks(a []byte, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
