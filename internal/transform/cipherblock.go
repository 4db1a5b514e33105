package transform

import (
	"bytes"
	"crypto/cipher"
	"fmt"
	"sync"
)

// NewCipherFunc constructs a cipher.Block from a key, like aes.NewCipher.
type NewCipherFunc func(key []byte) (cipher.Block, error)

// CipherBlock adapts a cipher.Block constructor to the Transform interface.
// The cipher is keyed with the longest prefix of the supplied key that it
// accepts. The most recently used key schedule is cached.
type CipherBlock struct {
	name      string
	blockSize int
	// Accepted key lengths, longest first. If keyLens is empty, any length
	// from 1 to maxKeyLen is accepted.
	keyLens   []int
	maxKeyLen int
	newCipher NewCipherFunc

	mu      sync.Mutex
	lastKey []byte
	last    cipher.Block
}

var _ Transform = &CipherBlock{}

// NewCipherBlock returns a CipherBlock for fixed key lengths "keyLens"
// (longest first).
func NewCipherBlock(name string, blockSize int, keyLens []int, f NewCipherFunc) *CipherBlock {
	return &CipherBlock{
		name:      name,
		blockSize: blockSize,
		keyLens:   keyLens,
		newCipher: f,
	}
}

// NewVarKeyCipherBlock returns a CipherBlock for ciphers that accept any key
// length up to maxKeyLen.
func NewVarKeyCipherBlock(name string, blockSize int, maxKeyLen int, f NewCipherFunc) *CipherBlock {
	return &CipherBlock{
		name:      name,
		blockSize: blockSize,
		maxKeyLen: maxKeyLen,
		newCipher: f,
	}
}

// Name returns the cipher name.
func (c *CipherBlock) Name() string {
	return c.name
}

// BlockSize returns the cipher block size.
func (c *CipherBlock) BlockSize() int {
	return c.blockSize
}

// EncryptBlock encrypts one block.
func (c *CipherBlock) EncryptBlock(block []byte, key []byte) ([]byte, error) {
	b, err := c.prepare(block, key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, c.blockSize)
	b.Encrypt(out, block)
	return out, nil
}

// DecryptBlock decrypts one block.
func (c *CipherBlock) DecryptBlock(block []byte, key []byte) ([]byte, error) {
	b, err := c.prepare(block, key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, c.blockSize)
	b.Decrypt(out, block)
	return out, nil
}

func (c *CipherBlock) prepare(block []byte, key []byte) (cipher.Block, error) {
	if len(block) != c.blockSize {
		return nil, fmt.Errorf("%s: block length %d, want %d", c.name, len(block), c.blockSize)
	}
	k, err := c.keyPrefix(key)
	if err != nil {
		return nil, err
	}
	return c.cipherFor(k)
}

// keyPrefix picks the part of "key" the cipher is keyed with.
func (c *CipherBlock) keyPrefix(key []byte) ([]byte, error) {
	if len(c.keyLens) == 0 {
		if len(key) == 0 {
			return nil, fmt.Errorf("%s: empty key", c.name)
		}
		if len(key) > c.maxKeyLen {
			return key[:c.maxKeyLen], nil
		}
		return key, nil
	}
	for _, l := range c.keyLens {
		if len(key) >= l {
			return key[:l], nil
		}
	}
	return nil, fmt.Errorf("%s: key length %d, need at least %d", c.name, len(key), c.keyLens[len(c.keyLens)-1])
}

func (c *CipherBlock) cipherFor(k []byte) (cipher.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && bytes.Equal(c.lastKey, k) {
		return c.last, nil
	}
	b, err := c.newCipher(k)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", c.name, err)
	}
	if b.BlockSize() != c.blockSize {
		return nil, fmt.Errorf("%s: cipher block size %d, want %d", c.name, b.BlockSize(), c.blockSize)
	}
	c.lastKey = append([]byte{}, k...)
	c.last = b
	return b, nil
}
