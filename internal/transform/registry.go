// Package transform provides block transforms for the blockmode engine:
// a toy XOR transform and adapters for real block ciphers.
package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sort"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/twofish"
	"golang.org/x/crypto/xtea"
)

// Transform is a block transform with a name and a native block size.
// It satisfies blockmode.BlockTransform.
type Transform interface {
	Name() string
	// BlockSize is the only block size the transform accepts, or 0 if it
	// accepts any.
	BlockSize() int
	EncryptBlock(block []byte, key []byte) ([]byte, error)
	DecryptBlock(block []byte, key []byte) ([]byte, error)
}

// DefaultName is the transform used when none is selected.
const DefaultName = "aes"

var registry = map[string]func() Transform{
	"xor": func() Transform { return XOR{} },
	"aes": func() Transform {
		return NewCipherBlock("aes", aes.BlockSize, []int{32, 24, 16}, aes.NewCipher)
	},
	"twofish": func() Transform {
		return NewCipherBlock("twofish", twofish.BlockSize, []int{32, 24, 16},
			func(k []byte) (cipher.Block, error) { return twofish.NewCipher(k) })
	},
	"blowfish": func() Transform {
		// blowfish accepts 1 to 56 byte keys
		return NewVarKeyCipherBlock("blowfish", blowfish.BlockSize, 56,
			func(k []byte) (cipher.Block, error) { return blowfish.NewCipher(k) })
	},
	"cast5": func() Transform {
		return NewCipherBlock("cast5", cast5.BlockSize, []int{cast5.KeySize},
			func(k []byte) (cipher.Block, error) { return cast5.NewCipher(k) })
	},
	"xtea": func() Transform {
		return NewCipherBlock("xtea", xtea.BlockSize, []int{16},
			func(k []byte) (cipher.Block, error) { return xtea.NewCipher(k) })
	},
}

// ByName returns a fresh instance of the named transform.
func ByName(name string) (Transform, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return f(), nil
}

// Names returns the names of all transforms, sorted.
func Names() []string {
	var names []string
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
