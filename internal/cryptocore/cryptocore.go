// Package cryptocore provides random bytes and key derivation for the
// modecrypt command line tool.
package cryptocore

import (
	"crypto/rand"
	"log"
)

// KeyLen is the master key length in bytes.
const KeyLen = 32

// RandBytes gets "n" random bytes from /dev/urandom or panics
func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		// crypto/rand.Read() is documented to never return an
		// error, so this should never happen. Still, better safe than sorry.
		log.Panic("Failed to read random bytes: " + err.Error())
	}
	return b
}

// NewIV returns a random IV of "blockSize" bytes. IVs must not repeat under
// one key. With 8-byte block ciphers random IVs collide after about 2^32
// messages.
func NewIV(blockSize int) []byte {
	return RandBytes(blockSize)
}
