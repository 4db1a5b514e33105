// Package speed implements the "-speed" command-line option,
// similar to "openssl speed".
// It benchmarks every block mode with the block transforms modecrypt
// offers, plus two authenticated ciphers for reference.
package speed

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/jacobsa/crypto/siv"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/modecrypt/modecrypt/internal/blockmode"
	"github.com/modecrypt/modecrypt/internal/transform"
)

// Message size used for all benchmarks. This is the largest message EME can
// handle.
const msgSize = 2048

// Associated data length for the reference ciphers
const adLen = 24

type bEntry struct {
	name string
	f    func(*testing.B)
	// note is printed after the result
	note string
}

// entries returns the benchmark table for "transformNames".
func entries(transformNames []string) []bEntry {
	var table []bEntry
	for _, tn := range transformNames {
		for _, m := range blockmode.Modes() {
			tn, m := tn, m
			table = append(table, bEntry{
				name: fmt.Sprintf("%s-%s", m, tn),
				f:    func(b *testing.B) { bMode(b, m, tn) },
			})
		}
	}
	table = append(table,
		bEntry{name: "AES-SIV-512-Go", f: bAESSIV, note: "(reference, authenticated)"},
		bEntry{name: "XChaCha20-Poly1305-Go", f: bChacha20poly1305, note: "(reference, authenticated)"},
	)
	return table
}

// Run - run the speed the test and print the results to "w".
// An empty "transformNames" benchmarks all transforms.
func Run(w io.Writer, transformNames []string) {
	if len(transformNames) == 0 {
		transformNames = transform.Names()
	}
	fmt.Fprintf(w, "cpu: %s\n", getCPUInfo())
	for _, b := range entries(transformNames) {
		fmt.Fprintf(w, "%-24s\t", b.name)
		mbs := mbPerSec(testing.Benchmark(b.f))
		if mbs > 0 {
			fmt.Fprintf(w, "%8.2f MB/s", mbs)
		} else {
			fmt.Fprintf(w, "     N/A")
		}
		fmt.Fprintf(w, "\t%s\n", b.note)
	}
}

func mbPerSec(r testing.BenchmarkResult) float64 {
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

// Get "n" random bytes from /dev/urandom or panic
func randBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		log.Panic("Failed to read random bytes: " + err.Error())
	}
	return b
}

// blockSizeFor returns the block size the transform runs at in benchmarks.
func blockSizeFor(t transform.Transform) int {
	if bs := t.BlockSize(); bs != 0 {
		return bs
	}
	return 16
}

// bMode benchmarks encryption with mode "m" over transform "tn"
func bMode(b *testing.B, m blockmode.Mode, tn string) {
	t, err := transform.ByName(tn)
	if err != nil {
		b.Fatal(err)
	}
	bs := blockSizeFor(t)
	if m == blockmode.ModeEME && bs != 16 {
		b.Skipf("eme needs 16-byte blocks, %s has %d", tn, bs)
	}
	key := randBytes(32)
	iv := randBytes(bs)
	in := make([]byte, msgSize)
	e := blockmode.New(t)
	b.SetBytes(int64(len(in)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Encrypt(m, in, key, iv, bs); err != nil {
			b.Fatal(err)
		}
	}
}

// bAESSIV benchmarks AES-SIV from github.com/jacobsa/crypto/siv
func bAESSIV(b *testing.B) {
	key := randBytes(64)
	authData := randBytes(adLen)
	iv := randBytes(16)
	in := make([]byte, msgSize)
	b.SetBytes(int64(len(in)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Encrypt and append to nonce
		if _, err := siv.Encrypt(iv, key, in, [][]byte{authData, iv}); err != nil {
			b.Fatal(err)
		}
	}
}

// bChacha20poly1305 benchmarks XChaCha20 from golang.org/x/crypto/chacha20poly1305
func bChacha20poly1305(b *testing.B) {
	key := randBytes(32)
	authData := randBytes(adLen)
	iv := randBytes(chacha20poly1305.NonceSizeX)
	in := make([]byte, msgSize)
	b.SetBytes(int64(len(in)))
	c, _ := chacha20poly1305.NewX(key)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Encrypt and append to nonce
		c.Seal(iv, iv, in, authData)
	}
}
