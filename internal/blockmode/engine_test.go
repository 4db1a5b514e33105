package blockmode

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/modecrypt/modecrypt/internal/transform"
)

// countingTransform wraps XOR, counts calls and fails call number failAt
// (1-based, 0 = never fail).
type countingTransform struct {
	calls  int64
	failAt int64
}

var errBroken = errors.New("broken transform")

func (c *countingTransform) EncryptBlock(block []byte, key []byte) ([]byte, error) {
	n := atomic.AddInt64(&c.calls, 1)
	if c.failAt > 0 && n == c.failAt {
		return nil, errBroken
	}
	return transform.XOR{}.EncryptBlock(block, key)
}

func (c *countingTransform) DecryptBlock(block []byte, key []byte) ([]byte, error) {
	return c.EncryptBlock(block, key)
}

// shortTransform returns one byte too few.
type shortTransform struct{}

func (shortTransform) EncryptBlock(block []byte, key []byte) ([]byte, error) {
	return make([]byte, len(block)-1), nil
}

func (s shortTransform) DecryptBlock(block []byte, key []byte) ([]byte, error) {
	return s.EncryptBlock(block, key)
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func seqBytes(n int, start byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

var (
	testKey = seqBytes(16, 0)
	testIV  = mustHex("ffeeddccbbaa99887766554433221100")
)

// "This is a test." with key 00..0f and the toy XOR transform. The expected
// values were computed by hand: ECB is (plaintext|00) ^ key, CBC is
// (plaintext|00) ^ iv ^ key.
func TestReferenceVectors(t *testing.T) {
	e := New(transform.XOR{})
	pt := []byte("This is a test.")
	ecb, err := e.Encrypt(ModeECB, pt, testKey, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	cbc, err := e.Encrypt(ModeCBC, pt, testKey, testIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(ecb) != 16 || len(cbc) != 16 {
		t.Fatalf("want 16-byte ciphertexts, have %d and %d", len(ecb), len(cbc))
	}
	wantECB := mustHex("54696b70246c752769297e6e7f79200f")
	wantCBC := mustHex("ab87b6bc9fc6ecaf1e4f2b2a4c5b310f")
	if !bytes.Equal(ecb, wantECB) {
		t.Errorf("ecb: want=%x have=%x", wantECB, ecb)
	}
	if !bytes.Equal(cbc, wantCBC) {
		t.Errorf("cbc: want=%x have=%x", wantCBC, cbc)
	}
	// A non-zero IV must make single-block CBC differ from ECB
	if bytes.Equal(ecb, cbc) {
		t.Errorf("ecb and cbc ciphertexts are identical: %x", ecb)
	}
	for _, m := range []Mode{ModeECB, ModeCBC} {
		ct := ecb
		if m == ModeCBC {
			ct = cbc
		}
		have, err := e.Decrypt(m, ct, testKey, testIV, 16, len(pt))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(have, pt) {
			t.Errorf("%s: want=%q have=%q", m, pt, have)
		}
	}
}

// FIPS-197 appendix C.1: AES-128 single block
func TestAESKnownAnswer(t *testing.T) {
	aes, err := transform.ByName("aes")
	if err != nil {
		t.Fatal(err)
	}
	e := New(aes)
	pt := mustHex("00112233445566778899aabbccddeeff")
	want := mustHex("69c4e0d86a7b0430d8cdb78070b4c55a")
	have, err := e.Encrypt(ModeECB, pt, testKey, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(have, want) {
		t.Errorf("want=%x have=%x", want, have)
	}
}

func TestRoundTrip(t *testing.T) {
	key := seqBytes(32, 0x40)
	lengths := []int{0, 1, 7, 8, 9, 15, 16, 17, 31, 32, 33, 100, 1000, 2048}
	for _, name := range []string{"xor", "aes", "twofish", "blowfish", "cast5", "xtea"} {
		tr, err := transform.ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		bs := tr.BlockSize()
		if bs == 0 {
			bs = 16
		}
		e := New(tr, WithParallelThreshold(4))
		iv := seqBytes(bs, 0xa0)
		for _, m := range Modes() {
			if m == ModeEME && bs != 16 {
				continue
			}
			for _, l := range lengths {
				if m == ModeEME && (l == 0 || l > 2048) {
					continue
				}
				desc := fmt.Sprintf("%s/%s/%d", name, m, l)
				pt := seqBytes(l, 1)
				ct, err := e.Encrypt(m, pt, key, iv, bs)
				if err != nil {
					t.Errorf("%s: encrypt: %v", desc, err)
					continue
				}
				if len(ct) != PaddedLen(l, bs) {
					t.Errorf("%s: ciphertext length %d, want %d", desc, len(ct), PaddedLen(l, bs))
				}
				if l > 0 && bytes.Equal(ct, Pad(pt, bs)) {
					t.Errorf("%s: ciphertext equals plaintext", desc)
				}
				have, err := e.Decrypt(m, ct, key, iv, bs, l)
				if err != nil {
					t.Errorf("%s: decrypt: %v", desc, err)
					continue
				}
				if !bytes.Equal(have, pt) {
					t.Errorf("%s: round trip mismatch", desc)
				}
			}
		}
	}
}

// ECB leaks repeated blocks. This is the defining property of the mode.
func TestECBRepeatsBlocks(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	ct, err := e.Encrypt(ModeECB, make([]byte, 32), testKey, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct[:16], ct[16:]) {
		t.Errorf("ecb: identical plaintext blocks gave different ciphertext blocks: %x", ct)
	}
	cbc, err := e.Encrypt(ModeCBC, make([]byte, 32), testKey, testIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(cbc[:16], cbc[16:]) {
		t.Errorf("cbc: identical plaintext blocks gave identical ciphertext blocks: %x", cbc)
	}
}

func TestCBCDeterminism(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	pt := []byte("the same message, encrypted twice")
	c1, _ := e.Encrypt(ModeCBC, pt, testKey, testIV, 16)
	c2, _ := e.Encrypt(ModeCBC, pt, testKey, testIV, 16)
	if !bytes.Equal(c1, c2) {
		t.Errorf("same key and IV gave different ciphertexts")
	}
	otherIV := seqBytes(16, 0)
	c3, err := e.Encrypt(ModeCBC, pt, testKey, otherIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(c1[:16], c3[:16]) {
		t.Errorf("different IVs gave the same first block %x", c1[:16])
	}
}

// C0 = T(B0 ^ iv), C1 = T(B1 ^ C0). Decrypting C1 against a wrong C0 flips
// exactly the bits that differ between the right and the wrong C0.
func TestCBCChainDependency(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	pt := seqBytes(32, 0x30)
	b0, b1 := pt[:16], pt[16:]
	ct, err := e.Encrypt(ModeCBC, pt, testKey, testIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	c0, c1 := ct[:16], ct[16:]

	want0, _ := e.Encrypt(ModeECB, xorBlocks(b0, testIV), testKey, nil, 16)
	if !bytes.Equal(c0, want0) {
		t.Errorf("C0: want=%x have=%x", want0, c0)
	}
	want1, _ := e.Encrypt(ModeECB, xorBlocks(b1, c0), testKey, nil, 16)
	if !bytes.Equal(c1, want1) {
		t.Errorf("C1: want=%x have=%x", want1, c1)
	}

	wrongC0 := append([]byte{}, c0...)
	wrongC0[3] ^= 0x5a
	delta := xorBlocks(c0, wrongC0)
	// Decrypting C1 alone with wrongC0 as the IV is the same as chaining
	// from a wrong previous block.
	p1, err := e.Decrypt(ModeCBC, c1, testKey, wrongC0, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if have := xorBlocks(p1, b1); !bytes.Equal(have, delta) {
		t.Errorf("P1 error pattern: want=%x have=%x", delta, have)
	}
	right, _ := e.Decrypt(ModeCBC, c1, testKey, c0, 16, 16)
	if !bytes.Equal(right, b1) {
		t.Errorf("P1 with correct C0: want=%x have=%x", b1, right)
	}
}

// Zero padding does not add a block to empty or aligned input
func TestEmptyPlaintext(t *testing.T) {
	e := New(transform.XOR{})
	for _, m := range []Mode{ModeECB, ModeCBC, ModeCTR} {
		ct, err := e.Encrypt(m, nil, testKey, testIV, 16)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if ct == nil || len(ct) != 0 {
			t.Errorf("%s: want empty non-nil ciphertext, have %x", m, ct)
		}
		pt, err := e.Decrypt(m, ct, testKey, testIV, 16, 0)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if len(pt) != 0 {
			t.Errorf("%s: want empty plaintext, have %x", m, pt)
		}
	}
	ct, err := e.Encrypt(ModeECB, make([]byte, 16), testKey, nil, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(ct) != 16 {
		t.Errorf("aligned input: want 16 bytes, have %d", len(ct))
	}
}

func TestInvalidIV(t *testing.T) {
	ct := &countingTransform{}
	e := New(ct)
	pt := []byte("This is a test.")
	for _, m := range []Mode{ModeCBC, ModeCTR, ModeEME} {
		for _, iv := range [][]byte{nil, {}, make([]byte, 15), make([]byte, 17)} {
			_, err := e.Encrypt(m, pt, testKey, iv, 16)
			if !errors.Is(err, ErrInvalidIV) {
				t.Errorf("%s iv len %d: want ErrInvalidIV, have %v", m, len(iv), err)
			}
			_, err = e.Decrypt(m, make([]byte, 16), testKey, iv, 16, 15)
			if !errors.Is(err, ErrInvalidIV) {
				t.Errorf("%s decrypt iv len %d: want ErrInvalidIV, have %v", m, len(iv), err)
			}
		}
	}
	if ct.calls != 0 {
		t.Errorf("transform was called %d times on invalid config", ct.calls)
	}
	// ECB ignores the IV
	if _, err := e.Encrypt(ModeECB, pt, testKey, make([]byte, 3), 16); err != nil {
		t.Errorf("ecb with odd IV: %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	e := New(&countingTransform{})
	testCases := []struct {
		mode Mode
		key  []byte
		iv   []byte
		bs   int
		want error
	}{
		{ModeECB, testKey, nil, 0, ErrInvalidConfig},
		{ModeECB, testKey, nil, -16, ErrInvalidConfig},
		{Mode(0), testKey, testIV, 16, ErrInvalidConfig},
		{Mode(99), testKey, testIV, 16, ErrInvalidConfig},
		{ModeEME, testKey, testIV[:8], 8, ErrInvalidConfig},
		{ModeECB, testKey[:15], nil, 16, ErrInvalidKey},
		{ModeCBC, nil, testIV, 16, ErrInvalidKey},
		{ModeECB, testKey[:8], nil, 8, nil},
	}
	for i, tc := range testCases {
		_, err := e.Encrypt(tc.mode, []byte("x"), tc.key, tc.iv, tc.bs)
		if tc.want == nil && err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
		} else if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("case %d: want %v, have %v", i, tc.want, err)
		}
	}
}

func TestDecryptLength(t *testing.T) {
	e := New(transform.XOR{})
	testCases := []struct {
		ctLen   int
		origLen int
		want    error
	}{
		{15, 15, ErrInvalidLength},
		{33, -1, ErrInvalidLength},
		{32, 40, ErrInvalidLength},
		{32, 10, ErrInvalidLength},
		{32, 16, ErrInvalidLength},
		{32, 17, nil},
		{32, 32, nil},
		{32, -1, nil},
	}
	for i, tc := range testCases {
		pt, err := e.Decrypt(ModeCBC, make([]byte, tc.ctLen), testKey, testIV, 16, tc.origLen)
		if tc.want != nil {
			if !errors.Is(err, tc.want) {
				t.Errorf("case %d: want %v, have %v", i, tc.want, err)
			}
			if pt != nil {
				t.Errorf("case %d: partial result returned", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: %v", i, err)
			continue
		}
		wantLen := tc.origLen
		if wantLen < 0 {
			wantLen = tc.ctLen
		}
		if len(pt) != wantLen {
			t.Errorf("case %d: want %d bytes, have %d", i, wantLen, len(pt))
		}
	}
}

func TestTransformFailure(t *testing.T) {
	for _, m := range Modes() {
		for _, workers := range []int{1, 4} {
			ct := &countingTransform{failAt: 3}
			e := New(ct, WithWorkers(workers), WithParallelThreshold(2))
			out, err := e.Encrypt(m, make([]byte, 64), testKey, testIV, 16)
			if !errors.Is(err, ErrTransformFailure) {
				t.Errorf("%s: want ErrTransformFailure, have %v", m, err)
			}
			if !errors.Is(err, errBroken) {
				t.Errorf("%s: underlying error lost: %v", m, err)
			}
			var te *TransformError
			if !errors.As(err, &te) {
				t.Errorf("%s: not a *TransformError: %T", m, err)
			}
			if out != nil {
				t.Errorf("%s: partial result returned", m)
			}
		}
	}
	e := New(shortTransform{})
	_, err := e.Encrypt(ModeECB, make([]byte, 16), testKey, nil, 16)
	if !errors.Is(err, ErrTransformFailure) {
		t.Errorf("short output: want ErrTransformFailure, have %v", err)
	}
}

// Wrong block length reaching a fixed-size cipher is reported, not hidden
func TestTransformBlockSizeMismatch(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	_, err := e.Encrypt(ModeECB, []byte("hello"), seqBytes(32, 0), nil, 8)
	if !errors.Is(err, ErrTransformFailure) {
		t.Errorf("want ErrTransformFailure, have %v", err)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	aes, _ := transform.ByName("aes")
	seq := New(aes, WithWorkers(1))
	par := New(aes, WithWorkers(8), WithParallelThreshold(2))
	pt := seqBytes(16*1000+5, 7)
	for _, m := range []Mode{ModeECB, ModeCBC, ModeCTR} {
		c1, err := seq.Encrypt(m, pt, testKey, testIV, 16)
		if err != nil {
			t.Fatal(err)
		}
		c2, err := par.Encrypt(m, pt, testKey, testIV, 16)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(c1, c2) {
			t.Errorf("%s: parallel encryption differs", m)
		}
		p2, err := par.Decrypt(m, c1, testKey, testIV, 16, len(pt))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(p2, pt) {
			t.Errorf("%s: parallel decryption differs", m)
		}
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, m := range Modes() {
		for _, workers := range []int{1, 4} {
			ct := &countingTransform{}
			e := New(ct, WithWorkers(workers), WithParallelThreshold(2))
			_, err := e.EncryptContext(ctx, m, make([]byte, 64), testKey, testIV, 16)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("%s: want context.Canceled, have %v", m, err)
			}
			_, err = e.DecryptContext(ctx, m, make([]byte, 64), testKey, testIV, 16, 64)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("%s decrypt: want context.Canceled, have %v", m, err)
			}
			if ct.calls != 0 {
				t.Errorf("%s: %d transform calls after cancel", m, ct.calls)
			}
		}
	}
}

// EME mixes all blocks: changing the last plaintext byte changes the first
// ciphertext block.
func TestEMEDiffusion(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	pt := seqBytes(64, 0)
	c1, err := e.Encrypt(ModeEME, pt, testKey, testIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	pt[63] ^= 1
	c2, err := e.Encrypt(ModeEME, pt, testKey, testIV, 16)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(c1[:16], c2[:16]) {
		t.Errorf("first block did not change")
	}
}

func TestEMELimits(t *testing.T) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	for _, l := range []int{0, 16*128 + 1} {
		_, err := e.Encrypt(ModeEME, make([]byte, l), testKey, testIV, 16)
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("length %d: want ErrInvalidLength, have %v", l, err)
		}
	}
	if _, err := e.Encrypt(ModeEME, make([]byte, 16*128), testKey, testIV, 16); err != nil {
		t.Errorf("128 blocks: %v", err)
	}
}

func TestCounterAdd(t *testing.T) {
	testCases := []struct {
		iv   string
		n    uint64
		want string
	}{
		{"0000", 0, "0000"},
		{"0000", 1, "0001"},
		{"00ff", 1, "0100"},
		{"ffff", 1, "0000"},
		{"0001", 0x1ff, "0200"},
		{"00000000000000000000", 1 << 63, "00008000000000000000"},
		{"00ffffffffffffffffff", 1, "01000000000000000000"},
	}
	for _, tc := range testCases {
		have := hex.EncodeToString(counterAdd(mustHex(tc.iv), tc.n))
		if have != tc.want {
			t.Errorf("%s+%d: want=%s have=%s", tc.iv, tc.n, tc.want, have)
		}
	}
	// The IV itself must not be modified
	iv := mustHex("00ff")
	counterAdd(iv, 1)
	if hex.EncodeToString(iv) != "00ff" {
		t.Errorf("counterAdd modified its input")
	}
}

func BenchmarkCBCEncrypt(b *testing.B) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	pt := make([]byte, 4096)
	b.SetBytes(int64(len(pt)))
	for i := 0; i < b.N; i++ {
		e.Encrypt(ModeCBC, pt, testKey, testIV, 16)
	}
}

func BenchmarkECBEncrypt(b *testing.B) {
	aes, _ := transform.ByName("aes")
	e := New(aes)
	pt := make([]byte, 4096)
	b.SetBytes(int64(len(pt)))
	for i := 0; i < b.N; i++ {
		e.Encrypt(ModeECB, pt, testKey, testIV, 16)
	}
}
