package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/modecrypt/modecrypt/internal/blockmode"
	"github.com/modecrypt/modecrypt/internal/envelope"
)

func TestInspectCiphertext(t *testing.T) {
	h := envelope.NewHeader(blockmode.ModeECB, "xor", 4, 6, nil)
	var buf bytes.Buffer
	inspectCiphertext(&buf, h, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	expected := "Header: Version: 1, Mode: ecb, Transform: xor, BlockSize: 4, OriginalLength: 6, IV: none\n" +
		"Block  0: Offset:     0 Len: 4 Data: 01020304\n" +
		"Block  1: Offset:     4 Len: 4 Data: 05060708\n"
	if buf.String() != expected {
		t.Errorf("Unexpected output")
		fmt.Printf("expected:\n%s", expected)
		fmt.Printf("have:\n%s", buf.String())
	}
}

func TestInspectTruncated(t *testing.T) {
	h := envelope.NewHeader(blockmode.ModeCBC, "aes", 16, 20, make([]byte, 16))
	var buf bytes.Buffer
	inspectCiphertext(&buf, h, make([]byte, 20))
	if !bytes.Contains(buf.Bytes(), []byte("incomplete ciphertext: have 20 bytes, want 32")) {
		t.Errorf("truncation not reported:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Block  1: Offset:    16 Len: 4")) {
		t.Errorf("partial block not shown:\n%s", buf.String())
	}
}

func TestInspectRepeatedBlocks(t *testing.T) {
	h := envelope.NewHeader(blockmode.ModeECB, "xor", 4, 12, nil)
	var buf bytes.Buffer
	inspectCiphertext(&buf, h, []byte{1, 2, 3, 4, 1, 2, 3, 4, 9, 9, 9, 9, 1, 2, 3, 4})
	want := []string{
		"Block  0: Offset:     0 Len: 4 Data: 01020304\n",
		"Block  1: Offset:     4 Len: 4 Data: 01020304 repeats block 0\n",
		"Block  2: Offset:     8 Len: 4 Data: 09090909\n",
		"Block  3: Offset:    12 Len: 4 Data: 01020304 repeats block 0\n",
		"2 repeated block(s)\n",
	}
	for _, w := range want {
		if !bytes.Contains(buf.Bytes(), []byte(w)) {
			t.Errorf("output lacks %q:\n%s", w, buf.String())
		}
	}
}
