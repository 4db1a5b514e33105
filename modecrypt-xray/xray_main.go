package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/modecrypt/modecrypt/internal/configfile"
	"github.com/modecrypt/modecrypt/internal/envelope"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/readpassword"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

const myName = "modecrypt-xray"

func errExit(err error) {
	fmt.Println(err)
	exitcodes.Exit(err)
}

func prettyPrintHeader(w io.Writer, h *envelope.Header) {
	iv := "none"
	if len(h.IV) > 0 {
		iv = hex.EncodeToString(h.IV)
	}
	fmt.Fprintf(w, "Header: Version: %d, Mode: %s, Transform: %s, BlockSize: %d, OriginalLength: %d, IV: %s\n",
		h.Version, h.Mode, h.Transform, h.BlockSize, h.OriginalLength, iv)
}

func main() {
	dumpkey := flag.Bool("dumpkey", false, "Derive and dump the key of a config file")
	xattr := flag.Bool("xattr", false, "Read the header from the extended attribute")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] FILE\n"+
			"\n"+
			"Options:\n", myName)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n"+
			"Examples:\n"+
			"  modecrypt-xray secret.mcry\n"+
			"  modecrypt-xray -dumpkey modecrypt.conf\n")
		os.Exit(exitcodes.Usage)
	}
	fn := flag.Arg(0)
	if *dumpkey {
		dumpKey(fn)
		return
	}
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		errExit(exitcodes.Wrap(err, exitcodes.ReadInput))
	}
	var h *envelope.Header
	if *xattr {
		h, err = envelope.ReadXattr(fn)
	} else {
		var n int
		h, n, err = envelope.Parse(data)
		data = data[n:]
	}
	if err != nil {
		errExit(exitcodes.Wrap(err, exitcodes.Envelope))
	}
	inspectCiphertext(os.Stdout, h, data)
}

func dumpKey(fn string) {
	tlog.Info.Enabled = false
	cf, err := configfile.Load(fn)
	if err != nil {
		errExit(err)
	}
	pw, err := readpassword.Once(nil, "Password")
	if err != nil {
		errExit(err)
	}
	key, err := cf.DeriveKey(pw)
	if err != nil {
		errExit(err)
	}
	fmt.Println(hex.EncodeToString(key))
	for i := range pw {
		pw[i] = 0
	}
}

// inspectCiphertext prints the header and one line per ciphertext block.
// A block equal to an earlier one is marked with the number of the first
// block that had the same content. In ECB mode this reveals repeated
// plaintext blocks.
func inspectCiphertext(w io.Writer, h *envelope.Header, ciphertext []byte) {
	prettyPrintHeader(w, h)
	bs := h.BlockSize
	// Block content -> number of the first block with that content
	seen := make(map[string]int)
	var repeats int
	for i := 0; i*bs < len(ciphertext); i++ {
		off := i * bs
		end := off + bs
		if end > len(ciphertext) {
			end = len(ciphertext)
		}
		block := ciphertext[off:end]
		mark := ""
		if first, ok := seen[string(block)]; ok {
			mark = fmt.Sprintf(" repeats block %d", first)
			repeats++
		} else {
			seen[string(block)] = i
		}
		fmt.Fprintf(w, "Block %2d: Offset: %5d Len: %d Data: %s%s\n",
			i, off, end-off, hex.EncodeToString(block), mark)
	}
	if repeats > 0 {
		fmt.Fprintf(w, "%d repeated block(s)\n", repeats)
	}
	if want := h.CiphertextLen(); len(ciphertext) != want {
		fmt.Fprintf(w, "incomplete ciphertext: have %d bytes, want %d\n", len(ciphertext), want)
	}
}
