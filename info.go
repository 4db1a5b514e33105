package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/modecrypt/modecrypt/internal/blockmode"
	"github.com/modecrypt/modecrypt/internal/envelope"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/transform"
)

// info pretty-prints the envelope header of the encrypted file at "filename"
// for human consumption. With "-xattr", the header is read from the
// extended attribute.
// This is called when you pass the "-info" option.
func info(args *argContainer, w io.Writer) error {
	var h *envelope.Header
	var bodyLen int
	if args.xattr {
		var err error
		h, err = envelope.ReadXattr(args.info)
		if err != nil {
			return exitcodes.Wrap(err, exitcodes.Envelope)
		}
		fi, err := os.Stat(args.info)
		if err != nil {
			return exitcodes.Wrap(err, exitcodes.ReadInput)
		}
		bodyLen = int(fi.Size())
	} else {
		data, err := ioutil.ReadFile(args.info)
		if err != nil {
			return exitcodes.Wrap(err, exitcodes.ReadInput)
		}
		var n int
		h, n, err = envelope.Parse(data)
		if err != nil {
			return exitcodes.Wrap(err, exitcodes.Envelope)
		}
		bodyLen = len(data) - n
	}
	iv := "none"
	if len(h.IV) > 0 {
		iv = hex.EncodeToString(h.IV)
	}
	// Pretty-print
	fmt.Fprintf(w, "Version:        %d\n", h.Version)
	fmt.Fprintf(w, "Mode:           %s\n", h.Mode)
	fmt.Fprintf(w, "Transform:      %s\n", h.Transform)
	fmt.Fprintf(w, "BlockSize:      %d\n", h.BlockSize)
	fmt.Fprintf(w, "OriginalLength: %d\n", h.OriginalLength)
	fmt.Fprintf(w, "IV:             %s\n", iv)
	fmt.Fprintf(w, "Ciphertext:     %dB (header says %dB)\n", bodyLen, h.CiphertextLen())
	return nil
}

// list prints the available modes and transforms.
// This is called when you pass the "-list" option.
func list(w io.Writer) {
	var modes []string
	for _, m := range blockmode.Modes() {
		modes = append(modes, m.String())
	}
	fmt.Fprintf(w, "Modes:      %s\n", strings.Join(modes, " "))
	fmt.Fprintf(w, "Transforms:\n")
	for _, name := range transform.Names() {
		t, _ := transform.ByName(name)
		bs := "any"
		if t.BlockSize() != 0 {
			bs = fmt.Sprintf("%d", t.BlockSize())
		}
		def := ""
		if name == transform.DefaultName {
			def = " (default)"
		}
		fmt.Fprintf(w, "  %-10s block size %s%s\n", name, bs, def)
	}
}
