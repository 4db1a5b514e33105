package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/modecrypt/modecrypt/internal/blockmode"
	"github.com/modecrypt/modecrypt/internal/configfile"
	"github.com/modecrypt/modecrypt/internal/cryptocore"
	"github.com/modecrypt/modecrypt/internal/envelope"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
	"github.com/modecrypt/modecrypt/internal/transform"
)

const defaultMode = "cbc"

// writeXattr is replaced in tests
var writeXattr = envelope.WriteXattr

// resolveParams fills in what the user did not specify: first from the config
// file (if any), then from the defaults.
func resolveParams(args *argContainer, cf *configfile.ConfFile) (cipherParams, error) {
	p := cipherParams{mode: args.mode, transform: args.transform, blockSize: args.bs}
	if cf != nil {
		if p.mode == "" {
			p.mode = cf.Mode
		}
		if p.transform == "" {
			p.transform = cf.Transform
		}
		if p.blockSize == 0 {
			p.blockSize = cf.BlockSize
		}
	}
	if p.mode == "" {
		p.mode = defaultMode
	}
	if p.transform == "" {
		p.transform = transform.DefaultName
	}
	m, err := blockmode.ParseMode(p.mode)
	if err != nil {
		return p, exitcodes.Wrap(err, exitcodes.Usage)
	}
	// Normalize "CBC" to "cbc" so it matches the config file
	p.mode = m.String()
	t, err := transform.ByName(p.transform)
	if err != nil {
		return p, exitcodes.Wrap(err, exitcodes.Usage)
	}
	if p.blockSize == 0 {
		p.blockSize = t.BlockSize()
		if p.blockSize == 0 {
			p.blockSize = 16
		}
	}
	if bs := t.BlockSize(); bs != 0 && bs != p.blockSize {
		return p, exitcodes.NewErr(fmt.Sprintf("Transform %q has a fixed block size of %d, -bs=%d does not work",
			t.Name(), bs, p.blockSize), exitcodes.InvalidConfig)
	}
	if p.blockSize > envelope.MaxBlockSize {
		return p, exitcodes.NewErr(fmt.Sprintf("Block size %d is too large, the maximum is %d",
			p.blockSize, envelope.MaxBlockSize), exitcodes.InvalidConfig)
	}
	return p, nil
}

// checkInputLen rejects input the envelope header cannot describe.
func checkInputLen(n int64) error {
	if n > envelope.MaxOriginalLength {
		return exitcodes.NewErr(fmt.Sprintf("Input has %d bytes, the maximum is %d",
			n, int64(envelope.MaxOriginalLength)), exitcodes.Length)
	}
	return nil
}

// newEngine returns an engine for transform "name" honoring "-threads".
func newEngine(args *argContainer, name string) (*blockmode.Engine, error) {
	t, err := transform.ByName(name)
	if err != nil {
		return nil, exitcodes.Wrap(err, exitcodes.Envelope)
	}
	var opts []blockmode.Option
	if args.threads > 0 {
		opts = append(opts, blockmode.WithWorkers(args.threads))
	}
	return blockmode.New(t, opts...), nil
}

// cryptErr maps the error kinds of the blockmode engine to exit codes.
// Cancellation means the user hit Ctrl-C.
func cryptErr(err error) error {
	code := exitcodes.Other
	switch {
	case errors.Is(err, context.Canceled):
		return exitcodes.NewErr("Interrupted", exitcodes.SigInt)
	case errors.Is(err, blockmode.ErrInvalidConfig):
		code = exitcodes.InvalidConfig
	case errors.Is(err, blockmode.ErrInvalidKey):
		code = exitcodes.Key
	case errors.Is(err, blockmode.ErrInvalidIV):
		code = exitcodes.IV
	case errors.Is(err, blockmode.ErrTransformFailure):
		code = exitcodes.Transform
	case errors.Is(err, blockmode.ErrInvalidLength):
		code = exitcodes.Length
	}
	return exitcodes.Wrap(err, code)
}

// encrypt reads INFILE, encrypts it and writes the envelope to OUTFILE
// (or stdout in hex).
func encrypt(ctx context.Context, args *argContainer, stdout io.Writer) error {
	var cf *configfile.ConfFile
	var err error
	if usesPassword(args) {
		if cf, err = loadConfig(args); err != nil {
			return err
		}
	}
	p, err := resolveParams(args, cf)
	if err != nil {
		return err
	}
	mode, _ := blockmode.ParseMode(p.mode)
	if fi, err := os.Stat(args.infile); err == nil {
		if err = checkInputLen(fi.Size()); err != nil {
			return err
		}
	}
	plaintext, err := ioutil.ReadFile(args.infile)
	if err != nil {
		return exitcodes.Wrap(err, exitcodes.ReadInput)
	}
	if err = checkInputLen(int64(len(plaintext))); err != nil {
		return err
	}
	var iv []byte
	if args.iv != "" {
		if iv, err = unhexKey(args.iv); err != nil {
			return exitcodes.NewErr(fmt.Sprintf("Could not parse IV: %v", err), exitcodes.IV)
		}
		if !mode.NeedsIV() {
			tlog.Warn.Printf("Mode %s does not use an IV, ignoring -iv", mode)
			iv = nil
		}
	} else if mode.NeedsIV() {
		iv = cryptocore.NewIV(p.blockSize)
	}
	key, err := getKey(args, cf, p, true)
	if err != nil {
		return err
	}
	engine, err := newEngine(args, p.transform)
	if err != nil {
		return err
	}
	tlog.Debug.Printf("encrypt: %d bytes, mode=%s transform=%s bs=%d", len(plaintext), p.mode, p.transform, p.blockSize)
	ciphertext, err := engine.EncryptContext(ctx, mode, plaintext, key, iv, p.blockSize)
	if err != nil {
		return cryptErr(err)
	}
	h := envelope.NewHeader(mode, p.transform, p.blockSize, len(plaintext), iv)
	if args.hex {
		fmt.Fprintln(stdout, hex.EncodeToString(envelope.Seal(h, ciphertext)))
		return nil
	}
	if args.xattr {
		if err = writeOutput(args.outfile, ciphertext, args.force); err != nil {
			return err
		}
		if err = writeXattr(args.outfile, h); err != nil {
			// Ciphertext without its header cannot be decrypted
			os.Remove(args.outfile)
			return exitcodes.Wrap(err, exitcodes.WriteOutput)
		}
	} else if err = writeOutput(args.outfile, envelope.Seal(h, ciphertext), args.force); err != nil {
		return err
	}
	tlog.Info.Printf(tlog.ColorGreen+"Encrypted %d bytes to %s"+tlog.ColorReset, len(plaintext), args.outfile)
	return nil
}

// readEnvelope reads header and ciphertext from INFILE according to "-hex"
// and "-xattr".
func readEnvelope(args *argContainer) (*envelope.Header, []byte, error) {
	data, err := ioutil.ReadFile(args.infile)
	if err != nil {
		return nil, nil, exitcodes.Wrap(err, exitcodes.ReadInput)
	}
	if args.hex {
		data, err = hex.DecodeString(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, nil, exitcodes.Wrap(err, exitcodes.ReadInput)
		}
	}
	if !args.xattr {
		h, ciphertext, err := envelope.Open(data)
		if err != nil {
			return nil, nil, exitcodes.Wrap(err, exitcodes.Envelope)
		}
		return h, ciphertext, nil
	}
	h, err := envelope.ReadXattr(args.infile)
	if err != nil {
		return nil, nil, exitcodes.Wrap(err, exitcodes.Envelope)
	}
	if len(data) != h.CiphertextLen() {
		return nil, nil, exitcodes.NewErr(fmt.Sprintf("File has %d bytes, header says %d",
			len(data), h.CiphertextLen()), exitcodes.Length)
	}
	return h, data, nil
}

// decrypt reads the envelope from INFILE and writes the plaintext to OUTFILE.
func decrypt(ctx context.Context, args *argContainer) error {
	h, ciphertext, err := readEnvelope(args)
	if err != nil {
		return err
	}
	p := cipherParams{mode: h.Mode.String(), transform: h.Transform, blockSize: h.BlockSize}
	argMode := args.mode
	if argMode != "" {
		m, err := blockmode.ParseMode(argMode)
		if err != nil {
			return exitcodes.Wrap(err, exitcodes.Usage)
		}
		argMode = m.String()
	}
	// Options on the command line must agree with the header
	if (argMode != "" && argMode != p.mode) || (args.transform != "" && args.transform != p.transform) ||
		(args.bs != 0 && args.bs != p.blockSize) {
		return exitcodes.NewErr(fmt.Sprintf("Command line does not match the header: %s/%s/%d",
			p.mode, p.transform, p.blockSize), exitcodes.Usage)
	}
	key, err := getKey(args, nil, p, false)
	if err != nil {
		return err
	}
	engine, err := newEngine(args, h.Transform)
	if err != nil {
		return err
	}
	tlog.Debug.Printf("decrypt: %d bytes, mode=%s transform=%s bs=%d", len(ciphertext), p.mode, p.transform, p.blockSize)
	plaintext, err := engine.DecryptContext(ctx, h.Mode, ciphertext, key, h.IV, h.BlockSize, int(h.OriginalLength))
	if err != nil {
		return cryptErr(err)
	}
	if err = writeOutput(args.outfile, plaintext, args.force); err != nil {
		return err
	}
	tlog.Info.Printf(tlog.ColorGreen+"Decrypted %d bytes to %s"+tlog.ColorReset, len(plaintext), args.outfile)
	return nil
}

// writeOutput writes "data" to "path" with 0600 permissions. An existing
// file is only replaced when "force" is set.
func writeOutput(path string, data []byte, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		if os.IsExist(err) {
			return exitcodes.NewErr(fmt.Sprintf("%s exists, use -force to overwrite", path), exitcodes.WriteOutput)
		}
		return exitcodes.Wrap(err, exitcodes.WriteOutput)
	}
	_, err = fd.Write(data)
	if err != nil {
		fd.Close()
		return exitcodes.Wrap(err, exitcodes.WriteOutput)
	}
	if err = fd.Close(); err != nil {
		return exitcodes.Wrap(err, exitcodes.WriteOutput)
	}
	return nil
}
