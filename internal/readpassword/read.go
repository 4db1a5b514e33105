// Package readpassword reads a password from a passfile, the terminal or
// stdin.
package readpassword

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

const (
	// 2kB limit like EncFS
	maxPasswordLen = 2048
)

// Once tries to get a password from the user, either from the passfiles, the
// terminal or stdin. Multiple passfiles are concatenated.
func Once(passfiles []string, prompt string) ([]byte, error) {
	if len(passfiles) > 0 {
		return readPassFileConcatenate(passfiles)
	}
	if prompt == "" {
		prompt = "Password"
	}
	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return readPasswordStdin(prompt)
	}
	return readPasswordTerminal(prompt + ": ")
}

// Twice is the same as Once but will prompt twice if we get the password from
// the terminal.
func Twice(passfiles []string, prompt string) ([]byte, error) {
	if len(passfiles) > 0 || !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return Once(passfiles, prompt)
	}
	if prompt == "" {
		prompt = "Password"
	}
	p1, err := readPasswordTerminal(prompt + ": ")
	if err != nil {
		return nil, err
	}
	p2, err := readPasswordTerminal("Repeat: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(p1, p2) {
		return nil, exitcodes.NewErr("Passwords do not match", exitcodes.ReadPassword)
	}
	// Wipe the copy
	for i := range p2 {
		p2[i] = 0
	}
	return p1, nil
}

// readPasswordTerminal reads a line from the terminal.
// Returns an error on read error or empty result.
func readPasswordTerminal(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	fmt.Fprintf(os.Stderr, "%s", prompt)
	// terminal.ReadPassword removes the trailing newline
	p, err := terminal.ReadPassword(fd)
	fmt.Fprintf(os.Stderr, "\n")
	if err != nil {
		return nil, exitcodes.NewErr(fmt.Sprintf("Could not read password from terminal: %v", err), exitcodes.ReadPassword)
	}
	if len(p) == 0 {
		return nil, exitcodes.NewErr("Password is empty", exitcodes.PasswordEmpty)
	}
	if len(p) > maxPasswordLen {
		return nil, exitcodes.NewErr(fmt.Sprintf("Maximum password length of %d bytes exceeded", maxPasswordLen), exitcodes.ReadPassword)
	}
	return p, nil
}

// readPasswordStdin reads a line from stdin.
// Returns an error on read error or empty result.
func readPasswordStdin(prompt string) ([]byte, error) {
	tlog.Info.Printf("Reading %s from stdin", prompt)
	p, err := readLineUnbuffered(os.Stdin)
	if err != nil {
		return nil, exitcodes.Wrap(err, exitcodes.ReadPassword)
	}
	if len(p) == 0 {
		return nil, exitcodes.NewErr(fmt.Sprintf("Got empty %s from stdin", prompt), exitcodes.PasswordEmpty)
	}
	return p, nil
}

// readLineUnbuffered reads single bytes from "r" util it gets "\n" or EOF.
// The returned slice does NOT contain the trailing "\n".
// Nothing after the newline is consumed, so the rest of the stream can
// still be used by the caller.
func readLineUnbuffered(r io.Reader) (l []byte, err error) {
	b := make([]byte, 1)
	for {
		if len(l) > maxPasswordLen {
			return nil, fmt.Errorf("fatal: maximum password length of %d bytes exceeded", maxPasswordLen)
		}
		n, err := r.Read(b)
		if err == io.EOF {
			return l, nil
		}
		if err != nil {
			return nil, fmt.Errorf("readLineUnbuffered: %v", err)
		}
		if n == 0 {
			continue
		}
		if b[0] == '\n' {
			return l, nil
		}
		l = append(l, b...)
	}
}
