// Package exitcodes contains all well-defined exit codes that modecrypt
// can return.
package exitcodes

import (
	"errors"
	"fmt"
	"os"
)

const (
	// Usage - usage error like wrong cli syntax, wrong number of parameters.
	Usage = 1
	// 2 is reserved because it is used by Go panic

	// ReadInput means the input file could not be read
	ReadInput = 6
	// WriteOutput means the output file (or its xattr) could not be written
	WriteOutput = 7
	// LoadConf is an error while loading modecrypt.conf
	LoadConf = 8
	// ReadPassword means something went wrong reading the password
	ReadPassword = 9
	// Envelope means the envelope header is missing or corrupt
	Envelope = 10
	// Other error - please inspect the message
	Other = 11
	// InvalidConfig - block size or mode are unusable
	InvalidConfig = 12
	// ScryptParams means that scrypt was called with invalid parameters
	ScryptParams = 13
	// Key means that something went wrong when parsing the "-key"
	// command line option, or the key is too short for the block size
	Key = 14
	// SigInt means we got SIGINT
	SigInt = 15
	// IV means the IV is missing or has the wrong length
	IV = 16
	// Transform means the block transform failed
	Transform = 17
	// Length means the ciphertext length does not fit the block size or the
	// recorded original length
	Length = 18
	// skip 19

	// DevNull means that /dev/null could not be opened
	DevNull = 20
	// skip 21

	// PasswordEmpty - we received an empty password
	PasswordEmpty = 22
	// OpenConf - the was an error opening the modecrypt.conf file for reading
	OpenConf = 23
	// WriteConf - could not write the modecrypt.conf
	WriteConf = 24
)

// Err wraps an error with an associated numeric exit code
type Err struct {
	error
	code int
}

// NewErr returns an error containing "msg" and the exit code "code".
func NewErr(msg string, code int) Err {
	return Err{
		error: errors.New(msg),
		code:  code,
	}
}

// Wrap returns "err" with the exit code "code" attached.
func Wrap(err error, code int) Err {
	return Err{
		error: err,
		code:  code,
	}
}

// Unwrap returns the wrapped error.
func (e Err) Unwrap() error {
	return e.error
}

// Code returns the numeric exit code.
func (e Err) Code() int {
	return e.code
}

// Exit extracts the numeric exit code from "err" (if available) and exits the
// application.
func Exit(err error) {
	var err2 Err
	if !errors.As(err, &err2) {
		os.Exit(Other)
	}
	os.Exit(err2.code)
}

// Sprint formats "err" for the user, prefixed with the exit code.
func Sprint(err error) string {
	var err2 Err
	if errors.As(err, &err2) {
		return fmt.Sprintf("%v (exit code %d)", err, err2.code)
	}
	return err.Error()
}
