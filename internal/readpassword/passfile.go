package readpassword

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

// passfileErr returns an error carrying the ReadPassword exit code.
func passfileErr(format string, v ...interface{}) error {
	return exitcodes.NewErr("passfile: "+fmt.Sprintf(format, v...), exitcodes.ReadPassword)
}

// readPassFileConcatenate reads the first line from each file name and
// concatenates the results. The result does not contain any newlines.
func readPassFileConcatenate(passfileSlice []string) ([]byte, error) {
	var result []byte
	for _, fn := range passfileSlice {
		add, err := readPassFile(fn)
		if err != nil {
			return nil, err
		}
		result = append(result, add...)
	}
	if len(result) > maxPasswordLen {
		return nil, passfileErr("concatenated password exceeds %d bytes", maxPasswordLen)
	}
	return result, nil
}

// readPassFile returns the first line of "passfile". Anything after the
// first newline is ignored with a warning.
func readPassFile(passfile string) ([]byte, error) {
	tlog.Info.Printf("passfile: reading from file %q", passfile)
	f, err := os.Open(passfile)
	if err != nil {
		return nil, passfileErr("could not open %q: %v", passfile, err)
	}
	defer f.Close()
	// One more byte than a password plus newline may have, so an oversized
	// first line is detected without reading the whole file.
	buf, err := ioutil.ReadAll(io.LimitReader(f, maxPasswordLen+2))
	if err != nil {
		return nil, passfileErr("could not read from %q: %v", passfile, err)
	}
	line := buf
	var rest []byte
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		line, rest = buf[:i], buf[i+1:]
	}
	switch {
	case len(line) == 0:
		return nil, passfileErr("empty first line in %q", passfile)
	case len(line) > maxPasswordLen:
		return nil, passfileErr("max password length (%d bytes) exceeded in %q", maxPasswordLen, passfile)
	}
	if len(rest) > 0 {
		tlog.Warn.Printf("passfile: ignoring trailing garbage after first line of %q", passfile)
	}
	return line, nil
}
