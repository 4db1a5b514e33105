package main

import (
	"fmt"
	"io"

	"github.com/modecrypt/modecrypt/internal/tlog"
)

const tUsage = "" +
	"Usage: " + tlog.ProgramName + " [OPTIONS] INFILE OUTFILE\n" +
	"  or   " + tlog.ProgramName + " -decrypt [OPTIONS] INFILE OUTFILE\n" +
	"  or   " + tlog.ProgramName + " -init FILE|-info FILE|-speed|-list|-version\n"

// helpShort is what gets displayed when called without arguments.
func helpShort(w io.Writer) {
	printVersion(w)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s", tUsage)
	fmt.Fprintf(w, `
Common Options (use -help to show all):
  -mode              Block mode: ecb, cbc (default), ctr, eme
  -transform         Block transform, see -list (default: aes)
  -bs                Block size in bytes
  -config            Config file with key derivation settings
  -passfile          Read password from plain text file(s)
  -key               Use explicit hex key instead of password
  -zerokey           Use all-zero key (testing only)
  -iv                Use explicit hex IV
  -decrypt           Decrypt instead of encrypt
  -xattr             Store the header in an extended attribute
  -hex               Print the encrypted output as hex
  -init              Create a config file
  -info              Show the header of an encrypted file
  -list              List modes and transforms
  -speed             Run crypto speed test
  -q, -quiet         Silence informational messages
  -version           Print version information
  --                 Stop option parsing
`)
}
