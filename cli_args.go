package main

// Should be initialized before anything else.
// This import line MUST be in the alphabitcally first source code file of
// package main!
import (
	_ "github.com/modecrypt/modecrypt/internal/ensurefds012"

	"fmt"
	"os"
	"strings"

	"github.com/integrii/flaggy"

	"github.com/modecrypt/modecrypt/internal/configfile"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

// argContainer stores the parsed CLI options and arguments
type argContainer struct {
	debug, decrypt, zerokey, xattr, hex, speed, list, version,
	quiet, wpanic, force bool
	mode, transform, key, iv, config, init, info string
	// -passfile can be passed multiple times
	passfile []string
	bs, scryptn, threads int
	// Positional arguments
	infile, outfile string
}

// prefixOArgs transform options passed via "-o foo,bar" into regular options
// like "-foo -bar" and prefixes them to the command line.
// Testcases in TestPrefixOArgs().
func prefixOArgs(osArgs []string) ([]string, error) {
	// Need at least 3, example: modecrypt -o    foo,bar
	//                               ^ 0    ^ 1    ^ 2
	if len(osArgs) < 3 {
		return osArgs, nil
	}
	// Passing "--" disables "-o" parsing. Ignore element 0 (program name).
	for _, v := range osArgs[1:] {
		if v == "--" {
			return osArgs, nil
		}
	}
	// Find and extract "-o foo,bar"
	var otherArgs, oOpts []string
	for i := 1; i < len(osArgs); i++ {
		if osArgs[i] == "-o" {
			// Last argument?
			if i+1 >= len(osArgs) {
				return nil, fmt.Errorf("The \"-o\" option requires an argument")
			}
			oOpts = strings.Split(osArgs[i+1], ",")
			// Skip over the arguments to "-o"
			i++
		} else if strings.HasPrefix(osArgs[i], "-o=") {
			oOpts = strings.Split(osArgs[i][3:], ",")
		} else {
			otherArgs = append(otherArgs, osArgs[i])
		}
	}
	// Start with program name
	newArgs := []string{osArgs[0]}
	// Add options from "-o"
	for _, o := range oOpts {
		if o == "" {
			continue
		}
		if o == "o" || o == "-o" {
			return nil, fmt.Errorf("You can't pass \"-o\" to \"-o\"")
		}
		newArgs = append(newArgs, "-"+o)
	}
	// Add other arguments
	newArgs = append(newArgs, otherArgs...)
	return newArgs, nil
}

// parseCliOpts - parse command line options (i.e. arguments that start with
// "-") and the positional arguments INFILE and OUTFILE.
func parseCliOpts(osArgs []string) (args argContainer, err error) {
	osArgs, err = prefixOArgs(osArgs)
	if err != nil {
		return args, exitcodes.Wrap(err, exitcodes.Usage)
	}

	p := flaggy.NewParser(tlog.ProgramName)
	p.Description = "Encrypt and decrypt files with classic block cipher modes"
	p.ShowVersionWithVersionFlag = false

	p.AddPositionalValue(&args.infile, "INFILE", 1, false, "input file")
	p.AddPositionalValue(&args.outfile, "OUTFILE", 2, false, "output file")

	p.Bool(&args.debug, "d", "", "")
	p.Bool(&args.debug, "debug", "", "Enable debug output")
	p.Bool(&args.decrypt, "decrypt", "", "Decrypt INFILE instead of encrypting it")
	p.Bool(&args.zerokey, "zerokey", "", "Use all-zero dummy key")
	p.Bool(&args.xattr, "xattr", "", "Keep the envelope header in an extended attribute instead of the file body")
	p.Bool(&args.hex, "hex", "", "Print the encrypted envelope as hex to stdout. With -decrypt: INFILE contains hex")
	p.Bool(&args.speed, "speed", "", "Run crypto speed test")
	p.Bool(&args.list, "list", "", "List the available modes and transforms")
	p.Bool(&args.version, "version", "", "Print version and exit")
	p.Bool(&args.quiet, "q", "", "")
	p.Bool(&args.quiet, "quiet", "", "Quiet - silence informational messages")
	p.Bool(&args.wpanic, "wpanic", "", "When encountering a warning, panic and exit immediately")
	p.Bool(&args.force, "f", "force", "Overwrite OUTFILE if it exists")

	p.String(&args.mode, "mode", "", "Block mode: ecb, cbc, ctr or eme")
	p.String(&args.transform, "transform", "", "Block transform, see -list")
	p.String(&args.key, "key", "", "Use explicit hex key instead of a password")
	p.String(&args.iv, "iv", "", "Use explicit hex IV instead of a random one")
	p.String(&args.config, "config", "", "Use specified config file instead of ./"+configfile.ConfDefaultName)
	p.String(&args.init, "init", "", "Create a new config file")
	p.String(&args.info, "info", "", "Display the envelope header of an encrypted file")

	// multiple strings option ([]string)
	p.StringSlice(&args.passfile, "passfile", "", "Read password from file")

	p.Int(&args.bs, "bs", "", "Block size in bytes. Default: the transform's own, or 16")
	p.Int(&args.threads, "threads", "", "Maximum number of worker goroutines. 0 means one per CPU")
	args.scryptn = configfile.ScryptDefaultLogN
	p.Int(&args.scryptn, "scryptn", "", "scrypt cost parameter logN for -init. Possible values: 10-28. "+
		"A lower value speeds up key derivation and reduces its memory needs, but makes the password susceptible to brute-force attacks")

	// Actual parsing
	if err = p.ParseArgs(osArgs[1:]); err != nil {
		return args, exitcodes.NewErr(fmt.Sprintf("Invalid command line: %v. Try '%s -help'.", err, tlog.ProgramName),
			exitcodes.Usage)
	}
	if err = args.check(); err != nil {
		return args, exitcodes.Wrap(err, exitcodes.Usage)
	}
	return args, nil
}

// check rejects option combinations that make no sense.
func (args *argContainer) check() error {
	if countOpFlags(args) > 1 {
		return fmt.Errorf("The options -init, -info, -speed, -list and -version cannot be combined")
	}
	if countKeySources(args) > 1 {
		return fmt.Errorf("The options -key, -zerokey and -passfile cannot be used at the same time")
	}
	if args.xattr && args.hex {
		return fmt.Errorf("The options -xattr and -hex cannot be used at the same time")
	}
	if args.decrypt && args.iv != "" {
		return fmt.Errorf("The option -iv cannot be used with -decrypt, the IV is stored in the header")
	}
	if args.bs < 0 || args.threads < 0 {
		return fmt.Errorf("-bs and -threads must not be negative")
	}
	if countOpFlags(args) > 0 {
		return nil
	}
	// Encryption or decryption
	if args.infile == "" {
		return fmt.Errorf("Usage: %s [OPTIONS] INFILE OUTFILE", tlog.ProgramName)
	}
	if args.outfile == "" && !(args.hex && !args.decrypt) {
		return fmt.Errorf("OUTFILE is missing")
	}
	if args.outfile != "" && args.hex && !args.decrypt {
		return fmt.Errorf("-hex prints to stdout, OUTFILE must not be given")
	}
	return nil
}

// prettyArgs pretty-prints the command-line arguments.
func prettyArgs() string {
	pa := fmt.Sprintf("%v", os.Args)
	// Get rid of "[" and "]"
	pa = pa[1 : len(pa)-1]
	return pa
}

// countOpFlags counts the number of operation flags we were passed.
func countOpFlags(args *argContainer) int {
	var count int
	if args.init != "" {
		count++
	}
	if args.info != "" {
		count++
	}
	if args.speed {
		count++
	}
	if args.list {
		count++
	}
	if args.version {
		count++
	}
	return count
}

// countKeySources counts how many ways to get the key were specified.
func countKeySources(args *argContainer) int {
	var count int
	if args.key != "" {
		count++
	}
	if args.zerokey {
		count++
	}
	if len(args.passfile) > 0 {
		count++
	}
	return count
}
