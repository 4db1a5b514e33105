package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/modecrypt/modecrypt/internal/configfile"
	"github.com/modecrypt/modecrypt/internal/cryptocore"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/readpassword"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

// unhexKey - Convert a hex-encoded key or IV to binary. Dashes are ignored,
// so "941a6029-3adc6a1c-..." works as well.
func unhexKey(s string) ([]byte, error) {
	s = strings.Replace(s, "-", "", -1)
	return hex.DecodeString(s)
}

// cipherParams is what the key derivation has to know about the operation.
type cipherParams struct {
	mode      string
	transform string
	blockSize int
}

// getKey looks at `args.key`, `args.zerokey` and `args.passfile`, gets the
// key from the source the user wanted (hex string on the command line,
// all-zero, password plus config file), and returns it in binary.
// "cf" is the already loaded config file, or nil.
func getKey(args *argContainer, cf *configfile.ConfFile, p cipherParams, confirm bool) ([]byte, error) {
	// "-key=941a6029-3adc6a1c-..."
	if args.key != "" {
		key, err := unhexKey(args.key)
		if err != nil {
			return nil, exitcodes.NewErr(fmt.Sprintf("Could not parse key: %v", err), exitcodes.Key)
		}
		tlog.Info.Printf("Using explicit key.")
		tlog.Info.Printf(tlog.ColorYellow +
			"THE KEY IS VISIBLE VIA \"ps ax\" AND MAY BE STORED IN YOUR SHELL HISTORY!" +
			tlog.ColorReset)
		return key, nil
	}
	// "-zerokey"
	if args.zerokey {
		tlog.Info.Printf("Using all-zero dummy key.")
		tlog.Info.Printf(tlog.ColorYellow +
			"ZEROKEY MODE PROVIDES NO SECURITY AT ALL AND SHOULD ONLY BE USED FOR TESTING." +
			tlog.ColorReset)
		n := cryptocore.KeyLen
		if p.blockSize > n {
			n = p.blockSize
		}
		return make([]byte, n), nil
	}
	// Password and config file
	var err error
	if cf == nil {
		cf, err = loadConfig(args)
		if err != nil {
			return nil, err
		}
	}
	if cf.Mode != p.mode || cf.Transform != p.transform || cf.BlockSize != p.blockSize {
		return nil, exitcodes.NewErr(fmt.Sprintf("Config file is for %s/%s/%d, not %s/%s/%d",
			cf.Mode, cf.Transform, cf.BlockSize, p.mode, p.transform, p.blockSize), exitcodes.LoadConf)
	}
	var pw []byte
	if confirm {
		pw, err = readpassword.Twice(args.passfile, "Password")
	} else {
		pw, err = readpassword.Once(args.passfile, "Password")
	}
	if err != nil {
		return nil, err
	}
	tlog.Info.Println("Deriving key")
	key, err := cf.DeriveKey(pw)
	for i := range pw {
		pw[i] = 0
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

// usesPassword tells if the key is derived from a password and the config
// file.
func usesPassword(args *argContainer) bool {
	return args.key == "" && !args.zerokey
}

// configPath returns the "-config" argument or the default name.
func configPath(args *argContainer) string {
	if args.config != "" {
		return args.config
	}
	return configfile.ConfDefaultName
}

// loadConfig - load the config file the user selected.
func loadConfig(args *argContainer) (*configfile.ConfFile, error) {
	fn := configPath(args)
	// Check if the file exists at all before prompting for a password
	if _, err := os.Stat(fn); err != nil {
		return nil, exitcodes.NewErr(fmt.Sprintf("Config file not found: %v. "+
			"Create one with -init, or pass -key or -zerokey.", err), exitcodes.OpenConf)
	}
	tlog.Debug.Printf("Loading config file %q", fn)
	cf, err := configfile.Load(fn)
	if err != nil {
		return nil, err
	}
	tlog.Debug.Printf("Config: %s", tlog.JSONDump(cf))
	return cf, nil
}
