package main

import (
	"os"

	"github.com/modecrypt/modecrypt/internal/configfile"
	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

// initConf writes a new config file to "args.init" with the mode, transform
// and block size given on the command line.
func initConf(args *argContainer) error {
	if _, err := os.Stat(args.init); err == nil {
		return exitcodes.NewErr("Config file "+args.init+" already exists", exitcodes.WriteConf)
	}
	p, err := resolveParams(args, nil)
	if err != nil {
		return err
	}
	creator := tlog.ProgramName + " " + GitVersion
	err = configfile.Create(args.init, creator, p.mode, p.transform, p.blockSize, args.scryptn)
	if err != nil {
		return err
	}
	tlog.Info.Printf(tlog.ColorGreen+"Config file %s has been created: %s/%s, block size %d."+tlog.ColorReset,
		args.init, p.mode, p.transform, p.blockSize)
	tlog.Info.Printf(tlog.ColorGrey+"You can now encrypt using: %s -config %s INFILE OUTFILE"+tlog.ColorReset,
		tlog.ProgramName, args.init)
	return nil
}
