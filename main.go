package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modecrypt/modecrypt/internal/exitcodes"
	"github.com/modecrypt/modecrypt/internal/speed"
	"github.com/modecrypt/modecrypt/internal/tlog"
)

// handleSigint cancels the returned context when we get SIGINT or SIGTERM,
// so the block loops stop at the next block boundary.
func handleSigint() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-ch:
			tlog.Info.Printf("Got %v, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}

// run dispatches to the operation selected on the command line.
func run(ctx context.Context, args *argContainer) error {
	switch {
	// "-version"
	case args.version:
		printVersion(os.Stdout)
		return nil
	// "-list"
	case args.list:
		list(os.Stdout)
		return nil
	// "-speed"
	case args.speed:
		var names []string
		if args.transform != "" {
			names = []string{args.transform}
		}
		printVersion(os.Stdout)
		speed.Run(os.Stdout, names)
		return nil
	// "-init"
	case args.init != "":
		return initConf(args)
	// "-info"
	case args.info != "":
		return info(args, os.Stdout)
	case args.decrypt:
		return decrypt(ctx, args)
	}
	return encrypt(ctx, args, os.Stdout)
}

func main() {
	if len(os.Args) == 1 {
		helpShort(os.Stdout)
		os.Exit(exitcodes.Usage)
	}
	// Parse all command-line options (i.e. arguments starting with "-")
	// into "args".
	args, err := parseCliOpts(os.Args)
	if err != nil {
		tlog.Fatal.Println(err)
		exitcodes.Exit(err)
	}
	// "-d"
	if args.debug {
		tlog.Debug.Enabled = true
		tlog.Debug.Printf("cli args: %s", prettyArgs())
	}
	// "-q"
	if args.quiet {
		tlog.Info.Enabled = false
	}
	// "-wpanic"
	if args.wpanic {
		tlog.Warn.Wpanic = true
		tlog.Debug.Printf("Panicing on warnings")
	}
	ctx, stop := handleSigint()
	err = run(ctx, &args)
	stop()
	if err != nil {
		tlog.Fatal.Println(exitcodes.Sprint(err))
		exitcodes.Exit(err)
	}
	// main exits with code 0
}
