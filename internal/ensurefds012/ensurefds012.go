// Package ensurefds012 ensures that file descriptors 0,1,2 are open. It opens
// multiple copies of /dev/null as required.
// Otherwise the output file could be opened as fd 1 and receive log
// messages or "-hex" output.
//
// Use like this:
//
//	import _ "github.com/modecrypt/modecrypt/internal/ensurefds012"
//
// The import line MUST be in the alphabitcally first source code file of
// package main!
//
// You can check it by starting modecrypt with all fds closed:
//
//	$ ./modecrypt -zerokey in out 0<&- 1>&- 2>&-
package ensurefds012

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/modecrypt/modecrypt/internal/exitcodes"
)

func init() {
	fd, err := unix.Open("/dev/null", unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		os.Exit(exitcodes.DevNull)
	}
	for fd <= 2 {
		fd, err = unix.Dup(fd)
		if err != nil {
			os.Exit(exitcodes.DevNull)
		}
	}
	// Close excess fd (usually fd 3)
	unix.Close(fd)
}
