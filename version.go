package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/modecrypt/modecrypt/internal/tlog"
)

const (
	gitVersionNotSet = "[GitVersion not set - please compile using ./build.bash]"
	buildDateNotSet  = "0000-00-00"
	emeModulePath    = "github.com/rfjakob/eme"
)

var (
	// GitVersion is the modecrypt version according to git, set by build.bash
	GitVersion = gitVersionNotSet
	// GitVersionEME is the eme library version
	GitVersionEME = "unknown"
	// BuildDate is a date string like "2017-09-06", set by build.bash
	BuildDate = buildDateNotSet
)

func init() {
	versionFromBuildInfo()
}

// printVersion prints a version string like this:
// modecrypt v1.0-3-gcf99cfd; eme v1.1.1; 2020-05-12 go1.14 linux/amd64
func printVersion(w io.Writer) {
	built := fmt.Sprintf("%s %s", BuildDate, runtime.Version())
	fmt.Fprintf(w, "%s %s; eme %s; %s %s/%s\n",
		tlog.ProgramName, GitVersion, GitVersionEME, built,
		runtime.GOOS, runtime.GOARCH)
}

// versionFromBuildInfo tries to get some information out of the information baked in
// by the Go compiler. Does nothing when build.bash was used to build.
func versionFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		tlog.Debug.Println("versionFromBuildInfo: ReadBuildInfo() failed")
		return
	}
	// Fill our version strings
	if GitVersion == gitVersionNotSet {
		GitVersion = info.Main.Version
	}
	for _, m := range info.Deps {
		if m.Path == emeModulePath {
			GitVersionEME = m.Version
			if m.Replace != nil {
				GitVersionEME = m.Replace.Version
			}
			break
		}
	}
}
